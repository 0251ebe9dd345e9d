package utils_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghssh/internal/utils"
)

const (
	testEnvironmentPrefixConstant              = "TESTGHSSH"
	testConfigurationNameConstant              = "config"
	testConfigurationTypeConstant              = "yaml"
	testConfigFileNameConstant                 = "config.yaml"
	testLogLevelKeyConstant                    = "common.log_level"
	testProbeTimeoutKeyConstant                = "probe.timeout"
	testProbeWriteSignalsKeyConstant           = "probe.write_signals"
	testLogLevelEnvironmentVariableConstant    = "TESTGHSSH_COMMON_LOG_LEVEL"
	testWriteSignalsEnvironmentVariable        = "TESTGHSSH_PROBE_WRITE_SIGNALS"
	testProbeTimeoutEnvironmentVariable        = "TESTGHSSH_PROBE_TIMEOUT"
	testEmbeddedConfigurationContentConstant   = "common:\n  log_level: warn\nprobe:\n  timeout: 0s\n  write_signals:\n    - \"[new branch]\"\n"
	testFileConfigurationContentConstant       = "common:\n  log_level: debug\nprobe:\n  timeout: 45s\n"
	testUserConfigurationDirectoryNameConstant = "ghssh"
	testXDGConfigHomeDirectoryNameConstant     = "config"
)

type configurationFixture struct {
	Common configurationCommonFixture `mapstructure:"common"`
	Probe  configurationProbeFixture  `mapstructure:"probe"`
}

type configurationCommonFixture struct {
	LogLevel string `mapstructure:"log_level"`
}

type configurationProbeFixture struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	WriteSignals []string      `mapstructure:"write_signals"`
}

func defaultValues() map[string]any {
	return map[string]any{
		testLogLevelKeyConstant:          "info",
		testProbeTimeoutKeyConstant:      time.Duration(0),
		testProbeWriteSignalsKeyConstant: []string{"Everything up-to-date"},
	}
}

func TestConfigurationLoaderLoadConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		embeddedContent       string
		fileContent           string
		environment           map[string]string
		expectedConfiguration configurationFixture
	}{
		{
			name: "defaults_only",
			expectedConfiguration: configurationFixture{
				Common: configurationCommonFixture{LogLevel: "info"},
				Probe:  configurationProbeFixture{WriteSignals: []string{"Everything up-to-date"}},
			},
		},
		{
			name:            "embedded_overrides_defaults",
			embeddedContent: testEmbeddedConfigurationContentConstant,
			expectedConfiguration: configurationFixture{
				Common: configurationCommonFixture{LogLevel: "warn"},
				Probe:  configurationProbeFixture{WriteSignals: []string{"[new branch]"}},
			},
		},
		{
			name:            "file_overrides_embedded",
			embeddedContent: testEmbeddedConfigurationContentConstant,
			fileContent:     testFileConfigurationContentConstant,
			expectedConfiguration: configurationFixture{
				Common: configurationCommonFixture{LogLevel: "debug"},
				Probe:  configurationProbeFixture{Timeout: 45 * time.Second, WriteSignals: []string{"[new branch]"}},
			},
		},
		{
			name:            "environment_overrides_file",
			embeddedContent: testEmbeddedConfigurationContentConstant,
			fileContent:     testFileConfigurationContentConstant,
			environment: map[string]string{
				testLogLevelEnvironmentVariableConstant: "error",
				testWriteSignalsEnvironmentVariable:     "[new branch],[deleted]",
				testProbeTimeoutEnvironmentVariable:     "2m",
			},
			expectedConfiguration: configurationFixture{
				Common: configurationCommonFixture{LogLevel: "error"},
				Probe:  configurationProbeFixture{Timeout: 2 * time.Minute, WriteSignals: []string{"[new branch]", "[deleted]"}},
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			tempDirectory := testInstance.TempDir()
			configurationFilePath := ""
			if len(testCase.fileContent) > 0 {
				configurationFilePath = filepath.Join(tempDirectory, testConfigFileNameConstant)
				require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(testCase.fileContent), 0o600))
			}
			for variableName, variableValue := range testCase.environment {
				testInstance.Setenv(variableName, variableValue)
			}

			configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{tempDirectory})
			configurationLoader.SetEmbeddedConfiguration([]byte(testCase.embeddedContent), testConfigurationTypeConstant)

			loadedConfiguration := configurationFixture{}
			metadata, loadError := configurationLoader.LoadConfiguration(configurationFilePath, defaultValues(), &loadedConfiguration)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedConfiguration, loadedConfiguration)
			require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
		})
	}
}

func TestConfigurationLoaderRejectsMalformedDuration(testInstance *testing.T) {
	configurationFilePath := filepath.Join(testInstance.TempDir(), testConfigFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte("probe:\n  timeout: soon\n"), 0o600))

	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
	_, loadError := configurationLoader.LoadConfiguration(configurationFilePath, defaultValues(), &configurationFixture{})
	require.Error(testInstance, loadError)
}

func TestConfigurationLoaderSearchPaths(testInstance *testing.T) {
	testCases := []struct {
		name                         string
		configurationDirectorySelect func(workingDirectoryPath string, userConfigurationDirectoryPath string) string
	}{
		{
			name: "working_directory",
			configurationDirectorySelect: func(workingDirectoryPath string, userConfigurationDirectoryPath string) string {
				return workingDirectoryPath
			},
		},
		{
			name: "user_configuration_directory",
			configurationDirectorySelect: func(workingDirectoryPath string, userConfigurationDirectoryPath string) string {
				return userConfigurationDirectoryPath
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			workingDirectoryPath := testInstance.TempDir()
			homeDirectoryPath := testInstance.TempDir()
			testInstance.Setenv("HOME", homeDirectoryPath)
			testInstance.Setenv("XDG_CONFIG_HOME", filepath.Join(homeDirectoryPath, testXDGConfigHomeDirectoryNameConstant))

			userConfigurationBaseDirectoryPath, userConfigurationDirectoryError := os.UserConfigDir()
			require.NoError(testInstance, userConfigurationDirectoryError)
			userConfigurationDirectoryPath := filepath.Join(userConfigurationBaseDirectoryPath, testUserConfigurationDirectoryNameConstant)
			require.NoError(testInstance, os.MkdirAll(userConfigurationDirectoryPath, 0o755))

			configurationFilePath := filepath.Join(testCase.configurationDirectorySelect(workingDirectoryPath, userConfigurationDirectoryPath), testConfigFileNameConstant)
			require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(testFileConfigurationContentConstant), 0o600))

			configurationLoader := utils.NewConfigurationLoader(
				testConfigurationNameConstant,
				testConfigurationTypeConstant,
				testEnvironmentPrefixConstant,
				[]string{workingDirectoryPath, userConfigurationDirectoryPath},
			)

			loadedConfiguration := configurationFixture{}
			metadata, loadError := configurationLoader.LoadConfiguration("", defaultValues(), &loadedConfiguration)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, "debug", loadedConfiguration.Common.LogLevel)
			require.Equal(testInstance, 45*time.Second, loadedConfiguration.Probe.Timeout)
			require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
		})
	}
}
