package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/ghssh/cmd/cli"
	"github.com/temirov/ghssh/internal/access"
	"github.com/temirov/ghssh/internal/profiles"
	"github.com/temirov/ghssh/internal/utils"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	readmeSnippetTestNameConstant    = "readme_configuration"
	readmeSnippetFileNameConstant    = "config.yaml"
	parentDirectoryReferenceConstant = ".."
	configurationNameConstant        = "config"
	configurationTypeConstant        = "yaml"
	environmentPrefixConstant        = "GHSSH_README_TEST"
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
	unexpectedSectionMessageTemplate = "unexpected configuration section %s"
)

var expectedConfigurationSections = map[string]struct{}{
	"common":   {},
	"profiles": {},
	"probe":    {},
}

func readReadmeConfigurationSnippet(testInstance *testing.T) string {
	testInstance.Helper()

	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	return strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])
}

func TestReadmeConfigurationParses(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configuration string
	}{
		{
			name:          readmeSnippetTestNameConstant,
			configuration: readReadmeConfigurationSnippet(testInstance),
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			var sections map[string]any
			require.NoError(subtest, yaml.Unmarshal([]byte(testCase.configuration), &sections))
			for sectionName := range sections {
				_, expected := expectedConfigurationSections[sectionName]
				require.Truef(subtest, expected, unexpectedSectionMessageTemplate, sectionName)
			}

			configurationPath := filepath.Join(subtest.TempDir(), readmeSnippetFileNameConstant)
			require.NoError(subtest, os.WriteFile(configurationPath, []byte(testCase.configuration), 0o600))

			loader := utils.NewConfigurationLoader(configurationNameConstant, configurationTypeConstant, environmentPrefixConstant, nil)
			loader.SetEmbeddedConfiguration(cli.EmbeddedDefaultConfiguration())

			var configuration cli.ApplicationConfiguration
			loaded, loadError := loader.LoadConfiguration(configurationPath, nil, &configuration)
			require.NoError(subtest, loadError)
			require.Equal(subtest, configurationPath, loaded.ConfigFileUsed)

			require.Equal(subtest, profiles.DefaultConfiguration(), configuration.Profiles)

			expectedProbe := access.DefaultConfiguration()
			expectedProbe.Timeout = 30 * time.Second
			require.Equal(subtest, expectedProbe, configuration.Probe)
		})
	}
}
