package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/ghssh/internal/profiles"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testConfigurationTemplateConstant = "common:\n  log_level: error\n  log_format: structured\nprofiles:\n  ssh_directory: %[1]s\n  ssh_config_path: %[1]s/config\n  register_with_agent: false\n"
	testHostBlockConstant             = "Host github-work\n  HostName github.com\n  User git\n  IdentityFile %s/id_ed25519_work\n  IdentitiesOnly yes\n"
)

type applicationRun struct {
	output         string
	executionError error
}

func runApplication(testInstance *testing.T, input string, arguments ...string) (*Application, applicationRun) {
	testInstance.Helper()
	application := NewApplication()
	output := &bytes.Buffer{}
	application.rootCommand.SetIn(strings.NewReader(input))
	application.rootCommand.SetOut(output)
	application.rootCommand.SetErr(&bytes.Buffer{})
	application.rootCommand.SetArgs(arguments)
	executionError := application.Execute()
	return application, applicationRun{output: output.String(), executionError: executionError}
}

func writeTestConfiguration(testInstance *testing.T, sshDirectory string, withProfile bool) string {
	testInstance.Helper()
	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	content := fmt.Sprintf(testConfigurationTemplateConstant, sshDirectory)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(content), 0o600))
	if withProfile {
		hostBlock := fmt.Sprintf(testHostBlockConstant, sshDirectory)
		require.NoError(testInstance, os.WriteFile(filepath.Join(sshDirectory, "config"), []byte(hostBlock), 0o600))
	}
	return configurationPath
}

func TestApplicationRegistersCommands(testInstance *testing.T) {
	application := NewApplication()

	registeredNames := []string{}
	for _, command := range application.rootCommand.Commands() {
		registeredNames = append(registeredNames, command.Name())
	}
	for _, expectedName := range []string{"add", "remove", "list", "linked", "check", "delete-all", "clone-check"} {
		require.Contains(testInstance, registeredNames, expectedName)
	}
}

func TestApplicationConfigurationPrecedence(testInstance *testing.T) {
	sshDirectory := testInstance.TempDir()
	configurationPath := writeTestConfiguration(testInstance, sshDirectory, false)

	application, run := runApplication(testInstance, "", "--config", configurationPath, "--log-level", "debug", "list")
	require.NoError(testInstance, run.executionError)
	require.Equal(testInstance, "No profiles configured.\n", run.output)

	require.Equal(testInstance, configurationPath, application.configurationMetadata.ConfigFileUsed)
	require.Equal(testInstance, "debug", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", application.configuration.Common.LogFormat)
	require.Equal(testInstance, sshDirectory+"/config", application.configuration.Profiles.SSHConfigPath)
	require.False(testInstance, application.configuration.Profiles.RegisterWithAgent)
	require.Equal(testInstance, "github-", application.configuration.Profiles.HostAliasPrefix)
	require.Equal(testInstance, "ghssh-access-probe-", application.configuration.Probe.BranchPrefix)
}

func TestApplicationEnvironmentOverridesConfigurationFile(testInstance *testing.T) {
	sshDirectory := testInstance.TempDir()
	configurationPath := writeTestConfiguration(testInstance, sshDirectory, false)
	testInstance.Setenv("GHSSH_PROFILES_HOST_ALIAS_PREFIX", "gh-")
	testInstance.Setenv("GHSSH_PROBE_BRANCH_PREFIX", "probe-")

	application, run := runApplication(testInstance, "", "--config", configurationPath, "list")
	require.NoError(testInstance, run.executionError)
	require.Equal(testInstance, "gh-", application.configuration.Profiles.HostAliasPrefix)
	require.Equal(testInstance, "probe-", application.configuration.Probe.BranchPrefix)
}

func TestApplicationListsConfiguredProfiles(testInstance *testing.T) {
	sshDirectory := testInstance.TempDir()
	configurationPath := writeTestConfiguration(testInstance, sshDirectory, true)

	_, run := runApplication(testInstance, "", "--config", configurationPath, "list")
	require.NoError(testInstance, run.executionError)
	require.Equal(testInstance, "work\tgithub-work\t"+sshDirectory+"/id_ed25519_work\tkey missing\n", run.output)
}

func TestApplicationRejectsUnknownCommand(testInstance *testing.T) {
	_, run := runApplication(testInstance, "", "unknown-command")
	require.Error(testInstance, run.executionError)
}

func TestApplicationRejectsInvalidLogLevel(testInstance *testing.T) {
	sshDirectory := testInstance.TempDir()
	configurationPath := writeTestConfiguration(testInstance, sshDirectory, false)

	_, run := runApplication(testInstance, "", "--config", configurationPath, "--log-level", "verbose", "list")
	require.ErrorContains(testInstance, run.executionError, "unable to create logger")
}

func TestApplicationVersionFlag(testInstance *testing.T) {
	_, run := runApplication(testInstance, "", "--version")
	require.NoError(testInstance, run.executionError)
	require.Contains(testInstance, run.output, Version)
}

func TestApplicationWithoutArgumentsRunsMenu(testInstance *testing.T) {
	sshDirectory := testInstance.TempDir()
	configurationPath := writeTestConfiguration(testInstance, sshDirectory, true)

	_, run := runApplication(testInstance, "3\n6\nnot-a-repo\n0\n", "--config", configurationPath)
	require.NoError(testInstance, run.executionError)
	require.Contains(testInstance, run.output, "GitHub SSH profiles")
	require.Contains(testInstance, run.output, "work\tgithub-work\t")
	require.Contains(testInstance, run.output, "Error: invalid repository reference")
}

func TestApplicationDispatchUsesLoadedConfiguration(testInstance *testing.T) {
	sshDirectory := testInstance.TempDir()
	application := NewApplication()
	application.logger = zap.NewNop()
	application.configuration.Profiles = profiles.Configuration{SSHDirectory: sshDirectory, SSHConfigPath: filepath.Join(sshDirectory, "config")}
	output := &bytes.Buffer{}
	application.rootCommand.SetOut(output)

	require.NoError(testInstance, application.Dispatch(context.Background(), []string{"list"}))
	require.Equal(testInstance, "No profiles configured.\n", output.String())
	require.Error(testInstance, application.Dispatch(context.Background(), []string{"remove"}))
}

func TestApplicationExecuteReportsCommandBuildFailure(testInstance *testing.T) {
	buildFailure := errors.New("flag redefined: output")
	application := NewApplication()
	application.commandBuildError = fmt.Errorf(commandBuildErrorTemplateConstant, buildFailure)
	output := &bytes.Buffer{}
	application.rootCommand.SetOut(output)
	application.rootCommand.SetArgs([]string{"list"})

	executionError := application.Execute()
	require.ErrorIs(testInstance, executionError, buildFailure)
	require.Contains(testInstance, executionError.Error(), "unable to build commands")
	require.Empty(testInstance, output.String())
}
