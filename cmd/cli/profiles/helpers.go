package profiles

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ghssh/internal/dependencies"
	"github.com/temirov/ghssh/internal/keys"
	sshprofiles "github.com/temirov/ghssh/internal/profiles"
	pathutils "github.com/temirov/ghssh/internal/utils/path"
)

const agentCloseFailedMessageConstant = "agent session close failed"

var profileHomeDirectoryExpander = pathutils.NewHomeExpander()

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// PrompterFactory creates confirmation prompters scoped to a Cobra command.
type PrompterFactory func(*cobra.Command) sshprofiles.ConfirmationPrompter

// CommandDependencies are the collaborators shared by every profile command.
// Nil fields are resolved to the operating system defaults.
type CommandDependencies struct {
	LoggerProvider              LoggerProvider
	HumanReadableLoggerProvider LoggerProvider
	ConfigurationProvider       func() sshprofiles.Configuration
	ToolExecutor                dependencies.ToolExecutor
	FileSystem                  afero.Fs
	Store                       sshprofiles.ConfigurationStore
	KeyGenerator                keys.Generator
	AgentProvider               sshprofiles.AgentProvider
}

func (commandDependencies CommandDependencies) resolveConfiguration() sshprofiles.Configuration {
	configuration := sshprofiles.DefaultConfiguration()
	if commandDependencies.ConfigurationProvider != nil {
		configuration = commandDependencies.ConfigurationProvider()
	}
	return configuration.Sanitize(profileHomeDirectoryExpander)
}

func (commandDependencies CommandDependencies) resolveToolExecutor() (dependencies.ToolExecutor, error) {
	return dependencies.ResolveToolExecutor(
		commandDependencies.ToolExecutor,
		resolveLogger(commandDependencies.LoggerProvider),
		resolveOptionalLogger(commandDependencies.HumanReadableLoggerProvider),
	)
}

// buildService wires a profiles.Service from the resolved dependencies.
func (commandDependencies CommandDependencies) buildService() (*sshprofiles.Service, sshprofiles.Configuration, error) {
	configuration := commandDependencies.resolveConfiguration()
	fileSystem := dependencies.ResolveFileSystem(commandDependencies.FileSystem)

	toolExecutor, executorError := commandDependencies.resolveToolExecutor()
	if executorError != nil {
		return nil, configuration, executorError
	}

	store, storeError := dependencies.ResolveConfigurationStore(commandDependencies.Store, fileSystem, configuration)
	if storeError != nil {
		return nil, configuration, storeError
	}

	keyGenerator, generatorError := dependencies.ResolveKeyGenerator(commandDependencies.KeyGenerator, configuration, toolExecutor, fileSystem)
	if generatorError != nil {
		return nil, configuration, generatorError
	}

	service, serviceError := sshprofiles.NewService(sshprofiles.ServiceDependencies{
		Store:         store,
		FileSystem:    fileSystem,
		KeyGenerator:  keyGenerator,
		AgentProvider: dependencies.ResolveAgentProvider(commandDependencies.AgentProvider, fileSystem, configuration),
		SSHExecutor:   toolExecutor,
		PathExpander:  profileHomeDirectoryExpander,
		Configuration: configuration,
		Logger:        resolveLogger(commandDependencies.LoggerProvider),
	})
	if serviceError != nil {
		return nil, configuration, serviceError
	}
	return service, configuration, nil
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveOptionalLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return nil
	}
	return provider()
}

func resolvePrompter(factory PrompterFactory, command *cobra.Command) sshprofiles.ConfirmationPrompter {
	if factory != nil {
		prompter := factory(command)
		if prompter != nil {
			return prompter
		}
	}
	return sshprofiles.NewIOConfirmationPrompter(command.InOrStdin(), command.OutOrStdout())
}

func closeService(service *sshprofiles.Service, logger *zap.Logger) {
	if closeError := service.Close(); closeError != nil {
		logger.Debug(agentCloseFailedMessageConstant, zap.Error(closeError))
	}
}
