package dependencies

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/ghssh/internal/execshell"
	"github.com/temirov/ghssh/internal/keyagent"
	"github.com/temirov/ghssh/internal/keys"
	"github.com/temirov/ghssh/internal/profiles"
	"github.com/temirov/ghssh/internal/sshconfig"
	"github.com/temirov/ghssh/internal/ui"
)

const (
	unknownKeyGeneratorMessageConstant       = "unknown key generator"
	unknownKeyGeneratorErrorTemplateConstant = "%w: %q"
)

// ErrUnknownKeyGenerator indicates the configured key generator name is not recognized.
var ErrUnknownKeyGenerator = errors.New(unknownKeyGeneratorMessageConstant)

// ToolExecutor runs every external tool ghssh depends on.
type ToolExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteSSH(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteSSHKeygen(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing afero.Fs) afero.Fs {
	if existing != nil {
		return existing
	}
	return afero.NewOsFs()
}

// ResolveToolExecutor returns the provided executor or constructs a shell-backed default.
// Command lifecycle events are rendered through humanReadableLogger when it is provided.
func ResolveToolExecutor(existing ToolExecutor, logger *zap.Logger, humanReadableLogger *zap.Logger) (ToolExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	executorOptions := []execshell.ShellExecutorOption{}
	if humanReadableLogger != nil {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(humanReadableLogger)))
	}
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, executorOptions...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveConfigurationStore returns the provided store or one backed by the configured SSH config path.
func ResolveConfigurationStore(existing profiles.ConfigurationStore, fileSystem afero.Fs, configuration profiles.Configuration) (profiles.ConfigurationStore, error) {
	if existing != nil {
		return existing, nil
	}
	return sshconfig.NewStore(fileSystem, configuration.SSHConfigPath)
}

// ResolveKeyGenerator returns the provided generator or the one named by the configuration.
func ResolveKeyGenerator(existing keys.Generator, configuration profiles.Configuration, executor keys.SSHKeygenExecutor, fileSystem afero.Fs) (keys.Generator, error) {
	if existing != nil {
		return existing, nil
	}
	switch strings.ToLower(strings.TrimSpace(configuration.KeyGenerator)) {
	case profiles.KeyGeneratorNative:
		return keys.NewNativeGenerator(fileSystem)
	case profiles.KeyGeneratorSSHKeygen:
		return keys.NewExternalGenerator(executor, fileSystem)
	default:
		return nil, fmt.Errorf(unknownKeyGeneratorErrorTemplateConstant, ErrUnknownKeyGenerator, configuration.KeyGenerator)
	}
}

// ResolveAgentProvider returns the provided agent provider or one dialing the configured socket.
func ResolveAgentProvider(existing profiles.AgentProvider, fileSystem afero.Fs, configuration profiles.Configuration) profiles.AgentProvider {
	if existing != nil {
		return existing
	}
	socketPath := configuration.AgentSocket
	return func() (keyagent.Session, error) {
		session, dialError := keyagent.Dial(fileSystem, socketPath)
		if dialError != nil {
			return nil, dialError
		}
		return session, nil
	}
}
