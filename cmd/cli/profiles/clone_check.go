package profiles

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ghssh/internal/access"
	"github.com/temirov/ghssh/internal/dependencies"
)

const (
	cloneCheckUseConstant               = "clone-check <repository>"
	cloneCheckAliasConstant             = "permissions"
	cloneCheckShortDescriptionConstant  = "Find which profiles can pull from and push to a repository"
	cloneCheckLongDescriptionConstant   = "clone-check probes a GitHub repository through every profile alias. Read access is tested with git ls-remote and write access with a dry-run push of a disposable branch, so the remote is never changed. The repository may be given as https://github.com/owner/repo, git@github.com:owner/repo.git or owner/repo."
	scratchCleanupFailedMessageConstant = "scratch repository cleanup failed"
)

// CloneCheckCommandBuilder assembles the clone-check command.
type CloneCheckCommandBuilder struct {
	CommandDependencies
	ProbeConfigurationProvider func() access.Configuration
	RemoteProber               access.RemoteProber
}

// Build constructs the clone-check command.
func (builder *CloneCheckCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     cloneCheckUseConstant,
		Aliases: []string{cloneCheckAliasConstant},
		Short:   cloneCheckShortDescriptionConstant,
		Long:    cloneCheckLongDescriptionConstant,
		Args:    cobra.ExactArgs(1),
		RunE:    builder.run,
	}
	return command, nil
}

func (builder *CloneCheckCommandBuilder) run(command *cobra.Command, arguments []string) error {
	logger := resolveLogger(builder.LoggerProvider)
	service, configuration, serviceError := builder.buildService()
	if serviceError != nil {
		return serviceError
	}
	defer closeService(service, logger)

	aliases, aliasesError := service.ProfileAliases()
	if aliasesError != nil {
		return aliasesError
	}

	remoteProber := builder.RemoteProber
	if remoteProber == nil {
		toolExecutor, executorError := builder.resolveToolExecutor()
		if executorError != nil {
			return executorError
		}
		sshConfigPath := configuration.SSHConfigPath
		if builder.Store != nil {
			sshConfigPath = builder.Store.Path()
		}
		gitRemoteProber, proberError := access.NewGitRemoteProber(access.GitRemoteProberDependencies{
			GitExecutor:   toolExecutor,
			FileSystem:    dependencies.ResolveFileSystem(builder.FileSystem),
			Configuration: builder.resolveProbeConfiguration(),
			SSHConfigPath: sshConfigPath,
		})
		if proberError != nil {
			return proberError
		}
		defer func() {
			if closeError := gitRemoteProber.Close(); closeError != nil {
				logger.Warn(scratchCleanupFailedMessageConstant, zap.Error(closeError))
			}
		}()
		remoteProber = gitRemoteProber
	}

	prober, proberError := access.NewProber(access.ProberDependencies{RemoteProber: remoteProber, Logger: logger})
	if proberError != nil {
		return proberError
	}

	report, probeError := prober.Probe(command.Context(), access.ProbeOptions{Reference: arguments[0], Aliases: aliases})
	if probeError != nil {
		return probeError
	}
	_, writeError := io.WriteString(command.OutOrStdout(), report.String())
	return writeError
}

func (builder *CloneCheckCommandBuilder) resolveProbeConfiguration() access.Configuration {
	if builder.ProbeConfigurationProvider == nil {
		return access.DefaultConfiguration()
	}
	return builder.ProbeConfigurationProvider().Sanitize()
}
