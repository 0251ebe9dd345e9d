package profiles

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	sshprofiles "github.com/temirov/ghssh/internal/profiles"
)

const (
	removeUseConstant                  = "remove <label>"
	removeShortDescriptionConstant     = "Remove a profile's host alias, agent identity and key files"
	removeLongDescriptionConstant      = "remove deletes the Host block for the profile alias, unloads its key from the SSH agent and deletes the profile's own key pair. An IdentityFile pointing elsewhere is kept. Pieces that are already gone are reported and skipped."
	removeProfileTemplateConstant      = "Profile %s removed.\n"
	removeBlockTemplateConstant        = "Host block %s: %s\n"
	removeAgentTemplateConstant        = "SSH agent identity: %s\n"
	removeAgentSkippedTemplateConstant = "SSH agent identity: skipped (%v)\n"
	removePrivateKeyTemplateConstant   = "Private key %s: %s\n"
	removePublicKeyTemplateConstant    = "Public key %s: %s\n"
	removeRetainedTemplateConstant     = "IdentityFile %s: kept (not owned by profile %s)\n"
	removedStatusConstant              = "removed"
	notFoundStatusConstant             = "not found"
)

// RemoveCommandBuilder assembles the remove command.
type RemoveCommandBuilder struct {
	CommandDependencies
}

// Build constructs the remove command.
func (builder *RemoveCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   removeUseConstant,
		Short: removeShortDescriptionConstant,
		Long:  removeLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *RemoveCommandBuilder) run(command *cobra.Command, arguments []string) error {
	service, _, serviceError := builder.buildService()
	if serviceError != nil {
		return serviceError
	}
	defer closeService(service, resolveLogger(builder.LoggerProvider))

	result, removeError := service.Remove(command.Context(), arguments[0])
	if len(result.Profile.Label) > 0 {
		if writeError := writeRemoveResult(command.OutOrStdout(), result); writeError != nil {
			return writeError
		}
	}
	return removeError
}

func writeRemoveResult(output io.Writer, result sshprofiles.RemoveResult) error {
	lines := []string{
		fmt.Sprintf(removeProfileTemplateConstant, result.Profile.Label),
		fmt.Sprintf(removeBlockTemplateConstant, result.Profile.HostAlias, removalStatus(result.BlockRemoved)),
	}
	switch {
	case result.AgentRemoved:
		lines = append(lines, fmt.Sprintf(removeAgentTemplateConstant, removedStatusConstant))
	case result.AgentError != nil:
		lines = append(lines, fmt.Sprintf(removeAgentSkippedTemplateConstant, result.AgentError))
	}
	lines = append(lines,
		fmt.Sprintf(removePrivateKeyTemplateConstant, result.Profile.PrivateKeyPath, removalStatus(result.PrivateKeyRemoved)),
		fmt.Sprintf(removePublicKeyTemplateConstant, result.Profile.PublicKeyPath, removalStatus(result.PublicKeyRemoved)),
	)
	if len(result.RetainedIdentityFile) > 0 {
		lines = append(lines, fmt.Sprintf(removeRetainedTemplateConstant, result.RetainedIdentityFile, result.Profile.Label))
	}

	for _, line := range lines {
		if _, writeError := io.WriteString(output, line); writeError != nil {
			return writeError
		}
	}
	return nil
}

func removalStatus(removed bool) string {
	if removed {
		return removedStatusConstant
	}
	return notFoundStatusConstant
}
