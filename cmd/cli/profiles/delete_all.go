package profiles

import (
	"fmt"

	"github.com/spf13/cobra"

	flagutils "github.com/temirov/ghssh/internal/utils/flags"
)

const (
	deleteAllUseConstant              = "delete-all"
	deleteAllShortDescriptionConstant = "Remove every identity from the SSH agent"
	deleteAllLongDescriptionConstant  = "delete-all unloads all identities from the SSH agent. Key files and the SSH configuration are left untouched."
	deleteAllPromptConstant           = "Remove every identity from the SSH agent? [y/N]: "
	deleteAllCancelledConstant        = "Cancelled."
	deleteAllResultTemplateConstant   = "Removed %d identities from the SSH agent.\n"
)

// DeleteAllCommandBuilder assembles the delete-all command.
type DeleteAllCommandBuilder struct {
	CommandDependencies
	PrompterFactory PrompterFactory
}

// Build constructs the delete-all command.
func (builder *DeleteAllCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   deleteAllUseConstant,
		Short: deleteAllShortDescriptionConstant,
		Long:  deleteAllLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	command.Flags().BoolP(flagutils.AssumeYesFlagName, flagutils.AssumeYesFlagShorthand, false, flagutils.AssumeYesFlagUsage)
	return command, nil
}

func (builder *DeleteAllCommandBuilder) run(command *cobra.Command, _ []string) error {
	assumeYes, _ := command.Flags().GetBool(flagutils.AssumeYesFlagName)
	if !assumeYes {
		confirmed, promptError := resolvePrompter(builder.PrompterFactory, command).Confirm(deleteAllPromptConstant)
		if promptError != nil {
			return promptError
		}
		if !confirmed {
			_, writeError := fmt.Fprintln(command.OutOrStdout(), deleteAllCancelledConstant)
			return writeError
		}
	}

	service, _, serviceError := builder.buildService()
	if serviceError != nil {
		return serviceError
	}
	defer closeService(service, resolveLogger(builder.LoggerProvider))

	removedCount, deleteError := service.DeleteAll()
	if deleteError != nil {
		return deleteError
	}
	_, writeError := fmt.Fprintf(command.OutOrStdout(), deleteAllResultTemplateConstant, removedCount)
	return writeError
}
