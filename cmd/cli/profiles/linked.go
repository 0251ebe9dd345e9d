package profiles

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	linkedUseConstant              = "linked"
	linkedShortDescriptionConstant = "Show identities loaded in the SSH agent"
	linkedLongDescriptionConstant  = "linked lists the identities held by the SSH agent and names the profile each one belongs to."
	linkedEmptyMessageConstant     = "No identities loaded in the SSH agent."
	linkedLineTemplateConstant     = "%s %s %s (%s)\n"
	linkedUnmatchedConstant        = "no profile"
)

// LinkedCommandBuilder assembles the linked command.
type LinkedCommandBuilder struct {
	CommandDependencies
}

// Build constructs the linked command.
func (builder *LinkedCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   linkedUseConstant,
		Short: linkedShortDescriptionConstant,
		Long:  linkedLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *LinkedCommandBuilder) run(command *cobra.Command, _ []string) error {
	service, _, serviceError := builder.buildService()
	if serviceError != nil {
		return serviceError
	}
	defer closeService(service, resolveLogger(builder.LoggerProvider))

	identities, linkedError := service.Linked()
	if linkedError != nil {
		return linkedError
	}

	output := command.OutOrStdout()
	if len(identities) == 0 {
		_, writeError := fmt.Fprintln(output, linkedEmptyMessageConstant)
		return writeError
	}
	for _, linkedIdentity := range identities {
		profileLabel := linkedIdentity.Label
		if len(profileLabel) == 0 {
			profileLabel = linkedUnmatchedConstant
		}
		identity := linkedIdentity.Identity
		if _, writeError := fmt.Fprintf(output, linkedLineTemplateConstant, identity.Type, identity.Fingerprint, identity.Comment, profileLabel); writeError != nil {
			return writeError
		}
	}
	return nil
}
