package profiles

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	sshprofiles "github.com/temirov/ghssh/internal/profiles"
	flagutils "github.com/temirov/ghssh/internal/utils/flags"
)

const (
	listUseConstant                 = "list"
	listShortDescriptionConstant    = "List configured profiles"
	listLongDescriptionConstant     = "list prints the profiles found in the SSH configuration, in file order, with the fingerprint of each public key."
	listOutputFlagNameConstant      = "output"
	listOutputFlagShorthandConstant = "o"
	listOutputFlagUsageConstant     = "Output format"
	listOutputTextConstant          = "text"
	listOutputYAMLConstant          = "yaml"
	listEmptyMessageConstant        = "No profiles configured."
	listLineTemplateConstant        = "%s\t%s\t%s\t%s\n"
	listMissingKeyConstant          = "key missing"
	listUnreadablePublicKeyConstant = "public key unreadable"
)

// ListCommandBuilder assembles the list command.
type ListCommandBuilder struct {
	CommandDependencies
}

// Build constructs the list command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   listUseConstant,
		Short: listShortDescriptionConstant,
		Long:  listLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	outputChoice := flagutils.NewChoiceValue(listOutputTextConstant, []string{listOutputTextConstant, listOutputYAMLConstant})
	command.Flags().VarP(outputChoice, listOutputFlagNameConstant, listOutputFlagShorthandConstant, outputChoice.Usage(listOutputFlagUsageConstant))
	return command, nil
}

func (builder *ListCommandBuilder) run(command *cobra.Command, _ []string) error {
	service, _, serviceError := builder.buildService()
	if serviceError != nil {
		return serviceError
	}
	defer closeService(service, resolveLogger(builder.LoggerProvider))

	statuses, listError := service.List()
	if listError != nil {
		return listError
	}

	outputFormat := command.Flags().Lookup(listOutputFlagNameConstant).Value.String()
	if outputFormat == listOutputYAMLConstant {
		return writeProfileStatusesYAML(command.OutOrStdout(), statuses)
	}
	return writeProfileStatusesText(command.OutOrStdout(), statuses)
}

func writeProfileStatusesYAML(output io.Writer, statuses []sshprofiles.ProfileStatus) error {
	encoder := yaml.NewEncoder(output)
	encoder.SetIndent(2)
	if encodeError := encoder.Encode(statuses); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
}

func writeProfileStatusesText(output io.Writer, statuses []sshprofiles.ProfileStatus) error {
	if len(statuses) == 0 {
		_, writeError := fmt.Fprintln(output, listEmptyMessageConstant)
		return writeError
	}
	for _, status := range statuses {
		keyDescription := status.Fingerprint
		switch {
		case !status.KeyPresent:
			keyDescription = listMissingKeyConstant
		case len(keyDescription) == 0:
			keyDescription = listUnreadablePublicKeyConstant
		}
		if _, writeError := fmt.Fprintf(output, listLineTemplateConstant, status.Profile.Label, status.Profile.HostAlias, status.Profile.PrivateKeyPath, keyDescription); writeError != nil {
			return writeError
		}
	}
	return nil
}
