package profiles

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	sshprofiles "github.com/temirov/ghssh/internal/profiles"
)

const (
	addUseConstant                  = "add <label> <email>"
	addShortDescriptionConstant     = "Create a key pair and SSH host alias for a GitHub account"
	addLongDescriptionConstant      = "add generates a key pair for the labelled profile, appends a Host block for its alias to the SSH configuration and loads the key into the SSH agent. Existing keys and blocks are reused."
	addAgentFlagNameConstant        = "agent"
	addAgentFlagUsageConstant       = "Load the key into the SSH agent (defaults to profiles.register_with_agent)"
	addProfileReadyTemplateConstant = "Profile %s ready (host alias %s).\n"
	addKeyGeneratedTemplateConstant = "Key pair generated at %s\n"
	addKeyExistedTemplateConstant   = "Key pair already present at %s\n"
	addBlockAddedTemplateConstant   = "Host block %s added to %s\n"
	addBlockExistedTemplateConstant = "Host block %s already present in %s\n"
	addAgentLoadedConstant          = "Key loaded into the SSH agent."
	addAgentWarningTemplateConstant = "Warning: key not loaded into the SSH agent: %v\n"
	addPublicKeyHeaderConstant      = "Add this public key to GitHub (Settings > SSH and GPG keys):"
)

// AddCommandBuilder assembles the add command.
type AddCommandBuilder struct {
	CommandDependencies
}

// Build constructs the add command.
func (builder *AddCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   addUseConstant,
		Short: addShortDescriptionConstant,
		Long:  addLongDescriptionConstant,
		Args:  cobra.ExactArgs(2),
		RunE:  builder.run,
	}
	command.Flags().Bool(addAgentFlagNameConstant, true, addAgentFlagUsageConstant)
	return command, nil
}

func (builder *AddCommandBuilder) run(command *cobra.Command, arguments []string) error {
	service, configuration, serviceError := builder.buildService()
	if serviceError != nil {
		return serviceError
	}
	defer closeService(service, resolveLogger(builder.LoggerProvider))

	registerWithAgent := configuration.RegisterWithAgent
	if command.Flags().Changed(addAgentFlagNameConstant) {
		registerWithAgent, _ = command.Flags().GetBool(addAgentFlagNameConstant)
	}

	result, addError := service.Add(command.Context(), sshprofiles.AddOptions{
		Label:             arguments[0],
		Email:             arguments[1],
		RegisterWithAgent: registerWithAgent,
	})
	if addError != nil {
		return addError
	}
	return writeAddResult(command.OutOrStdout(), result, configuration, registerWithAgent)
}

func writeAddResult(output io.Writer, result sshprofiles.AddResult, configuration sshprofiles.Configuration, registerWithAgent bool) error {
	lines := []string{fmt.Sprintf(addProfileReadyTemplateConstant, result.Profile.Label, result.Profile.HostAlias)}
	if result.KeyExisted {
		lines = append(lines, fmt.Sprintf(addKeyExistedTemplateConstant, result.Profile.PrivateKeyPath))
	} else {
		lines = append(lines, fmt.Sprintf(addKeyGeneratedTemplateConstant, result.Profile.PrivateKeyPath))
	}
	if result.BlockExisted {
		lines = append(lines, fmt.Sprintf(addBlockExistedTemplateConstant, result.Profile.HostAlias, configuration.SSHConfigPath))
	} else {
		lines = append(lines, fmt.Sprintf(addBlockAddedTemplateConstant, result.Profile.HostAlias, configuration.SSHConfigPath))
	}
	if registerWithAgent {
		if result.AgentRegistered {
			lines = append(lines, addAgentLoadedConstant+"\n")
		} else {
			lines = append(lines, fmt.Sprintf(addAgentWarningTemplateConstant, result.AgentError))
		}
	}
	if len(result.PublicKey) > 0 {
		lines = append(lines, addPublicKeyHeaderConstant+"\n", result.PublicKey+"\n")
	}

	for _, line := range lines {
		if _, writeError := io.WriteString(output, line); writeError != nil {
			return writeError
		}
	}
	return nil
}
