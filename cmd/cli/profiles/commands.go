package profiles

import (
	"github.com/spf13/cobra"

	"github.com/temirov/ghssh/internal/access"
)

// CommandSetBuilder assembles every profile command against one set of dependencies.
type CommandSetBuilder struct {
	Dependencies               CommandDependencies
	ProbeConfigurationProvider func() access.Configuration
	RemoteProber               access.RemoteProber
	PrompterFactory            PrompterFactory
}

type commandBuilder interface {
	Build() (*cobra.Command, error)
}

// Build constructs the profile commands in the order they appear in help output.
func (builder *CommandSetBuilder) Build() ([]*cobra.Command, error) {
	builders := []commandBuilder{
		&AddCommandBuilder{CommandDependencies: builder.Dependencies},
		&RemoveCommandBuilder{CommandDependencies: builder.Dependencies},
		&ListCommandBuilder{CommandDependencies: builder.Dependencies},
		&LinkedCommandBuilder{CommandDependencies: builder.Dependencies},
		&CheckCommandBuilder{CommandDependencies: builder.Dependencies},
		&DeleteAllCommandBuilder{CommandDependencies: builder.Dependencies, PrompterFactory: builder.PrompterFactory},
		&CloneCheckCommandBuilder{
			CommandDependencies:        builder.Dependencies,
			ProbeConfigurationProvider: builder.ProbeConfigurationProvider,
			RemoteProber:               builder.RemoteProber,
		},
	}

	commands := make([]*cobra.Command, 0, len(builders))
	for _, subcommandBuilder := range builders {
		command, buildError := subcommandBuilder.Build()
		if buildError != nil {
			return nil, buildError
		}
		commands = append(commands, command)
	}
	return commands, nil
}
