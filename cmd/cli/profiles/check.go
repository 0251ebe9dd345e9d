package profiles

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const (
	checkUseConstant                     = "check [label ...]"
	checkShortDescriptionConstant        = "Test SSH authentication to GitHub for each profile"
	checkLongDescriptionConstant         = "check opens a non-interactive SSH session to GitHub through each profile alias and reports the account GitHub recognizes. Without labels every profile is checked."
	checkEmptyMessageConstant            = "No profiles configured."
	checkAuthenticatedTemplateConstant   = "%s: authenticated as %s\n"
	checkFailedTemplateConstant          = "%s: not authenticated (exit %d) %s\n"
	checkExecutionFailedTemplateConstant = "%s: not checked: %v\n"
	lineBreakConstant                    = "\n"
)

// CheckCommandBuilder assembles the check command.
type CheckCommandBuilder struct {
	CommandDependencies
}

// Build constructs the check command.
func (builder *CheckCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   checkUseConstant,
		Short: checkShortDescriptionConstant,
		Long:  checkLongDescriptionConstant,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *CheckCommandBuilder) run(command *cobra.Command, arguments []string) error {
	service, _, serviceError := builder.buildService()
	if serviceError != nil {
		return serviceError
	}
	defer closeService(service, resolveLogger(builder.LoggerProvider))

	results, checkError := service.Check(command.Context(), arguments)
	if checkError != nil {
		return checkError
	}

	output := command.OutOrStdout()
	if len(results) == 0 {
		_, writeError := fmt.Fprintln(output, checkEmptyMessageConstant)
		return writeError
	}
	for _, result := range results {
		var line string
		switch {
		case result.Authenticated:
			line = fmt.Sprintf(checkAuthenticatedTemplateConstant, result.Profile.HostAlias, result.GitHubUser)
		case len(result.Output) == 0 && result.Failure != nil:
			line = fmt.Sprintf(checkExecutionFailedTemplateConstant, result.Profile.HostAlias, result.Failure)
		default:
			firstLine, _, _ := strings.Cut(result.Output, lineBreakConstant)
			line = fmt.Sprintf(checkFailedTemplateConstant, result.Profile.HostAlias, result.ExitCode, firstLine)
		}
		if _, writeError := fmt.Fprint(output, line); writeError != nil {
			return writeError
		}
	}
	return nil
}
