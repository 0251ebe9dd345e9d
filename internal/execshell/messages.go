package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitLSRemoteSubcommandNameConstant = "ls-remote"
	gitPushSubcommandNameConstant     = "push"
	gitInitSubcommandNameConstant     = "init"
	gitCommitSubcommandNameConstant   = "commit"
	gitDryRunFlagConstant             = "--dry-run"
	gitMessageFlagConstant            = "-m"
	gitConfigFlagConstant             = "-c"
	sshTestFlagConstant               = "-T"
	sshOptionFlagConstant             = "-o"
	sshConfigFileFlagConstant         = "-F"
	sshKeygenFileFlagConstant         = "-f"
	sshKeygenTypeFlagConstant         = "-t"
)

const (
	gitLSRemoteStartTemplateConstant              = "Checking read access to %s"
	gitLSRemoteSuccessTemplateConstant            = "Read access to %s confirmed"
	gitLSRemoteFailureTemplateConstant            = "No read access to %s (exit code %d%s)"
	gitLSRemoteExecutionFailureTemplateConstant   = "Unable to check read access to %s: %s"
	gitPushDryRunStartTemplateConstant            = "Rehearsing push of %s to %s"
	gitPushDryRunSuccessTemplateConstant          = "Rehearsed push of %s to %s"
	gitPushDryRunFailureTemplateConstant          = "Push rehearsal of %s to %s rejected (exit code %d%s)"
	gitPushDryRunExecutionFailureTemplateConstant = "Unable to rehearse push of %s to %s: %s"
	gitInitStartTemplateConstant                  = "Initializing scratch repository in %s"
	gitInitSuccessTemplateConstant                = "Initialized scratch repository in %s"
	gitInitFailureTemplateConstant                = "Failed to initialize scratch repository in %s (exit code %d%s)"
	gitInitExecutionFailureTemplateConstant       = "Unable to initialize scratch repository in %s: %s"
	gitCommitStartTemplateConstant                = "Creating commit in %s with message %q"
	gitCommitSuccessTemplateConstant              = "Created commit in %s with message %q"
	gitCommitFailureTemplateConstant              = "Failed to create commit in %s with message %q (exit code %d%s)"
	gitCommitExecutionFailureTemplateConstant     = "Unable to create commit in %s with message %q: %s"
	sshTestStartTemplateConstant                  = "Testing SSH authentication against %s"
	sshTestSuccessTemplateConstant                = "SSH session to %s closed cleanly"
	sshTestFailureTemplateConstant                = "SSH session to %s ended with exit code %d%s"
	sshTestExecutionFailureTemplateConstant       = "Unable to open SSH session to %s: %s"
	sshKeygenStartTemplateConstant                = "Generating %s key at %s"
	sshKeygenSuccessTemplateConstant              = "Generated %s key at %s"
	sshKeygenFailureTemplateConstant              = "Failed to generate %s key at %s (exit code %d%s)"
	sshKeygenExecutionFailureTemplateConstant     = "Unable to generate %s key at %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

// IsAccessQuery reports whether a non-zero exit of command answers an access question
// rather than signalling a fault: read probes, push rehearsals and ssh -T greetings.
func (formatter CommandMessageFormatter) IsAccessQuery(command ShellCommand) bool {
	switch command.Name {
	case CommandSSH:
		return containsArgument(command.Details.Arguments, sshTestFlagConstant)
	case CommandGit:
		arguments := formatter.stripGitConfigOverrides(command.Details.Arguments)
		if len(arguments) == 0 {
			return false
		}
		switch strings.TrimSpace(arguments[0]) {
		case gitLSRemoteSubcommandNameConstant:
			return true
		case gitPushSubcommandNameConstant:
			return containsArgument(arguments, gitDryRunFlagConstant)
		}
	}
	return false
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandSSH:
		return formatter.describeSSHMessage(command, result, failure, stage)
	case CommandSSHKeygen:
		return formatter.describeSSHKeygenMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := formatter.stripGitConfigOverrides(command.Details.Arguments)
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch strings.TrimSpace(arguments[0]) {
	case gitLSRemoteSubcommandNameConstant:
		return formatter.describeGitLSRemoteMessage(arguments, result, failure, stage)
	case gitPushSubcommandNameConstant:
		if !containsArgument(arguments, gitDryRunFlagConstant) {
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
		return formatter.describeGitPushDryRunMessage(arguments, result, failure, stage)
	case gitInitSubcommandNameConstant:
		return formatter.describeGitInitMessage(command, arguments, result, failure, stage)
	case gitCommitSubcommandNameConstant:
		return formatter.describeGitCommitMessage(command, arguments, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitLSRemoteMessage(arguments []string, result ExecutionResult, failure error, stage messageStage) string {
	remote := formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments[1:]))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitLSRemoteStartTemplateConstant, remote)
	case messageStageSuccess:
		return fmt.Sprintf(gitLSRemoteSuccessTemplateConstant, remote)
	case messageStageFailure:
		return fmt.Sprintf(gitLSRemoteFailureTemplateConstant, remote, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitLSRemoteExecutionFailureTemplateConstant, remote, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitPushDryRunMessage(arguments []string, result ExecutionResult, failure error, stage messageStage) string {
	positional := formatter.positionalArguments(arguments[1:])
	remote := formatter.ensureValue(formatter.argumentAtIndex(positional, 0))
	reference := formatter.ensureValue(formatter.argumentAtIndex(positional, 1))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitPushDryRunStartTemplateConstant, reference, remote)
	case messageStageSuccess:
		return fmt.Sprintf(gitPushDryRunSuccessTemplateConstant, reference, remote)
	case messageStageFailure:
		return fmt.Sprintf(gitPushDryRunFailureTemplateConstant, reference, remote, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitPushDryRunExecutionFailureTemplateConstant, reference, remote, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitInitMessage(command ShellCommand, arguments []string, result ExecutionResult, failure error, stage messageStage) string {
	target := formatter.extractFirstNonFlagArgument(arguments[1:])
	if len(target) == 0 {
		target = formatter.describeWorkingDirectory(command)
	}
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitInitStartTemplateConstant, target)
	case messageStageSuccess:
		return fmt.Sprintf(gitInitSuccessTemplateConstant, target)
	case messageStageFailure:
		return fmt.Sprintf(gitInitFailureTemplateConstant, target, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitInitExecutionFailureTemplateConstant, target, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitCommitMessage(command ShellCommand, arguments []string, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	commitMessage := findFlagValue(arguments, gitMessageFlagConstant)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCommitStartTemplateConstant, workingDirectory, commitMessage)
	case messageStageSuccess:
		return fmt.Sprintf(gitCommitSuccessTemplateConstant, workingDirectory, commitMessage)
	case messageStageFailure:
		return fmt.Sprintf(gitCommitFailureTemplateConstant, workingDirectory, commitMessage, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitCommitExecutionFailureTemplateConstant, workingDirectory, commitMessage, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeSSHMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if !containsArgument(arguments, sshTestFlagConstant) {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	destination := formatter.ensureValue(formatter.extractSSHDestination(arguments))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(sshTestStartTemplateConstant, destination)
	case messageStageSuccess:
		return fmt.Sprintf(sshTestSuccessTemplateConstant, destination)
	case messageStageFailure:
		return fmt.Sprintf(sshTestFailureTemplateConstant, destination, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(sshTestExecutionFailureTemplateConstant, destination, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeSSHKeygenMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	keyPath := findFlagValue(arguments, sshKeygenFileFlagConstant)
	if len(keyPath) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	algorithm := formatter.ensureValue(findFlagValue(arguments, sshKeygenTypeFlagConstant))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(sshKeygenStartTemplateConstant, algorithm, keyPath)
	case messageStageSuccess:
		return fmt.Sprintf(sshKeygenSuccessTemplateConstant, algorithm, keyPath)
	case messageStageFailure:
		return fmt.Sprintf(sshKeygenFailureTemplateConstant, algorithm, keyPath, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(sshKeygenExecutionFailureTemplateConstant, algorithm, keyPath, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) stripGitConfigOverrides(arguments []string) []string {
	remaining := arguments
	for len(remaining) >= 2 && strings.TrimSpace(remaining[0]) == gitConfigFlagConstant {
		remaining = remaining[2:]
	}
	return remaining
}

func (formatter CommandMessageFormatter) positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		positional = append(positional, trimmed)
	}
	return positional
}

func (formatter CommandMessageFormatter) extractFirstNonFlagArgument(arguments []string) string {
	return formatter.argumentAtIndex(formatter.positionalArguments(arguments), 0)
}

func (formatter CommandMessageFormatter) extractSSHDestination(arguments []string) string {
	for index := 0; index < len(arguments); index++ {
		trimmed := strings.TrimSpace(arguments[index])
		if trimmed == sshOptionFlagConstant || trimmed == sshConfigFileFlagConstant {
			index++
			continue
		}
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		return trimmed
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return arguments[index]
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments)-1; index++ {
		if strings.TrimSpace(arguments[index]) == flag {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}
