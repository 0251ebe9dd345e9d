package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/temirov/ghssh/internal/execshell"
)

const (
	gitLSRemoteSubcommandConstant            = "ls-remote"
	gitHeadReferenceConstant                 = "HEAD"
	gitPushSubcommandConstant                = "push"
	gitDryRunFlagConstant                    = "--dry-run"
	gitInitSubcommandConstant                = "init"
	gitQuietFlagConstant                     = "-q"
	gitConfigFlagConstant                    = "-c"
	gitCommitSubcommandConstant              = "commit"
	gitAllowEmptyFlagConstant                = "--allow-empty"
	gitMessageFlagConstant                   = "-m"
	scratchUserNameSettingConstant           = "user.name=ghssh"
	scratchUserEmailSettingConstant          = "user.email=ghssh@localhost"
	scratchSigningSettingConstant            = "commit.gpgsign=false"
	scratchCommitMessageConstant             = "ghssh access probe"
	scratchDirectoryPatternConstant          = "ghssh-probe-"
	probeRefspecTemplateConstant             = "HEAD:refs/heads/%s%s"
	gitTerminalPromptEnvironmentNameConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValueConstant   = "0"
	gitSSHCommandEnvironmentNameConstant     = "GIT_SSH_COMMAND"
	gitSSHCommandTemplateConstant            = "ssh -F '%s' -o BatchMode=yes"
	gitSSHCommandWithoutConfigConstant       = "ssh -o BatchMode=yes"
	scratchRepositoryErrorTemplateConstant   = "prepare scratch repository: %w"
	gitExecutorMissingMessageConstant        = "git executor not configured"
	fileSystemMissingMessageConstant         = "file system not configured"
	lineSeparatorConstant                    = "\n"
)

// ErrGitExecutorNotConfigured indicates the prober was created without a git executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the prober was created without a file system.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// GitExecutor runs git.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// GitRemoteProberDependencies enumerates collaborators of GitRemoteProber.
type GitRemoteProberDependencies struct {
	GitExecutor   GitExecutor
	FileSystem    afero.Fs
	Configuration Configuration
	SSHConfigPath string
	BranchSuffix  func() string
}

// GitRemoteProber answers read and write questions with git ls-remote and git push --dry-run.
type GitRemoteProber struct {
	executor         GitExecutor
	fileSystem       afero.Fs
	configuration    Configuration
	environment      map[string]string
	branchSuffix     func() string
	scratchPrepared  bool
	scratchDirectory string
	scratchError     error
}

// NewGitRemoteProber constructs a GitRemoteProber. The scratch repository is created on the first write probe.
func NewGitRemoteProber(dependencies GitRemoteProberDependencies) (*GitRemoteProber, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	branchSuffix := dependencies.BranchSuffix
	if branchSuffix == nil {
		branchSuffix = uuid.NewString
	}
	sshCommand := gitSSHCommandWithoutConfigConstant
	if trimmedPath := strings.TrimSpace(dependencies.SSHConfigPath); len(trimmedPath) > 0 {
		sshCommand = fmt.Sprintf(gitSSHCommandTemplateConstant, trimmedPath)
	}
	return &GitRemoteProber{
		executor:      dependencies.GitExecutor,
		fileSystem:    dependencies.FileSystem,
		configuration: dependencies.Configuration.Sanitize(),
		environment: map[string]string{
			gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptDisabledValueConstant,
			gitSSHCommandEnvironmentNameConstant:     sshCommand,
		},
		branchSuffix: branchSuffix,
	}, nil
}

// ProbeRead lists the remote HEAD; a zero exit grants read access.
func (prober *GitRemoteProber) ProbeRead(executionContext context.Context, remote string) ProbeOutcome {
	probeContext, cancel := prober.probeContext(executionContext)
	defer cancel()

	executionResult, executionError := prober.executor.ExecuteGit(probeContext, execshell.CommandDetails{
		Arguments:            []string{gitLSRemoteSubcommandConstant, remote, gitHeadReferenceConstant},
		EnvironmentVariables: prober.environment,
	})
	outcome := outcomeFromExecution(executionResult, executionError)
	outcome.Granted = executionError == nil
	return outcome
}

// ProbeWrite rehearses a push of a disposable branch and scans the output for write signals.
func (prober *GitRemoteProber) ProbeWrite(executionContext context.Context, remote string) ProbeOutcome {
	scratchDirectory, scratchError := prober.ensureScratchRepository(executionContext)
	if scratchError != nil {
		return ProbeOutcome{ExitCode: -1, Failure: scratchError}
	}

	probeContext, cancel := prober.probeContext(executionContext)
	defer cancel()

	refspec := fmt.Sprintf(probeRefspecTemplateConstant, prober.configuration.BranchPrefix, prober.branchSuffix())
	executionResult, executionError := prober.executor.ExecuteGit(probeContext, execshell.CommandDetails{
		Arguments:            []string{gitPushSubcommandConstant, gitDryRunFlagConstant, remote, refspec},
		WorkingDirectory:     scratchDirectory,
		EnvironmentVariables: prober.environment,
	})
	outcome := outcomeFromExecution(executionResult, executionError)
	outcome.Granted = ContainsWriteSignal(outcome.Output, prober.configuration)
	return outcome
}

// Close removes the scratch repository.
func (prober *GitRemoteProber) Close() error {
	if len(prober.scratchDirectory) == 0 {
		return nil
	}
	removeError := prober.fileSystem.RemoveAll(prober.scratchDirectory)
	prober.scratchDirectory = ""
	prober.scratchPrepared = false
	return removeError
}

// ContainsWriteSignal reports whether dry-run push output carries any configured write signal.
func ContainsWriteSignal(output string, configuration Configuration) bool {
	for _, signal := range configuration.WriteSignals {
		if len(signal) > 0 && strings.Contains(output, signal) {
			return true
		}
	}
	for _, line := range strings.Split(output, lineSeparatorConstant) {
		trimmedLine := strings.TrimSpace(line)
		for _, linePrefix := range configuration.WriteLinePrefixes {
			if len(linePrefix) > 0 && strings.HasPrefix(trimmedLine, linePrefix) {
				return true
			}
		}
	}
	return false
}

func (prober *GitRemoteProber) ensureScratchRepository(executionContext context.Context) (string, error) {
	if prober.scratchPrepared {
		return prober.scratchDirectory, prober.scratchError
	}
	prober.scratchPrepared = true

	scratchDirectory, directoryError := afero.TempDir(prober.fileSystem, "", scratchDirectoryPatternConstant)
	if directoryError != nil {
		prober.scratchError = fmt.Errorf(scratchRepositoryErrorTemplateConstant, directoryError)
		return "", prober.scratchError
	}
	prober.scratchDirectory = scratchDirectory

	scratchCommands := [][]string{
		{gitInitSubcommandConstant, gitQuietFlagConstant},
		{
			gitConfigFlagConstant, scratchUserNameSettingConstant,
			gitConfigFlagConstant, scratchUserEmailSettingConstant,
			gitConfigFlagConstant, scratchSigningSettingConstant,
			gitCommitSubcommandConstant, gitAllowEmptyFlagConstant, gitQuietFlagConstant,
			gitMessageFlagConstant, scratchCommitMessageConstant,
		},
	}
	for _, arguments := range scratchCommands {
		_, executionError := prober.executor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:            arguments,
			WorkingDirectory:     scratchDirectory,
			EnvironmentVariables: prober.environment,
		})
		if executionError != nil {
			prober.scratchError = fmt.Errorf(scratchRepositoryErrorTemplateConstant, executionError)
			return "", prober.scratchError
		}
	}
	return scratchDirectory, nil
}

func (prober *GitRemoteProber) probeContext(executionContext context.Context) (context.Context, context.CancelFunc) {
	if prober.configuration.Timeout > 0 {
		return context.WithTimeout(executionContext, prober.configuration.Timeout)
	}
	return context.WithCancel(executionContext)
}

func outcomeFromExecution(executionResult execshell.ExecutionResult, executionError error) ProbeOutcome {
	if executionError == nil {
		return ProbeOutcome{ExitCode: executionResult.ExitCode, Output: strings.TrimSpace(executionResult.CombinedOutput())}
	}
	if failedResult, exited := execshell.ResultFromError(executionError); exited {
		return ProbeOutcome{ExitCode: failedResult.ExitCode, Output: strings.TrimSpace(failedResult.CombinedOutput()), Failure: executionError}
	}
	return ProbeOutcome{ExitCode: -1, Failure: executionError}
}
