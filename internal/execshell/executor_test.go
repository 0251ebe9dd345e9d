package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/ghssh/internal/execshell"
)

const (
	testRemoteConstant              = "git@github-work:octo/demo.git"
	testStandardErrorOutputConstant = "ERROR: Permission to octo/demo.git denied to work."
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

func TestNewShellExecutorValidatesDependencies(testInstance *testing.T) {
	testCases := []struct {
		name        string
		logger      *zap.Logger
		runner      execshell.CommandRunner
		expectError error
	}{
		{name: "missing_logger", runner: &recordingCommandRunner{}, expectError: execshell.ErrLoggerNotConfigured},
		{name: "missing_runner", logger: zap.NewNop(), expectError: execshell.ErrCommandRunnerNotConfigured},
		{name: "complete", logger: zap.NewNop(), runner: &recordingCommandRunner{}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner)
			if testCase.expectError != nil {
				require.ErrorIs(testInstance, creationError, testCase.expectError)
				require.Nil(testInstance, executor)
				return
			}
			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, executor)
		})
	}
}

func TestShellExecutorExecuteLogsProbeLifecycle(testInstance *testing.T) {
	testCases := []struct {
		name             string
		runnerResult     execshell.ExecutionResult
		runnerError      error
		expectErrorType  any
		expectedMessages []string
	}{
		{
			name:         "read_granted",
			runnerResult: execshell.ExecutionResult{StandardOutput: "4b825dc642cb6eb9a060e54bf8d69288fbee4904\tHEAD"},
			expectedMessages: []string{
				"Checking read access to " + testRemoteConstant,
				"Read access to " + testRemoteConstant + " confirmed",
			},
		},
		{
			name:            "read_denied",
			runnerResult:    execshell.ExecutionResult{StandardError: testStandardErrorOutputConstant, ExitCode: 128},
			expectErrorType: execshell.CommandFailedError{},
			expectedMessages: []string{
				"Checking read access to " + testRemoteConstant,
				"No read access to " + testRemoteConstant + " (exit code 128: " + testStandardErrorOutputConstant + ")",
			},
		},
		{
			name:            "git_missing",
			runnerError:     errors.New("executable file not found in $PATH"),
			expectErrorType: execshell.CommandExecutionError{},
			expectedMessages: []string{
				"Checking read access to " + testRemoteConstant,
				"Unable to check read access to " + testRemoteConstant + ": executable file not found in $PATH",
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observerLogs := observer.New(zap.DebugLevel)
			recordingRunner := &recordingCommandRunner{
				executionResult: testCase.runnerResult,
				executionError:  testCase.runnerError,
			}

			shellExecutor, creationError := execshell.NewShellExecutor(zap.New(observerCore), recordingRunner)
			require.NoError(testInstance, creationError)

			executionResult, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"ls-remote", testRemoteConstant, "HEAD"}})
			if testCase.expectErrorType != nil {
				require.IsType(testInstance, testCase.expectErrorType, executionError)
				require.Empty(testInstance, executionResult.StandardOutput)
			} else {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.runnerResult.StandardOutput, executionResult.StandardOutput)
			}

			loggedMessages := make([]string, 0, observerLogs.Len())
			for _, entry := range observerLogs.All() {
				loggedMessages = append(loggedMessages, entry.Message)
			}
			require.Equal(testInstance, testCase.expectedMessages, loggedMessages)
		})
	}
}

func TestShellExecutorWrappersSetCommandNames(testInstance *testing.T) {
	testCases := []struct {
		name            string
		invoke          func(executor *execshell.ShellExecutor) error
		expectedCommand execshell.CommandName
	}{
		{
			name: "git",
			invoke: func(executor *execshell.ShellExecutor) error {
				_, executionError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{})
				return executionError
			},
			expectedCommand: execshell.CommandGit,
		},
		{
			name: "ssh",
			invoke: func(executor *execshell.ShellExecutor) error {
				_, executionError := executor.ExecuteSSH(context.Background(), execshell.CommandDetails{})
				return executionError
			},
			expectedCommand: execshell.CommandSSH,
		},
		{
			name: "ssh_keygen",
			invoke: func(executor *execshell.ShellExecutor) error {
				_, executionError := executor.ExecuteSSHKeygen(context.Background(), execshell.CommandDetails{})
				return executionError
			},
			expectedCommand: execshell.CommandSSHKeygen,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			recordingRunner := &recordingCommandRunner{executionResult: execshell.ExecutionResult{ExitCode: 1}}
			executor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner)
			require.NoError(testInstance, creationError)

			require.Error(testInstance, testCase.invoke(executor))
			require.Len(testInstance, recordingRunner.recordedCommands, 1)
			require.Equal(testInstance, testCase.expectedCommand, recordingRunner.recordedCommands[0].Name)
		})
	}
}

type recordingEventObserver struct {
	startedCommands   []execshell.ShellCommand
	completedResults  []execshell.ExecutionResult
	executionFailures []error
}

func (observer *recordingEventObserver) CommandStarted(command execshell.ShellCommand) {
	observer.startedCommands = append(observer.startedCommands, command)
}

func (observer *recordingEventObserver) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	observer.completedResults = append(observer.completedResults, result)
}

func (observer *recordingEventObserver) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	observer.executionFailures = append(observer.executionFailures, failure)
}

func TestShellExecutorNotifiesObserver(testInstance *testing.T) {
	eventObserver := &recordingEventObserver{}
	recordingRunner := &recordingCommandRunner{
		executionResult: execshell.ExecutionResult{StandardError: testStandardErrorOutputConstant, ExitCode: 128},
	}

	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner, execshell.WithCommandEventObserver(eventObserver))
	require.NoError(testInstance, creationError)

	_, executionError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"ls-remote", testRemoteConstant, "HEAD"}})
	require.Error(testInstance, executionError)

	require.Len(testInstance, eventObserver.startedCommands, 1)
	require.Len(testInstance, eventObserver.completedResults, 1)
	require.Equal(testInstance, 128, eventObserver.completedResults[0].ExitCode)
	require.Empty(testInstance, eventObserver.executionFailures)
}

func TestResultFromErrorRecoversFailedResult(testInstance *testing.T) {
	recordingRunner := &recordingCommandRunner{
		executionResult: execshell.ExecutionResult{StandardOutput: "out", StandardError: testStandardErrorOutputConstant, ExitCode: 1},
	}
	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner)
	require.NoError(testInstance, creationError)

	_, executionError := executor.ExecuteSSH(context.Background(), execshell.CommandDetails{})
	recoveredResult, recovered := execshell.ResultFromError(executionError)
	require.True(testInstance, recovered)
	require.Equal(testInstance, 1, recoveredResult.ExitCode)
	require.Equal(testInstance, "out\n"+testStandardErrorOutputConstant, recoveredResult.CombinedOutput())
	require.Contains(testInstance, executionError.Error(), testStandardErrorOutputConstant)

	_, recovered = execshell.ResultFromError(errors.New("other"))
	require.False(testInstance, recovered)
}

func TestCommandExecutionErrorUnwrapsCause(testInstance *testing.T) {
	runnerFailure := errors.New("exec: not found")
	recordingRunner := &recordingCommandRunner{executionError: runnerFailure}
	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner)
	require.NoError(testInstance, creationError)

	_, executionError := executor.ExecuteSSHKeygen(context.Background(), execshell.CommandDetails{})
	require.ErrorIs(testInstance, executionError, runnerFailure)
}
