package keys_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/temirov/ghssh/internal/execshell"
	"github.com/temirov/ghssh/internal/keys"
)

const (
	testPrivateKeyPathConstant = "/home/tester/.ssh/id_ed25519_work"
	testCommentConstant        = "work@example.com"
)

type recordingKeygenExecutor struct {
	fileSystem      afero.Fs
	authorizedKey   string
	executionError  error
	recordedDetails []execshell.CommandDetails
}

func (executor *recordingKeygenExecutor) ExecuteSSHKeygen(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	if executor.executionError != nil {
		return execshell.ExecutionResult{}, executor.executionError
	}
	privateKeyPath := details.Arguments[3]
	if writeError := afero.WriteFile(executor.fileSystem, privateKeyPath, []byte("private"), 0o600); writeError != nil {
		return execshell.ExecutionResult{}, writeError
	}
	if writeError := afero.WriteFile(executor.fileSystem, privateKeyPath+".pub", []byte(executor.authorizedKey), 0o644); writeError != nil {
		return execshell.ExecutionResult{}, writeError
	}
	return execshell.ExecutionResult{}, nil
}

func TestNativeGeneratorWritesOpenSSHKeyPair(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	generator, creationError := keys.NewNativeGenerator(fileSystem)
	require.NoError(testInstance, creationError)

	keyPair, generationError := generator.Generate(context.Background(), keys.GenerateRequest{
		PrivateKeyPath: testPrivateKeyPathConstant,
		Comment:        testCommentConstant,
		Algorithm:      keys.AlgorithmEd25519,
	})
	require.NoError(testInstance, generationError)
	require.Equal(testInstance, testPrivateKeyPathConstant+".pub", keyPair.PublicKeyPath)
	require.True(testInstance, strings.HasPrefix(keyPair.AuthorizedKey, "ssh-ed25519 "))
	require.True(testInstance, strings.HasSuffix(keyPair.AuthorizedKey, " "+testCommentConstant+"\n"))

	privateKeyContent, readError := afero.ReadFile(fileSystem, testPrivateKeyPathConstant)
	require.NoError(testInstance, readError)
	signer, parseError := ssh.ParsePrivateKey(privateKeyContent)
	require.NoError(testInstance, parseError)

	privateKeyInfo, statError := fileSystem.Stat(testPrivateKeyPathConstant)
	require.NoError(testInstance, statError)
	require.Equal(testInstance, 0o600, int(privateKeyInfo.Mode().Perm()))

	publicKeyInfo, publicKeyError := keys.ReadPublicKey(fileSystem, keyPair.PublicKeyPath)
	require.NoError(testInstance, publicKeyError)
	require.Equal(testInstance, ssh.KeyAlgoED25519, publicKeyInfo.Type)
	require.Equal(testInstance, testCommentConstant, publicKeyInfo.Comment)
	require.Equal(testInstance, ssh.FingerprintSHA256(signer.PublicKey()), publicKeyInfo.Fingerprint)
	require.Equal(testInstance, keyPair.AuthorizedKey, publicKeyInfo.AuthorizedKey)
}

func TestNativeGeneratorRejectsInvalidRequests(testInstance *testing.T) {
	generator, creationError := keys.NewNativeGenerator(afero.NewMemMapFs())
	require.NoError(testInstance, creationError)

	testCases := []struct {
		name          string
		request       keys.GenerateRequest
		expectedError error
	}{
		{
			name:          "rsa_not_supported",
			request:       keys.GenerateRequest{PrivateKeyPath: testPrivateKeyPathConstant, Algorithm: keys.AlgorithmRSA},
			expectedError: keys.ErrUnsupportedAlgorithm,
		},
		{
			name:          "missing_path",
			request:       keys.GenerateRequest{Algorithm: keys.AlgorithmEd25519},
			expectedError: keys.ErrPrivateKeyPathRequired,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, generationError := generator.Generate(context.Background(), testCase.request)
			require.ErrorIs(testInstance, generationError, testCase.expectedError)
		})
	}

	_, nilFileSystemError := keys.NewNativeGenerator(nil)
	require.ErrorIs(testInstance, nilFileSystemError, keys.ErrFileSystemRequired)
}

func TestExternalGeneratorInvokesSSHKeygen(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	nativeGenerator, nativeCreationError := keys.NewNativeGenerator(afero.NewMemMapFs())
	require.NoError(testInstance, nativeCreationError)
	referenceKeyPair, referenceError := nativeGenerator.Generate(context.Background(), keys.GenerateRequest{PrivateKeyPath: "/reference/id", Comment: testCommentConstant})
	require.NoError(testInstance, referenceError)

	executor := &recordingKeygenExecutor{fileSystem: fileSystem, authorizedKey: referenceKeyPair.AuthorizedKey}
	generator, creationError := keys.NewExternalGenerator(executor, fileSystem)
	require.NoError(testInstance, creationError)

	keyPair, generationError := generator.Generate(context.Background(), keys.GenerateRequest{
		PrivateKeyPath: testPrivateKeyPathConstant,
		Comment:        testCommentConstant,
		Algorithm:      "RSA",
	})
	require.NoError(testInstance, generationError)
	require.Equal(testInstance, referenceKeyPair.AuthorizedKey, keyPair.AuthorizedKey)

	require.Len(testInstance, executor.recordedDetails, 1)
	require.Equal(testInstance,
		[]string{"-t", "rsa", "-f", testPrivateKeyPathConstant, "-C", testCommentConstant, "-N", "", "-q"},
		executor.recordedDetails[0].Arguments,
	)
}

func TestExternalGeneratorPropagatesFailures(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	executorFailure := errors.New("ssh-keygen exited with code 1")
	executor := &recordingKeygenExecutor{fileSystem: fileSystem, executionError: executorFailure}
	generator, creationError := keys.NewExternalGenerator(executor, fileSystem)
	require.NoError(testInstance, creationError)

	_, generationError := generator.Generate(context.Background(), keys.GenerateRequest{PrivateKeyPath: testPrivateKeyPathConstant})
	require.ErrorIs(testInstance, generationError, executorFailure)

	_, unsupportedError := generator.Generate(context.Background(), keys.GenerateRequest{PrivateKeyPath: testPrivateKeyPathConstant, Algorithm: "dsa"})
	require.ErrorIs(testInstance, unsupportedError, keys.ErrUnsupportedAlgorithm)
	require.Len(testInstance, executor.recordedDetails, 1)

	_, missingExecutorError := keys.NewExternalGenerator(nil, fileSystem)
	require.ErrorIs(testInstance, missingExecutorError, keys.ErrExecutorRequired)
}

func TestReadPublicKeyReportsMissingAndMalformedFiles(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	_, missingError := keys.ReadPublicKey(fileSystem, "/missing.pub")
	require.Error(testInstance, missingError)

	require.NoError(testInstance, afero.WriteFile(fileSystem, "/broken.pub", []byte("not a key"), 0o644))
	_, malformedError := keys.ReadPublicKey(fileSystem, "/broken.pub")
	require.Error(testInstance, malformedError)
}
