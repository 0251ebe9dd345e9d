package keys

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/crypto/ssh"

	"github.com/temirov/ghssh/internal/execshell"
)

const (
	// AlgorithmEd25519 selects ed25519 keys.
	AlgorithmEd25519 = "ed25519"
	// AlgorithmECDSA selects ECDSA keys.
	AlgorithmECDSA = "ecdsa"
	// AlgorithmRSA selects RSA keys.
	AlgorithmRSA = "rsa"

	publicKeySuffixConstant               = ".pub"
	keyDirectoryPermissionsConstant       = 0o700
	privateKeyPermissionsConstant         = 0o600
	publicKeyPermissionsConstant          = 0o644
	authorizedKeyCommentTemplateConstant  = "%s %s\n"
	unsupportedAlgorithmTemplateConstant  = "%w: %s"
	unsupportedAlgorithmMessageConstant   = "unsupported key algorithm"
	privateKeyPathRequiredMessageConstant = "private key path required"
	fileSystemRequiredMessageConstant     = "key file system required"
	executorRequiredMessageConstant       = "ssh-keygen executor required"
	keyGenerationErrorTemplateConstant    = "generate %s key: %w"
	keyEncodingErrorTemplateConstant      = "encode key %s: %w"
	keyDirectoryErrorTemplateConstant     = "create key directory %s: %w"
	keyWriteErrorTemplateConstant         = "write key file %s: %w"
	sshKeygenTypeFlagConstant             = "-t"
	sshKeygenFileFlagConstant             = "-f"
	sshKeygenCommentFlagConstant          = "-C"
	sshKeygenPassphraseFlagConstant       = "-N"
	sshKeygenQuietFlagConstant            = "-q"
	emptyPassphraseConstant               = ""
)

// ErrUnsupportedAlgorithm indicates the generator cannot produce the requested key type.
var ErrUnsupportedAlgorithm = errors.New(unsupportedAlgorithmMessageConstant)

// ErrPrivateKeyPathRequired indicates an empty destination path.
var ErrPrivateKeyPathRequired = errors.New(privateKeyPathRequiredMessageConstant)

// ErrFileSystemRequired indicates a generator was created without a file system.
var ErrFileSystemRequired = errors.New(fileSystemRequiredMessageConstant)

// ErrExecutorRequired indicates an ExternalGenerator was created without an executor.
var ErrExecutorRequired = errors.New(executorRequiredMessageConstant)

// GenerateRequest describes the key pair to create.
type GenerateRequest struct {
	PrivateKeyPath string
	Comment        string
	Algorithm      string
}

// KeyPair describes a generated key pair.
type KeyPair struct {
	PrivateKeyPath string
	PublicKeyPath  string
	AuthorizedKey  string
}

// Generator creates key pairs on disk.
type Generator interface {
	Generate(executionContext context.Context, request GenerateRequest) (KeyPair, error)
}

// SSHKeygenExecutor runs ssh-keygen.
type SSHKeygenExecutor interface {
	ExecuteSSHKeygen(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// PublicKeyPath returns the conventional public key location for a private key.
func PublicKeyPath(privateKeyPath string) string {
	return privateKeyPath + publicKeySuffixConstant
}

// NativeGenerator writes ed25519 key pairs without external tools.
type NativeGenerator struct {
	fileSystem   afero.Fs
	randomSource io.Reader
}

// NewNativeGenerator constructs a NativeGenerator writing through fileSystem.
func NewNativeGenerator(fileSystem afero.Fs) (*NativeGenerator, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemRequired
	}
	return &NativeGenerator{fileSystem: fileSystem, randomSource: rand.Reader}, nil
}

// Generate creates an OpenSSH ed25519 key pair at request.PrivateKeyPath.
func (generator *NativeGenerator) Generate(executionContext context.Context, request GenerateRequest) (KeyPair, error) {
	if validationError := validateRequest(request, AlgorithmEd25519); validationError != nil {
		return KeyPair{}, validationError
	}

	publicKey, privateKey, generationError := ed25519.GenerateKey(generator.randomSource)
	if generationError != nil {
		return KeyPair{}, fmt.Errorf(keyGenerationErrorTemplateConstant, AlgorithmEd25519, generationError)
	}

	privateKeyBlock, marshalError := ssh.MarshalPrivateKey(privateKey, request.Comment)
	if marshalError != nil {
		return KeyPair{}, fmt.Errorf(keyEncodingErrorTemplateConstant, request.PrivateKeyPath, marshalError)
	}

	sshPublicKey, publicKeyError := ssh.NewPublicKey(publicKey)
	if publicKeyError != nil {
		return KeyPair{}, fmt.Errorf(keyEncodingErrorTemplateConstant, request.PrivateKeyPath, publicKeyError)
	}
	authorizedKey := formatAuthorizedKey(sshPublicKey, request.Comment)

	keyPair := KeyPair{
		PrivateKeyPath: request.PrivateKeyPath,
		PublicKeyPath:  PublicKeyPath(request.PrivateKeyPath),
		AuthorizedKey:  authorizedKey,
	}

	if directoryError := ensureKeyDirectory(generator.fileSystem, request.PrivateKeyPath); directoryError != nil {
		return KeyPair{}, directoryError
	}
	if writeError := afero.WriteFile(generator.fileSystem, keyPair.PrivateKeyPath, pem.EncodeToMemory(privateKeyBlock), privateKeyPermissionsConstant); writeError != nil {
		return KeyPair{}, fmt.Errorf(keyWriteErrorTemplateConstant, keyPair.PrivateKeyPath, writeError)
	}
	if writeError := afero.WriteFile(generator.fileSystem, keyPair.PublicKeyPath, []byte(authorizedKey), publicKeyPermissionsConstant); writeError != nil {
		return KeyPair{}, fmt.Errorf(keyWriteErrorTemplateConstant, keyPair.PublicKeyPath, writeError)
	}

	return keyPair, nil
}

// ExternalGenerator creates key pairs with ssh-keygen.
type ExternalGenerator struct {
	executor   SSHKeygenExecutor
	fileSystem afero.Fs
}

// NewExternalGenerator constructs an ExternalGenerator; fileSystem must see the files ssh-keygen writes.
func NewExternalGenerator(executor SSHKeygenExecutor, fileSystem afero.Fs) (*ExternalGenerator, error) {
	if executor == nil {
		return nil, ErrExecutorRequired
	}
	if fileSystem == nil {
		return nil, ErrFileSystemRequired
	}
	return &ExternalGenerator{executor: executor, fileSystem: fileSystem}, nil
}

// Generate runs ssh-keygen with an empty passphrase and returns the resulting public key.
func (generator *ExternalGenerator) Generate(executionContext context.Context, request GenerateRequest) (KeyPair, error) {
	if validationError := validateRequest(request, AlgorithmEd25519, AlgorithmECDSA, AlgorithmRSA); validationError != nil {
		return KeyPair{}, validationError
	}
	if directoryError := ensureKeyDirectory(generator.fileSystem, request.PrivateKeyPath); directoryError != nil {
		return KeyPair{}, directoryError
	}

	_, executionError := generator.executor.ExecuteSSHKeygen(executionContext, execshell.CommandDetails{
		Arguments: []string{
			sshKeygenTypeFlagConstant, normalizeAlgorithm(request.Algorithm),
			sshKeygenFileFlagConstant, request.PrivateKeyPath,
			sshKeygenCommentFlagConstant, request.Comment,
			sshKeygenPassphraseFlagConstant, emptyPassphraseConstant,
			sshKeygenQuietFlagConstant,
		},
	})
	if executionError != nil {
		return KeyPair{}, fmt.Errorf(keyGenerationErrorTemplateConstant, normalizeAlgorithm(request.Algorithm), executionError)
	}

	publicKeyInfo, readError := ReadPublicKey(generator.fileSystem, PublicKeyPath(request.PrivateKeyPath))
	if readError != nil {
		return KeyPair{}, readError
	}

	return KeyPair{
		PrivateKeyPath: request.PrivateKeyPath,
		PublicKeyPath:  PublicKeyPath(request.PrivateKeyPath),
		AuthorizedKey:  publicKeyInfo.AuthorizedKey,
	}, nil
}

func validateRequest(request GenerateRequest, supportedAlgorithms ...string) error {
	if len(strings.TrimSpace(request.PrivateKeyPath)) == 0 {
		return ErrPrivateKeyPathRequired
	}
	requestedAlgorithm := normalizeAlgorithm(request.Algorithm)
	for _, supportedAlgorithm := range supportedAlgorithms {
		if requestedAlgorithm == supportedAlgorithm {
			return nil
		}
	}
	return fmt.Errorf(unsupportedAlgorithmTemplateConstant, ErrUnsupportedAlgorithm, request.Algorithm)
}

func normalizeAlgorithm(algorithm string) string {
	normalizedAlgorithm := strings.ToLower(strings.TrimSpace(algorithm))
	if len(normalizedAlgorithm) == 0 {
		return AlgorithmEd25519
	}
	return normalizedAlgorithm
}

func ensureKeyDirectory(fileSystem afero.Fs, privateKeyPath string) error {
	keyDirectory := filepath.Dir(privateKeyPath)
	if mkdirError := fileSystem.MkdirAll(keyDirectory, keyDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(keyDirectoryErrorTemplateConstant, keyDirectory, mkdirError)
	}
	return nil
}

func formatAuthorizedKey(publicKey ssh.PublicKey, comment string) string {
	authorizedKey := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(publicKey)))
	if len(strings.TrimSpace(comment)) == 0 {
		return authorizedKey + "\n"
	}
	return fmt.Sprintf(authorizedKeyCommentTemplateConstant, authorizedKey, comment)
}
