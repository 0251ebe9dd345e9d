package keys

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/crypto/ssh"
)

const (
	publicKeyReadErrorTemplateConstant  = "read public key %s: %w"
	publicKeyParseErrorTemplateConstant = "parse public key %s: %w"
)

// PublicKeyInfo summarizes an OpenSSH public key.
type PublicKeyInfo struct {
	Type          string
	Fingerprint   string
	Comment       string
	AuthorizedKey string
	Key           ssh.PublicKey
}

// ReadPublicKey loads and parses an authorized_keys formatted public key file.
func ReadPublicKey(fileSystem afero.Fs, publicKeyPath string) (PublicKeyInfo, error) {
	content, readError := afero.ReadFile(fileSystem, publicKeyPath)
	if readError != nil {
		return PublicKeyInfo{}, fmt.Errorf(publicKeyReadErrorTemplateConstant, publicKeyPath, readError)
	}
	return ParsePublicKey(content, publicKeyPath)
}

// ParsePublicKey parses authorized_keys formatted content; source names the content in errors.
func ParsePublicKey(content []byte, source string) (PublicKeyInfo, error) {
	publicKey, comment, _, _, parseError := ssh.ParseAuthorizedKey(content)
	if parseError != nil {
		return PublicKeyInfo{}, fmt.Errorf(publicKeyParseErrorTemplateConstant, source, parseError)
	}
	return PublicKeyInfo{
		Type:          publicKey.Type(),
		Fingerprint:   ssh.FingerprintSHA256(publicKey),
		Comment:       comment,
		AuthorizedKey: strings.TrimSpace(string(content)) + "\n",
		Key:           publicKey,
	}, nil
}
