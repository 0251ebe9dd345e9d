package keyagent

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"github.com/temirov/ghssh/internal/keys"
)

const (
	// AuthSocketEnvironmentVariable names the environment variable holding the agent socket.
	AuthSocketEnvironmentVariable = "SSH_AUTH_SOCK"

	unixNetworkConstant                  = "unix"
	agentUnavailableMessageConstant      = "ssh agent unavailable"
	agentDialErrorTemplateConstant       = "%w: dial %s: %v"
	agentNoSocketTemplateConstant        = "%w: %s is not set"
	privateKeyReadErrorTemplateConstant  = "read private key %s: %w"
	privateKeyParseErrorTemplateConstant = "parse private key %s: %w"
	agentAddErrorTemplateConstant        = "add %s to agent: %w"
	agentRemoveErrorTemplateConstant     = "remove %s from agent: %w"
	agentRemoveAllErrorTemplateConstant  = "remove all identities from agent: %w"
	agentListErrorTemplateConstant       = "list agent identities: %w"
	agentRequiredMessageConstant         = "agent client required"
)

// ErrAgentUnavailable indicates no agent socket is configured or reachable.
var ErrAgentUnavailable = errors.New(agentUnavailableMessageConstant)

// ErrAgentRequired indicates NewSession received a nil agent client.
var ErrAgentRequired = errors.New(agentRequiredMessageConstant)

// Identity is a key currently held by the agent.
type Identity struct {
	Type          string
	Fingerprint   string
	Comment       string
	AuthorizedKey string
}

// Session is an open connection to a credential agent.
type Session interface {
	Add(privateKeyPath string, comment string) error
	Remove(publicKeyPath string) error
	RemoveAll() error
	List() ([]Identity, error)
	Close() error
}

// SocketSession implements Session over golang.org/x/crypto/ssh/agent.
type SocketSession struct {
	agentClient agent.Agent
	connection  io.Closer
	fileSystem  afero.Fs
}

// Dial connects to the agent at socketPath, falling back to SSH_AUTH_SOCK when socketPath is empty.
func Dial(fileSystem afero.Fs, socketPath string) (*SocketSession, error) {
	resolvedSocketPath := strings.TrimSpace(socketPath)
	if len(resolvedSocketPath) == 0 {
		resolvedSocketPath = strings.TrimSpace(os.Getenv(AuthSocketEnvironmentVariable))
	}
	if len(resolvedSocketPath) == 0 {
		return nil, fmt.Errorf(agentNoSocketTemplateConstant, ErrAgentUnavailable, AuthSocketEnvironmentVariable)
	}

	connection, dialError := net.Dial(unixNetworkConstant, resolvedSocketPath)
	if dialError != nil {
		return nil, fmt.Errorf(agentDialErrorTemplateConstant, ErrAgentUnavailable, resolvedSocketPath, dialError)
	}
	return NewSession(fileSystem, agent.NewClient(connection), connection)
}

// NewSession wraps an existing agent client; connection may be nil.
func NewSession(fileSystem afero.Fs, agentClient agent.Agent, connection io.Closer) (*SocketSession, error) {
	if agentClient == nil {
		return nil, ErrAgentRequired
	}
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &SocketSession{agentClient: agentClient, connection: connection, fileSystem: fileSystem}, nil
}

// Add loads an unencrypted private key file into the agent.
func (session *SocketSession) Add(privateKeyPath string, comment string) error {
	privateKeyContent, readError := afero.ReadFile(session.fileSystem, privateKeyPath)
	if readError != nil {
		return fmt.Errorf(privateKeyReadErrorTemplateConstant, privateKeyPath, readError)
	}
	rawPrivateKey, parseError := ssh.ParseRawPrivateKey(privateKeyContent)
	if parseError != nil {
		return fmt.Errorf(privateKeyParseErrorTemplateConstant, privateKeyPath, parseError)
	}
	if addError := session.agentClient.Add(agent.AddedKey{PrivateKey: rawPrivateKey, Comment: comment}); addError != nil {
		return fmt.Errorf(agentAddErrorTemplateConstant, privateKeyPath, addError)
	}
	return nil
}

// Remove drops the identity matching the public key file.
func (session *SocketSession) Remove(publicKeyPath string) error {
	publicKeyInfo, readError := keys.ReadPublicKey(session.fileSystem, publicKeyPath)
	if readError != nil {
		return readError
	}
	if removeError := session.agentClient.Remove(publicKeyInfo.Key); removeError != nil {
		return fmt.Errorf(agentRemoveErrorTemplateConstant, publicKeyPath, removeError)
	}
	return nil
}

// RemoveAll drops every identity held by the agent.
func (session *SocketSession) RemoveAll() error {
	if removeError := session.agentClient.RemoveAll(); removeError != nil {
		return fmt.Errorf(agentRemoveAllErrorTemplateConstant, removeError)
	}
	return nil
}

// List returns the identities held by the agent in agent order.
func (session *SocketSession) List() ([]Identity, error) {
	agentKeys, listError := session.agentClient.List()
	if listError != nil {
		return nil, fmt.Errorf(agentListErrorTemplateConstant, listError)
	}
	identities := make([]Identity, 0, len(agentKeys))
	for _, agentKey := range agentKeys {
		identities = append(identities, Identity{
			Type:          agentKey.Type(),
			Fingerprint:   ssh.FingerprintSHA256(agentKey),
			Comment:       agentKey.Comment,
			AuthorizedKey: agentKey.String(),
		})
	}
	return identities, nil
}

// Close releases the agent connection.
func (session *SocketSession) Close() error {
	if session.connection == nil {
		return nil
	}
	return session.connection.Close()
}
