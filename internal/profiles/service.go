package profiles

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/temirov/ghssh/internal/execshell"
	"github.com/temirov/ghssh/internal/keyagent"
	"github.com/temirov/ghssh/internal/keys"
	"github.com/temirov/ghssh/internal/sshconfig"
)

const (
	invalidLabelMessageConstant            = "invalid profile label"
	profileNotFoundMessageConstant         = "profile not found"
	storeMissingMessageConstant            = "ssh configuration store not configured"
	fileSystemMissingMessageConstant       = "file system not configured"
	keyGeneratorMissingMessageConstant     = "key generator not configured"
	sshExecutorMissingMessageConstant      = "ssh executor not configured"
	agentProviderMissingMessageConstant    = "agent provider not configured"
	labeledErrorTemplateConstant           = "%w: %q"
	loadConfigurationErrorTemplateConstant = "load ssh configuration: %w"
	saveConfigurationErrorTemplateConstant = "save ssh configuration: %w"
	keyStatErrorTemplateConstant           = "inspect key %s: %w"
	keyGenerationErrorTemplateConstant     = "generate key for %s: %w"
	keyRemovalErrorTemplateConstant        = "remove key file %s: %w"
	appendHostErrorTemplateConstant        = "add host block %s: %w"
	profileAddedMessageConstant            = "profile added"
	profileRemovedMessageConstant          = "profile removed"
	agentRegistrationFailedMessageConstant = "agent registration failed"
	agentRemovalFailedMessageConstant      = "agent removal skipped"
	agentClearedMessageConstant            = "agent identities cleared"
	logFieldLabelConstant                  = "label"
	logFieldHostAliasConstant              = "host_alias"
	logFieldKeyExistedConstant             = "key_existed"
	logFieldBlockExistedConstant           = "block_existed"
	logFieldRemovedCountConstant           = "removed_count"
	sshConfigFileFlagConstant              = "-F"
	sshDisablePseudoTerminalFlagConstant   = "-T"
	sshOptionFlagConstant                  = "-o"
	sshBatchModeOptionConstant             = "BatchMode=yes"
	sshDestinationTemplateConstant         = "%s@%s"
	labelPatternConstant                   = `^[A-Za-z0-9][A-Za-z0-9_-]*$`
	githubGreetingPatternConstant          = `Hi ([^!\s]+)! You've successfully authenticated`
)

// ErrInvalidLabel indicates a label unsafe for file names or host aliases.
var ErrInvalidLabel = errors.New(invalidLabelMessageConstant)

// ErrProfileNotFound indicates no host block or key exists for a label.
var ErrProfileNotFound = errors.New(profileNotFoundMessageConstant)

// ErrStoreNotConfigured indicates the service was created without a configuration store.
var ErrStoreNotConfigured = errors.New(storeMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the service was created without a file system.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrKeyGeneratorNotConfigured indicates Add was called without a key generator.
var ErrKeyGeneratorNotConfigured = errors.New(keyGeneratorMissingMessageConstant)

// ErrSSHExecutorNotConfigured indicates Check was called without an ssh executor.
var ErrSSHExecutorNotConfigured = errors.New(sshExecutorMissingMessageConstant)

// ErrAgentProviderNotConfigured indicates an agent operation was requested without an agent provider.
var ErrAgentProviderNotConfigured = errors.New(agentProviderMissingMessageConstant)

var (
	labelPattern          = regexp.MustCompile(labelPatternConstant)
	githubGreetingPattern = regexp.MustCompile(githubGreetingPatternConstant)
)

// ConfigurationStore loads and saves the SSH client configuration.
type ConfigurationStore interface {
	Load() (sshconfig.Document, error)
	Save(document sshconfig.Document) error
	Path() string
}

// SSHExecutor runs the OpenSSH client.
type SSHExecutor interface {
	ExecuteSSH(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// IdentityPathExpander resolves home directory shortcuts in IdentityFile values.
type IdentityPathExpander interface {
	ExpandIdentityFile(identityFile string) string
}

// AgentProvider opens the agent session on first use.
type AgentProvider func() (keyagent.Session, error)

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Store         ConfigurationStore
	FileSystem    afero.Fs
	KeyGenerator  keys.Generator
	AgentProvider AgentProvider
	SSHExecutor   SSHExecutor
	PathExpander  IdentityPathExpander
	Configuration Configuration
	Logger        *zap.Logger
}

// Service implements the profile lifecycle.
type Service struct {
	store         ConfigurationStore
	fileSystem    afero.Fs
	keyGenerator  keys.Generator
	agentProvider AgentProvider
	sshExecutor   SSHExecutor
	pathExpander  IdentityPathExpander
	configuration Configuration
	logger        *zap.Logger
	agentSession  keyagent.Session
}

// NewService constructs a Service; the configuration is used as given.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Store == nil {
		return nil, ErrStoreNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:         dependencies.Store,
		fileSystem:    dependencies.FileSystem,
		keyGenerator:  dependencies.KeyGenerator,
		agentProvider: dependencies.AgentProvider,
		sshExecutor:   dependencies.SSHExecutor,
		pathExpander:  dependencies.PathExpander,
		configuration: dependencies.Configuration,
		logger:        logger,
	}, nil
}

// ValidateLabel reports whether label is usable as a profile label.
func ValidateLabel(label string) error {
	if !labelPattern.MatchString(label) {
		return fmt.Errorf(labeledErrorTemplateConstant, ErrInvalidLabel, label)
	}
	return nil
}

// AddOptions configure profile creation.
type AddOptions struct {
	Label             string
	Email             string
	RegisterWithAgent bool
}

// AddResult reports what Add created and what already existed.
type AddResult struct {
	Profile         Profile
	KeyExisted      bool
	BlockExisted    bool
	AgentRegistered bool
	AgentError      error
	PublicKey       string
}

// Add creates the key pair and host block for a profile, skipping pieces that already exist.
func (service *Service) Add(executionContext context.Context, options AddOptions) (AddResult, error) {
	label := strings.TrimSpace(options.Label)
	if validationError := ValidateLabel(label); validationError != nil {
		return AddResult{}, validationError
	}
	profile := service.configuration.ProfileFor(label)
	result := AddResult{Profile: profile}

	keyExists, existsError := afero.Exists(service.fileSystem, profile.PrivateKeyPath)
	if existsError != nil {
		return AddResult{}, fmt.Errorf(keyStatErrorTemplateConstant, profile.PrivateKeyPath, existsError)
	}
	result.KeyExisted = keyExists

	if !keyExists {
		if service.keyGenerator == nil {
			return AddResult{}, ErrKeyGeneratorNotConfigured
		}
		keyPair, generationError := service.keyGenerator.Generate(executionContext, keys.GenerateRequest{
			PrivateKeyPath: profile.PrivateKeyPath,
			Comment:        strings.TrimSpace(options.Email),
			Algorithm:      service.configuration.KeyAlgorithm,
		})
		if generationError != nil {
			return AddResult{}, fmt.Errorf(keyGenerationErrorTemplateConstant, label, generationError)
		}
		result.PublicKey = keyPair.AuthorizedKey
	} else if publicKeyInfo, readError := keys.ReadPublicKey(service.fileSystem, profile.PublicKeyPath); readError == nil {
		result.PublicKey = publicKeyInfo.AuthorizedKey
	}

	document, loadError := service.store.Load()
	if loadError != nil {
		return AddResult{}, fmt.Errorf(loadConfigurationErrorTemplateConstant, loadError)
	}
	result.BlockExisted = document.HasHost(profile.HostAlias)
	if !result.BlockExisted {
		appendError := document.AppendHost(sshconfig.HostEntry{
			Alias:          profile.HostAlias,
			HostName:       service.configuration.HostName,
			User:           defaultHostUserConstant,
			IdentityFile:   profile.PrivateKeyPath,
			IdentitiesOnly: true,
		})
		if appendError != nil {
			return AddResult{}, fmt.Errorf(appendHostErrorTemplateConstant, profile.HostAlias, appendError)
		}
		if saveError := service.store.Save(document); saveError != nil {
			return AddResult{}, fmt.Errorf(saveConfigurationErrorTemplateConstant, saveError)
		}
	}

	if options.RegisterWithAgent {
		result.AgentError = service.withAgent(func(session keyagent.Session) error {
			return session.Add(profile.PrivateKeyPath, strings.TrimSpace(options.Email))
		})
		result.AgentRegistered = result.AgentError == nil
		if result.AgentError != nil {
			service.logger.Warn(agentRegistrationFailedMessageConstant, zap.String(logFieldLabelConstant, label), zap.Error(result.AgentError))
		}
	}

	service.logger.Info(
		profileAddedMessageConstant,
		zap.String(logFieldLabelConstant, label),
		zap.String(logFieldHostAliasConstant, profile.HostAlias),
		zap.Bool(logFieldKeyExistedConstant, result.KeyExisted),
		zap.Bool(logFieldBlockExistedConstant, result.BlockExisted),
	)
	return result, nil
}

// RemoveResult reports which parts of a profile were removed.
type RemoveResult struct {
	Profile           Profile
	BlockRemoved      bool
	PrivateKeyRemoved bool
	PublicKeyRemoved  bool
	AgentRemoved      bool
	AgentError        error
	// RetainedIdentityFile is the IdentityFile named by the host block when it differs
	// from the profile's own key path. That file is never deleted.
	RetainedIdentityFile string
}

// Remove deletes the host block, agent identity and key files of a profile.
// Only the key pair at the label's derived path is deleted.
// Missing pieces are reported in the result; file removal failures are aggregated.
func (service *Service) Remove(executionContext context.Context, label string) (RemoveResult, error) {
	trimmedLabel := strings.TrimSpace(label)
	if validationError := ValidateLabel(trimmedLabel); validationError != nil {
		return RemoveResult{}, validationError
	}
	profile := service.configuration.ProfileFor(trimmedLabel)
	result := RemoveResult{Profile: profile}

	document, loadError := service.store.Load()
	if loadError != nil {
		return RemoveResult{}, fmt.Errorf(loadConfigurationErrorTemplateConstant, loadError)
	}
	if referencedProfile := service.profileFromDocument(document, profile); filepath.Clean(referencedProfile.PrivateKeyPath) != filepath.Clean(profile.PrivateKeyPath) {
		result.RetainedIdentityFile = referencedProfile.PrivateKeyPath
	}

	privateKeyExists, privateStatError := afero.Exists(service.fileSystem, profile.PrivateKeyPath)
	if privateStatError != nil {
		return RemoveResult{}, fmt.Errorf(keyStatErrorTemplateConstant, profile.PrivateKeyPath, privateStatError)
	}
	publicKeyExists, publicStatError := afero.Exists(service.fileSystem, profile.PublicKeyPath)
	if publicStatError != nil {
		return RemoveResult{}, fmt.Errorf(keyStatErrorTemplateConstant, profile.PublicKeyPath, publicStatError)
	}
	if !document.HasHost(profile.HostAlias) && !privateKeyExists && !publicKeyExists {
		return RemoveResult{}, fmt.Errorf(labeledErrorTemplateConstant, ErrProfileNotFound, trimmedLabel)
	}

	var aggregatedError error
	if document.RemoveHost(profile.HostAlias) {
		if saveError := service.store.Save(document); saveError != nil {
			aggregatedError = multierr.Append(aggregatedError, fmt.Errorf(saveConfigurationErrorTemplateConstant, saveError))
		} else {
			result.BlockRemoved = true
		}
	}

	if publicKeyExists && service.agentProvider != nil {
		result.AgentError = service.withAgent(func(session keyagent.Session) error {
			return session.Remove(profile.PublicKeyPath)
		})
		result.AgentRemoved = result.AgentError == nil
		if result.AgentError != nil {
			service.logger.Debug(agentRemovalFailedMessageConstant, zap.String(logFieldLabelConstant, trimmedLabel), zap.Error(result.AgentError))
		}
	}

	if privateKeyExists {
		removeError := service.removeKeyFile(profile.PrivateKeyPath)
		aggregatedError = multierr.Append(aggregatedError, removeError)
		result.PrivateKeyRemoved = removeError == nil
	}
	if publicKeyExists {
		removeError := service.removeKeyFile(profile.PublicKeyPath)
		aggregatedError = multierr.Append(aggregatedError, removeError)
		result.PublicKeyRemoved = removeError == nil
	}

	service.logger.Info(profileRemovedMessageConstant, zap.String(logFieldLabelConstant, trimmedLabel), zap.String(logFieldHostAliasConstant, profile.HostAlias))
	return result, aggregatedError
}

// ProfileStatus describes a configured profile and its public key.
type ProfileStatus struct {
	Profile     Profile `yaml:",inline"`
	KeyPresent  bool    `yaml:"key_present"`
	KeyType     string  `yaml:"key_type,omitempty"`
	Fingerprint string  `yaml:"fingerprint,omitempty"`
	Comment     string  `yaml:"comment,omitempty"`
}

// List returns the configured profiles in configuration order.
func (service *Service) List() ([]ProfileStatus, error) {
	document, loadError := service.store.Load()
	if loadError != nil {
		return nil, fmt.Errorf(loadConfigurationErrorTemplateConstant, loadError)
	}

	aliases := service.profileAliases(document)
	statuses := make([]ProfileStatus, 0, len(aliases))
	for _, alias := range aliases {
		profile := service.profileFromDocument(document, service.configuration.ProfileFor(service.configuration.LabelFromAlias(alias)))
		status := ProfileStatus{Profile: profile}
		keyPresent, statError := afero.Exists(service.fileSystem, profile.PrivateKeyPath)
		if statError != nil {
			return nil, fmt.Errorf(keyStatErrorTemplateConstant, profile.PrivateKeyPath, statError)
		}
		status.KeyPresent = keyPresent
		if publicKeyInfo, readError := keys.ReadPublicKey(service.fileSystem, profile.PublicKeyPath); readError == nil {
			status.KeyType = publicKeyInfo.Type
			status.Fingerprint = publicKeyInfo.Fingerprint
			status.Comment = publicKeyInfo.Comment
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// ProfileAliases returns the host aliases of configured profiles in configuration order.
func (service *Service) ProfileAliases() ([]string, error) {
	document, loadError := service.store.Load()
	if loadError != nil {
		return nil, fmt.Errorf(loadConfigurationErrorTemplateConstant, loadError)
	}
	return service.profileAliases(document), nil
}

// profileAliases keeps the prefixed aliases whose label is a valid profile label.
func (service *Service) profileAliases(document sshconfig.Document) []string {
	candidateAliases := document.Aliases(service.configuration.HostAliasPrefix)
	aliases := make([]string, 0, len(candidateAliases))
	for _, alias := range candidateAliases {
		if labelPattern.MatchString(service.configuration.LabelFromAlias(alias)) {
			aliases = append(aliases, alias)
		}
	}
	return aliases
}

// LinkedIdentity is an agent identity, matched to a profile when fingerprints agree.
type LinkedIdentity struct {
	Identity keyagent.Identity
	Label    string
}

// Linked lists the identities loaded in the agent.
func (service *Service) Linked() ([]LinkedIdentity, error) {
	statuses, listError := service.List()
	if listError != nil {
		return nil, listError
	}
	labelsByFingerprint := make(map[string]string, len(statuses))
	for _, status := range statuses {
		if len(status.Fingerprint) > 0 {
			labelsByFingerprint[status.Fingerprint] = status.Profile.Label
		}
	}

	var linkedIdentities []LinkedIdentity
	agentError := service.withAgent(func(session keyagent.Session) error {
		identities, identitiesError := session.List()
		if identitiesError != nil {
			return identitiesError
		}
		linkedIdentities = make([]LinkedIdentity, 0, len(identities))
		for _, identity := range identities {
			linkedIdentities = append(linkedIdentities, LinkedIdentity{Identity: identity, Label: labelsByFingerprint[identity.Fingerprint]})
		}
		return nil
	})
	if agentError != nil {
		return nil, agentError
	}
	return linkedIdentities, nil
}

// CheckResult is the outcome of an SSH authentication test for one profile.
type CheckResult struct {
	Profile       Profile
	Authenticated bool
	GitHubUser    string
	ExitCode      int
	Output        string
	Failure       error
}

// Check opens a test session for each requested profile, or every profile when labels is empty.
func (service *Service) Check(executionContext context.Context, labels []string) ([]CheckResult, error) {
	if service.sshExecutor == nil {
		return nil, ErrSSHExecutorNotConfigured
	}
	aliases, aliasesError := service.ProfileAliases()
	if aliasesError != nil {
		return nil, aliasesError
	}

	selectedAliases := aliases
	if len(labels) > 0 {
		configuredAliases := make(map[string]struct{}, len(aliases))
		for _, alias := range aliases {
			configuredAliases[alias] = struct{}{}
		}
		selectedAliases = make([]string, 0, len(labels))
		for _, label := range labels {
			alias := service.configuration.ProfileFor(strings.TrimSpace(label)).HostAlias
			if _, configured := configuredAliases[alias]; !configured {
				return nil, fmt.Errorf(labeledErrorTemplateConstant, ErrProfileNotFound, label)
			}
			selectedAliases = append(selectedAliases, alias)
		}
	}

	results := make([]CheckResult, 0, len(selectedAliases))
	for _, alias := range selectedAliases {
		results = append(results, service.checkAlias(executionContext, alias))
	}
	return results, nil
}

func (service *Service) checkAlias(executionContext context.Context, alias string) CheckResult {
	result := CheckResult{Profile: service.configuration.ProfileFor(service.configuration.LabelFromAlias(alias))}
	executionResult, executionError := service.sshExecutor.ExecuteSSH(executionContext, execshell.CommandDetails{
		Arguments: []string{
			sshConfigFileFlagConstant, service.store.Path(),
			sshDisablePseudoTerminalFlagConstant,
			sshOptionFlagConstant, sshBatchModeOptionConstant,
			fmt.Sprintf(sshDestinationTemplateConstant, defaultHostUserConstant, alias),
		},
	})
	if executionError != nil {
		failedResult, exited := execshell.ResultFromError(executionError)
		if !exited {
			result.Failure = executionError
			return result
		}
		executionResult = failedResult
	}

	result.ExitCode = executionResult.ExitCode
	result.Output = strings.TrimSpace(executionResult.CombinedOutput())
	if greetingMatch := githubGreetingPattern.FindStringSubmatch(result.Output); greetingMatch != nil {
		result.Authenticated = true
		result.GitHubUser = greetingMatch[1]
		return result
	}
	if executionError != nil {
		result.Failure = executionError
	}
	return result
}

// DeleteAll removes every identity from the agent and returns how many were held.
func (service *Service) DeleteAll() (int, error) {
	removedCount := 0
	agentError := service.withAgent(func(session keyagent.Session) error {
		identities, listError := session.List()
		if listError != nil {
			return listError
		}
		removedCount = len(identities)
		return session.RemoveAll()
	})
	if agentError != nil {
		return 0, agentError
	}
	service.logger.Info(agentClearedMessageConstant, zap.Int(logFieldRemovedCountConstant, removedCount))
	return removedCount, nil
}

// Close releases the agent session if one was opened.
func (service *Service) Close() error {
	if service.agentSession == nil {
		return nil
	}
	closeError := service.agentSession.Close()
	service.agentSession = nil
	return closeError
}

func (service *Service) withAgent(operation func(session keyagent.Session) error) error {
	if service.agentSession == nil {
		if service.agentProvider == nil {
			return ErrAgentProviderNotConfigured
		}
		session, sessionError := service.agentProvider()
		if sessionError != nil {
			return sessionError
		}
		service.agentSession = session
	}
	return operation(service.agentSession)
}

// profileFromDocument prefers the IdentityFile recorded in the host block over the derived key path.
func (service *Service) profileFromDocument(document sshconfig.Document, profile Profile) Profile {
	hostEntry, found := document.Host(profile.HostAlias)
	if !found || len(hostEntry.IdentityFile) == 0 {
		return profile
	}
	identityFile := hostEntry.IdentityFile
	if service.pathExpander != nil {
		identityFile = service.pathExpander.ExpandIdentityFile(identityFile)
	}
	profile.PrivateKeyPath = identityFile
	profile.PublicKeyPath = keys.PublicKeyPath(identityFile)
	return profile
}

func (service *Service) removeKeyFile(path string) error {
	removeError := service.fileSystem.Remove(path)
	if removeError == nil || errors.Is(removeError, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf(keyRemovalErrorTemplateConstant, path, removeError)
}
