package profiles

import (
	"path/filepath"
	"strings"

	"github.com/temirov/ghssh/internal/keys"
	pathutils "github.com/temirov/ghssh/internal/utils/path"
)

const (
	// KeyGeneratorNative selects the in-process ed25519 generator.
	KeyGeneratorNative = "native"
	// KeyGeneratorSSHKeygen selects the ssh-keygen backed generator.
	KeyGeneratorSSHKeygen = "ssh-keygen"

	defaultSSHDirectoryConstant       = "~/.ssh"
	defaultSSHConfigPathConstant      = "~/.ssh/config"
	defaultKeyFilePrefixConstant      = "id_ed25519_"
	defaultHostAliasPrefixConstant    = "github-"
	defaultHostNameConstant           = "github.com"
	defaultHostUserConstant           = "git"
	configurationKeySeparatorConstant = "."
	sshDirectoryKeyConstant           = "ssh_directory"
	sshConfigPathKeyConstant          = "ssh_config_path"
	keyFilePrefixKeyConstant          = "key_file_prefix"
	hostAliasPrefixKeyConstant        = "host_alias_prefix"
	hostNameKeyConstant               = "host_name"
	keyAlgorithmKeyConstant           = "key_algorithm"
	keyGeneratorKeyConstant           = "key_generator"
	registerWithAgentKeyConstant      = "register_with_agent"
	agentSocketKeyConstant            = "agent_socket"
)

// Configuration describes where profiles live and how they are named.
type Configuration struct {
	SSHDirectory      string `mapstructure:"ssh_directory"`
	SSHConfigPath     string `mapstructure:"ssh_config_path"`
	KeyFilePrefix     string `mapstructure:"key_file_prefix"`
	HostAliasPrefix   string `mapstructure:"host_alias_prefix"`
	HostName          string `mapstructure:"host_name"`
	KeyAlgorithm      string `mapstructure:"key_algorithm"`
	KeyGenerator      string `mapstructure:"key_generator"`
	RegisterWithAgent bool   `mapstructure:"register_with_agent"`
	AgentSocket       string `mapstructure:"agent_socket"`
}

// DefaultConfiguration returns the built-in profile settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		SSHDirectory:      defaultSSHDirectoryConstant,
		SSHConfigPath:     defaultSSHConfigPathConstant,
		KeyFilePrefix:     defaultKeyFilePrefixConstant,
		HostAliasPrefix:   defaultHostAliasPrefixConstant,
		HostName:          defaultHostNameConstant,
		KeyAlgorithm:      keys.AlgorithmEd25519,
		KeyGenerator:      KeyGeneratorNative,
		RegisterWithAgent: true,
	}
}

// DefaultConfigurationValues exposes DefaultConfiguration as Viper defaults under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	prefix := strings.TrimSpace(rootKey)
	if len(prefix) > 0 {
		prefix += configurationKeySeparatorConstant
	}
	return map[string]any{
		prefix + sshDirectoryKeyConstant:      defaults.SSHDirectory,
		prefix + sshConfigPathKeyConstant:     defaults.SSHConfigPath,
		prefix + keyFilePrefixKeyConstant:     defaults.KeyFilePrefix,
		prefix + hostAliasPrefixKeyConstant:   defaults.HostAliasPrefix,
		prefix + hostNameKeyConstant:          defaults.HostName,
		prefix + keyAlgorithmKeyConstant:      defaults.KeyAlgorithm,
		prefix + keyGeneratorKeyConstant:      defaults.KeyGenerator,
		prefix + registerWithAgentKeyConstant: defaults.RegisterWithAgent,
		prefix + agentSocketKeyConstant:       defaults.AgentSocket,
	}
}

// Sanitize trims values, restores empty fields to defaults and expands ~ in paths.
func (configuration Configuration) Sanitize(homeExpander *pathutils.HomeExpander) Configuration {
	defaults := DefaultConfiguration()
	sanitized := Configuration{
		SSHDirectory:      valueOrDefault(configuration.SSHDirectory, defaults.SSHDirectory),
		SSHConfigPath:     valueOrDefault(configuration.SSHConfigPath, defaults.SSHConfigPath),
		KeyFilePrefix:     valueOrDefault(configuration.KeyFilePrefix, defaults.KeyFilePrefix),
		HostAliasPrefix:   valueOrDefault(configuration.HostAliasPrefix, defaults.HostAliasPrefix),
		HostName:          valueOrDefault(configuration.HostName, defaults.HostName),
		KeyAlgorithm:      strings.ToLower(valueOrDefault(configuration.KeyAlgorithm, defaults.KeyAlgorithm)),
		KeyGenerator:      strings.ToLower(valueOrDefault(configuration.KeyGenerator, defaults.KeyGenerator)),
		RegisterWithAgent: configuration.RegisterWithAgent,
		AgentSocket:       strings.TrimSpace(configuration.AgentSocket),
	}
	if homeExpander != nil {
		sanitized.SSHDirectory = homeExpander.Expand(sanitized.SSHDirectory)
		sanitized.SSHConfigPath = homeExpander.Expand(sanitized.SSHConfigPath)
		sanitized.AgentSocket = homeExpander.Expand(sanitized.AgentSocket)
	}
	return sanitized
}

// Profile is the set of names and paths derived from a label.
type Profile struct {
	Label          string `yaml:"label"`
	HostAlias      string `yaml:"host_alias"`
	PrivateKeyPath string `yaml:"private_key_path"`
	PublicKeyPath  string `yaml:"public_key_path"`
}

// ProfileFor derives the profile paths and alias for label.
func (configuration Configuration) ProfileFor(label string) Profile {
	privateKeyPath := filepath.Join(configuration.SSHDirectory, configuration.KeyFilePrefix+label)
	return Profile{
		Label:          label,
		HostAlias:      configuration.HostAliasPrefix + label,
		PrivateKeyPath: privateKeyPath,
		PublicKeyPath:  keys.PublicKeyPath(privateKeyPath),
	}
}

// LabelFromAlias strips the alias prefix.
func (configuration Configuration) LabelFromAlias(alias string) string {
	return strings.TrimPrefix(alias, configuration.HostAliasPrefix)
}

func valueOrDefault(value string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
