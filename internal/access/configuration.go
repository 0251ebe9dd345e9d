package access

import (
	"strings"
	"time"
)

const (
	defaultBranchPrefixConstant       = "ghssh-access-probe-"
	newBranchSignalConstant           = "[new branch]"
	deletedSignalConstant             = "[deleted]"
	upToDateSignalConstant            = "Everything up-to-date"
	remoteLinePrefixConstant          = "remote:"
	configurationKeySeparatorConstant = "."
	branchPrefixKeyConstant           = "branch_prefix"
	writeSignalsKeyConstant           = "write_signals"
	writeLinePrefixesKeyConstant      = "write_line_prefixes"
	timeoutKeyConstant                = "timeout"
)

// Configuration tunes the git probes.
type Configuration struct {
	BranchPrefix      string        `mapstructure:"branch_prefix"`
	WriteSignals      []string      `mapstructure:"write_signals"`
	WriteLinePrefixes []string      `mapstructure:"write_line_prefixes"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// DefaultConfiguration returns the built-in probe settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		BranchPrefix:      defaultBranchPrefixConstant,
		WriteSignals:      []string{newBranchSignalConstant, deletedSignalConstant, upToDateSignalConstant},
		WriteLinePrefixes: []string{remoteLinePrefixConstant},
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
		prefix + branchPrefixKeyConstant:      defaults.BranchPrefix,
		prefix + writeSignalsKeyConstant:      defaults.WriteSignals,
		prefix + writeLinePrefixesKeyConstant: defaults.WriteLinePrefixes,
		prefix + timeoutKeyConstant:           defaults.Timeout,
	}
}

// Sanitize trims values and restores defaults for empty settings. A negative timeout disables the timeout.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := Configuration{
		BranchPrefix:      strings.TrimSpace(configuration.BranchPrefix),
		WriteSignals:      trimNonEmpty(configuration.WriteSignals),
		WriteLinePrefixes: trimNonEmpty(configuration.WriteLinePrefixes),
		Timeout:           configuration.Timeout,
	}
	if len(sanitized.BranchPrefix) == 0 {
		sanitized.BranchPrefix = defaults.BranchPrefix
	}
	if len(sanitized.WriteSignals) == 0 && len(sanitized.WriteLinePrefixes) == 0 {
		sanitized.WriteSignals = defaults.WriteSignals
		sanitized.WriteLinePrefixes = defaults.WriteLinePrefixes
	}
	if sanitized.Timeout < 0 {
		sanitized.Timeout = 0
	}
	return sanitized
}

func trimNonEmpty(values []string) []string {
	trimmedValues := make([]string, 0, len(values))
	for _, value := range values {
		trimmedValue := strings.TrimSpace(value)
		if len(trimmedValue) > 0 {
			trimmedValues = append(trimmedValues, trimmedValue)
		}
	}
	return trimmedValues
}
