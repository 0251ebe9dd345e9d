package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant        = "~"
	homeTokenConstant          = "%d"
	escapedPercentConstant     = "%%"
	percentPlaceholderConstant = "\x00"
	percentSymbolConstant      = "%"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander resolves the home directory shortcuts accepted in SSH client
// configuration: a leading ~ and the %d token.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewHomeExpander constructs a HomeExpander using the operating system lookup.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand resolves a leading ~ or ~/ to the user's home directory.
// Paths naming another user's home (~other) are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	remainder := strings.TrimPrefix(candidatePath, tildeSymbolConstant)
	if len(remainder) > 0 && remainder[0] != '/' && remainder[0] != os.PathSeparator {
		return candidatePath
	}

	homeDirectory, resolved := expander.resolveHomeDirectory()
	if !resolved {
		return candidatePath
	}
	if len(remainder) == 0 {
		return homeDirectory
	}
	return filepath.Join(homeDirectory, remainder[1:])
}

// ExpandIdentityFile resolves an IdentityFile value as OpenSSH would for the home
// directory: ~ first, then every %d token. %% stays a literal percent sign.
func (expander *HomeExpander) ExpandIdentityFile(identityFile string) string {
	expandedPath := expander.Expand(strings.TrimSpace(identityFile))
	if expander == nil || !strings.Contains(expandedPath, percentSymbolConstant) {
		return expandedPath
	}

	escapedPath := strings.ReplaceAll(expandedPath, escapedPercentConstant, percentPlaceholderConstant)
	if strings.Contains(escapedPath, homeTokenConstant) {
		homeDirectory, resolved := expander.resolveHomeDirectory()
		if !resolved {
			return expandedPath
		}
		escapedPath = strings.ReplaceAll(escapedPath, homeTokenConstant, homeDirectory)
	}
	return filepath.Clean(strings.ReplaceAll(escapedPath, percentPlaceholderConstant, percentSymbolConstant))
}

func (expander *HomeExpander) resolveHomeDirectory() (string, bool) {
	expander.initializationGuard.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
	})
	if expander.homeDirectoryError != nil || len(expander.homeDirectory) == 0 {
		return "", false
	}
	return expander.homeDirectory, true
}
