package gitrepo

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	httpsGitHubPrefixConstant                = "https://github.com/"
	sshGitHubPrefixConstant                  = "git@github.com:"
	gitSuffixConstant                        = ".git"
	pathSeparatorConstant                    = "/"
	schemeSeparatorConstant                  = "://"
	aliasRemoteTemplateConstant              = "git@%s:%s/%s.git"
	shorthandTemplateConstant                = "%s/%s"
	invalidReferenceMessageConstant          = "invalid repository reference"
	referenceErrorTemplateConstant           = "%v %q: %s"
	emptyReferenceReasonConstant             = "value is empty"
	schemeNotSupportedReasonConstant         = "only https://github.com/, git@github.com: and owner/name forms are accepted"
	segmentCountReasonConstant               = "expected exactly owner/name"
	emptySegmentReasonConstant               = "owner and name must be non-empty"
	whitespaceReasonConstant                 = "whitespace is not allowed"
	sshUserSeparatorConstant                 = "@"
	aliasRequiredMessageConstant             = "host alias required"
	referenceRequiredForRemoteReasonConstant = "reference is incomplete"
)

// ErrInvalidRepositoryReference is wrapped by every RepositoryReferenceError.
var ErrInvalidRepositoryReference = errors.New(invalidReferenceMessageConstant)

// ErrHostAliasRequired indicates FormatAliasRemote received an empty alias.
var ErrHostAliasRequired = errors.New(aliasRequiredMessageConstant)

// RepositoryReference identifies a GitHub repository as owner/name.
type RepositoryReference struct {
	Owner string
	Name  string
}

// Shorthand renders the reference as owner/name.
func (reference RepositoryReference) Shorthand() string {
	return fmt.Sprintf(shorthandTemplateConstant, reference.Owner, reference.Name)
}

// RepositoryReferenceError describes why a reference could not be parsed.
type RepositoryReferenceError struct {
	Input  string
	Reason string
}

// Error describes the rejected input.
func (referenceError RepositoryReferenceError) Error() string {
	return fmt.Sprintf(referenceErrorTemplateConstant, ErrInvalidRepositoryReference, referenceError.Input, referenceError.Reason)
}

// Unwrap returns ErrInvalidRepositoryReference.
func (referenceError RepositoryReferenceError) Unwrap() error {
	return ErrInvalidRepositoryReference
}

// ParseRepositoryReference accepts https://github.com/o/r, git@github.com:o/r and o/r, each with an optional .git suffix.
func ParseRepositoryReference(text string) (RepositoryReference, error) {
	trimmedText := strings.TrimSpace(text)
	if len(trimmedText) == 0 {
		return RepositoryReference{}, RepositoryReferenceError{Input: text, Reason: emptyReferenceReasonConstant}
	}

	remainder := trimmedText
	switch {
	case strings.HasPrefix(remainder, httpsGitHubPrefixConstant):
		remainder = strings.TrimPrefix(remainder, httpsGitHubPrefixConstant)
	case strings.HasPrefix(remainder, sshGitHubPrefixConstant):
		remainder = strings.TrimPrefix(remainder, sshGitHubPrefixConstant)
	}
	remainder = strings.TrimSuffix(remainder, gitSuffixConstant)

	if strings.Contains(remainder, schemeSeparatorConstant) || strings.Contains(remainder, sshUserSeparatorConstant) {
		return RepositoryReference{}, RepositoryReferenceError{Input: text, Reason: schemeNotSupportedReasonConstant}
	}
	if strings.IndexFunc(remainder, unicode.IsSpace) >= 0 {
		return RepositoryReference{}, RepositoryReferenceError{Input: text, Reason: whitespaceReasonConstant}
	}

	segments := strings.Split(remainder, pathSeparatorConstant)
	if len(segments) != 2 {
		return RepositoryReference{}, RepositoryReferenceError{Input: text, Reason: segmentCountReasonConstant}
	}
	if len(segments[0]) == 0 || len(segments[1]) == 0 {
		return RepositoryReference{}, RepositoryReferenceError{Input: text, Reason: emptySegmentReasonConstant}
	}

	return RepositoryReference{Owner: segments[0], Name: segments[1]}, nil
}

// FormatAliasRemote builds the SSH remote that routes through a profile's host alias.
func FormatAliasRemote(alias string, reference RepositoryReference) (string, error) {
	trimmedAlias := strings.TrimSpace(alias)
	if len(trimmedAlias) == 0 {
		return "", ErrHostAliasRequired
	}
	if len(reference.Owner) == 0 || len(reference.Name) == 0 {
		return "", RepositoryReferenceError{Input: reference.Shorthand(), Reason: referenceRequiredForRemoteReasonConstant}
	}
	return fmt.Sprintf(aliasRemoteTemplateConstant, trimmedAlias, reference.Owner, reference.Name), nil
}
