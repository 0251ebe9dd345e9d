package access

import (
	"fmt"
	"strings"

	"github.com/temirov/ghssh/internal/gitrepo"
)

const (
	grantedMarkerConstant          = "✓"
	deniedMarkerConstant           = "✗"
	reportLineTemplateConstant     = "%s: %s Pull %s Push"
	cloneSuffixTemplateConstant    = "  git clone %s"
	recommendationTemplateConstant = "Recommended: git clone %s"
	// NoAccessMessage is the final report line when no profile can read the repository.
	NoAccessMessage = "No profiles have access to this repository."
)

// Report is the outcome of a Probe run, one entry per alias in probe order.
type Report struct {
	Reference gitrepo.RepositoryReference
	Results   []ProfileAccess
}

// Recommended returns the first profile with read access.
func (report Report) Recommended() (ProfileAccess, bool) {
	for _, profileAccess := range report.Results {
		if profileAccess.CanRead() {
			return profileAccess, true
		}
	}
	return ProfileAccess{}, false
}

// Lines renders one line per profile followed by the recommendation or the no-access notice.
func (report Report) Lines() []string {
	lines := make([]string, 0, len(report.Results)+1)
	for _, profileAccess := range report.Results {
		line := fmt.Sprintf(reportLineTemplateConstant, profileAccess.Alias, marker(profileAccess.CanRead()), marker(profileAccess.CanWrite()))
		if profileAccess.CanRead() {
			line += fmt.Sprintf(cloneSuffixTemplateConstant, profileAccess.Remote)
		}
		lines = append(lines, line)
	}

	if recommended, found := report.Recommended(); found {
		lines = append(lines, fmt.Sprintf(recommendationTemplateConstant, recommended.Remote))
	} else {
		lines = append(lines, NoAccessMessage)
	}
	return lines
}

// String renders Lines joined by newlines with a trailing newline.
func (report Report) String() string {
	return strings.Join(report.Lines(), "\n") + "\n"
}

func marker(granted bool) string {
	if granted {
		return grantedMarkerConstant
	}
	return deniedMarkerConstant
}
