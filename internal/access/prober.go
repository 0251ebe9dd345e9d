package access

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/ghssh/internal/gitrepo"
)

const (
	invalidReferenceMessageConstant       = "invalid repository reference"
	noProfilesConfiguredMessageConstant   = "no profiles configured"
	remoteProberMissingMessageConstant    = "remote prober not configured"
	invalidReferenceErrorTemplateConstant = "%w: %w"
	aliasRemoteErrorTemplateConstant      = "build remote for %s: %w"
	probeCompletedMessageConstant         = "profile probed"
	probeStartedMessageConstant           = "probing repository access"
	logFieldRepositoryConstant            = "repository"
	logFieldProfileCountConstant          = "profile_count"
	logFieldAliasConstant                 = "alias"
	logFieldReadConstant                  = "read"
	logFieldWriteConstant                 = "write"
	logFieldReadExitCodeConstant          = "read_exit_code"
	logFieldWriteExitCodeConstant         = "write_exit_code"
)

// ErrInvalidReference indicates the repository reference matched none of the accepted forms.
var ErrInvalidReference = errors.New(invalidReferenceMessageConstant)

// ErrNoProfilesConfigured indicates there were no profile aliases to probe.
var ErrNoProfilesConfigured = errors.New(noProfilesConfiguredMessageConstant)

// ErrRemoteProberNotConfigured indicates the prober was created without a RemoteProber.
var ErrRemoteProberNotConfigured = errors.New(remoteProberMissingMessageConstant)

// ProbeOutcome is the raw result of a single probe. Granted is derived from the rest.
type ProbeOutcome struct {
	Granted  bool
	ExitCode int
	Output   string
	Failure  error
}

// ProfileAccess is the access found for one profile alias.
type ProfileAccess struct {
	Alias  string
	Remote string
	Read   ProbeOutcome
	Write  ProbeOutcome
}

// CanRead reports whether the read probe succeeded.
func (profileAccess ProfileAccess) CanRead() bool {
	return profileAccess.Read.Granted
}

// CanWrite reports whether the write probe found a write signal.
func (profileAccess ProfileAccess) CanWrite() bool {
	return profileAccess.Write.Granted
}

// RemoteProber performs the two remote interactions for one remote address.
type RemoteProber interface {
	ProbeRead(executionContext context.Context, remote string) ProbeOutcome
	ProbeWrite(executionContext context.Context, remote string) ProbeOutcome
}

// ProberDependencies enumerates collaborators required by Prober.
type ProberDependencies struct {
	RemoteProber RemoteProber
	Logger       *zap.Logger
}

// ProbeOptions describe one access discovery run.
type ProbeOptions struct {
	Reference string
	Aliases   []string
}

// Prober runs access discovery across profile aliases.
type Prober struct {
	remoteProber RemoteProber
	logger       *zap.Logger
}

// NewProber constructs a Prober.
func NewProber(dependencies ProberDependencies) (*Prober, error) {
	if dependencies.RemoteProber == nil {
		return nil, ErrRemoteProberNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{remoteProber: dependencies.RemoteProber, logger: logger}, nil
}

// Probe checks read and write access for every alias in order.
// Reference and alias validation happen before any remote interaction.
func (prober *Prober) Probe(executionContext context.Context, options ProbeOptions) (Report, error) {
	reference, parseError := gitrepo.ParseRepositoryReference(options.Reference)
	if parseError != nil {
		return Report{}, fmt.Errorf(invalidReferenceErrorTemplateConstant, ErrInvalidReference, parseError)
	}
	if len(options.Aliases) == 0 {
		return Report{}, ErrNoProfilesConfigured
	}

	prober.logger.Debug(probeStartedMessageConstant, zap.String(logFieldRepositoryConstant, reference.Shorthand()), zap.Int(logFieldProfileCountConstant, len(options.Aliases)))

	report := Report{Reference: reference, Results: make([]ProfileAccess, 0, len(options.Aliases))}
	for _, alias := range options.Aliases {
		remote, remoteError := gitrepo.FormatAliasRemote(alias, reference)
		if remoteError != nil {
			failedOutcome := ProbeOutcome{ExitCode: -1, Failure: fmt.Errorf(aliasRemoteErrorTemplateConstant, alias, remoteError)}
			report.Results = append(report.Results, ProfileAccess{Alias: alias, Read: failedOutcome, Write: failedOutcome})
			continue
		}

		profileAccess := ProfileAccess{
			Alias:  alias,
			Remote: remote,
			Read:   prober.remoteProber.ProbeRead(executionContext, remote),
			Write:  prober.remoteProber.ProbeWrite(executionContext, remote),
		}
		prober.logger.Debug(
			probeCompletedMessageConstant,
			zap.String(logFieldAliasConstant, alias),
			zap.Bool(logFieldReadConstant, profileAccess.CanRead()),
			zap.Bool(logFieldWriteConstant, profileAccess.CanWrite()),
			zap.Int(logFieldReadExitCodeConstant, profileAccess.Read.ExitCode),
			zap.Int(logFieldWriteExitCodeConstant, profileAccess.Write.ExitCode),
		)
		report.Results = append(report.Results, profileAccess)
	}
	return report, nil
}
