// Package authz derives the caller's capability set from session and profile
// state. The outcome is an explicit tagged variant computed once and passed
// down, rather than account-type string comparisons at every call site.
//
// The gate is advisory for clients: every decision it makes is re-checked by
// the backend, and ownership is re-validated at the point of each mutation,
// not only when a control is rendered.
package authz

import (
	"github.com/caffeinepub/m-employed/pkg/sdk"
	"github.com/caffeinepub/m-employed/pkg/sdk/session"
)

// Level is the tag of the Access variant.
type Level int

const (
	// Anonymous callers may read published jobs and nothing else.
	Anonymous Level = iota
	// NoProfile is an authenticated identity that has not created an
	// account yet; role-specific views are denied pending account setup.
	NoProfile
	// Candidate may apply to jobs and act within its own applications.
	Candidate
	// Employer may manage its own jobs and the applications they receive.
	Employer
)

func (l Level) String() string {
	switch l {
	case Anonymous:
		return "anonymous"
	case NoProfile:
		return "no-profile"
	case Candidate:
		return "candidate"
	case Employer:
		return "employer"
	}
	return "unknown"
}

// Access is the authorization outcome for one caller at one logical time.
// Profile is non-nil exactly for Candidate and Employer.
type Access struct {
	Level    Level
	Identity sdk.Identity
	Profile  *sdk.UserProfile
	Admin    bool
}

// Resolve computes the caller's access from session status, the cached
// profile, and the backend-assigned role.
func Resolve(status session.Status, identity sdk.Identity, profile *sdk.UserProfile, role sdk.UserRole) Access {
	if status != session.Authenticated {
		return Access{Level: Anonymous}
	}

	access := Access{Level: NoProfile, Identity: identity, Admin: role == sdk.RoleAdmin}
	if profile == nil {
		return access
	}

	access.Profile = profile
	switch profile.AccountType {
	case sdk.AccountTypeEmployer:
		access.Level = Employer
	case sdk.AccountTypeCandidate:
		access.Level = Candidate
	default:
		// Unknown account type from the backend: treat as missing profile
		// rather than granting either side's capabilities.
		access.Profile = nil
	}
	return access
}

// CanBrowseJobs reports whether published jobs are readable. Always true;
// browsing requires no session.
func (a Access) CanBrowseJobs() bool { return true }

// NeedsSetup reports whether the caller must complete account setup before
// using role-specific views.
func (a Access) NeedsSetup() bool { return a.Level == NoProfile }

// CanApply reports whether the caller may apply to published jobs.
func (a Access) CanApply() bool { return a.Level == Candidate }

// CanManageJobs reports whether the caller may create jobs and operate
// employer views.
func (a Access) CanManageJobs() bool { return a.Level == Employer }

// OwnsJob reports whether the caller is the employer recorded on the job at
// creation time. Ownership is never re-derived from the profile.
func (a Access) OwnsJob(job sdk.Job) bool {
	return a.Level == Employer && job.Employer == a.Identity
}

// OwnsApplication reports whether the caller is the candidate recorded on
// the application.
func (a Access) OwnsApplication(app sdk.Application) bool {
	return a.Level == Candidate && app.Candidate == a.Identity
}

// ManagesApplication reports whether the caller owns the job the application
// refers to. Only such callers may transition the application's status.
func (a Access) ManagesApplication(app sdk.Application, job sdk.Job) bool {
	return app.JobID == job.ID && a.OwnsJob(job)
}

// CanMessage reports whether the caller participates in the application's
// thread: the applying candidate, or the employer owning the referenced job.
func (a Access) CanMessage(app sdk.Application, job sdk.Job) bool {
	return a.OwnsApplication(app) || a.ManagesApplication(app, job)
}
