package authz

import (
	"testing"

	"github.com/caffeinepub/m-employed/pkg/sdk"
	"github.com/caffeinepub/m-employed/pkg/sdk/session"
)

func candidateProfile() *sdk.UserProfile {
	return &sdk.UserProfile{Name: "Alice", AccountType: sdk.AccountTypeCandidate}
}

func employerProfile() *sdk.UserProfile {
	return &sdk.UserProfile{Name: "Acme", AccountType: sdk.AccountTypeEmployer, CompanyName: "Acme Corp"}
}

func TestResolveLevels(t *testing.T) {
	tests := []struct {
		name    string
		status  session.Status
		profile *sdk.UserProfile
		role    sdk.UserRole
		want    Level
	}{
		{"anonymous", session.Anonymous, nil, sdk.RoleGuest, Anonymous},
		{"authenticating is not authenticated", session.Authenticating, nil, sdk.RoleGuest, Anonymous},
		{"authenticated without profile", session.Authenticated, nil, sdk.RoleUser, NoProfile},
		{"candidate", session.Authenticated, candidateProfile(), sdk.RoleUser, Candidate},
		{"employer", session.Authenticated, employerProfile(), sdk.RoleUser, Employer},
		{"unknown account type", session.Authenticated, &sdk.UserProfile{AccountType: "robot"}, sdk.RoleUser, NoProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			access := Resolve(tt.status, "alice", tt.profile, tt.role)
			if access.Level != tt.want {
				t.Fatalf("expected level %s, got %s", tt.want, access.Level)
			}
		})
	}
}

func TestResolveAdminFlag(t *testing.T) {
	access := Resolve(session.Authenticated, "root", candidateProfile(), sdk.RoleAdmin)
	if !access.Admin {
		t.Fatal("expected admin flag")
	}
	access = Resolve(session.Authenticated, "alice", candidateProfile(), sdk.RoleUser)
	if access.Admin {
		t.Fatal("did not expect admin flag")
	}
}

func TestCapabilityMatrix(t *testing.T) {
	anonymous := Resolve(session.Anonymous, "", nil, sdk.RoleGuest)
	noProfile := Resolve(session.Authenticated, "nobody", nil, sdk.RoleUser)
	candidate := Resolve(session.Authenticated, "alice", candidateProfile(), sdk.RoleUser)
	employer := Resolve(session.Authenticated, "acme", employerProfile(), sdk.RoleUser)

	for name, access := range map[string]Access{
		"anonymous": anonymous, "no-profile": noProfile,
		"candidate": candidate, "employer": employer,
	} {
		if !access.CanBrowseJobs() {
			t.Fatalf("%s should be able to browse jobs", name)
		}
	}

	if !noProfile.NeedsSetup() {
		t.Fatal("no-profile should need setup")
	}
	if anonymous.NeedsSetup() || candidate.NeedsSetup() || employer.NeedsSetup() {
		t.Fatal("only no-profile needs setup")
	}

	if !candidate.CanApply() {
		t.Fatal("candidate should be able to apply")
	}
	if anonymous.CanApply() || noProfile.CanApply() || employer.CanApply() {
		t.Fatal("only candidates apply")
	}

	if !employer.CanManageJobs() {
		t.Fatal("employer should manage jobs")
	}
	if anonymous.CanManageJobs() || noProfile.CanManageJobs() || candidate.CanManageJobs() {
		t.Fatal("only employers manage jobs")
	}
}

func TestOwnershipChecks(t *testing.T) {
	employer := Resolve(session.Authenticated, "acme", employerProfile(), sdk.RoleUser)
	otherEmployer := Resolve(session.Authenticated, "globex", employerProfile(), sdk.RoleUser)
	candidate := Resolve(session.Authenticated, "alice", candidateProfile(), sdk.RoleUser)
	otherCandidate := Resolve(session.Authenticated, "bob", candidateProfile(), sdk.RoleUser)

	job := sdk.Job{ID: 1, Employer: "acme"}
	app := sdk.Application{ID: 2, JobID: 1, Candidate: "alice"}

	if !employer.OwnsJob(job) {
		t.Fatal("owner check failed")
	}
	if otherEmployer.OwnsJob(job) {
		t.Fatal("non-owner passed ownership check")
	}
	if candidate.OwnsJob(job) {
		t.Fatal("candidates never own jobs")
	}

	if !candidate.OwnsApplication(app) {
		t.Fatal("applicant check failed")
	}
	if otherCandidate.OwnsApplication(app) {
		t.Fatal("non-applicant passed applicant check")
	}

	if !employer.ManagesApplication(app, job) {
		t.Fatal("job owner should manage its applications")
	}
	if otherEmployer.ManagesApplication(app, job) {
		t.Fatal("non-owner should not manage applications")
	}
	if employer.ManagesApplication(sdk.Application{ID: 3, JobID: 9}, job) {
		t.Fatal("application on a different job should not match")
	}

	// Both thread participants may message; nobody else.
	if !candidate.CanMessage(app, job) || !employer.CanMessage(app, job) {
		t.Fatal("participants should be able to message")
	}
	if otherCandidate.CanMessage(app, job) || otherEmployer.CanMessage(app, job) {
		t.Fatal("non-participants should not message")
	}
}
