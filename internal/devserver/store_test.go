package devserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeinepub/m-employed/pkg/sdk"
)

func seedEmployer(t *testing.T, s *Store, id sdk.Identity) {
	t.Helper()
	require.NoError(t, s.CreateAccount(id, sdk.AccountTypeEmployer, string(id)))
}

func seedCandidate(t *testing.T, s *Store, id sdk.Identity) {
	t.Helper()
	require.NoError(t, s.CreateAccount(id, sdk.AccountTypeCandidate, string(id)))
}

func seedPublishedJob(t *testing.T, s *Store, employer sdk.Identity) sdk.JobID {
	t.Helper()
	id, err := s.CreateJob(employer, sdk.CreateJobInput{Title: "Dev", Description: "code"})
	require.NoError(t, err)
	require.NoError(t, s.ToggleJobPublication(employer, id, true))
	return id
}

func TestAccountRecreationSwitchesTypeKeepsFields(t *testing.T) {
	s := NewStore()
	seedCandidate(t, s, "carol")
	require.NoError(t, s.UpdateProfile("carol", sdk.UpdateProfileInput{Location: "Berlin", Skills: []string{"go"}}))

	require.NoError(t, s.CreateAccount("carol", sdk.AccountTypeEmployer, "Carol"))
	profile, err := s.CallerProfile("carol")
	require.NoError(t, err)
	assert.Equal(t, sdk.AccountTypeEmployer, profile.AccountType)
	assert.Equal(t, "Berlin", profile.Location, "profile fields survive the switch")
	assert.Equal(t, uint64(1), s.MembersCount())
}

func TestEmployerProfileRequiresCompanyName(t *testing.T) {
	s := NewStore()
	seedEmployer(t, s, "acme")

	err := s.UpdateProfile("acme", sdk.UpdateProfileInput{Location: "NYC"})
	require.Error(t, err)
	assert.Equal(t, sdk.CodeInvalidArgument, sdk.CodeOf(err))

	require.NoError(t, s.UpdateProfile("acme", sdk.UpdateProfileInput{Location: "NYC", CompanyName: "Acme Corp"}))
}

func TestOnlyEmployersManageJobs(t *testing.T) {
	s := NewStore()
	seedCandidate(t, s, "alice")

	_, err := s.CreateJob("alice", sdk.CreateJobInput{Title: "x", Description: "y"})
	require.Error(t, err)
	assert.Equal(t, sdk.CodePermissionDenied, sdk.CodeOf(err))

	seedEmployer(t, s, "acme")
	jobID := seedPublishedJob(t, s, "acme")

	err = s.UpdateJob("alice", jobID, sdk.CreateJobInput{Title: "x", Description: "y"})
	require.Error(t, err)
	assert.Equal(t, sdk.CodePermissionDenied, sdk.CodeOf(err))
}

func TestUnpublishedJobHiddenAsAbsent(t *testing.T) {
	s := NewStore()
	seedEmployer(t, s, "acme")
	id, err := s.CreateJob("acme", sdk.CreateJobInput{Title: "Secret", Description: "hush"})
	require.NoError(t, err)

	// Owner sees it; everyone else gets not-found, not permission-denied.
	job, err := s.JobByID("acme", id)
	require.NoError(t, err)
	assert.Equal(t, "Secret", job.Title)

	_, err = s.JobByID("alice", id)
	require.Error(t, err)
	assert.Equal(t, sdk.CodeNotFound, sdk.CodeOf(err))

	_, err = s.JobByID("", id)
	require.Error(t, err)
	assert.Equal(t, sdk.CodeNotFound, sdk.CodeOf(err))

	assert.Empty(t, s.PublishedJobs())
	assert.Empty(t, s.JobsByEmployer("alice", "acme"))
	assert.Len(t, s.JobsByEmployer("acme", "acme"), 1)
}

func TestApplyRules(t *testing.T) {
	s := NewStore()
	seedEmployer(t, s, "acme")
	seedCandidate(t, s, "alice")
	jobID := seedPublishedJob(t, s, "acme")

	// Employers cannot apply.
	_, err := s.Apply("acme", jobID, sdk.ApplyInput{Message: "hi"})
	require.Error(t, err)
	assert.Equal(t, sdk.CodePermissionDenied, sdk.CodeOf(err))

	// Unpublished jobs cannot be applied to.
	hidden, err := s.CreateJob("acme", sdk.CreateJobInput{Title: "Hidden", Description: "x"})
	require.NoError(t, err)
	_, err = s.Apply("alice", hidden, sdk.ApplyInput{Message: "hi"})
	require.Error(t, err)
	assert.Equal(t, sdk.CodeNotFound, sdk.CodeOf(err))

	appID, err := s.Apply("alice", jobID, sdk.ApplyInput{Message: "hi"})
	require.NoError(t, err)
	require.NotZero(t, appID)

	// Uniqueness per (candidate, job) is enforced server-side.
	_, err = s.Apply("alice", jobID, sdk.ApplyInput{Message: "again"})
	require.Error(t, err)
	assert.Equal(t, sdk.CodeConflict, sdk.CodeOf(err))
}

func TestApplicationVisibility(t *testing.T) {
	s := NewStore()
	seedEmployer(t, s, "acme")
	seedCandidate(t, s, "alice")
	seedCandidate(t, s, "bob")
	jobID := seedPublishedJob(t, s, "acme")
	_, err := s.Apply("alice", jobID, sdk.ApplyInput{Message: "hi"})
	require.NoError(t, err)

	// Candidates read only their own list.
	apps, err := s.ApplicationsByCandidate("alice", "alice")
	require.NoError(t, err)
	assert.Len(t, apps, 1)

	_, err = s.ApplicationsByCandidate("bob", "alice")
	require.Error(t, err)
	assert.Equal(t, sdk.CodePermissionDenied, sdk.CodeOf(err))

	// Admins may read any candidate's list.
	s.SetAdmin("root")
	apps, err = s.ApplicationsByCandidate("root", "alice")
	require.NoError(t, err)
	assert.Len(t, apps, 1)

	// Only the owning employer reads a job's applications.
	_, err = s.ApplicationsByJob("bob", jobID)
	require.Error(t, err)
	assert.Equal(t, sdk.CodePermissionDenied, sdk.CodeOf(err))

	apps, err = s.ApplicationsByJob("acme", jobID)
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestStatusTransitionsOwnerOnly(t *testing.T) {
	s := NewStore()
	seedEmployer(t, s, "acme")
	seedEmployer(t, s, "globex")
	seedCandidate(t, s, "alice")
	jobID := seedPublishedJob(t, s, "acme")
	appID, err := s.Apply("alice", jobID, sdk.ApplyInput{Message: "hi"})
	require.NoError(t, err)

	err = s.UpdateApplicationStatus("globex", appID, sdk.StatusReviewed)
	require.Error(t, err)
	assert.Equal(t, sdk.CodePermissionDenied, sdk.CodeOf(err))

	err = s.UpdateApplicationStatus("alice", appID, sdk.StatusHired)
	require.Error(t, err)

	// Any status moves to any other; only ownership gates the transition.
	require.NoError(t, s.UpdateApplicationStatus("acme", appID, sdk.StatusHired))
	require.NoError(t, s.UpdateApplicationStatus("acme", appID, sdk.StatusSubmitted))

	err = s.UpdateApplicationStatus("acme", appID, "promoted")
	require.Error(t, err)
	assert.Equal(t, sdk.CodeInvalidArgument, sdk.CodeOf(err))
}

func TestMessageParticipants(t *testing.T) {
	s := NewStore()
	seedEmployer(t, s, "acme")
	seedCandidate(t, s, "alice")
	seedCandidate(t, s, "bob")
	jobID := seedPublishedJob(t, s, "acme")
	appID, err := s.Apply("alice", jobID, sdk.ApplyInput{Message: "hi"})
	require.NoError(t, err)

	_, err = s.SendMessage("alice", appID, "hello")
	require.NoError(t, err)
	_, err = s.SendMessage("acme", appID, "hello back")
	require.NoError(t, err)

	_, err = s.SendMessage("bob", appID, "intruding")
	require.Error(t, err)
	assert.Equal(t, sdk.CodePermissionDenied, sdk.CodeOf(err))

	msgs, err := s.MessagesByApplication("alice", appID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, sdk.Identity("alice"), msgs[0].Sender)
	assert.Equal(t, sdk.Identity("acme"), msgs[1].Sender)

	_, err = s.MessagesByApplication("bob", appID)
	require.Error(t, err)
}

func TestDeleteJobCascades(t *testing.T) {
	s := NewStore()
	seedEmployer(t, s, "acme")
	seedCandidate(t, s, "alice")
	jobID := seedPublishedJob(t, s, "acme")
	appID, err := s.Apply("alice", jobID, sdk.ApplyInput{Message: "hi"})
	require.NoError(t, err)
	_, err = s.SendMessage("alice", appID, "hello")
	require.NoError(t, err)

	require.NoError(t, s.DeleteJob("acme", jobID))

	apps, err := s.ApplicationsByCandidate("alice", "alice")
	require.NoError(t, err)
	assert.Empty(t, apps)

	_, err = s.MessagesByApplication("alice", appID)
	require.Error(t, err)
	assert.Equal(t, sdk.CodeNotFound, sdk.CodeOf(err))
}

func TestSearchMatchesAcrossFields(t *testing.T) {
	s := NewStore()
	seedEmployer(t, s, "acme")
	id, err := s.CreateJob("acme", sdk.CreateJobInput{
		Title:       "Backend Engineer",
		Description: "Distributed systems in Go",
		Location:    "Berlin",
		Skills:      []string{"PostgreSQL"},
	})
	require.NoError(t, err)
	require.NoError(t, s.ToggleJobPublication("acme", id, true))

	assert.Len(t, s.SearchJobs("backend"), 1)
	assert.Len(t, s.SearchJobs("DISTRIBUTED"), 1)
	assert.Len(t, s.SearchJobs("berlin"), 1)
	assert.Len(t, s.SearchJobs("postgres"), 1)
	assert.Empty(t, s.SearchJobs("haskell"))
	assert.Empty(t, s.SearchJobs(""), "empty terms match nothing")

	// Unpublished jobs never surface in search.
	require.NoError(t, s.ToggleJobPublication("acme", id, false))
	assert.Empty(t, s.SearchJobs("backend"))
}

func TestRoles(t *testing.T) {
	s := NewStore()
	assert.Equal(t, sdk.RoleGuest, s.Role(""))
	assert.Equal(t, sdk.RoleUser, s.Role("alice"))
	s.SetAdmin("root")
	assert.Equal(t, sdk.RoleAdmin, s.Role("root"))
}
