package devserver

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/caffeinepub/m-employed/pkg/sdk"
)

// Store is the dev server's in-memory state. It enforces the same ownership
// and visibility rules the client gate encodes, so the gate is never the
// security boundary even against a misbehaving client.
type Store struct {
	mu       sync.Mutex
	profiles map[sdk.Identity]*sdk.UserProfile
	admins   map[sdk.Identity]bool
	jobs     map[sdk.JobID]*sdk.Job
	apps     map[sdk.ApplicationID]*sdk.Application
	msgs     map[sdk.ApplicationID][]sdk.Message

	nextJob uint64
	nextApp uint64
	nextMsg uint64

	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		profiles: make(map[sdk.Identity]*sdk.UserProfile),
		admins:   make(map[sdk.Identity]bool),
		jobs:     make(map[sdk.JobID]*sdk.Job),
		apps:     make(map[sdk.ApplicationID]*sdk.Application),
		msgs:     make(map[sdk.ApplicationID][]sdk.Message),
		now:      time.Now,
	}
}

var errNotLoggedIn = sdk.NewError(sdk.CodeUnauthenticated, "authentication required")

// SetAdmin flags an identity as platform admin.
func (s *Store) SetAdmin(id sdk.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[id] = true
}

// CreateAccount creates the caller's profile. Re-issuing creation changes
// the account type while preserving the other profile fields.
func (s *Store) CreateAccount(caller sdk.Identity, accountType sdk.AccountType, name string) error {
	if caller == "" {
		return errNotLoggedIn
	}
	if !accountType.Valid() {
		return sdk.Errorf(sdk.CodeInvalidArgument, "unknown account type %q", accountType)
	}
	if strings.TrimSpace(name) == "" {
		return sdk.NewError(sdk.CodeInvalidArgument, "name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.profiles[caller]; ok {
		existing.Name = name
		existing.AccountType = accountType
		return nil
	}
	s.profiles[caller] = &sdk.UserProfile{Name: name, AccountType: accountType}
	return nil
}

// UpdateProfile updates the caller's existing profile.
func (s *Store) UpdateProfile(caller sdk.Identity, input sdk.UpdateProfileInput) error {
	if caller == "" {
		return errNotLoggedIn
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[caller]
	if !ok {
		return sdk.NewError(sdk.CodeNotFound, "no profile for caller")
	}
	if profile.AccountType == sdk.AccountTypeEmployer && strings.TrimSpace(input.CompanyName) == "" {
		return sdk.NewError(sdk.CodeInvalidArgument, "company name is required")
	}
	profile.Skills = input.Skills
	profile.Location = input.Location
	profile.Description = input.Description
	profile.CompanyName = input.CompanyName
	return nil
}

// CallerProfile returns the caller's profile.
func (s *Store) CallerProfile(caller sdk.Identity) (*sdk.UserProfile, error) {
	if caller == "" {
		return nil, errNotLoggedIn
	}
	return s.ProfileOf(caller)
}

// ProfileOf returns any user's profile.
func (s *Store) ProfileOf(user sdk.Identity) (*sdk.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[user]
	if !ok {
		return nil, sdk.NewError(sdk.CodeNotFound, "profile not found")
	}
	copied := *profile
	return &copied, nil
}

// Role derives the platform role of the caller.
func (s *Store) Role(caller sdk.Identity) sdk.UserRole {
	if caller == "" {
		return sdk.RoleGuest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.admins[caller] {
		return sdk.RoleAdmin
	}
	return sdk.RoleUser
}

// MembersCount returns the number of registered profiles.
func (s *Store) MembersCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint64(len(s.profiles))
}

func (s *Store) employerLocked(caller sdk.Identity) error {
	if caller == "" {
		return errNotLoggedIn
	}
	profile, ok := s.profiles[caller]
	if !ok || profile.AccountType != sdk.AccountTypeEmployer {
		return sdk.NewError(sdk.CodePermissionDenied, "employer account required")
	}
	return nil
}

// CreateJob creates an unpublished job owned by the caller.
func (s *Store) CreateJob(caller sdk.Identity, input sdk.CreateJobInput) (sdk.JobID, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return 0, sdk.NewError(sdk.CodeInvalidArgument, "title and description are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.employerLocked(caller); err != nil {
		return 0, err
	}
	s.nextJob++
	id := sdk.JobID(s.nextJob)
	s.jobs[id] = &sdk.Job{
		ID:             id,
		Title:          input.Title,
		Description:    input.Description,
		Location:       input.Location,
		EmploymentType: input.EmploymentType,
		Skills:         input.Skills,
		Employer:       caller,
		Published:      false,
	}
	return id, nil
}

func (s *Store) ownedJobLocked(caller sdk.Identity, id sdk.JobID) (*sdk.Job, error) {
	if caller == "" {
		return nil, errNotLoggedIn
	}
	job, ok := s.jobs[id]
	if !ok {
		return nil, sdk.Errorf(sdk.CodeNotFound, "job %d not found", id)
	}
	if job.Employer != caller {
		return nil, sdk.NewError(sdk.CodePermissionDenied, "not the owner of this job")
	}
	return job, nil
}

// UpdateJob replaces the writable fields of a job the caller owns.
func (s *Store) UpdateJob(caller sdk.Identity, id sdk.JobID, input sdk.CreateJobInput) error {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return sdk.NewError(sdk.CodeInvalidArgument, "title and description are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	job, err := s.ownedJobLocked(caller, id)
	if err != nil {
		return err
	}
	job.Title = input.Title
	job.Description = input.Description
	job.Location = input.Location
	job.EmploymentType = input.EmploymentType
	job.Skills = input.Skills
	return nil
}

// ToggleJobPublication sets the published flag on a job the caller owns.
func (s *Store) ToggleJobPublication(caller sdk.Identity, id sdk.JobID, published bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, err := s.ownedJobLocked(caller, id)
	if err != nil {
		return err
	}
	job.Published = published
	return nil
}

// DeleteJob removes a job the caller owns together with its applications and
// their message threads.
func (s *Store) DeleteJob(caller sdk.Identity, id sdk.JobID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ownedJobLocked(caller, id); err != nil {
		return err
	}
	delete(s.jobs, id)
	for appID, app := range s.apps {
		if app.JobID == id {
			delete(s.apps, appID)
			delete(s.msgs, appID)
		}
	}
	return nil
}

// PublishedJobs lists published jobs in ascending id order.
func (s *Store) PublishedJobs() []sdk.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	var jobs []sdk.Job
	for _, job := range s.jobs {
		if job.Published {
			jobs = append(jobs, *job)
		}
	}
	sortJobs(jobs)
	return jobs
}

// JobsByEmployer lists an employer's jobs. The owner sees unpublished jobs;
// everyone else only published ones.
func (s *Store) JobsByEmployer(caller, employer sdk.Identity) []sdk.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	var jobs []sdk.Job
	for _, job := range s.jobs {
		if job.Employer != employer {
			continue
		}
		if job.Published || caller == employer {
			jobs = append(jobs, *job)
		}
	}
	sortJobs(jobs)
	return jobs
}

// JobByID returns a job visible to the caller. Unpublished jobs are hidden
// from everyone but their owner, indistinguishably from absence.
func (s *Store) JobByID(caller sdk.Identity, id sdk.JobID) (*sdk.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok || (!job.Published && job.Employer != caller) {
		return nil, sdk.Errorf(sdk.CodeNotFound, "job %d not found", id)
	}
	copied := *job
	return &copied, nil
}

// SearchJobs matches the term against published jobs, case-insensitively,
// across title, description, location, employment type, and skills.
func (s *Store) SearchJobs(term string) []sdk.Job {
	needle := strings.ToLower(strings.TrimSpace(term))
	s.mu.Lock()
	defer s.mu.Unlock()
	var jobs []sdk.Job
	for _, job := range s.jobs {
		if job.Published && jobMatches(job, needle) {
			jobs = append(jobs, *job)
		}
	}
	sortJobs(jobs)
	return jobs
}

func jobMatches(job *sdk.Job, needle string) bool {
	if needle == "" {
		return false
	}
	haystacks := []string{job.Title, job.Description, job.Location, job.EmploymentType}
	haystacks = append(haystacks, job.Skills...)
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

// Apply submits the caller's application to a published job. One application
// per (candidate, job) pair is enforced here.
func (s *Store) Apply(caller sdk.Identity, jobID sdk.JobID, input sdk.ApplyInput) (sdk.ApplicationID, error) {
	if strings.TrimSpace(input.Message) == "" {
		return 0, sdk.NewError(sdk.CodeInvalidArgument, "cover message is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if caller == "" {
		return 0, errNotLoggedIn
	}
	profile, ok := s.profiles[caller]
	if !ok || profile.AccountType != sdk.AccountTypeCandidate {
		return 0, sdk.NewError(sdk.CodePermissionDenied, "candidate account required")
	}
	job, ok := s.jobs[jobID]
	if !ok || !job.Published {
		return 0, sdk.Errorf(sdk.CodeNotFound, "job %d not found", jobID)
	}
	for _, app := range s.apps {
		if app.JobID == jobID && app.Candidate == caller {
			return 0, sdk.NewError(sdk.CodeConflict, "already applied to this job")
		}
	}

	s.nextApp++
	id := sdk.ApplicationID(s.nextApp)
	s.apps[id] = &sdk.Application{
		ID:           id,
		JobID:        jobID,
		Candidate:    caller,
		Message:      input.Message,
		PortfolioURL: input.PortfolioURL,
		Status:       sdk.StatusSubmitted,
		CreatedAt:    sdk.NewTime(s.now()),
	}
	return id, nil
}

// ApplicationsByCandidate lists a candidate's applications. Only the
// candidate themselves (or an admin) may read the list.
func (s *Store) ApplicationsByCandidate(caller, candidate sdk.Identity) ([]sdk.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caller == "" {
		return nil, errNotLoggedIn
	}
	if caller != candidate && !s.admins[caller] {
		return nil, sdk.NewError(sdk.CodePermissionDenied, "cannot read another candidate's applications")
	}
	var apps []sdk.Application
	for _, app := range s.apps {
		if app.Candidate == candidate {
			apps = append(apps, *app)
		}
	}
	sortApplications(apps)
	return apps, nil
}

// ApplicationsByJob lists a job's applications for its owning employer.
func (s *Store) ApplicationsByJob(caller sdk.Identity, jobID sdk.JobID) ([]sdk.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ownedJobLocked(caller, jobID); err != nil {
		return nil, err
	}
	var apps []sdk.Application
	for _, app := range s.apps {
		if app.JobID == jobID {
			apps = append(apps, *app)
		}
	}
	sortApplications(apps)
	return apps, nil
}

// UpdateApplicationStatus transitions an application's status. Only the
// employer owning the referenced job may do so; no transition ordering is
// enforced beyond that.
func (s *Store) UpdateApplicationStatus(caller sdk.Identity, id sdk.ApplicationID, status sdk.ApplicationStatus) error {
	if !status.Valid() {
		return sdk.Errorf(sdk.CodeInvalidArgument, "unknown application status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return sdk.Errorf(sdk.CodeNotFound, "application %d not found", id)
	}
	if _, err := s.ownedJobLocked(caller, app.JobID); err != nil {
		return err
	}
	app.Status = status
	return nil
}

func (s *Store) participantLocked(caller sdk.Identity, appID sdk.ApplicationID) (*sdk.Application, error) {
	if caller == "" {
		return nil, errNotLoggedIn
	}
	app, ok := s.apps[appID]
	if !ok {
		return nil, sdk.Errorf(sdk.CodeNotFound, "application %d not found", appID)
	}
	if app.Candidate == caller {
		return app, nil
	}
	if job, ok := s.jobs[app.JobID]; ok && job.Employer == caller {
		return app, nil
	}
	return nil, sdk.NewError(sdk.CodePermissionDenied, "not a participant in this application")
}

// SendMessage appends to an application thread the caller participates in.
func (s *Store) SendMessage(caller sdk.Identity, appID sdk.ApplicationID, content string) (sdk.MessageID, error) {
	if strings.TrimSpace(content) == "" {
		return 0, sdk.NewError(sdk.CodeInvalidArgument, "message content is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.participantLocked(caller, appID); err != nil {
		return 0, err
	}
	s.nextMsg++
	id := sdk.MessageID(s.nextMsg)
	s.msgs[appID] = append(s.msgs[appID], sdk.Message{
		ID:            id,
		ApplicationID: appID,
		Sender:        caller,
		Content:       content,
		Timestamp:     sdk.NewTime(s.now()),
	})
	return id, nil
}

// MessagesByApplication lists a thread in ascending id order.
func (s *Store) MessagesByApplication(caller sdk.Identity, appID sdk.ApplicationID) ([]sdk.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.participantLocked(caller, appID); err != nil {
		return nil, err
	}
	msgs := make([]sdk.Message, len(s.msgs[appID]))
	copy(msgs, s.msgs[appID])
	return msgs, nil
}

func sortJobs(jobs []sdk.Job) {
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
}

func sortApplications(apps []sdk.Application) {
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
}
