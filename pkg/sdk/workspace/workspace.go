// Package workspace composes the remote adapter, entity cache, session
// manager, and authorization gate into the single process-wide client core.
//
// Reads serve cached data or fetch through the adapter; writes go to the
// backend first and, only on success, apply the invalidation set for the
// mutation, so dependent views observe the new state on their next read. A
// failed write never perturbs the cache.
package workspace

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/caffeinepub/m-employed/pkg/sdk"
	"github.com/caffeinepub/m-employed/pkg/sdk/authz"
	"github.com/caffeinepub/m-employed/pkg/sdk/cache"
	"github.com/caffeinepub/m-employed/pkg/sdk/session"
)

// MutationKind names one write path for the in-flight guard.
type MutationKind string

const (
	MutationCreateAccount     MutationKind = "create-account"
	MutationUpdateProfile     MutationKind = "update-profile"
	MutationCreateJob         MutationKind = "create-job"
	MutationUpdateJob         MutationKind = "update-job"
	MutationTogglePublication MutationKind = "toggle-publication"
	MutationDeleteJob         MutationKind = "delete-job"
	MutationApplyToJob        MutationKind = "apply-to-job"
	MutationUpdateAppStatus   MutationKind = "update-application-status"
	MutationSendMessage       MutationKind = "send-message"
)

// ErrMutationInFlight is returned when a mutation of the same kind is still
// resolving. The guard replaces UI control disablement with an explicit flag:
// rapid double-submits are refused, not queued.
var ErrMutationInFlight = sdk.NewError(sdk.CodeConflict, "mutation of this kind already in flight")

// ErrAlreadyApplied is returned when the caller's cached application list
// already contains an application for the job. Best-effort: the backend does
// not enforce uniqueness, so the client prevents the duplicate submission.
var ErrAlreadyApplied = sdk.NewError(sdk.CodeConflict, "already applied to this job")

// Options configures Workspace construction.
type Options struct {
	Logger *slog.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithLogger sets the structured logger used for mutation records.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// Workspace is the client core. Create exactly one per process at startup
// and pass it by reference; it holds the only mutable shared state (the
// entity cache), and all cache mutation funnels through its invalidations.
type Workspace struct {
	client  *sdk.Client
	cache   *cache.Store
	session *session.Manager
	logger  *slog.Logger

	mu       sync.Mutex
	inflight map[MutationKind]bool
}

// New wires the workspace together and registers the cache reset on identity
// change: no per-identity data survives a session transition.
func New(client *sdk.Client, store *cache.Store, sess *session.Manager, optFns ...Option) *Workspace {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	w := &Workspace{
		client:   client,
		cache:    store,
		session:  sess,
		logger:   opts.Logger,
		inflight: make(map[MutationKind]bool),
	}
	sess.OnReset(store.Reset)
	return w
}

// Session exposes the session manager for login/logout flows.
func (w *Workspace) Session() *session.Manager { return w.session }

// Client exposes the underlying adapter.
func (w *Workspace) Client() *sdk.Client { return w.client }

func (w *Workspace) begin(kind MutationKind) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inflight[kind] {
		return ErrMutationInFlight
	}
	w.inflight[kind] = true
	return nil
}

func (w *Workspace) end(kind MutationKind) {
	w.mu.Lock()
	delete(w.inflight, kind)
	w.mu.Unlock()
}

func (w *Workspace) identity() (sdk.Identity, error) {
	id, ok := w.session.Identity()
	if !ok {
		return "", session.ErrNotAuthenticated
	}
	return id, nil
}

// --- Cached reads ---

// PublishedJobs lists all published jobs.
func (w *Workspace) PublishedJobs(ctx context.Context) ([]sdk.Job, error) {
	return cache.Read(ctx, w.cache, cache.Key{Family: cache.FamilyPublishedJobs}, w.client.GetPublishedJobs)
}

// SearchJobs matches the term against published jobs; each term caches
// separately.
func (w *Workspace) SearchJobs(ctx context.Context, term string) ([]sdk.Job, error) {
	key := cache.Key{Family: cache.FamilyJobSearch, Param: term}
	return cache.Read(ctx, w.cache, key, func(ctx context.Context) ([]sdk.Job, error) {
		return w.client.SearchJobs(ctx, term)
	})
}

// Job fetches one job. Returns (nil, nil) when the job is absent or not
// visible to the caller.
func (w *Workspace) Job(ctx context.Context, id sdk.JobID) (*sdk.Job, error) {
	key := cache.Key{Family: cache.FamilyJob, Param: id.String()}
	return cache.Read(ctx, w.cache, key, func(ctx context.Context) (*sdk.Job, error) {
		return w.client.GetJob(ctx, id)
	})
}

// MyJobs lists the caller's jobs, published or not.
func (w *Workspace) MyJobs(ctx context.Context) ([]sdk.Job, error) {
	id, err := w.identity()
	if err != nil {
		return nil, err
	}
	key := cache.Key{Family: cache.FamilyJobsByEmployer, Param: string(id)}
	return cache.Read(ctx, w.cache, key, func(ctx context.Context) ([]sdk.Job, error) {
		return w.client.GetJobsByEmployer(ctx, id)
	})
}

// MyApplications lists the caller's submitted applications.
func (w *Workspace) MyApplications(ctx context.Context) ([]sdk.Application, error) {
	id, err := w.identity()
	if err != nil {
		return nil, err
	}
	key := cache.Key{Family: cache.FamilyApplicationsByCandidate, Param: string(id)}
	return cache.Read(ctx, w.cache, key, func(ctx context.Context) ([]sdk.Application, error) {
		return w.client.GetApplicationsByCandidate(ctx, id)
	})
}

// JobApplications lists the applications received for one of the caller's
// jobs.
func (w *Workspace) JobApplications(ctx context.Context, jobID sdk.JobID) ([]sdk.Application, error) {
	key := cache.Key{Family: cache.FamilyApplicationsByJob, Param: jobID.String()}
	return cache.Read(ctx, w.cache, key, func(ctx context.Context) ([]sdk.Application, error) {
		return w.client.GetApplicationsByJob(ctx, jobID)
	})
}

// Messages lists an application thread in ascending order.
func (w *Workspace) Messages(ctx context.Context, appID sdk.ApplicationID) ([]sdk.Message, error) {
	key := cache.Key{Family: cache.FamilyMessagesByApplication, Param: appID.String()}
	return cache.Read(ctx, w.cache, key, func(ctx context.Context) ([]sdk.Message, error) {
		return w.client.GetMessagesByApplication(ctx, appID)
	})
}

// MyProfile fetches the caller's profile, or (nil, nil) before account setup.
func (w *Workspace) MyProfile(ctx context.Context) (*sdk.UserProfile, error) {
	if _, err := w.identity(); err != nil {
		return nil, err
	}
	return cache.Read(ctx, w.cache, cache.Key{Family: cache.FamilyCallerProfile}, w.client.GetCallerUserProfile)
}

// Profile fetches another user's profile.
func (w *Workspace) Profile(ctx context.Context, user sdk.Identity) (*sdk.UserProfile, error) {
	key := cache.Key{Family: cache.FamilyProfile, Param: string(user)}
	return cache.Read(ctx, w.cache, key, func(ctx context.Context) (*sdk.UserProfile, error) {
		return w.client.GetUserProfile(ctx, user)
	})
}

// CallerRole fetches the caller's platform role.
func (w *Workspace) CallerRole(ctx context.Context) (sdk.UserRole, error) {
	return cache.Read(ctx, w.cache, cache.Key{Family: cache.FamilyCallerRole}, w.client.GetCallerUserRole)
}

// MemberCount returns the number of registered profiles.
func (w *Workspace) MemberCount(ctx context.Context) (uint64, error) {
	return cache.Read(ctx, w.cache, cache.Key{Family: cache.FamilyMemberCount}, w.client.GetTotalMembersCount)
}

// Access resolves the caller's capability set from session and cached
// profile state.
func (w *Workspace) Access(ctx context.Context) (authz.Access, error) {
	status := w.session.Status()
	if status != session.Authenticated {
		return authz.Resolve(status, "", nil, sdk.RoleGuest), nil
	}

	id, err := w.identity()
	if err != nil {
		return authz.Access{}, err
	}
	profile, err := w.MyProfile(ctx)
	if err != nil {
		return authz.Access{}, err
	}
	role, err := w.CallerRole(ctx)
	if err != nil {
		return authz.Access{}, err
	}
	return authz.Resolve(status, id, profile, role), nil
}

// --- Mutations ---

// invalidate applies one mutation's invalidation set and logs it.
func (w *Workspace) invalidate(kind MutationKind, keys []cache.Key, families []cache.Family) {
	for _, key := range keys {
		w.cache.Invalidate(key)
	}
	for _, family := range families {
		w.cache.InvalidateFamily(family)
	}
	w.logger.Debug("mutation committed", "kind", string(kind))
}

// CreateAccount creates the caller's profile, or re-creates it to change the
// account type.
func (w *Workspace) CreateAccount(ctx context.Context, accountType sdk.AccountType, name string) error {
	if !accountType.Valid() {
		return sdk.Errorf(sdk.CodeInvalidArgument, "unknown account type %q", accountType)
	}
	if strings.TrimSpace(name) == "" {
		return sdk.NewError(sdk.CodeInvalidArgument, "name is required")
	}
	if _, err := w.identity(); err != nil {
		return err
	}

	if err := w.begin(MutationCreateAccount); err != nil {
		return err
	}
	defer w.end(MutationCreateAccount)

	if err := w.client.CreateAccount(ctx, accountType, name); err != nil {
		return err
	}
	w.invalidate(MutationCreateAccount, []cache.Key{{Family: cache.FamilyCallerProfile}}, nil)
	return nil
}

// UpdateProfile updates the caller's existing profile.
func (w *Workspace) UpdateProfile(ctx context.Context, input sdk.UpdateProfileInput) error {
	access, err := w.Access(ctx)
	if err != nil {
		return err
	}
	switch access.Level {
	case authz.Candidate, authz.Employer:
	default:
		return sdk.NewError(sdk.CodePermissionDenied, "account setup required")
	}
	if access.Level == authz.Employer && strings.TrimSpace(input.CompanyName) == "" {
		return sdk.NewError(sdk.CodeInvalidArgument, "company name is required")
	}

	if err := w.begin(MutationUpdateProfile); err != nil {
		return err
	}
	defer w.end(MutationUpdateProfile)

	if err := w.client.UpdateProfile(ctx, input); err != nil {
		return err
	}
	w.invalidate(MutationUpdateProfile, []cache.Key{{Family: cache.FamilyCallerProfile}}, nil)
	return nil
}

func validateJobInput(input sdk.CreateJobInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return sdk.NewError(sdk.CodeInvalidArgument, "job title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return sdk.NewError(sdk.CodeInvalidArgument, "job description is required")
	}
	return nil
}

// CreateJob creates an unpublished job owned by the caller.
func (w *Workspace) CreateJob(ctx context.Context, input sdk.CreateJobInput) (sdk.JobID, error) {
	if err := validateJobInput(input); err != nil {
		return 0, err
	}
	access, err := w.Access(ctx)
	if err != nil {
		return 0, err
	}
	if !access.CanManageJobs() {
		return 0, sdk.NewError(sdk.CodePermissionDenied, "only employers can create jobs")
	}

	if err := w.begin(MutationCreateJob); err != nil {
		return 0, err
	}
	defer w.end(MutationCreateJob)

	id, err := w.client.CreateJob(ctx, input)
	if err != nil {
		return 0, err
	}
	w.invalidate(MutationCreateJob, []cache.Key{
		{Family: cache.FamilyJobsByEmployer, Param: string(access.Identity)},
	}, nil)
	return id, nil
}

// ownedJob re-validates ownership at mutation time: the job must exist, be
// visible to the caller, and record the caller as its employer.
func (w *Workspace) ownedJob(ctx context.Context, access authz.Access, id sdk.JobID) (*sdk.Job, error) {
	job, err := w.Job(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, sdk.Errorf(sdk.CodeNotFound, "job %d not found", id)
	}
	if !access.OwnsJob(*job) {
		return nil, sdk.NewError(sdk.CodePermissionDenied, "not the owner of this job")
	}
	return job, nil
}

// UpdateJob replaces the writable fields of a job the caller owns.
func (w *Workspace) UpdateJob(ctx context.Context, id sdk.JobID, input sdk.CreateJobInput) error {
	if err := validateJobInput(input); err != nil {
		return err
	}
	access, err := w.Access(ctx)
	if err != nil {
		return err
	}
	if _, err := w.ownedJob(ctx, access, id); err != nil {
		return err
	}

	if err := w.begin(MutationUpdateJob); err != nil {
		return err
	}
	defer w.end(MutationUpdateJob)

	if err := w.client.UpdateJob(ctx, id, input); err != nil {
		return err
	}
	w.invalidate(MutationUpdateJob, []cache.Key{
		{Family: cache.FamilyJobsByEmployer, Param: string(access.Identity)},
		{Family: cache.FamilyJob, Param: id.String()},
		{Family: cache.FamilyPublishedJobs},
	}, nil)
	return nil
}

// ToggleJobPublication sets the published flag on a job the caller owns.
func (w *Workspace) ToggleJobPublication(ctx context.Context, id sdk.JobID, published bool) error {
	access, err := w.Access(ctx)
	if err != nil {
		return err
	}
	if _, err := w.ownedJob(ctx, access, id); err != nil {
		return err
	}

	if err := w.begin(MutationTogglePublication); err != nil {
		return err
	}
	defer w.end(MutationTogglePublication)

	if err := w.client.ToggleJobPublication(ctx, id, published); err != nil {
		return err
	}
	w.invalidate(MutationTogglePublication, []cache.Key{
		{Family: cache.FamilyJobsByEmployer, Param: string(access.Identity)},
		{Family: cache.FamilyJob, Param: id.String()},
		{Family: cache.FamilyPublishedJobs},
	}, nil)
	return nil
}

// DeleteJob removes a job the caller owns. Per-job application lists are
// invalidated family-wide since the deleted job's applications disappear
// with it.
func (w *Workspace) DeleteJob(ctx context.Context, id sdk.JobID) error {
	access, err := w.Access(ctx)
	if err != nil {
		return err
	}
	if _, err := w.ownedJob(ctx, access, id); err != nil {
		return err
	}

	if err := w.begin(MutationDeleteJob); err != nil {
		return err
	}
	defer w.end(MutationDeleteJob)

	if err := w.client.DeleteJob(ctx, id); err != nil {
		return err
	}
	w.invalidate(MutationDeleteJob, []cache.Key{
		{Family: cache.FamilyJobsByEmployer, Param: string(access.Identity)},
		{Family: cache.FamilyPublishedJobs},
	}, nil)
	return nil
}

// ApplyToJob submits the caller's application. A duplicate application for
// the same job is refused from the caller's own cached list before any
// remote call is made.
func (w *Workspace) ApplyToJob(ctx context.Context, jobID sdk.JobID, input sdk.ApplyInput) (sdk.ApplicationID, error) {
	if strings.TrimSpace(input.Message) == "" {
		return 0, sdk.NewError(sdk.CodeInvalidArgument, "cover message is required")
	}
	access, err := w.Access(ctx)
	if err != nil {
		return 0, err
	}
	if !access.CanApply() {
		return 0, sdk.NewError(sdk.CodePermissionDenied, "only candidates can apply to jobs")
	}

	mine, err := w.MyApplications(ctx)
	if err != nil {
		return 0, err
	}
	for _, app := range mine {
		if app.JobID == jobID {
			return 0, ErrAlreadyApplied
		}
	}

	if err := w.begin(MutationApplyToJob); err != nil {
		return 0, err
	}
	defer w.end(MutationApplyToJob)

	id, err := w.client.ApplyToJob(ctx, jobID, input)
	if err != nil {
		return 0, err
	}
	w.invalidate(MutationApplyToJob, []cache.Key{
		{Family: cache.FamilyApplicationsByCandidate, Param: string(access.Identity)},
	}, nil)
	return id, nil
}

// UpdateApplicationStatus transitions an application on a job the caller
// owns. Any status may move to any other; only ownership is enforced. The
// candidate-side application lists are invalidated family-wide because the
// mutator does not know which candidate's list is affected.
func (w *Workspace) UpdateApplicationStatus(ctx context.Context, jobID sdk.JobID, appID sdk.ApplicationID, status sdk.ApplicationStatus) error {
	if !status.Valid() {
		return sdk.Errorf(sdk.CodeInvalidArgument, "unknown application status %q", status)
	}
	access, err := w.Access(ctx)
	if err != nil {
		return err
	}
	if _, err := w.ownedJob(ctx, access, jobID); err != nil {
		return err
	}
	apps, err := w.JobApplications(ctx, jobID)
	if err != nil {
		return err
	}
	found := false
	for _, app := range apps {
		if app.ID == appID {
			found = true
			break
		}
	}
	if !found {
		return sdk.Errorf(sdk.CodeNotFound, "application %d not found on job %d", appID, jobID)
	}

	if err := w.begin(MutationUpdateAppStatus); err != nil {
		return err
	}
	defer w.end(MutationUpdateAppStatus)

	if err := w.client.UpdateApplicationStatus(ctx, appID, status); err != nil {
		return err
	}
	w.invalidate(MutationUpdateAppStatus, []cache.Key{
		{Family: cache.FamilyApplicationsByJob, Param: jobID.String()},
	}, []cache.Family{cache.FamilyApplicationsByCandidate})
	return nil
}

// canMessage mirrors the thread-participant rule ahead of the remote call:
// candidates check their own application list, employers their jobs'
// application lists. The backend re-checks in either case.
func (w *Workspace) canMessage(ctx context.Context, access authz.Access, appID sdk.ApplicationID) error {
	switch access.Level {
	case authz.Candidate:
		mine, err := w.MyApplications(ctx)
		if err != nil {
			return err
		}
		for _, app := range mine {
			if app.ID == appID {
				return nil
			}
		}
	case authz.Employer:
		jobs, err := w.MyJobs(ctx)
		if err != nil {
			return err
		}
		for _, job := range jobs {
			apps, err := w.JobApplications(ctx, job.ID)
			if err != nil {
				return err
			}
			for _, app := range apps {
				if app.ID == appID {
					return nil
				}
			}
		}
	default:
		return sdk.NewError(sdk.CodePermissionDenied, "account setup required")
	}
	return sdk.NewError(sdk.CodePermissionDenied, "not a participant in this application")
}

// SendMessage appends to an application thread the caller participates in.
func (w *Workspace) SendMessage(ctx context.Context, appID sdk.ApplicationID, content string) (sdk.MessageID, error) {
	if strings.TrimSpace(content) == "" {
		return 0, sdk.NewError(sdk.CodeInvalidArgument, "message content is required")
	}
	access, err := w.Access(ctx)
	if err != nil {
		return 0, err
	}
	if err := w.canMessage(ctx, access, appID); err != nil {
		return 0, err
	}

	if err := w.begin(MutationSendMessage); err != nil {
		return 0, err
	}
	defer w.end(MutationSendMessage)

	id, err := w.client.SendMessage(ctx, appID, content)
	if err != nil {
		return 0, err
	}
	w.invalidate(MutationSendMessage, []cache.Key{
		{Family: cache.FamilyMessagesByApplication, Param: appID.String()},
	}, nil)
	return id, nil
}
