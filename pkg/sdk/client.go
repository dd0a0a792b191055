package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Client is the typed adapter over the marketplace backend's remote
// procedures. It performs no caching and no retries: every method issues one
// request and surfaces the backend's answer (or a coded error) unchanged.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOptions configures Client construction.
type ClientOptions struct {
	HTTPClient *http.Client
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient overrides the HTTP client used for backend calls. Pass an
// oauth2-authenticated client to call operations that require a session.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// NewClient creates an adapter that talks to the backend at baseURL.
func NewClient(baseURL string, optFns ...ClientOption) *Client {
	opts := ClientOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: opts.HTTPClient}
}

// do issues one JSON request. A non-2xx response is decoded from the error
// envelope into an *Error; transport failures map to CodeUnavailable.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return WrapError(CodeUnavailable, "backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope Error
		if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr != nil || envelope.Code == "" {
			return Errorf(codeFromStatus(resp.StatusCode), "backend returned %s", resp.Status)
		}
		return &envelope
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return WrapError(CodeInternal, "decode response", err)
		}
	}
	return nil
}

// CreateJobInput carries the writable fields of a job posting.
type CreateJobInput struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Location       string   `json:"location"`
	EmploymentType string   `json:"employment_type"`
	Skills         []string `json:"skills"`
}

// CreateJob creates an unpublished job owned by the caller.
func (c *Client) CreateJob(ctx context.Context, input CreateJobInput) (JobID, error) {
	var resp struct {
		ID JobID `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/jobs", input, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// UpdateJob replaces the writable fields of a job the caller owns.
func (c *Client) UpdateJob(ctx context.Context, id JobID, input CreateJobInput) error {
	return c.do(ctx, http.MethodPut, "/v1/jobs/"+id.String(), input, nil)
}

// DeleteJob removes a job the caller owns, along with its applications.
func (c *Client) DeleteJob(ctx context.Context, id JobID) error {
	return c.do(ctx, http.MethodDelete, "/v1/jobs/"+id.String(), nil, nil)
}

// ToggleJobPublication sets the published flag on a job the caller owns.
func (c *Client) ToggleJobPublication(ctx context.Context, id JobID, published bool) error {
	in := struct {
		Published bool `json:"published"`
	}{Published: published}
	return c.do(ctx, http.MethodPost, "/v1/jobs/"+id.String()+"/publication", in, nil)
}

// GetPublishedJobs lists all published jobs. Available anonymously.
func (c *Client) GetPublishedJobs(ctx context.Context) ([]Job, error) {
	var jobs []Job
	if err := c.do(ctx, http.MethodGet, "/v1/jobs/published", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJobsByEmployer lists all jobs owned by the given employer, including
// unpublished ones when the caller is the owner.
func (c *Client) GetJobsByEmployer(ctx context.Context, employer Identity) ([]Job, error) {
	var jobs []Job
	path := "/v1/employers/" + url.PathEscape(string(employer)) + "/jobs"
	if err := c.do(ctx, http.MethodGet, path, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob fetches a single job. Returns (nil, nil) when the job does not exist
// or is not visible to the caller.
func (c *Client) GetJob(ctx context.Context, id JobID) (*Job, error) {
	var job Job
	if err := c.do(ctx, http.MethodGet, "/v1/jobs/"+id.String(), nil, &job); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// SearchJobs matches the term against published jobs.
func (c *Client) SearchJobs(ctx context.Context, term string) ([]Job, error) {
	var jobs []Job
	path := "/v1/jobs/search?q=" + url.QueryEscape(term)
	if err := c.do(ctx, http.MethodGet, path, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// ApplyInput carries a candidate's application to one job.
type ApplyInput struct {
	Message      string `json:"message"`
	PortfolioURL string `json:"portfolio_url,omitempty"`
}

// ApplyToJob submits the caller's application for the given job.
func (c *Client) ApplyToJob(ctx context.Context, jobID JobID, input ApplyInput) (ApplicationID, error) {
	var resp struct {
		ID ApplicationID `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/jobs/"+jobID.String()+"/applications", input, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// GetApplicationsByCandidate lists applications submitted by the candidate.
func (c *Client) GetApplicationsByCandidate(ctx context.Context, candidate Identity) ([]Application, error) {
	var apps []Application
	path := "/v1/candidates/" + url.PathEscape(string(candidate)) + "/applications"
	if err := c.do(ctx, http.MethodGet, path, nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// GetApplicationsByJob lists applications received for a job the caller owns.
func (c *Client) GetApplicationsByJob(ctx context.Context, jobID JobID) ([]Application, error) {
	var apps []Application
	if err := c.do(ctx, http.MethodGet, "/v1/jobs/"+jobID.String()+"/applications", nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// UpdateApplicationStatus sets the status of an application on a job the
// caller owns.
func (c *Client) UpdateApplicationStatus(ctx context.Context, id ApplicationID, status ApplicationStatus) error {
	in := struct {
		Status ApplicationStatus `json:"status"`
	}{Status: status}
	return c.do(ctx, http.MethodPut, "/v1/applications/"+id.String()+"/status", in, nil)
}

// SendMessage appends a message to an application thread the caller
// participates in.
func (c *Client) SendMessage(ctx context.Context, id ApplicationID, content string) (MessageID, error) {
	in := struct {
		Content string `json:"content"`
	}{Content: content}
	var resp struct {
		ID MessageID `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/applications/"+id.String()+"/messages", in, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// GetMessagesByApplication lists a thread in ascending id order.
func (c *Client) GetMessagesByApplication(ctx context.Context, id ApplicationID) ([]Message, error) {
	var msgs []Message
	if err := c.do(ctx, http.MethodGet, "/v1/applications/"+id.String()+"/messages", nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// CreateAccount creates (or re-creates, to change account type) the caller's
// profile.
func (c *Client) CreateAccount(ctx context.Context, accountType AccountType, name string) error {
	in := struct {
		AccountType AccountType `json:"account_type"`
		Name        string      `json:"name"`
	}{AccountType: accountType, Name: name}
	return c.do(ctx, http.MethodPost, "/v1/account", in, nil)
}

// UpdateProfileInput carries the mutable profile fields. Skills applies to
// candidate profiles, CompanyName to employer profiles.
type UpdateProfileInput struct {
	Skills      []string `json:"skills,omitempty"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	CompanyName string   `json:"company_name"`
}

// UpdateProfile updates the caller's existing profile.
func (c *Client) UpdateProfile(ctx context.Context, input UpdateProfileInput) error {
	return c.do(ctx, http.MethodPut, "/v1/profile", input, nil)
}

// GetCallerUserProfile fetches the caller's profile. Returns (nil, nil) when
// the caller has not created an account yet.
func (c *Client) GetCallerUserProfile(ctx context.Context) (*UserProfile, error) {
	var profile UserProfile
	if err := c.do(ctx, http.MethodGet, "/v1/profile", nil, &profile); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetUserProfile fetches another user's profile. Returns (nil, nil) when no
// profile exists for the identity.
func (c *Client) GetUserProfile(ctx context.Context, user Identity) (*UserProfile, error) {
	var profile UserProfile
	path := "/v1/users/" + url.PathEscape(string(user)) + "/profile"
	if err := c.do(ctx, http.MethodGet, path, nil, &profile); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetCallerUserRole fetches the caller's platform role. Anonymous callers
// are guests.
func (c *Client) GetCallerUserRole(ctx context.Context) (UserRole, error) {
	var resp struct {
		Role UserRole `json:"role"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/role", nil, &resp); err != nil {
		return "", err
	}
	return resp.Role, nil
}

// GetTotalMembersCount returns the number of registered profiles.
func (c *Client) GetTotalMembersCount(ctx context.Context) (uint64, error) {
	var resp struct {
		Count uint64 `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/members/count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}
