package sdk

import (
	"strconv"
	"time"
)

// JobID identifies a job posting. IDs are issued by the backend and increase
// monotonically.
type JobID uint64

// ApplicationID identifies a job application.
type ApplicationID uint64

// MessageID identifies a message within an application thread.
type MessageID uint64

// Identity is the opaque principal of an authenticated user, issued by the
// identity provider (the OIDC subject claim). It is comparable but carries no
// meaning beyond equality.
type Identity string

func (id JobID) String() string         { return strconv.FormatUint(uint64(id), 10) }
func (id ApplicationID) String() string { return strconv.FormatUint(uint64(id), 10) }
func (id MessageID) String() string     { return strconv.FormatUint(uint64(id), 10) }

// AccountType distinguishes the two sides of the marketplace.
type AccountType string

const (
	AccountTypeEmployer  AccountType = "employer"
	AccountTypeCandidate AccountType = "candidate"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	return t == AccountTypeEmployer || t == AccountTypeCandidate
}

// ApplicationStatus is the finite-state field on an application. The backend
// accepts any transition from the employer owning the job; rejected and hired
// are terminal in normal usage but no ordering is enforced.
type ApplicationStatus string

const (
	StatusSubmitted ApplicationStatus = "submitted"
	StatusReviewed  ApplicationStatus = "reviewed"
	StatusInterview ApplicationStatus = "interview"
	StatusRejected  ApplicationStatus = "rejected"
	StatusHired     ApplicationStatus = "hired"
)

// Valid reports whether s is one of the known statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusReviewed, StatusInterview, StatusRejected, StatusHired:
		return true
	}
	return false
}

// UserRole is the backend-assigned platform role, distinct from the
// marketplace account type.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
	RoleGuest UserRole = "guest"
)

// Time is a timestamp that travels as a 64-bit unix nanosecond counter on the
// wire.
type Time time.Time

// MarshalJSON encodes the timestamp as unix nanoseconds.
func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(time.Time(t).UnixNano(), 10)), nil
}

// UnmarshalJSON decodes a unix nanosecond counter.
func (t *Time) UnmarshalJSON(data []byte) error {
	ns, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*t = Time(time.Unix(0, ns).UTC())
	return nil
}

// Std returns the timestamp as a standard time.Time.
func (t Time) Std() time.Time { return time.Time(t) }

// NewTime converts a standard time.Time.
func NewTime(t time.Time) Time { return Time(t.UTC()) }

// Job is a job posting owned by one employer. Unpublished jobs are visible
// only to their owner.
type Job struct {
	ID             JobID    `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Location       string   `json:"location"`
	EmploymentType string   `json:"employment_type"`
	Skills         []string `json:"skills"`
	Employer       Identity `json:"employer"`
	Published      bool     `json:"published"`
}

// Application links one candidate to one job. CreatedAt is immutable; status
// is mutated only by the employer owning the referenced job.
type Application struct {
	ID           ApplicationID     `json:"id"`
	JobID        JobID             `json:"job_id"`
	Candidate    Identity          `json:"candidate"`
	Message      string            `json:"message"`
	PortfolioURL string            `json:"portfolio_url,omitempty"`
	Status       ApplicationStatus `json:"status"`
	CreatedAt    Time              `json:"created_at"`
}

// Message belongs to one application thread. Threads are append-only and
// ordered by id ascending.
type Message struct {
	ID            MessageID     `json:"id"`
	ApplicationID ApplicationID `json:"application_id"`
	Sender        Identity      `json:"sender"`
	Content       string        `json:"content"`
	Timestamp     Time          `json:"timestamp"`
}

// UserProfile is owned by exactly one identity. Skills is used by candidate
// profiles only; CompanyName by employer profiles.
type UserProfile struct {
	Name        string      `json:"name"`
	AccountType AccountType `json:"account_type"`
	CompanyName string      `json:"company_name"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	Skills      []string    `json:"skills,omitempty"`
}
