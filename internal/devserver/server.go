// Package devserver is an in-memory reference implementation of the
// marketplace backend's remote interface. It exists so the client core can be
// exercised end to end without the production backend: the cmd/meapi binary
// serves it, and the SDK's tests run against it via httptest.
package devserver

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/caffeinepub/m-employed/pkg/sdk"
)

// Server bundles the store, token issuer, and HTTP surface.
type Server struct {
	store   *Store
	issuer  *TokenIssuer
	logger  *slog.Logger
	limiter *rateLimiter
}

// NewServer creates a dev server from the given configuration.
func NewServer(cfg Config, logger *slog.Logger) *Server {
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			panic(err)
		}
		secret = []byte(hex.EncodeToString(buf))
		logger.Warn("ME_JWT_SECRET not set; tokens will not survive a restart")
	}
	return &Server{
		store:   NewStore(),
		issuer:  NewTokenIssuer(secret, cfg.TokenTTL),
		logger:  logger,
		limiter: newRateLimiter(cfg.RatePerSecond, cfg.RateBurst),
	}
}

// Store exposes the backing store for test setup.
func (s *Server) Store() *Store { return s.store }

// Handler builds the HTTP routing surface.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	r.Use(s.withIdentity)
	r.Use(requestLogger(s.logger))
	r.Use(s.rateLimit)

	r.Get("/health", s.handleHealth)
	r.Post("/v1/auth/login", s.handleDevLogin)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/jobs", s.handleCreateJob)
		r.Get("/jobs/published", s.handlePublishedJobs)
		r.Get("/jobs/search", s.handleSearchJobs)
		r.Get("/jobs/{jobID}", s.handleGetJob)
		r.Put("/jobs/{jobID}", s.handleUpdateJob)
		r.Delete("/jobs/{jobID}", s.handleDeleteJob)
		r.Post("/jobs/{jobID}/publication", s.handleTogglePublication)
		r.Post("/jobs/{jobID}/applications", s.handleApply)
		r.Get("/jobs/{jobID}/applications", s.handleApplicationsByJob)
		r.Get("/employers/{employer}/jobs", s.handleJobsByEmployer)
		r.Get("/candidates/{candidate}/applications", s.handleApplicationsByCandidate)
		r.Put("/applications/{appID}/status", s.handleUpdateApplicationStatus)
		r.Post("/applications/{appID}/messages", s.handleSendMessage)
		r.Get("/applications/{appID}/messages", s.handleMessages)
		r.Post("/account", s.handleCreateAccount)
		r.Get("/profile", s.handleCallerProfile)
		r.Put("/profile", s.handleUpdateProfile)
		r.Get("/users/{user}/profile", s.handleUserProfile)
		r.Get("/role", s.handleRole)
		r.Get("/members/count", s.handleMembersCount)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return sdk.NewError(sdk.CodeInvalidArgument, "malformed request body")
	}
	return nil
}

func jobIDParam(r *http.Request) (sdk.JobID, error) {
	raw := chi.URLParam(r, "jobID")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, sdk.Errorf(sdk.CodeInvalidArgument, "invalid job id %q", raw)
	}
	return sdk.JobID(id), nil
}

func appIDParam(r *http.Request) (sdk.ApplicationID, error) {
	raw := chi.URLParam(r, "appID")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, sdk.Errorf(sdk.CodeInvalidArgument, "invalid application id %q", raw)
	}
	return sdk.ApplicationID(id), nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDevLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		User  string `json:"user"`
		Admin bool   `json:"admin,omitempty"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.User == "" {
		writeError(w, sdk.NewError(sdk.CodeInvalidArgument, "user is required"))
		return
	}

	subject := sdk.Identity(in.User)
	token, expiresAt, err := s.issuer.Issue(subject, in.Admin)
	if err != nil {
		writeError(w, err)
		return
	}
	if in.Admin {
		s.store.SetAdmin(subject)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"token_type": "Bearer",
		"subject":    subject,
		"expires_at": sdk.NewTime(expiresAt),
	})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var in sdk.CreateJobInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	id, err := s.store.CreateJob(identityFrom(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]sdk.JobID{"id": id})
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in sdk.CreateJobInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.UpdateJob(identityFrom(r.Context()), id, in); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.DeleteJob(identityFrom(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTogglePublication(w http.ResponseWriter, r *http.Request) {
	id, err := jobIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in struct {
		Published bool `json:"published"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.ToggleJobPublication(identityFrom(r.Context()), id, in.Published); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePublishedJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.PublishedJobs())
}

func (s *Server) handleSearchJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.SearchJobs(r.URL.Query().Get("q")))
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	job, err := s.store.JobByID(identityFrom(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleJobsByEmployer(w http.ResponseWriter, r *http.Request) {
	employer := sdk.Identity(chi.URLParam(r, "employer"))
	writeJSON(w, http.StatusOK, s.store.JobsByEmployer(identityFrom(r.Context()), employer))
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	id, err := jobIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in sdk.ApplyInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	appID, err := s.store.Apply(identityFrom(r.Context()), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]sdk.ApplicationID{"id": appID})
}

func (s *Server) handleApplicationsByJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	apps, err := s.store.ApplicationsByJob(identityFrom(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (s *Server) handleApplicationsByCandidate(w http.ResponseWriter, r *http.Request) {
	candidate := sdk.Identity(chi.URLParam(r, "candidate"))
	apps, err := s.store.ApplicationsByCandidate(identityFrom(r.Context()), candidate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (s *Server) handleUpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := appIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in struct {
		Status sdk.ApplicationStatus `json:"status"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.UpdateApplicationStatus(identityFrom(r.Context()), id, in.Status); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	id, err := appIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	msgID, err := s.store.SendMessage(identityFrom(r.Context()), id, in.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]sdk.MessageID{"id": msgID})
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	id, err := appIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	msgs, err := s.store.MessagesByApplication(identityFrom(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var in struct {
		AccountType sdk.AccountType `json:"account_type"`
		Name        string          `json:"name"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.CreateAccount(identityFrom(r.Context()), in.AccountType, in.Name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCallerProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.store.CallerProfile(identityFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in sdk.UpdateProfileInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.UpdateProfile(identityFrom(r.Context()), in); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	user := sdk.Identity(chi.URLParam(r, "user"))
	profile, err := s.store.ProfileOf(user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleRole(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]sdk.UserRole{"role": s.store.Role(identityFrom(r.Context()))})
}

func (s *Server) handleMembersCount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]uint64{"count": s.store.MembersCount()})
}
