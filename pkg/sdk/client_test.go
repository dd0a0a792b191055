package sdk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorEnvelopeDecoding(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"code":"permission_denied","message":"not the owner of this job"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL)
	err := client.DeleteJob(context.Background(), 7)
	require.Error(t, err)
	assert.Equal(t, CodePermissionDenied, CodeOf(err))
	assert.Contains(t, err.Error(), "not the owner")
}

func TestNonEnvelopeErrorFallsBackToStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	}))
	defer ts.Close()

	client := NewClient(ts.URL)
	_, err := client.GetPublishedJobs(context.Background())
	require.Error(t, err)
	assert.Equal(t, CodeUnavailable, CodeOf(err))
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // nothing listens anymore

	client := NewClient(ts.URL)
	_, err := client.GetTotalMembersCount(context.Background())
	require.Error(t, err)
	assert.Equal(t, CodeUnavailable, CodeOf(err))
}

func TestGetJobAbsenceIsNotAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"not_found","message":"job 9 not found"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL)
	job, err := client.GetJob(context.Background(), 9)
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestGetCallerProfileAbsenceIsNotAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"not_found","message":"no profile for caller"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL)
	profile, err := client.GetCallerUserProfile(context.Background())
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestRequestPathsAndPayloads(t *testing.T) {
	var gotMethod, gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`{"id":3}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	id, err := client.ApplyToJob(context.Background(), 12, ApplyInput{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, ApplicationID(3), id)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/v1/jobs/12/applications", gotPath)

	_, err = client.GetMessagesByApplication(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/v1/applications/5/messages", gotPath)
}
