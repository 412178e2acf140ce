package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mock-relayer-go/internal/metrics"
	"mock-relayer-go/internal/model"
	"mock-relayer-go/internal/pipeline"
	"mock-relayer-go/internal/proof"
	"mock-relayer-go/internal/scheduler"
	"mock-relayer-go/internal/store"
)

type testServer struct {
	engine    *gin.Engine
	pipeline  *pipeline.Pipeline
	scheduler *scheduler.Scheduler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	statuses := store.NewStatusStore()
	proofs := store.NewProofStore()
	p := pipeline.New(statuses, proofs, proof.NewRandomGenerator(), m, pipeline.Options{Delay: 10 * time.Millisecond})
	sched := scheduler.NewScheduler(time.Hour, statuses, proofs, m)

	engine := gin.New()
	NewHandlers(p, statuses, proofs, sched, reg, 4096).SetupRoutes(engine)

	ts := &testServer{engine: engine, pipeline: p, scheduler: sched}
	t.Cleanup(func() {
		sched.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		p.Wait(ctx)
	})
	return ts
}

func (ts *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func submission(subject string) model.EmailSubmission {
	return model.EmailSubmission{
		From:    "reservations@opentable.com",
		To:      "user@example.com",
		Subject: subject,
		Body:    "Your reservation at Carbone\nParty of 2",
	}
}

func (ts *testServer) submitAndAwait(t *testing.T, sub model.EmailSubmission) model.ProcessingStatus {
	t.Helper()
	w := ts.do(http.MethodPost, "/api/v1/email/submit", sub)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var accepted SubmitEmailResponse
	decode(t, w, &accepted)

	var status model.ProcessingStatus
	require.Eventually(t, func() bool {
		w := ts.do(http.MethodGet, "/api/v1/email/status/"+accepted.ID.String(), nil)
		if w.Code != http.StatusOK || json.Unmarshal(w.Body.Bytes(), &status) != nil {
			return false
		}
		return status.Status.IsTerminal()
	}, 5*time.Second, 10*time.Millisecond)
	return status
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	decode(t, w, &resp)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "mock-relayer", resp.Service)
	assert.Equal(t, "0.1.0", resp.Version)
	assert.Equal(t, "0", resp.Metrics["submissions"])
	assert.Equal(t, "stopped", resp.Metrics["reporter"])
}

func TestSubmitEmailAccepted(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/email/submit", submission("LIST"))
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp SubmitEmailResponse
	decode(t, w, &resp)
	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, model.StatusProcessing, resp.Status)
	assert.Equal(t, "Email submitted for processing", resp.Message)

	// Visible immediately, before the task has run.
	w = ts.do(http.MethodGet, "/api/v1/email/status/"+resp.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubmitEmailInvalidCommand(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/email/submit", submission("FOO"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, "Invalid command in subject", resp.Error)
	assert.Equal(t, "Subject must start with LIST, CANCEL, or CLAIM", resp.Details)

	w = ts.do(http.MethodGet, "/api/v1/test/list-statuses", nil)
	var statuses ListStatusesResponse
	decode(t, w, &statuses)
	assert.Zero(t, statuses.Count)
}

func TestSubmitEmailBadBodies(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/email/submit", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/api/v1/email/submit", model.EmailSubmission{Raw: "this is not an email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	large := submission("LIST")
	large.Body = strings.Repeat("x", 8192)
	w = ts.do(http.MethodPost, "/api/v1/email/submit", large)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSubmitEmailRequiresFields(t *testing.T) {
	ts := newTestServer(t)

	bodies := []gin.H{
		{"subject": "LIST"},
		{"to": "user@example.com", "subject": "LIST", "body": "Table at Nobu"},
		{"from": "noreply@resy.com", "subject": "LIST", "body": "Table at Nobu"},
		{"from": "noreply@resy.com", "to": "user@example.com", "subject": "LIST"},
	}
	for _, body := range bodies {
		w := ts.do(http.MethodPost, "/api/v1/email/submit", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	w := ts.do(http.MethodGet, "/api/v1/test/list-statuses", nil)
	var statuses ListStatusesResponse
	decode(t, w, &statuses)
	assert.Zero(t, statuses.Count)
}

func TestSubmitEmailRawFillsRequiredFields(t *testing.T) {
	ts := newTestServer(t)

	raw := "From: noreply@resy.com\r\nTo: user@example.com\r\nSubject: LIST\r\n\r\nTable at Nobu\r\n"
	status := ts.submitAndAwait(t, model.EmailSubmission{Raw: raw})
	assert.Equal(t, model.StatusCompleted, status.Status)
}

func TestEmailStatusNotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/v1/email/status/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodGet, "/api/v1/email/status/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEmailStatusOnlyMatchesCanonicalID(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/email/submit", submission("LIST"))
	require.Equal(t, http.StatusAccepted, w.Code)
	var accepted SubmitEmailResponse
	decode(t, w, &accepted)
	id := accepted.ID.String()

	w = ts.do(http.MethodGet, "/api/v1/email/status/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	for _, alias := range []string{"urn:uuid:" + id, "{" + id + "}", strings.ToUpper(id)} {
		w = ts.do(http.MethodGet, "/api/v1/email/status/"+alias, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, alias)
	}
}

func TestSubmitToProofRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		subject string
		want    model.DataType
	}{
		{"LIST", model.DataReservation},
		{"CANCEL RES-1234", model.DataCancellation},
		{"CLAIM", model.DataBooking},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			status := ts.submitAndAwait(t, submission(tt.subject))
			require.Equal(t, model.StatusCompleted, status.Status)
			require.NotNil(t, status.EmailHash)
			assert.Nil(t, status.Error)

			w := ts.do(http.MethodGet, "/api/v1/proof/"+*status.EmailHash, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var resp ProofResponse
			decode(t, w, &resp)
			assert.Equal(t, *status.EmailHash, resp.EmailHash)
			assert.True(t, resp.ReadyForSubmission)
			assert.Equal(t, tt.want, resp.ExtractedData.Type)
			assert.Len(t, resp.Proof.PublicSignals, 3)
		})
	}

	w := ts.do(http.MethodGet, "/api/v1/test/list-proofs", nil)
	var list ListProofsResponse
	decode(t, w, &list)
	assert.Equal(t, 3, list.Count)
	assert.Len(t, list.Proofs, 3)
}

func TestProofNotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/v1/proof/0xdeadbeef", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateTestProof(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/test/generate-proof", gin.H{
		"platform":         "resy",
		"restaurant_name":  "Nobu",
		"party_size":       4,
		"reservation_type": "confirmation",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp ProofResponse
	decode(t, w, &resp)
	assert.True(t, resp.ReadyForSubmission)
	require.Equal(t, model.DataReservation, resp.ExtractedData.Type)
	assert.EqualValues(t, 4, resp.ExtractedData.Reservation.PartySize)
	assert.Equal(t, "Nobu", resp.ExtractedData.Reservation.RestaurantName)

	w = ts.do(http.MethodGet, "/api/v1/proof/"+resp.EmailHash, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGenerateTestProofValidation(t *testing.T) {
	ts := newTestServer(t)

	bodies := []gin.H{
		{"restaurant_name": "Nobu", "reservation_type": "confirmation"},
		{"platform": "resy", "reservation_type": "confirmation"},
		{"platform": "resy", "restaurant_name": "Nobu", "reservation_type": "walkin"},
	}
	for _, body := range bodies {
		w := ts.do(http.MethodPost, "/api/v1/test/generate-proof", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestWebSocketNotImplemented(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/ws", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.submitAndAwait(t, submission("LIST"))

	w := ts.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `mock_relayer_submissions_total{command="LIST"} 1`)
}

func TestReporterEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/reporter/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, ts.scheduler.IsRunning())

	w = ts.do(http.MethodPost, "/api/v1/reporter/start", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(http.MethodGet, "/api/v1/reporter/status", nil)
	var status map[string]interface{}
	decode(t, w, &status)
	assert.Equal(t, "running", status["status"])

	w = ts.do(http.MethodPost, "/api/v1/reporter/run-once", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report scheduler.Report
	decode(t, w, &report)
	assert.Equal(t, 0, report.Submissions)

	w = ts.do(http.MethodPost, "/api/v1/reporter/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, ts.scheduler.IsRunning())
}
