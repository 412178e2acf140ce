package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"mock-relayer-go/internal/model"
	"mock-relayer-go/internal/parser"
	"mock-relayer-go/internal/pipeline"
	"mock-relayer-go/internal/scheduler"
	"mock-relayer-go/internal/store"
)

const (
	serviceName    = "mock-relayer"
	serviceVersion = "0.1.0"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	pipeline     *pipeline.Pipeline
	statuses     *store.StatusStore
	proofs       *store.ProofStore
	scheduler    *scheduler.Scheduler
	gatherer     prometheus.Gatherer
	maxBodyBytes int64
}

// NewHandlers creates new HTTP handlers
func NewHandlers(p *pipeline.Pipeline, statuses *store.StatusStore, proofs *store.ProofStore, sched *scheduler.Scheduler, gatherer prometheus.Gatherer, maxBodyBytes int64) *Handlers {
	return &Handlers{
		pipeline:     p,
		statuses:     statuses,
		proofs:       proofs,
		scheduler:    sched,
		gatherer:     gatherer,
		maxBodyBytes: maxBodyBytes,
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	router.GET("/ws", h.WebSocket)

	api := router.Group("/api/v1")
	{
		api.POST("/email/submit", h.SubmitEmail)
		api.GET("/email/status/:id", h.GetEmailStatus)
		api.GET("/proof/:email_hash", h.GetProof)

		api.POST("/test/generate-proof", h.GenerateTestProof)
		api.GET("/test/list-proofs", h.ListProofs)
		api.GET("/test/list-statuses", h.ListStatuses)

		api.POST("/reporter/start", h.StartReporter)
		api.POST("/reporter/stop", h.StopReporter)
		api.POST("/reporter/run-once", h.RunReporterOnce)
		api.GET("/reporter/status", h.GetReporterStatus)
	}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Service:   serviceName,
		Version:   serviceVersion,
		Timestamp: time.Now().UTC(),
		Metrics: map[string]string{
			"submissions": strconv.Itoa(h.statuses.Len()),
			"proofs":      strconv.Itoa(h.proofs.Len()),
		},
	}

	if h.scheduler.IsRunning() {
		response.Metrics["reporter"] = "running"
		response.Metrics["reporter_next_run"] = h.scheduler.GetNextRun().Format(time.RFC3339)
	} else {
		response.Metrics["reporter"] = "stopped"
	}

	c.JSON(http.StatusOK, response)
}

// SubmitEmail accepts an email for asynchronous processing
func (h *Handlers) SubmitEmail(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	var req model.EmailSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Error:   "Request body too large",
				Details: "Limit is " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes",
			})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	status, err := h.pipeline.Submit(req)
	if err != nil {
		switch {
		case errors.Is(err, parser.ErrInvalidCommand):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid command in subject",
				Details: "Subject must start with LIST, CANCEL, or CLAIM",
			})
		case errors.Is(err, parser.ErrInvalidRawEmail):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid raw email",
				Details: err.Error(),
			})
		default:
			logrus.Errorf("Failed to submit email: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to submit email"})
		}
		return
	}

	c.JSON(http.StatusAccepted, SubmitEmailResponse{
		ID:      status.ID,
		Status:  status.Status,
		Message: "Email submitted for processing",
	})
}

// GetEmailStatus returns the processing status of a submission
func (h *Handlers) GetEmailStatus(c *gin.Context) {
	// Only the canonical form issued at intake matches.
	id, err := uuid.Parse(c.Param("id"))
	if err != nil || id.String() != c.Param("id") {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Email not found"})
		return
	}

	status, err := h.statuses.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Email not found"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetProof returns the proof stored under an email hash
func (h *Handlers) GetProof(c *gin.Context) {
	emailProof, err := h.proofs.Get(c.Param("email_hash"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Proof not found"})
		return
	}

	c.JSON(http.StatusOK, newProofResponse(emailProof))
}

// GenerateTestProof seeds a proof without going through the pipeline
func (h *Handlers) GenerateTestProof(c *gin.Context) {
	var req model.TestProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	emailProof, err := h.pipeline.GenerateTestProof(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid reservation type",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, newProofResponse(emailProof))
}

// ListProofs returns every stored proof
func (h *Handlers) ListProofs(c *gin.Context) {
	proofs := h.proofs.Snapshot()
	c.JSON(http.StatusOK, ListProofsResponse{Count: len(proofs), Proofs: proofs})
}

// ListStatuses returns every tracked submission
func (h *Handlers) ListStatuses(c *gin.Context) {
	statuses := h.statuses.Snapshot()
	c.JSON(http.StatusOK, ListStatusesResponse{Count: len(statuses), Statuses: statuses})
}

// WebSocket is reserved for realtime status updates
func (h *Handlers) WebSocket(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, ErrorResponse{
		Error:   "Not implemented",
		Details: "Realtime updates are not available",
	})
}
