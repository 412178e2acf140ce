package handler

import (
	"time"

	"github.com/google/uuid"

	"mock-relayer-go/internal/model"
)

// SubmitEmailResponse is returned when a submission is accepted
type SubmitEmailResponse struct {
	ID      uuid.UUID    `json:"id"`
	Status  model.Status `json:"status"`
	Message string       `json:"message"`
}

// ProofResponse represents a stored proof ready to be relayed
type ProofResponse struct {
	EmailHash          string              `json:"email_hash"`
	Proof              model.MockProof     `json:"proof"`
	ExtractedData      model.ExtractedData `json:"extracted_data"`
	ReadyForSubmission bool                `json:"ready_for_submission"`
}

func newProofResponse(p model.EmailProof) ProofResponse {
	return ProofResponse{
		EmailHash:          p.EmailHash,
		Proof:              p.Proof,
		ExtractedData:      p.ExtractedData,
		ReadyForSubmission: true,
	}
}

// ListProofsResponse lists every stored proof
type ListProofsResponse struct {
	Count  int                `json:"count"`
	Proofs []model.EmailProof `json:"proofs"`
}

// ListStatusesResponse lists every tracked submission
type ListStatusesResponse struct {
	Count    int                      `json:"count"`
	Statuses []model.ProcessingStatus `json:"statuses"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Metrics   map[string]string `json:"metrics,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
