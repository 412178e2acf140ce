package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mock-relayer-go/internal/metrics"
	"mock-relayer-go/internal/model"
	"mock-relayer-go/internal/parser"
	"mock-relayer-go/internal/proof"
	"mock-relayer-go/internal/store"
)

var (
	ErrUnknownPlatform    = errors.New("sender does not match a known platform")
	ErrRestaurantNotFound = errors.New("restaurant name not found in body")
)

const (
	defaultDelay    = time.Second
	reservationLead = 7 * 24 * time.Hour
	defaultParty    = 2
)

// Options configures a Pipeline
type Options struct {
	// Delay stands in for proof computation time
	Delay time.Duration
	// StrictExtraction turns unknown senders and missing restaurant names
	// into failed submissions instead of falling back to placeholders.
	StrictExtraction bool
}

// Pipeline accepts submissions and processes each in its own goroutine.
// Results are only observable through the status and proof stores.
//
// There is no bound on the number of concurrently running tasks.
type Pipeline struct {
	statuses  *store.StatusStore
	proofs    *store.ProofStore
	generator proof.Generator
	metrics   *metrics.Metrics
	delay     time.Duration
	strict    bool
	now       func() time.Time
	wg        sync.WaitGroup
}

// New creates a new pipeline
func New(statuses *store.StatusStore, proofs *store.ProofStore, generator proof.Generator, m *metrics.Metrics, opts Options) *Pipeline {
	delay := opts.Delay
	if delay <= 0 {
		delay = defaultDelay
	}

	return &Pipeline{
		statuses:  statuses,
		proofs:    proofs,
		generator: generator,
		metrics:   m,
		delay:     delay,
		strict:    opts.StrictExtraction,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates a submission, records it as processing and schedules its
// processing. The returned status is already visible in the status store.
func (p *Pipeline) Submit(submission model.EmailSubmission) (model.ProcessingStatus, error) {
	if submission.Raw != "" {
		merged, err := mergeRawEmail(submission)
		if err != nil {
			p.metrics.RejectedSubmissions.Inc()
			return model.ProcessingStatus{}, err
		}
		submission = merged
	}

	command, err := parser.ParseCommand(submission.Subject)
	if err != nil {
		p.metrics.RejectedSubmissions.Inc()
		return model.ProcessingStatus{}, err
	}

	now := p.now()
	status := model.ProcessingStatus{
		ID:        uuid.New(),
		Status:    model.StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.statuses.Put(status)

	p.metrics.Submissions.WithLabelValues(string(command.Command)).Inc()
	logrus.WithFields(logrus.Fields{
		"id":      status.ID,
		"from":    submission.From,
		"command": command.Command,
	}).Info("Received email submission")

	p.wg.Add(1)
	p.metrics.InFlight.Inc()
	go p.run(status.ID, submission, command, now)

	return status, nil
}

// Wait blocks until every scheduled task has finished or ctx is done
func (p *Pipeline) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) run(id uuid.UUID, submission model.EmailSubmission, command model.EmailCommand, startedAt time.Time) {
	defer p.wg.Done()
	defer p.metrics.InFlight.Dec()

	time.Sleep(p.delay)

	emailHash, err := p.process(id, submission, command)
	p.metrics.ProcessingTime.Observe(p.now().Sub(startedAt).Seconds())
	if err != nil {
		p.metrics.Failures.Inc()
		logrus.WithField("id", id).Warnf("Failed to process email: %v", err)
		return
	}

	p.metrics.Completions.Inc()
	logrus.WithFields(logrus.Fields{
		"id":         id,
		"email_hash": emailHash,
	}).Info("Successfully processed email")
}

// process builds and stores the proof, then completes the status. A step
// failure marks the status failed and writes no proof.
func (p *Pipeline) process(id uuid.UUID, submission model.EmailSubmission, command model.EmailCommand) (string, error) {
	emailHash := EmailHash(submission.From, submission.Subject, submission.Body)

	data, err := p.extract(submission, command)
	if err != nil {
		p.fail(id, err)
		return "", err
	}

	now := p.now()
	p.proofs.Put(model.EmailProof{
		EmailHash:     emailHash,
		Proof:         p.generator.Generate(),
		ExtractedData: data,
		CreatedAt:     now,
	})

	if _, err := p.statuses.Transition(id, func(s *model.ProcessingStatus) {
		s.Status = model.StatusCompleted
		s.UpdatedAt = now
		s.EmailHash = &emailHash
	}); err != nil {
		return emailHash, fmt.Errorf("complete status: %w", err)
	}
	return emailHash, nil
}

func (p *Pipeline) fail(id uuid.UUID, cause error) {
	msg := cause.Error()
	if _, err := p.statuses.Transition(id, func(s *model.ProcessingStatus) {
		s.Status = model.StatusFailed
		s.UpdatedAt = p.now()
		s.Error = &msg
	}); err != nil {
		logrus.WithField("id", id).Errorf("Failed to mark submission failed: %v", err)
	}
}

func (p *Pipeline) extract(submission model.EmailSubmission, command model.EmailCommand) (model.ExtractedData, error) {
	platform := ExtractPlatform(submission.From)
	if p.strict && platform == PlatformUnknown {
		return model.ExtractedData{}, fmt.Errorf("%w: %s", ErrUnknownPlatform, submission.From)
	}

	restaurant, ok := ExtractRestaurantName(submission.Body)
	if !ok {
		if p.strict {
			return model.ExtractedData{}, ErrRestaurantNotFound
		}
		restaurant = DefaultRestaurantName
	}

	now := p.now()
	switch command.Command {
	case model.CommandList:
		return model.NewReservation(model.ReservationData{
			Platform:        platform,
			ReservationID:   synthesizeID(reservationIDPrefix),
			RestaurantName:  restaurant,
			ReservationTime: uint64(now.Add(reservationLead).Unix()),
			PartySize:       defaultParty,
		}), nil
	case model.CommandCancel:
		original, ok := command.Param(0)
		if !ok {
			original = synthesizeID(reservationIDPrefix)
		}
		return model.NewCancellation(model.CancellationData{
			OriginalReservationID: original,
			CancellationTime:      uint64(now.Unix()),
			RestaurantName:        restaurant,
		}), nil
	case model.CommandClaim:
		return model.NewBooking(model.BookingData{
			NewReservationID: synthesizeID(reservationIDPrefix),
			BookingTime:      uint64(now.Unix()),
			RestaurantName:   restaurant,
		}), nil
	}
	return model.ExtractedData{}, fmt.Errorf("unsupported command %q", command.Command)
}

func mergeRawEmail(submission model.EmailSubmission) (model.EmailSubmission, error) {
	raw, err := parser.ParseRawEmail(submission.Raw)
	if err != nil {
		return submission, err
	}
	if submission.From == "" {
		submission.From = raw.From
	}
	if submission.To == "" {
		submission.To = raw.To
	}
	if submission.Subject == "" {
		submission.Subject = raw.Subject
	}
	if submission.Body == "" {
		submission.Body = raw.Body
	}
	return submission, nil
}
