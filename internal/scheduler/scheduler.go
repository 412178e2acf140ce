package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"mock-relayer-go/internal/metrics"
	"mock-relayer-go/internal/model"
	"mock-relayer-go/internal/store"
)

// Report is a point-in-time summary of the in-memory stores.
type Report struct {
	Statuses    map[model.Status]int `json:"statuses"`
	Submissions int                  `json:"submissions"`
	Proofs      int                  `json:"proofs"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// Scheduler periodically summarises the stores into gauges and a log line.
type Scheduler struct {
	cron      *cron.Cron
	entryID   cron.EntryID
	interval  time.Duration
	statuses  *store.StatusStore
	proofs    *store.ProofStore
	metrics   *metrics.Metrics
	lastRun   time.Time
	isRunning bool
	mu        sync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler(interval time.Duration, statuses *store.StatusStore, proofs *store.ProofStore, metrics *metrics.Metrics) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		interval: interval,
		statuses: statuses,
		proofs:   proofs,
		metrics:  metrics,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() { s.RunOnce() })
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Reporter started with interval: %s", s.interval)
	return nil
}

// Stop stops the scheduler and waits for a running report to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.cron.Remove(s.entryID)
	ctx := s.cron.Stop()
	s.isRunning = false
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		logrus.Info("Reporter stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Reporter stop timeout, forcing shutdown")
	}
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// RunOnce builds a report immediately, refreshing the store gauges.
func (s *Scheduler) RunOnce() Report {
	report := Report{
		Statuses: map[model.Status]int{
			model.StatusPending:    0,
			model.StatusProcessing: 0,
			model.StatusCompleted:  0,
			model.StatusFailed:     0,
		},
		Proofs:      s.proofs.Len(),
		GeneratedAt: time.Now().UTC(),
	}

	for _, status := range s.statuses.Snapshot() {
		report.Statuses[status.Status]++
		report.Submissions++
	}

	for status, count := range report.Statuses {
		s.metrics.Statuses.WithLabelValues(string(status)).Set(float64(count))
	}
	s.metrics.StoredProofs.Set(float64(report.Proofs))

	s.mu.Lock()
	s.lastRun = report.GeneratedAt
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"submissions": report.Submissions,
		"processing":  report.Statuses[model.StatusProcessing],
		"completed":   report.Statuses[model.StatusCompleted],
		"failed":      report.Statuses[model.StatusFailed],
		"proofs":      report.Proofs,
	}).Info("Store report")

	return report
}

// GetNextRun returns the time of the next scheduled run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// GetLastRun returns the time of the last report, scheduled or manual.
func (s *Scheduler) GetLastRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun
}
