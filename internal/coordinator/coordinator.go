// Package coordinator owns the backtest job lifecycle: it binds requests
// to worker dispatches, tracks cancellation, and keeps the registry's
// view consistent with each dispatch outcome.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmtrader/pairsweep/internal/core"
	"github.com/mmtrader/pairsweep/internal/job"
	"github.com/mmtrader/pairsweep/internal/metrics"
	"github.com/mmtrader/pairsweep/internal/sweep"
	"github.com/mmtrader/pairsweep/internal/worker"
)

// deleteWaitInterval is how often Delete re-checks a cancelling job.
const deleteWaitInterval = 10 * time.Millisecond

// CreatePayload is the caller-facing job creation request.
type CreatePayload struct {
	DatasetName    string  `json:"datasetName"`
	StartDate      string  `json:"startDate"`
	EndDate        string  `json:"endDate"`
	EntryZ         float64 `json:"entryZ"`
	ExitZ          float64 `json:"exitZ"`
	ZScoreLookback float64 `json:"zScoreLookback"`
	LegRatio       float64 `json:"legRatio"`
}

// Validate checks the payload before any state is touched.
func (p CreatePayload) Validate() error {
	if p.DatasetName == "" {
		return core.Validationf("datasetName is required")
	}
	if p.StartDate == "" {
		return core.Validationf("startDate is required")
	}
	if p.EndDate == "" {
		return core.Validationf("endDate is required")
	}
	if p.EntryZ < 0 {
		return core.Validationf("entryZ must be non-negative, got %v", p.EntryZ)
	}
	if p.ExitZ < 0 {
		return core.Validationf("exitZ must be non-negative, got %v", p.ExitZ)
	}
	if p.ZScoreLookback != math.Trunc(p.ZScoreLookback) {
		return core.Validationf("zScoreLookback must be an integer, got %v", p.ZScoreLookback)
	}
	if p.ZScoreLookback < 5 {
		return core.Validationf("zScoreLookback must be at least 5, got %v", p.ZScoreLookback)
	}
	return nil
}

// Coordinator drives the job state machine. At most one worker dispatch
// is outstanding per job id; each dispatch produces exactly one terminal
// transition.
type Coordinator struct {
	store   job.Store
	worker  worker.Worker
	logger  *zap.Logger
	metrics *metrics.Registry

	// sweepLimit caps permutations per sweep; zero means unlimited.
	sweepLimit int

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithMetrics attaches a metrics registry.
func WithMetrics(m *metrics.Registry) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithSweepLimit caps how many permutations a single sweep may expand
// to. Zero disables the cap.
func WithSweepLimit(n int) Option {
	return func(c *Coordinator) { c.sweepLimit = n }
}

// New creates a Coordinator over the given store and worker.
func New(store job.Store, w worker.Worker, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:   store,
		worker:  w,
		logger:  zap.NewNop(),
		cancels: make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// buildRequest turns a creation payload into a concrete request: a
// fixed-multiplier YM leg and a caller-ratio ES leg, second resolution.
func buildRequest(p CreatePayload) core.JobRequest {
	return core.JobRequest{
		ID:          uuid.NewString(),
		DatasetName: p.DatasetName,
		Legs: [2]core.SpreadLeg{
			{Symbol: "YM", Multiplier: 1},
			{Symbol: "ES", Multiplier: p.LegRatio},
		},
		StartDate:  p.StartDate,
		EndDate:    p.EndDate,
		Resolution: core.Resolution1s,
		Parameters: core.Parameters{
			EntryZ:   p.EntryZ,
			ExitZ:    p.ExitZ,
			Lookback: int(p.ZScoreLookback),
			LegRatio: p.LegRatio,
		},
	}
}

// Submit validates the payload, registers the job and dispatches it
// asynchronously. The returned result reflects the job in its running
// state; the dispatch outcome is observed by re-fetching the record.
func (c *Coordinator) Submit(p CreatePayload) (core.JobResult, error) {
	if err := p.Validate(); err != nil {
		return core.JobResult{}, err
	}
	return c.SubmitRequest(buildRequest(p))
}

// SubmitRequest registers and dispatches an already-built request, as
// produced by sweep expansion. Resubmitting an id that is still tracked
// is a conflict.
func (c *Coordinator) SubmitRequest(req core.JobRequest) (core.JobResult, error) {
	if err := c.store.Create(req); err != nil {
		return core.JobResult{}, err
	}

	now := time.Now().UTC()
	c.store.Update(req.ID, func(r core.JobResult) core.JobResult {
		if !r.Status.CanTransition(core.StatusRunning) {
			return r
		}
		r.Status = core.StatusRunning
		r.StartedAt = now
		return r
	})

	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancels[req.ID] = cancel
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordSubmit()
	}
	c.logger.Info("job dispatched",
		zap.String("job_id", req.ID),
		zap.String("dataset", req.DatasetName),
	)

	go c.dispatch(ctx, req)

	result, err := c.store.Get(req.ID)
	if err != nil {
		return core.JobResult{}, err
	}
	return result, nil
}

// dispatch runs the worker call and applies the single terminal
// transition for this job.
func (c *Coordinator) dispatch(ctx context.Context, req core.JobRequest) {
	start := time.Now()
	partial, err := c.worker.Run(ctx, req)

	var status core.Status
	switch {
	case err == nil:
		status = core.StatusCompleted
	case ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, core.ErrJobCancelled):
		status = core.StatusCancelled
	default:
		status = core.StatusFailed
	}

	now := time.Now().UTC()
	c.store.Update(req.ID, func(r core.JobResult) core.JobResult {
		if !r.Status.CanTransition(status) {
			return r
		}
		switch status {
		case core.StatusCompleted:
			r = job.MergeResult(r, *partial)
		case core.StatusCancelled:
			r.Logs = append(r.Logs, "backtest cancelled")
		case core.StatusFailed:
			r.Logs = append(r.Logs, err.Error())
		}
		r.Status = status
		r.CompletedAt = &now
		return r
	})

	c.release(req.ID)

	if c.metrics != nil {
		c.metrics.RecordFinished(string(status), time.Since(start).Seconds())
	}

	switch status {
	case core.StatusFailed:
		c.logger.Warn("job failed", zap.String("job_id", req.ID), zap.Error(err))
	default:
		c.logger.Info("job finished",
			zap.String("job_id", req.ID),
			zap.String("status", string(status)),
		)
	}
}

// release removes the job's cancellation token. Idempotent; the
// CancelFunc is invoked to free the context's resources.
func (c *Coordinator) release(id string) {
	c.mu.Lock()
	cancel, ok := c.cancels[id]
	if ok {
		delete(c.cancels, id)
	}
	c.mu.Unlock()
	if ok {
		cancel()
	}
}

// Cancel requests cancellation of an in-flight job. A job with no
// registered token (already terminal, or never dispatched) is a no-op.
// Cancellation completes asynchronously when the dispatch observes the
// signal and transitions the job to cancelled.
func (c *Coordinator) Cancel(id string) {
	c.mu.Lock()
	cancel, ok := c.cancels[id]
	c.mu.Unlock()

	if !ok {
		return
	}
	c.logger.Info("cancellation requested", zap.String("job_id", id))
	cancel()
}

// validatePatch holds every supplied field to the same constraints the
// creation payload enforces.
func validatePatch(patch job.RequestPatch) error {
	if patch.DatasetName != nil && *patch.DatasetName == "" {
		return core.Validationf("datasetName must not be empty")
	}
	if patch.StartDate != nil && *patch.StartDate == "" {
		return core.Validationf("startDate must not be empty")
	}
	if patch.EndDate != nil && *patch.EndDate == "" {
		return core.Validationf("endDate must not be empty")
	}
	if patch.EntryZ != nil && *patch.EntryZ < 0 {
		return core.Validationf("entryZ must be non-negative, got %v", *patch.EntryZ)
	}
	if patch.ExitZ != nil && *patch.ExitZ < 0 {
		return core.Validationf("exitZ must be non-negative, got %v", *patch.ExitZ)
	}
	if patch.Lookback != nil && *patch.Lookback < 5 {
		return core.Validationf("zScoreLookback must be at least 5, got %d", *patch.Lookback)
	}
	if patch.Resolution != nil && !patch.Resolution.IsValid() {
		return core.Validationf("unknown resolution %q", *patch.Resolution)
	}
	return nil
}

// UpdateMetadata patches the stored request. Rejected while the job is
// running; the patch must carry at least one field and every supplied
// field must satisfy the creation constraints.
func (c *Coordinator) UpdateMetadata(id string, patch job.RequestPatch) error {
	if patch.Empty() {
		return core.Validationf("update payload must carry at least one field")
	}
	if err := validatePatch(patch); err != nil {
		return err
	}

	result, err := c.store.Get(id)
	if err != nil {
		return err
	}
	if result.Status == core.StatusRunning {
		return core.WrapError(core.ErrJobConflict,
			fmt.Errorf("job %s cannot be edited while running", id))
	}

	return c.store.UpdateRequest(id, patch)
}

// Delete removes a job. A running job is cancelled first: the call
// waits for the cancelled transition, appends a log line noting the
// deletion, and only then drops the record. ctx bounds the wait.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	result, err := c.store.Get(id)
	if err != nil {
		return err
	}

	if result.Status == core.StatusRunning {
		c.Cancel(id)
		if err := c.awaitTerminal(ctx, id); err != nil {
			return err
		}
		c.store.Update(id, func(r core.JobResult) core.JobResult {
			r.Logs = append(r.Logs, "job deleted while in flight")
			return r
		})
	}

	return c.store.Delete(id)
}

// awaitTerminal blocks until the job reaches a terminal status.
func (c *Coordinator) awaitTerminal(ctx context.Context, id string) error {
	ticker := time.NewTicker(deleteWaitInterval)
	defer ticker.Stop()

	for {
		result, err := c.store.Get(id)
		if err != nil {
			return err
		}
		if result.Status.IsTerminal() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Get returns the current record for id.
func (c *Coordinator) Get(id string) (core.JobResult, error) {
	return c.store.Get(id)
}

// Request returns the immutable request for id.
func (c *Coordinator) Request(id string) (core.JobRequest, error) {
	return c.store.Request(id)
}

// List returns all records, newest first.
func (c *Coordinator) List() []core.JobResult {
	return c.store.List()
}

// SubmitSweep expands a validated sweep spec and submits every
// permutation. Returns the ids in enumeration order.
func (c *Coordinator) SubmitSweep(spec *sweep.Spec, resolution core.Resolution) ([]string, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	perms := sweep.Generate(spec)
	if c.sweepLimit > 0 && len(perms) > c.sweepLimit {
		return nil, core.Validationf(
			"sweep expands to %d permutations, limit is %d", len(perms), c.sweepLimit)
	}
	if c.metrics != nil {
		c.metrics.RecordPermutations(len(perms))
	}

	ids := make([]string, 0, len(perms))
	for _, perm := range perms {
		req := sweep.ToJobRequest(perm, uuid.NewString(), resolution)
		if _, err := c.SubmitRequest(req); err != nil {
			return ids, err
		}
		ids = append(ids, req.ID)
	}

	c.logger.Info("sweep submitted",
		zap.Int("permutations", len(perms)),
		zap.String("resolution", string(resolution)),
	)
	return ids, nil
}
