package job

import (
	"sort"
	"sync"
	"time"

	"github.com/mmtrader/pairsweep/internal/core"
)

// record pairs the immutable request with its mutable result.
type record struct {
	request core.JobRequest
	result  core.JobResult
}

// MemoryStore is an in-memory Store. The write lock is held across each
// Update mutator, which serializes read-modify-write per id and rules
// out lost updates.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*record
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*record)}
}

// Create implements Store.
func (s *MemoryStore) Create(req core.JobRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[req.ID]; exists {
		return core.WrapError(core.ErrJobConflict, nil)
	}

	s.records[req.ID] = &record{
		request: req,
		result:  core.NewQueuedResult(req, nowUTC()),
	}
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(id string) (core.JobResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return core.JobResult{}, core.ErrJobNotFound
	}
	return copyResult(rec.result), nil
}

// Request implements Store.
func (s *MemoryStore) Request(id string) (core.JobRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return core.JobRequest{}, core.ErrJobNotFound
	}
	return rec.request, nil
}

// List implements Store. Newest-first by StartedAt, id as a
// deterministic tie-break.
func (s *MemoryStore) List() []core.JobResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]core.JobResult, 0, len(s.records))
	for _, rec := range s.records {
		results = append(results, copyResult(rec.result))
	}

	sort.Slice(results, func(i, j int) bool {
		if !results[i].StartedAt.Equal(results[j].StartedAt) {
			return results[i].StartedAt.After(results[j].StartedAt)
		}
		return results[i].ID < results[j].ID
	})
	return results
}

// Update implements Store.
func (s *MemoryStore) Update(id string, mutator func(core.JobResult) core.JobResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return
	}
	rec.result = mutator(copyResult(rec.result))
}

// UpdateRequest implements Store.
func (s *MemoryStore) UpdateRequest(id string, patch RequestPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return core.ErrJobNotFound
	}

	if patch.DatasetName != nil {
		rec.request.DatasetName = *patch.DatasetName
		rec.result.DatasetName = *patch.DatasetName
	}
	if patch.StartDate != nil {
		rec.request.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		rec.request.EndDate = *patch.EndDate
	}
	if patch.EntryZ != nil {
		rec.request.Parameters.EntryZ = *patch.EntryZ
	}
	if patch.ExitZ != nil {
		rec.request.Parameters.ExitZ = *patch.ExitZ
	}
	if patch.Lookback != nil {
		rec.request.Parameters.Lookback = *patch.Lookback
	}
	if patch.LegRatio != nil {
		rec.request.Parameters.LegRatio = *patch.LegRatio
		rec.request.Legs[1].Multiplier = *patch.LegRatio
	}
	if patch.Resolution != nil {
		rec.request.Resolution = *patch.Resolution
	}
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return core.ErrJobNotFound
	}
	delete(s.records, id)
	return nil
}

// copyResult deep-copies the slices so callers and mutators never alias
// stored state.
func copyResult(r core.JobResult) core.JobResult {
	out := r
	out.Progress = append([]core.ProgressPoint(nil), r.Progress...)
	out.Logs = append([]string(nil), r.Logs...)
	if r.Summary != nil {
		summary := *r.Summary
		out.Summary = &summary
	}
	if r.CompletedAt != nil {
		completed := *r.CompletedAt
		out.CompletedAt = &completed
	}
	return out
}
