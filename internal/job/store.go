// Package job stores backtest job records keyed by id.
package job

import "github.com/mmtrader/pairsweep/internal/core"

// RequestPatch is a partial metadata update for a stored request. Every
// field is optional; Empty reports whether none is set.
type RequestPatch struct {
	DatasetName *string          `json:"datasetName,omitempty"`
	StartDate   *string          `json:"startDate,omitempty"`
	EndDate     *string          `json:"endDate,omitempty"`
	EntryZ      *float64         `json:"entryZ,omitempty"`
	ExitZ       *float64         `json:"exitZ,omitempty"`
	Lookback    *int             `json:"zScoreLookback,omitempty"`
	LegRatio    *float64         `json:"legRatio,omitempty"`
	Resolution  *core.Resolution `json:"resolution,omitempty"`
}

// Empty reports whether the patch carries no fields.
func (p RequestPatch) Empty() bool {
	return p.DatasetName == nil && p.StartDate == nil && p.EndDate == nil &&
		p.EntryZ == nil && p.ExitZ == nil && p.Lookback == nil &&
		p.LegRatio == nil && p.Resolution == nil
}

// Store is the registry contract the coordinator depends on. Any
// key-value backend works as long as Create writes request and initial
// result atomically and Update serializes read-modify-write per id.
type Store interface {
	// Create atomically stores the immutable request together with its
	// initial queued result. A request without a result is never
	// observable.
	Create(req core.JobRequest) error

	// Get returns a copy of the result for id.
	Get(id string) (core.JobResult, error)

	// Request returns a copy of the immutable request for id.
	Request(id string) (core.JobRequest, error)

	// List returns all results ordered newest-first by StartedAt.
	List() []core.JobResult

	// Update applies the mutator to the latest stored result and writes
	// the returned value back as a single atomic replacement. Concurrent
	// updates to the same id are serialized, never lost. Absent ids are
	// a no-op.
	Update(id string, mutator func(core.JobResult) core.JobResult)

	// UpdateRequest applies a metadata patch to the stored request.
	// Absent ids are an error.
	UpdateRequest(id string, patch RequestPatch) error

	// Delete removes both the request and the result. Absent ids are an
	// error.
	Delete(id string) error
}
