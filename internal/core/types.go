package core

import "time"

// Resolution is the bar resolution a backtest runs at.
type Resolution string

const (
	Resolution1s Resolution = "1s"
	Resolution1m Resolution = "1m"
	Resolution5m Resolution = "5m"
)

// IsValid reports whether the resolution is one of the supported values.
func (r Resolution) IsValid() bool {
	switch r {
	case Resolution1s, Resolution1m, Resolution5m:
		return true
	}
	return false
}

// Status represents the lifecycle state of a backtest job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transition is legal from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether the state machine permits moving from s
// to next. Legal transitions: queued to running, and running to any of
// completed, failed, cancelled.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusQueued:
		return next == StatusRunning
	case StatusRunning:
		return next.IsTerminal()
	}
	return false
}

// SpreadLeg is one side of a two-leg spread.
type SpreadLeg struct {
	Symbol     string  `json:"symbol"`
	Multiplier float64 `json:"multiplier"`
}

// Parameters is the closed set of strategy parameters a job can carry.
// Sweep-generated jobs fill the multiplier/window pair; API-created jobs
// fill the entry/exit/lookback triple. Extra holds forward-compatible
// values that no known field covers.
type Parameters struct {
	EntryZ           float64           `json:"entryZ,omitempty"`
	ExitZ            float64           `json:"exitZ,omitempty"`
	Lookback         int               `json:"lookback,omitempty"`
	LegRatio         float64           `json:"legRatio,omitempty"`
	StdDevMultiplier float64           `json:"stdDevMultiplier,omitempty"`
	WindowLength     int               `json:"windowLength,omitempty"`
	Timezone         string            `json:"timezone,omitempty"`
	Extra            map[string]string `json:"extra,omitempty"`
}

// JobRequest describes a single backtest run. Immutable once created.
type JobRequest struct {
	ID          string       `json:"id"`
	DatasetName string       `json:"datasetName"`
	Legs        [2]SpreadLeg `json:"legs"`
	StartDate   string       `json:"startDate"`
	EndDate     string       `json:"endDate"`
	Resolution  Resolution   `json:"resolution"`
	Parameters  Parameters   `json:"parameters"`
}

// ProgressPoint is one sample of a job's progress series.
type ProgressPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Summary holds the headline performance figures of a completed run.
type Summary struct {
	TotalPnL    float64 `json:"totalPnL"`
	Sharpe      float64 `json:"sharpe"`
	MaxDrawdown float64 `json:"maxDrawdown"`
	TradeCount  int     `json:"tradeCount"`
}

// JobResult is the mutable record tracking a job. Only the registry
// mutates it, and only by whole-record replacement.
type JobResult struct {
	ID          string          `json:"id"`
	DatasetName string          `json:"datasetName"`
	Status      Status          `json:"status"`
	Summary     *Summary        `json:"summary,omitempty"`
	Progress    []ProgressPoint `json:"progress"`
	Logs        []string        `json:"logs"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

// NewQueuedResult builds the initial result written alongside a request.
func NewQueuedResult(req JobRequest, now time.Time) JobResult {
	return JobResult{
		ID:          req.ID,
		DatasetName: req.DatasetName,
		Status:      StatusQueued,
		Progress:    []ProgressPoint{},
		Logs:        []string{},
		StartedAt:   now,
	}
}

// Action is the position a signal row instructs.
type Action string

const (
	ActionLong  Action = "long"
	ActionShort Action = "short"
	ActionFlat  Action = "flat"
)

// Signal is one row of signal engine output.
type Signal struct {
	Timestamp time.Time `json:"timestamp"`
	Spread    float64   `json:"spread"`
	ZScore    float64   `json:"zScore"`
	Action    Action    `json:"action"`
}

// PriceRow is one time-aligned sample of the two-asset price stream.
type PriceRow struct {
	Timestamp time.Time `json:"timestamp"`
	LegA      float64   `json:"legA"`
	LegB      float64   `json:"legB"`
}
