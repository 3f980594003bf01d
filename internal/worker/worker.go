// Package worker reaches the computation engine that actually executes
// a backtest.
package worker

import (
	"context"

	"github.com/mmtrader/pairsweep/internal/core"
)

// Worker executes one backtest request and returns a partial result to
// merge into the job record. Implementations must observe ctx and
// terminate promptly once it is cancelled, surfacing ctx.Err().
type Worker interface {
	Run(ctx context.Context, req core.JobRequest) (*core.JobResult, error)
}
