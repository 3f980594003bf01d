package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/mmtrader/pairsweep/internal/core"
	"github.com/mmtrader/pairsweep/internal/dataset"
	"github.com/mmtrader/pairsweep/internal/signal"
)

// progressTail caps the progress series returned from a local run.
const progressTail = 250

// LocalWorker runs backtests in-process against a dataset provider.
// Used for validation runs where the remote numeric engine is not
// involved; output is deterministic for identical inputs.
type LocalWorker struct {
	datasets dataset.Provider
}

// NewLocal creates a local worker over the given dataset provider.
func NewLocal(datasets dataset.Provider) *LocalWorker {
	return &LocalWorker{datasets: datasets}
}

// Run implements Worker.
func (w *LocalWorker) Run(ctx context.Context, req core.JobRequest) (*core.JobResult, error) {
	cfg, err := configFor(req)
	if err != nil {
		return nil, err
	}

	rows, err := w.datasets.Load(ctx, req.DatasetName)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err = filterByDates(rows, req.StartDate, req.EndDate)
	if err != nil {
		return nil, core.WrapError(core.ErrValidation, err)
	}

	signals := signal.Compute(rows, cfg)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := signal.Summarize(signals)

	progress := make([]core.ProgressPoint, 0, min(len(signals), progressTail))
	start := 0
	if len(signals) > progressTail {
		start = len(signals) - progressTail
	}
	for _, s := range signals[start:] {
		progress = append(progress, core.ProgressPoint{Timestamp: s.Timestamp, Value: s.Spread})
	}

	return &core.JobResult{
		ID:          req.ID,
		DatasetName: req.DatasetName,
		Summary:     &summary,
		Progress:    progress,
		Logs: []string{
			fmt.Sprintf("local run over %d rows produced %d signals", len(rows), len(signals)),
		},
	}, nil
}

// configFor maps request parameters onto a signal config. API-created
// jobs carry the entry/exit/lookback triple; sweep-generated jobs carry
// the multiplier/window pair instead. A request that defines neither a
// lookback nor a window length has no usable z-score window and is
// rejected.
func configFor(req core.JobRequest) (signal.Config, error) {
	p := req.Parameters

	cfg := signal.Config{
		LegRatio: p.LegRatio,
		Lookback: p.Lookback,
		EntryZ:   p.EntryZ,
		ExitZ:    p.ExitZ,
	}
	if cfg.LegRatio == 0 {
		cfg.LegRatio = req.Legs[1].Multiplier
	}
	if cfg.Lookback == 0 {
		cfg.Lookback = p.WindowLength
	}
	if cfg.EntryZ == 0 {
		cfg.EntryZ = p.StdDevMultiplier
	}
	if cfg.Lookback < 1 {
		return signal.Config{}, core.Validationf(
			"job parameters define no lookback window (set zScoreLookback or sweep windowLength)")
	}
	return cfg, nil
}

// filterByDates keeps rows within [startDate, endDate], both inclusive
// whole days.
func filterByDates(rows []core.PriceRow, startDate, endDate string) ([]core.PriceRow, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	endExclusive := end.AddDate(0, 0, 1)

	filtered := make([]core.PriceRow, 0, len(rows))
	for _, row := range rows {
		if row.Timestamp.Before(start) || !row.Timestamp.Before(endExclusive) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered, nil
}
