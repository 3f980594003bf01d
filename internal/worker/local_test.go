package worker

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/mmtrader/pairsweep/internal/core"
	"github.com/mmtrader/pairsweep/internal/dataset"
	"github.com/mmtrader/pairsweep/internal/sweep"
)

// fakeProvider serves a fixed price stream.
type fakeProvider struct {
	rows map[string][]core.PriceRow
}

func (f *fakeProvider) List(ctx context.Context) ([]dataset.Descriptor, error) {
	var out []dataset.Descriptor
	for name := range f.rows {
		out = append(out, dataset.Descriptor{Name: name})
	}
	return out, nil
}

func (f *fakeProvider) Load(ctx context.Context, name string) ([]core.PriceRow, error) {
	rows, ok := f.rows[name]
	if !ok {
		return nil, core.ErrDatasetNotFound
	}
	return rows, nil
}

func fixedRows(n int) []core.PriceRow {
	base := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	rows := make([]core.PriceRow, n)
	for i := range rows {
		rows[i] = core.PriceRow{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			LegA:      100 + float64(i%7),
			LegB:      50 + float64(i%5),
		}
	}
	return rows
}

func TestLocalWorker_Run(t *testing.T) {
	provider := &fakeProvider{rows: map[string][]core.PriceRow{
		"ym_es.csv": fixedRows(400),
	}}
	w := NewLocal(provider)

	result, err := w.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.ID != "job-1" {
		t.Errorf("id = %s", result.ID)
	}
	if result.Summary == nil {
		t.Fatal("expected summary")
	}
	if len(result.Progress) != 250 {
		t.Errorf("progress should be capped at 250, got %d", len(result.Progress))
	}
	if len(result.Logs) == 0 {
		t.Error("expected an explanatory log line")
	}
}

func TestLocalWorker_Deterministic(t *testing.T) {
	provider := &fakeProvider{rows: map[string][]core.PriceRow{
		"ym_es.csv": fixedRows(100),
	}}
	w := NewLocal(provider)

	first, err := w.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatal(err)
	}
	second, err := w.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must produce identical results")
	}
}

func TestLocalWorker_DatasetNotFound(t *testing.T) {
	w := NewLocal(&fakeProvider{rows: map[string][]core.PriceRow{}})

	_, err := w.Run(context.Background(), testRequest())
	if !errors.Is(err, core.ErrDatasetNotFound) {
		t.Errorf("expected DATASET_NOT_FOUND, got %v", err)
	}
}

func TestLocalWorker_DateFilter(t *testing.T) {
	// Rows span two days; the request covers only the first.
	day1 := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC)
	var rows []core.PriceRow
	for i := 0; i < 10; i++ {
		rows = append(rows, core.PriceRow{Timestamp: day1.Add(time.Duration(i) * time.Second), LegA: 100, LegB: 50})
		rows = append(rows, core.PriceRow{Timestamp: day2.Add(time.Duration(i) * time.Second), LegA: 200, LegB: 90})
	}
	provider := &fakeProvider{rows: map[string][]core.PriceRow{"ym_es.csv": rows}}
	w := NewLocal(provider)

	req := testRequest() // 2024-01-02..2024-01-03
	result, err := w.Run(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	// 10 in-range rows, lookback 5: 6 signals, all from day one's flat
	// spread of 100 - 0.5*50 = 75.
	if len(result.Progress) != 6 {
		t.Fatalf("expected 6 progress points, got %d", len(result.Progress))
	}
	for i, p := range result.Progress {
		if p.Value != 75 {
			t.Errorf("progress[%d].Value = %v, want 75", i, p.Value)
		}
	}
}

func TestLocalWorker_CancelledContext(t *testing.T) {
	provider := &fakeProvider{rows: map[string][]core.PriceRow{
		"ym_es.csv": fixedRows(10),
	}}
	w := NewLocal(provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.Run(ctx, testRequest())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestConfigFor_SweepParameters(t *testing.T) {
	req := core.JobRequest{
		Legs: [2]core.SpreadLeg{
			{Symbol: "ym_1s.csv", Multiplier: 1},
			{Symbol: "es_1s.csv", Multiplier: 0.8},
		},
		Parameters: core.Parameters{StdDevMultiplier: 2.5, WindowLength: 40},
	}

	cfg, err := configFor(req)
	if err != nil {
		t.Fatalf("configFor failed: %v", err)
	}
	if cfg.Lookback != 40 {
		t.Errorf("lookback = %d, want windowLength 40", cfg.Lookback)
	}
	if cfg.EntryZ != 2.5 {
		t.Errorf("entryZ = %v, want stdDevMultiplier 2.5", cfg.EntryZ)
	}
	if cfg.LegRatio != 0.8 {
		t.Errorf("legRatio = %v, want leg two multiplier 0.8", cfg.LegRatio)
	}
}

func TestLocalWorker_MissingLookbackRejected(t *testing.T) {
	// A sweep that only varies stdDevMultiplier yields requests without
	// a lookback or window length. They must be rejected, not run with
	// an empty z-score window.
	spec := &sweep.Spec{
		Variables: []sweep.Variable{
			{Name: "stdDevMultiplier", Min: 1.5, Max: 2.5, Step: 0.5},
		},
		Constants: sweep.Constants{
			Timezone:  "America/Chicago",
			StartDate: "2024-01-02",
			EndDate:   "2024-01-03",
			Assets: sweep.Assets{
				AssetA: sweep.Asset{Path: "ym_es.csv", Weight: 1},
				AssetB: sweep.Asset{Path: "es_1s.csv", Weight: 1},
			},
		},
	}
	perms := sweep.Generate(spec)
	if len(perms) == 0 {
		t.Fatal("expected permutations")
	}
	req := sweep.ToJobRequest(perms[0], "job-sweep", core.Resolution1m)

	if _, err := configFor(req); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected VALIDATION_FAILED from configFor, got %v", err)
	}

	provider := &fakeProvider{rows: map[string][]core.PriceRow{
		"ym_es.csv": fixedRows(10),
	}}
	w := NewLocal(provider)

	_, err := w.Run(context.Background(), req)
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected VALIDATION_FAILED from Run, got %v", err)
	}
}
