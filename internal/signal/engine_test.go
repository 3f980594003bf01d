package signal

import (
	"testing"
	"time"

	"github.com/mmtrader/pairsweep/internal/core"
)

func streamOf(legA, legB []float64) []core.PriceRow {
	base := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	rows := make([]core.PriceRow, len(legA))
	for i := range legA {
		rows[i] = core.PriceRow{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			LegA:      legA[i],
			LegB:      legB[i],
		}
	}
	return rows
}

func constants(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestCompute_FlatSpreadStaysFlat(t *testing.T) {
	// legA - 1.0*legB is constant, so every window has zero variance
	// and the z-score guard keeps the run neutral throughout.
	stream := streamOf(constants(10, 105), constants(10, 100))

	signals := Compute(stream, Config{LegRatio: 1, Lookback: 5, EntryZ: 2, ExitZ: 0.5})

	if len(signals) != 6 {
		t.Fatalf("expected 10-5+1 = 6 signals, got %d", len(signals))
	}
	for i, s := range signals {
		if s.ZScore != 0 {
			t.Errorf("signals[%d].ZScore = %v, want 0", i, s.ZScore)
		}
		if s.Action != core.ActionFlat {
			t.Errorf("signals[%d].Action = %s, want flat", i, s.Action)
		}
		if s.Spread != 5 {
			t.Errorf("signals[%d].Spread = %v, want 5", i, s.Spread)
		}
	}
}

func TestCompute_NoLookbackEmitsNothing(t *testing.T) {
	// Without a positive lookback there is no window to measure a
	// z-score over; the run must emit nothing rather than NaN scores.
	stream := streamOf(constants(10, 105), constants(10, 100))

	for _, lookback := range []int{0, -1} {
		signals := Compute(stream, Config{LegRatio: 1, Lookback: lookback, EntryZ: 2, ExitZ: 0.5})
		if len(signals) != 0 {
			t.Errorf("lookback %d: expected no signals, got %d", lookback, len(signals))
		}
	}
}

func TestCompute_WarmupEmitsNothing(t *testing.T) {
	stream := streamOf(constants(3, 10), constants(3, 9))

	signals := Compute(stream, Config{LegRatio: 1, Lookback: 5, EntryZ: 2, ExitZ: 0.5})
	if len(signals) != 0 {
		t.Errorf("input shorter than lookback should emit nothing, got %d", len(signals))
	}
}

func TestCompute_EmptyStream(t *testing.T) {
	if got := Compute(nil, Config{LegRatio: 1, Lookback: 5}); got != nil {
		t.Errorf("expected nil for empty stream, got %v", got)
	}
}

func TestCompute_ShortEntryAndExit(t *testing.T) {
	// Stable spread for the warm-up, then a spike wide enough to clear
	// entryZ, then a return to the mean to trigger the exit.
	legA := []float64{100, 101, 100, 101, 100, 110, 100, 100, 100}
	legB := constants(9, 50)
	stream := streamOf(legA, legB)

	signals := Compute(stream, Config{LegRatio: 1, Lookback: 5, EntryZ: 1.5, ExitZ: 0.5})

	if len(signals) != 5 {
		t.Fatalf("expected 5 signals, got %d", len(signals))
	}

	// Row 5 is the spike: spread jumps to 60 against a ~50.x mean.
	if signals[1].Action != core.ActionShort {
		t.Errorf("spike row should enter short, got %s (z=%v)", signals[1].Action, signals[1].ZScore)
	}
	if signals[1].ZScore < 1.5 {
		t.Errorf("spike z-score %v should clear the entry threshold", signals[1].ZScore)
	}

	// After the spread falls back the short must be closed.
	last := signals[len(signals)-1]
	if last.Action != core.ActionFlat {
		t.Errorf("run should end flat after reversion, got %s", last.Action)
	}
}

func TestCompute_LongEntry(t *testing.T) {
	// Mirror case: downward spike drives z below -entryZ.
	legA := []float64{100, 101, 100, 101, 100, 90}
	legB := constants(6, 50)
	stream := streamOf(legA, legB)

	signals := Compute(stream, Config{LegRatio: 1, Lookback: 5, EntryZ: 1.5, ExitZ: 0.5})

	last := signals[len(signals)-1]
	if last.Action != core.ActionLong {
		t.Errorf("downward spike should enter long, got %s (z=%v)", last.Action, last.ZScore)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	legA := []float64{100, 102, 99, 104, 101, 98, 105, 97, 103, 100, 99, 102}
	legB := []float64{50, 51, 49, 52, 50, 48, 53, 49, 51, 50, 49, 51}
	stream := streamOf(legA, legB)
	cfg := Config{LegRatio: 2, Lookback: 5, EntryZ: 1.2, ExitZ: 0.4}

	first := Compute(stream, cfg)
	second := Compute(stream, cfg)

	if len(first) != len(second) {
		t.Fatal("repeated runs produced different lengths")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("signals[%d] differs across runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestCompute_LegRatioApplied(t *testing.T) {
	stream := streamOf(constants(5, 100), constants(5, 30))

	signals := Compute(stream, Config{LegRatio: 2, Lookback: 5, EntryZ: 2, ExitZ: 0.5})
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	if signals[0].Spread != 40 {
		t.Errorf("spread = %v, want 100 - 2*30 = 40", signals[0].Spread)
	}
}
