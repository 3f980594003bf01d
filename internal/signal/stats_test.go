package signal

import (
	"math"
	"testing"
	"time"

	"github.com/mmtrader/pairsweep/internal/core"
)

func signalsFrom(spreads []float64, actions []core.Action) []core.Signal {
	base := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	out := make([]core.Signal, len(spreads))
	for i := range spreads {
		action := core.ActionFlat
		if actions != nil {
			action = actions[i]
		}
		out[i] = core.Signal{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Spread:    spreads[i],
			Action:    action,
		}
	}
	return out
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)
	if summary != (core.Summary{}) {
		t.Errorf("empty run should yield a zero summary, got %+v", summary)
	}
}

func TestSummarize_TotalPnLAndSharpe(t *testing.T) {
	summary := Summarize(signalsFrom([]float64{2, 4, 6}, nil))

	if summary.TotalPnL != 12 {
		t.Errorf("TotalPnL = %v, want 12", summary.TotalPnL)
	}

	// mean 4, population std sqrt(8/3)
	wantSharpe := 4 / math.Sqrt(8.0/3.0)
	if math.Abs(summary.Sharpe-wantSharpe) > 1e-9 {
		t.Errorf("Sharpe = %v, want %v", summary.Sharpe, wantSharpe)
	}
}

func TestSummarize_FlatSeriesHasZeroSharpe(t *testing.T) {
	summary := Summarize(signalsFrom([]float64{5, 5, 5, 5}, nil))
	if summary.Sharpe != 0 {
		t.Errorf("zero-variance series should have Sharpe 0, got %v", summary.Sharpe)
	}
	if summary.MaxDrawdown != 0 {
		t.Errorf("flat series should have no drawdown, got %v", summary.MaxDrawdown)
	}
}

func TestSummarize_MaxDrawdown(t *testing.T) {
	// Peak 10, trough 3 after the peak: drawdown 7. The later dip to 6
	// against peak 12 is only 6.
	summary := Summarize(signalsFrom([]float64{8, 10, 3, 12, 6}, nil))
	if summary.MaxDrawdown != 7 {
		t.Errorf("MaxDrawdown = %v, want 7", summary.MaxDrawdown)
	}
}

func TestSummarize_TradeCount(t *testing.T) {
	actions := []core.Action{
		core.ActionFlat,
		core.ActionShort, // entry 1
		core.ActionShort,
		core.ActionFlat,
		core.ActionLong, // entry 2
		core.ActionFlat,
	}
	summary := Summarize(signalsFrom([]float64{1, 1, 1, 1, 1, 1}, actions))
	if summary.TradeCount != 2 {
		t.Errorf("TradeCount = %d, want 2", summary.TradeCount)
	}
}
