package signal

import (
	"math"

	"github.com/mmtrader/pairsweep/internal/core"
)

// Summarize computes the headline figures for one signal run.
//
// TotalPnL and Sharpe are measured over the spread series (sum, and
// mean over population standard deviation); MaxDrawdown is the largest
// running-peak decline of the spread; TradeCount counts position
// entries (transitions out of flat).
func Summarize(signals []core.Signal) core.Summary {
	if len(signals) == 0 {
		return core.Summary{}
	}

	var sum float64
	for _, s := range signals {
		sum += s.Spread
	}
	mean := sum / float64(len(signals))

	var variance float64
	for _, s := range signals {
		variance += (s.Spread - mean) * (s.Spread - mean)
	}
	std := math.Sqrt(variance / float64(len(signals)))

	var sharpe float64
	if std != 0 {
		sharpe = mean / std
	}

	var maxDrawdown float64
	peak := math.Inf(-1)
	for _, s := range signals {
		if s.Spread > peak {
			peak = s.Spread
		}
		if dd := peak - s.Spread; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}

	var trades int
	prev := core.ActionFlat
	for _, s := range signals {
		if prev == core.ActionFlat && s.Action != core.ActionFlat {
			trades++
		}
		prev = s.Action
	}

	return core.Summary{
		TotalPnL:    sum,
		Sharpe:      sharpe,
		MaxDrawdown: maxDrawdown,
		TradeCount:  trades,
	}
}
