// Package signal computes spread mean-reversion trading signals over a
// two-asset price stream.
package signal

import (
	"math"

	"github.com/mmtrader/pairsweep/internal/core"
)

// Config holds the strategy parameters for one signal run.
type Config struct {
	LegRatio float64
	Lookback int
	EntryZ   float64
	ExitZ    float64
}

// Compute derives one signal per stream row once the lookback window is
// warm. Pure and deterministic: identical inputs always produce
// identical output, and no state survives across calls.
//
// spread[i] = legA[i] - legRatio*legB[i]. The z-score is measured
// against the mean and population variance of the most recent Lookback
// spreads; a flat window yields z = 0. Position state machine: flat
// enters short at z >= entryZ and long at z <= -entryZ; long exits at
// z >= -exitZ, short exits at z <= exitZ.
//
// Rows before warm-up emit nothing, so the output is shorter than the
// input by Lookback-1 rows (empty when the input is shorter than the
// lookback). A config without a positive lookback emits nothing: the
// window would be empty and no z-score is defined over it.
func Compute(stream []core.PriceRow, cfg Config) []core.Signal {
	if len(stream) == 0 || cfg.Lookback < 1 {
		return nil
	}

	spreads := make([]float64, 0, len(stream))
	var signals []core.Signal
	position := core.ActionFlat

	for _, row := range stream {
		spread := row.LegA - cfg.LegRatio*row.LegB
		spreads = append(spreads, spread)

		if len(spreads) < cfg.Lookback {
			continue
		}

		window := spreads[len(spreads)-cfg.Lookback:]
		mean := meanOf(window)

		var variance float64
		for _, v := range window {
			variance += (v - mean) * (v - mean)
		}
		variance /= float64(len(window))
		std := math.Sqrt(variance)

		var zScore float64
		if std != 0 {
			zScore = (spread - mean) / std
		}

		switch position {
		case core.ActionFlat:
			if zScore >= cfg.EntryZ {
				position = core.ActionShort
			} else if zScore <= -cfg.EntryZ {
				position = core.ActionLong
			}
		case core.ActionLong:
			if zScore >= -cfg.ExitZ {
				position = core.ActionFlat
			}
		case core.ActionShort:
			if zScore <= cfg.ExitZ {
				position = core.ActionFlat
			}
		}

		signals = append(signals, core.Signal{
			Timestamp: row.Timestamp,
			Spread:    spread,
			ZScore:    zScore,
			Action:    position,
		})
	}

	return signals
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
