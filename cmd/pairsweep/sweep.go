package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mmtrader/pairsweep/internal/core"
	"github.com/mmtrader/pairsweep/internal/logger"
	"github.com/mmtrader/pairsweep/internal/sweep"
)

var (
	sweepResolution  string
	sweepParallelism int
	sweepDryRun      bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep [file]",
	Short: "Expand a sweep document and run every permutation",
	Long: `Expand a JSON sweep document into its full parameter matrix and run
each permutation as a backtest, printing per-permutation statistics.`,
	Args: cobra.ExactArgs(1),
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().StringVar(&sweepResolution, "resolution", "", "bar resolution (default from config)")
	sweepCmd.Flags().IntVar(&sweepParallelism, "parallelism", 0, "concurrent backtests (default from config)")
	sweepCmd.Flags().BoolVar(&sweepDryRun, "dry-run", false, "print the permutation matrix without running")

	rootCmd.AddCommand(sweepCmd)
}

type sweepOutcome struct {
	summary *core.Summary
	err     error
}

func runSweep(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug, "")
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	spec, err := sweep.Load(args[0])
	if err != nil {
		return err
	}

	perms := sweep.Generate(spec)
	if len(perms) > cfg.Sweep.MaxPermutations {
		return fmt.Errorf("sweep expands to %d permutations, limit is %d",
			len(perms), cfg.Sweep.MaxPermutations)
	}

	resolution := core.Resolution(cfg.Sweep.Resolution)
	if sweepResolution != "" {
		resolution = core.Resolution(sweepResolution)
	}
	if !resolution.IsValid() {
		return fmt.Errorf("unknown resolution %q", resolution)
	}

	fmt.Printf("=== pairsweep: %d permutations ===\n", len(perms))
	fmt.Printf("Period:     %s to %s\n", spec.Constants.StartDate, spec.Constants.EndDate)
	fmt.Printf("Assets:     %s / %s\n",
		spec.Constants.Assets.AssetA.Path, spec.Constants.Assets.AssetB.Path)
	fmt.Printf("Resolution: %s\n\n", resolution)

	if sweepDryRun {
		for _, perm := range perms {
			fmt.Println(formatPermutation(perm))
		}
		return nil
	}

	parallelism := cfg.Sweep.Parallelism
	if sweepParallelism > 0 {
		parallelism = sweepParallelism
	}

	datasets, err := buildProvider(cfg)
	if err != nil {
		return fmt.Errorf("creating dataset provider: %w", err)
	}
	w := buildWorker(cfg, datasets)

	outcomes := make([]sweepOutcome, len(perms))
	sem := make(chan struct{}, parallelism)
	var wg sync.WaitGroup

	for i, perm := range perms {
		wg.Add(1)
		go func(i int, perm sweep.Permutation) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			req := sweep.ToJobRequest(perm, uuid.NewString(), resolution)
			result, err := w.Run(cmd.Context(), req)
			if err != nil {
				outcomes[i] = sweepOutcome{err: err}
				return
			}
			outcomes[i] = sweepOutcome{summary: result.Summary}
		}(i, perm)
	}
	wg.Wait()

	failed := 0
	for i, perm := range perms {
		out := outcomes[i]
		switch {
		case out.err != nil:
			failed++
			fmt.Printf("%-48s FAILED %v\n", formatPermutation(perm), out.err)
		case out.summary == nil:
			fmt.Printf("%-48s no summary\n", formatPermutation(perm))
		default:
			fmt.Printf("%-48s pnl=%.2f sharpe=%.3f maxdd=%.2f trades=%d\n",
				formatPermutation(perm),
				out.summary.TotalPnL, out.summary.Sharpe,
				out.summary.MaxDrawdown, out.summary.TradeCount)
		}
	}

	if failed > 0 {
		log.Warn("sweep finished with failures",
			zap.Int("failed", failed),
			zap.Int("total", len(perms)),
		)
		return fmt.Errorf("%d of %d permutations failed", failed, len(perms))
	}
	return nil
}

func formatPermutation(perm sweep.Permutation) string {
	if len(perm.Names) == 0 {
		return "(constants only)"
	}
	parts := make([]string, 0, len(perm.Names))
	for _, name := range perm.Names {
		parts = append(parts, fmt.Sprintf("%s=%g", name, perm.Values[name]))
	}
	return strings.Join(parts, " ")
}
