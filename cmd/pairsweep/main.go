package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "pairsweep",
	Short: "pairsweep - parameter-sweep backtesting for spread strategies",
	Long: `pairsweep runs spread mean-reversion backtests over futures pairs.
It expands parameter sweeps into job matrices and executes them against
local or remote workers.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
