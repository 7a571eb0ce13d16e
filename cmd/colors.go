package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chainsim/chainsim/chains"
	"github.com/chainsim/chainsim/config"
	"github.com/chainsim/chainsim/workload"
)

var colorsJob string

// colorsCmd is the Go-native replacement for the original coloring
// diagnostic's standalone `if __name__ == "__main__"` entry point: it runs
// only the chain coloring (decomposition, merge and bit encoding),
// independent of a full simulation run (spec.md §6.3).
var colorsCmd = &cobra.Command{
	Use:   "colors",
	Short: "Print the chain/hierarchical coloring for one job, without running the simulation",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printColors()
	},
}

func init() {
	colorsCmd.Flags().StringVar(&colorsJob, "job", "", "name of the job (within benchmark.workloaddir) to color")
}

func printColors() error {
	if configPath == "" {
		return fmt.Errorf("cmd: --config is required")
	}
	if colorsJob == "" {
		return fmt.Errorf("cmd: --job is required")
	}
	cfg := config.Load(configPath)

	base := filepath.Join(cfg.Benchmark.WorkloadDir, colorsJob)
	job, _, err := workload.LoadJob(colorsJob, base+".g", base+".json")
	if err != nil {
		return fmt.Errorf("cmd: %w", err)
	}

	result := chains.Compute(job.DAG)
	for v, t := range job.Tasks {
		fmt.Printf("%s\tcolor=%d\thcolor=%d\thcolor_bits=%d\n",
			t.Name, result.Color[v], result.FinalColor[v], result.HColorBits[v])
	}
	return nil
}
