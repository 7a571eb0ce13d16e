package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chainsim/chainsim/chains"
	"github.com/chainsim/chainsim/config"
	"github.com/chainsim/chainsim/scheduler"
	"github.com/chainsim/chainsim/scheduler/policy"
	"github.com/chainsim/chainsim/sim"
	"github.com/chainsim/chainsim/topology"
	"github.com/chainsim/chainsim/trace"
	"github.com/chainsim/chainsim/workload"
)

var (
	horizon int64
	seed    int64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full simulation to completion",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimulation()
	},
}

func init() {
	runCmd.Flags().Int64Var(&horizon, "horizon", 0, "simulation horizon in virtual-time units (0 = unbounded)")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "seed for the random placement policy")
}

func runSimulation() error {
	if configPath == "" {
		return fmt.Errorf("cmd: --config is required")
	}
	cfg := config.Load(configPath)

	k := sim.NewKernel(horizon)
	topo, err := topology.Build(k, cfg)
	if err != nil {
		return fmt.Errorf("cmd: %w", err)
	}

	jobs, vanilla, err := workload.LoadBenchmark(cfg.Benchmark.WorkloadDir, cfg.Benchmark.Workloads)
	if err != nil {
		return fmt.Errorf("cmd: %w", err)
	}

	kind, err := policy.Parse(cfg.Cluster.Scheduling)
	if err != nil {
		return fmt.Errorf("cmd: %w", err)
	}

	for _, job := range jobs {
		chains.Assign(job)
	}

	allVanilla := map[string]sim.WorkerID{}
	for _, v := range vanilla {
		for taskName, w := range v {
			allVanilla[taskName] = w
		}
	}
	optimal := map[string]sim.WorkerID{}
	if kind == policy.Optimal {
		for _, name := range cfg.Benchmark.Workloads {
			opt, err := workload.LoadOptimalPlacement(filepath.Join(cfg.Benchmark.WorkloadDir, name+".optimal"))
			if err != nil {
				return fmt.Errorf("cmd: %w", err)
			}
			for taskName, w := range opt {
				optimal[taskName] = w
			}
		}
	}

	placer := policy.NewPlacer(kind, topo.WorkerIDs(), seed, allVanilla, optimal)
	metrics := sim.NewMetrics()
	s := scheduler.New(k, placer, cfg.Cluster.Prefetch, topo.Slots, metrics)

	records := make(map[string][]trace.TaskRecord, len(jobs))
	s.OnTaskComplete(func(job *sim.Job, t *sim.Task) {
		records[job.Name] = append(records[job.Name], trace.FromTask(t))
	})

	for _, job := range jobs {
		s.Admit(job)
	}

	k.Run()
	metrics.Print(k.Clock)

	statsPath := filepath.Join(cfg.Benchmark.LogDir, cfg.Benchmark.Statistics)
	for _, job := range jobs {
		if !job.Done() {
			logrus.Warnf("job %q did not complete within the simulation horizon", job.Name)
		}
		if err := trace.WriteTaskLog(cfg.Benchmark.LogDir, job.Name, records[job.Name]); err != nil {
			return fmt.Errorf("cmd: %w", err)
		}
		summary := trace.SummaryFromMetrics(job.Name, cfg.Cluster.Scheduling, k.Clock, metrics)
		if err := trace.AppendSummary(statsPath, summary); err != nil {
			return fmt.Errorf("cmd: %w", err)
		}
	}
	return nil
}
