package trace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chainsim/chainsim/sim"
	"github.com/stretchr/testify/require"
)

func TestWriteTaskLogProducesHeaderAndRows(t *testing.T) {
	dir := t.TempDir()
	task := &sim.Task{
		Name:   "t0",
		Worker: "10.0.0.1",
		Output: &sim.Object{Name: "o0", Size: 100},
		Stats:  sim.TaskStats{StartTS: 0, EndTS: 10, CPUTime: 10, TaskEndToEndDelay: 10},
	}
	require.NoError(t, WriteTaskLog(dir, "job0", []TaskRecord{FromTask(task)}))

	data, err := os.ReadFile(filepath.Join(dir, "job0.tasks.csv"))
	require.NoError(t, err)
	require.Contains(t, string(data), "name,transfer")
	require.Contains(t, string(data), "t0,")
}

func TestAppendSummaryWritesHeaderOnceAndAppendsRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.csv")
	m := sim.NewMetrics()
	m.Record(sim.TaskStats{CPUTime: 5, TaskEndToEndDelay: 5})

	require.NoError(t, AppendSummary(path, SummaryFromMetrics("job0", "round_robin", 5, m)))
	require.NoError(t, AppendSummary(path, SummaryFromMetrics("job1", "round_robin", 8, m)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	require.Equal(t, 3, lines) // header + 2 rows
}
