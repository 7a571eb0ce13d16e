package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleConfigYAML = `
topology:
  r1:
    type: router
    ip: 10.0.1.1
    ports: 8
    rate: 1000000
  w1:
    type: worker
    ip: 10.0.0.1
    rate: 1000000
    executors: 1
    gateway: r1
    cache:
      policy: lazy
      port: 9000
  w2:
    type: worker
    ip: 10.0.0.2
    rate: 1000000
    executors: 1
    gateway: r1
    cache:
      policy: lazy
      port: 9000
cluster:
  serialization: lazy
  scheduling: round_robin
  prefetch: false
benchmark:
  workloaddir: WORKDIR
  workloads: [job0]
  logdir: LOGDIR
  statistics: stats.csv
`

const sampleG = "v,0,taskA\nv,1,taskB\ne,0,1\n"

const sampleJSON = `{
  "taskA": {"msg": {"nbytes": 100, "startstops": [{"action": "compute", "start": 0, "stop": 5}]}, "worker": "tcp://10.0.0.1:9000/"},
  "taskB": {"msg": {"nbytes": 50, "startstops": [{"action": "compute", "start": 5, "stop": 9}]}, "worker": "tcp://10.0.0.2:9000/"}
}`

func TestRunSimulationProducesTraceAndSummaryFiles(t *testing.T) {
	dir := t.TempDir()
	workDir := filepath.Join(dir, "work")
	logDir := filepath.Join(dir, "logs")
	require.NoError(t, os.MkdirAll(workDir, 0o755))
	require.NoError(t, os.MkdirAll(logDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(workDir, "job0.g"), []byte(sampleG), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "job0.json"), []byte(sampleJSON), 0o644))

	yaml := sampleConfigYAML
	yaml = strings.ReplaceAll(yaml, "WORKDIR", workDir)
	yaml = strings.ReplaceAll(yaml, "LOGDIR", logDir)
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o644))

	configPath = cfgPath
	horizon = 0
	seed = 1
	defer func() { configPath = "" }()

	require.NoError(t, runSimulation())

	taskLog := filepath.Join(logDir, "job0.tasks.csv")
	require.FileExists(t, taskLog)
	statsPath := filepath.Join(logDir, "stats.csv")
	require.FileExists(t, statsPath)
}
