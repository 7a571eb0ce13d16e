// Package workload loads job traces: the `.g` vertex/edge graph, the
// `.json` per-task timing trace, and the optional `.optimal`/`.colors`
// side files (spec.md §6).
package workload

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chainsim/chainsim/sim"
)

// LoadBenchmark loads every job named in benchmark.workloads from dir,
// supporting multiple jobs per benchmark directory (supplemented from
// original_source/simulator/workload.py's build_workload, which the
// distillation's single-job framing dropped). Returns the jobs in the
// same order as names, and each job's vanilla placement map.
func LoadBenchmark(dir string, names []string) ([]*sim.Job, map[string]map[string]sim.WorkerID, error) {
	jobs := make([]*sim.Job, 0, len(names))
	vanilla := make(map[string]map[string]sim.WorkerID, len(names))
	for _, name := range names {
		base := filepath.Join(dir, name)
		job, v, err := LoadJob(name, base+".g", base+".json")
		if err != nil {
			return nil, nil, err
		}
		jobs = append(jobs, job)
		vanilla[name] = v
	}
	return jobs, vanilla, nil
}

type taskTrace struct {
	Msg struct {
		NBytes     int64 `json:"nbytes"`
		Startstops []struct {
			Action string `json:"action"`
			Start  int64  `json:"start"`
			Stop   int64  `json:"stop"`
		} `json:"startstops"`
	} `json:"msg"`
	Worker string `json:"worker"`
}

// LoadJob parses a job's .g and .json trace files into a sim.Job, and
// returns the vanilla placement implied by each task's "worker" field,
// keyed by task name, for the vanilla placement policy (spec.md §6, §4.7).
func LoadJob(name, gPath, jsonPath string) (*sim.Job, map[string]sim.WorkerID, error) {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, nil, fmt.Errorf("workload: reading %s: %w", jsonPath, err)
	}
	var traces map[string]taskTrace
	if err := json.Unmarshal(raw, &traces); err != nil {
		return nil, nil, fmt.Errorf("workload: parsing %s: %w", jsonPath, err)
	}

	tasks := make(map[string]*sim.Task, len(traces))
	vanilla := make(map[string]sim.WorkerID, len(traces))
	for tname, tr := range traces {
		execTime, ok := computeTime(tr)
		if !ok {
			return nil, nil, fmt.Errorf("workload: task %q in %s has no compute startstop", tname, jsonPath)
		}
		tasks[tname] = &sim.Task{
			Name:     tname,
			ExecTime: execTime,
			Output:   &sim.Object{Name: tname, Size: tr.Msg.NBytes},
		}
		if w := vanillaWorker(tr.Worker); w != "" {
			vanilla[tname] = w
		}
	}

	job, err := buildDAG(name, gPath, tasks)
	if err != nil {
		return nil, nil, err
	}
	if err := job.Validate(); err != nil {
		return nil, nil, fmt.Errorf("workload: %w", err)
	}
	return job, vanilla, nil
}

func computeTime(tr taskTrace) (int64, bool) {
	for _, ss := range tr.Msg.Startstops {
		if ss.Action == "compute" {
			return ss.Stop - ss.Start, true
		}
	}
	return 0, false
}

// vanillaWorker extracts the placement host out of a "tcp://ip:port/..."
// style worker string.
func vanillaWorker(raw string) sim.WorkerID {
	s := strings.TrimPrefix(raw, "tcp://")
	if i := strings.IndexAny(s, ":/"); i >= 0 {
		s = s[:i]
	}
	return sim.WorkerID(s)
}

// buildDAG parses the .g file's `v,<vid>,<name>` and `e,<src>,<dst>[,...]`
// records into a Job whose vertex ids follow declaration order. Vertices
// must appear before any edge referencing them (spec.md §6, §7).
func buildDAG(name, gPath string, tasks map[string]*sim.Task) (*sim.Job, error) {
	f, err := os.Open(gPath)
	if err != nil {
		return nil, fmt.Errorf("workload: reading %s: %w", gPath, err)
	}
	defer f.Close()

	vidIndex := make(map[string]int)
	vidName := make(map[string]string)
	var edges [][2]string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "v,"):
			fields := strings.SplitN(line, ",", 3)
			if len(fields) != 3 {
				return nil, fmt.Errorf("workload: %s: malformed vertex line %q", gPath, line)
			}
			vid, tname := fields[1], fields[2]
			if _, ok := vidIndex[vid]; ok {
				return nil, fmt.Errorf("workload: %s: duplicate vertex id %q", gPath, vid)
			}
			if _, ok := tasks[tname]; !ok {
				return nil, fmt.Errorf("workload: %s: vertex %q references unknown task %q", gPath, vid, tname)
			}
			vidIndex[vid] = len(vidIndex)
			vidName[vid] = tname
		case strings.HasPrefix(line, "e,"):
			fields := strings.Split(line, ",")
			if len(fields) < 3 {
				return nil, fmt.Errorf("workload: %s: malformed edge line %q", gPath, line)
			}
			src, dst := fields[1], fields[2]
			if _, ok := vidIndex[src]; !ok {
				return nil, fmt.Errorf("workload: %s: edge references undeclared vertex %q", gPath, src)
			}
			if _, ok := vidIndex[dst]; !ok {
				return nil, fmt.Errorf("workload: %s: edge references undeclared vertex %q", gPath, dst)
			}
			edges = append(edges, [2]string{src, dst})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("workload: reading %s: %w", gPath, err)
	}

	job := sim.NewJob(name, len(vidIndex))
	for vid, idx := range vidIndex {
		job.SetTask(idx, tasks[vidName[vid]])
	}
	for _, e := range edges {
		a, b := job.Tasks[vidIndex[e[0]]], job.Tasks[vidIndex[e[1]]]
		b.Inputs = append(b.Inputs, a.Output)
		job.AddEdge(vidIndex[e[0]], vidIndex[e[1]])
	}
	return job, nil
}

// LoadOptimalPlacement reads a `<name>.optimal` file's
// `task_name,start_ts,worker_id` lines into a map keyed by task name,
// feeding the `optimal` placement policy (spec.md §6, §4.7).
func LoadOptimalPlacement(path string) (map[string]sim.WorkerID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("workload: reading %s: %w", path, err)
	}
	defer f.Close()

	placement := make(map[string]sim.WorkerID)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 3 {
			return nil, fmt.Errorf("workload: %s: malformed line %q", path, line)
		}
		placement[fields[0]] = sim.WorkerID(fields[len(fields)-1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("workload: reading %s: %w", path, err)
	}
	return placement, nil
}

// LoadGroundTruthColors reads a `<name>.colors` file into a map keyed by
// task name. Used only by tests/diagnostics to diff against the chains
// package's output; never consulted by the simulation itself (spec.md §6).
func LoadGroundTruthColors(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("workload: reading %s: %w", path, err)
	}
	defer f.Close()

	colors := make(map[string]int)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			return nil, fmt.Errorf("workload: %s: malformed line %q", path, line)
		}
		var c int
		if _, err := fmt.Sscanf(fields[1], "%d", &c); err != nil {
			return nil, fmt.Errorf("workload: %s: bad color %q: %w", path, fields[1], err)
		}
		colors[fields[0]] = c
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("workload: reading %s: %w", path, err)
	}
	return colors, nil
}
