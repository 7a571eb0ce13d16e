package sim

import (
	"fmt"

	"github.com/chainsim/chainsim/dag"
)

// Job owns a DAG of Tasks. Edge a->b means task b's Inputs include task a's
// Output object. The graph is acyclic; Job is the sole owner of its Tasks —
// every other component (Scheduler, CPUShare, Executor, event callbacks)
// refers to tasks by Job+index or by borrowed pointer, never outliving Job.
type Job struct {
	Name  string
	DAG   *dag.Graph
	Tasks []*Task

	byName map[string]int
}

// NewJob constructs a Job over n tasks with no edges yet. Callers fill in
// Tasks[i] for every vertex id before wiring edges with AddEdge.
func NewJob(name string, n int) *Job {
	return &Job{
		Name:   name,
		DAG:    dag.New(n),
		Tasks:  make([]*Task, n),
		byName: make(map[string]int, n),
	}
}

// SetTask installs task t at vertex id, registering it in the name index.
func (j *Job) SetTask(id int, t *Task) {
	t.ID = id
	j.Tasks[id] = t
	j.byName[t.Name] = id
}

// TaskByName looks up a task's vertex id by name.
func (j *Job) TaskByName(name string) (int, bool) {
	id, ok := j.byName[name]
	return id, ok
}

// AddEdge wires a->b: b.Inputs must already include a.Output (the .g/.json
// trace loader is responsible for establishing this before calling AddEdge;
// Validate checks the invariant holds for every edge).
func (j *Job) AddEdge(a, b int) {
	j.DAG.AddEdge(a, b)
}

// Validate checks the Job invariants from spec.md §3: the DAG is acyclic,
// and for every edge a->b, a's Output is among b's Inputs.
func (j *Job) Validate() error {
	if !j.DAG.IsAcyclic() {
		return fmt.Errorf("job %q: task graph contains a cycle", j.Name)
	}
	for a := 0; a < j.DAG.N(); a++ {
		out := j.Tasks[a].Output
		for _, bi := range j.DAG.Out(a) {
			b := j.Tasks[bi]
			if out == nil || !hasInput(b, out) {
				return fmt.Errorf("job %q: edge %s->%s missing output-as-input wiring",
					j.Name, j.Tasks[a].Name, b.Name)
			}
		}
	}
	return nil
}

func hasInput(t *Task, obj *Object) bool {
	for _, in := range t.Inputs {
		if in == obj {
			return true
		}
	}
	return false
}

// Ready returns the vertex ids of every task whose in-neighbors have all
// finished and which is itself still waiting.
func (j *Job) Ready() []int {
	var ready []int
	for v := 0; v < j.DAG.N(); v++ {
		t := j.Tasks[v]
		if t.Status != TaskWaiting {
			continue
		}
		if j.predecessorsFinished(v) {
			ready = append(ready, v)
		}
	}
	return ready
}

// ReadyDependents returns the out-neighbors of the just-finished task `v`
// that have become ready as a result (every in-neighbor finished, including
// v). Used by the Scheduler's completion callback to compute successors
// without rescanning the whole DAG.
func (j *Job) ReadyDependents(v int) []int {
	var ready []int
	for _, wi := range j.DAG.Out(v) {
		w := int(wi)
		t := j.Tasks[w]
		if t.Status != TaskWaiting {
			continue
		}
		if j.predecessorsFinished(w) {
			ready = append(ready, w)
		}
	}
	return ready
}

func (j *Job) predecessorsFinished(v int) bool {
	for _, ui := range j.DAG.In(v) {
		if j.Tasks[ui].Status != TaskFinished {
			return false
		}
	}
	return true
}

// Done reports whether every task in the job has finished.
func (j *Job) Done() bool {
	for _, t := range j.Tasks {
		if t.Status != TaskFinished {
			return false
		}
	}
	return true
}
