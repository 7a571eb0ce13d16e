// Package scheduler implements job admission, ready-task selection,
// policy-driven worker placement, completion callbacks, and prefetch NOP
// injection (spec.md §4.7).
package scheduler

import (
	"github.com/chainsim/chainsim/executor"
	"github.com/chainsim/chainsim/scheduler/policy"
	"github.com/chainsim/chainsim/sim"
)

type taskItem struct {
	task     *sim.Task
	job      *sim.Job
	vertexID int // -1 for a synthetic prefetch NOP not tracked by any Job
	worker   sim.WorkerID
	readyAt  int64
}

type workerBinding struct {
	slots []*executor.Slot
	rr    int
}

// Scheduler owns the task queue and drives every task from ready to placed
// to completed. There is no separate job queue: Admit enqueues a job's ready
// tasks directly.
type Scheduler struct {
	k        *sim.Kernel
	placer   *policy.Placer
	prefetch bool
	metrics  *sim.Metrics

	bindings  map[sim.WorkerID]*workerBinding
	taskQueue *sim.Queue[*taskItem]

	onComplete func(job *sim.Job, t *sim.Task)
}

// OnTaskComplete registers a callback invoked after every non-NOP task
// finishes and its stats have been folded into the aggregate metrics. Used
// by the CLI to build the per-task accounting log (spec.md §6).
func (s *Scheduler) OnTaskComplete(fn func(job *sim.Job, t *sim.Task)) {
	s.onComplete = fn
}

// New constructs a Scheduler. slots maps each active worker to its pool of
// executor slots.
func New(k *sim.Kernel, placer *policy.Placer, prefetch bool, slots map[sim.WorkerID][]*executor.Slot, metrics *sim.Metrics) *Scheduler {
	bindings := make(map[sim.WorkerID]*workerBinding, len(slots))
	for w, s := range slots {
		bindings[w] = &workerBinding{slots: s}
	}
	s := &Scheduler{
		k:         k,
		placer:    placer,
		prefetch:  prefetch,
		metrics:   metrics,
		bindings:  bindings,
		taskQueue: sim.NewQueue[*taskItem](k),
	}
	k.Spawn(s.run)
	return s
}

// Admit computes a job's initially ready tasks (its DAG sources) and
// enqueues them.
func (s *Scheduler) Admit(job *sim.Job) {
	now := s.k.Clock
	for _, v := range job.Ready() {
		s.taskQueue.Put(&taskItem{task: job.Tasks[v], job: job, vertexID: v, readyAt: now})
	}
}

func (s *Scheduler) run(p *sim.Proc) {
	for {
		item := s.taskQueue.Get(p)
		s.dispatch(item)
	}
}

func (s *Scheduler) dispatch(item *taskItem) {
	t := item.task
	worker := item.worker
	if worker == "" {
		w, err := s.placer.Place(t)
		if err != nil {
			panic(err)
		}
		worker = w
	}
	t.Worker = worker
	t.ScheduleDelay = s.k.Clock - item.readyAt

	if item.vertexID >= 0 {
		done := s.k.NewEvent()
		t.Completion = done
		job, id := item.job, item.vertexID
		s.k.Spawn(func(cp *sim.Proc) {
			v := cp.Wait(done)
			s.onTaskComplete(job, id, v.(sim.TaskStats))
		})
	}

	s.nextSlot(worker).Submit(t)
}

func (s *Scheduler) nextSlot(w sim.WorkerID) *executor.Slot {
	b := s.bindings[w]
	slot := b.slots[b.rr%len(b.slots)]
	b.rr++
	return slot
}

func (s *Scheduler) onTaskComplete(job *sim.Job, id int, stats sim.TaskStats) {
	s.metrics.Record(stats)
	if s.onComplete != nil {
		s.onComplete(job, job.Tasks[id])
	}
	completedColor := job.Tasks[id].Color
	now := s.k.Clock

	for _, w := range job.ReadyDependents(id) {
		dep := job.Tasks[w]
		worker, err := s.placer.Place(dep)
		if err != nil {
			panic(err)
		}
		if s.prefetch && dep.Color != completedColor {
			s.injectPrefetchNOP(job, id, worker, now)
		}
		s.taskQueue.Put(&taskItem{task: dep, job: job, vertexID: w, worker: worker, readyAt: now})
	}
}

// injectPrefetchNOP enqueues a synthetic zero-computation task on
// targetWorker that fetches the just-completed producer's output (spec.md
// §4.5, §4.6 usage, §4.7). The fetched data is not inserted into
// targetWorker's cache, so the real dependent task still reads the object
// from its owner. The NOP is never tracked by any Job and never registers a
// completion callback.
func (s *Scheduler) injectPrefetchNOP(job *sim.Job, producerID int, targetWorker sim.WorkerID, readyAt int64) {
	producer := job.Tasks[producerID]
	nop := &sim.Task{
		Name:     sim.NOPName,
		ExecTime: 0,
		Inputs:   []*sim.Object{producer.Output},
	}
	s.taskQueue.Put(&taskItem{task: nop, vertexID: -1, worker: targetWorker, readyAt: readyAt})
}
