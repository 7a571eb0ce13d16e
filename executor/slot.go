package executor

import (
	"github.com/chainsim/chainsim/cacheengine"
	"github.com/chainsim/chainsim/sim"
)

// Slot is one executor slot on a Worker. Tasks are handed to it via
// Submit and run to completion one at a time, in submission order
// (spec.md §4.5).
type Slot struct {
	k        *sim.Kernel
	worker   *Worker
	incoming *sim.Queue[*sim.Task]
}

// NewSlot constructs and starts a slot bound to worker.
func NewSlot(k *sim.Kernel, worker *Worker) *Slot {
	s := &Slot{k: k, worker: worker, incoming: sim.NewQueue[*sim.Task](k)}
	k.Spawn(s.run)
	return s
}

// Submit enqueues a task for this slot to execute.
func (s *Slot) Submit(t *sim.Task) {
	s.incoming.Put(t)
}

func (s *Slot) run(p *sim.Proc) {
	for {
		t := s.incoming.Get(p)
		s.execute(p, t)
	}
}

func (s *Slot) execute(p *sim.Proc, t *sim.Task) {
	t.Status = sim.TaskSubmitted
	start := s.k.Clock
	t.Stats.StartTS = start

	if t.ScheduleDelay > 0 {
		p.Sleep(t.ScheduleDelay)
	}

	var remoteBytes, localBytes, transmitTotal, deserTotal, serWaitTotal int64

	n := len(t.Inputs)
	if n > 0 {
		completions := make([]*sim.Event, n)
		for i, obj := range t.Inputs {
			i, obj := i, obj
			completions[i] = s.k.NewEvent()
			s.k.Spawn(func(fp *sim.Proc) {
				if obj.Owner == sim.WorkerID(s.worker.IP) {
					size, serWait, deser := s.worker.Cache.HandleRequest(fp, true, obj.Name)
					localBytes += size
					deserTotal += deser
					serWaitTotal += serWait
				} else {
					reqStart := s.k.Clock
					resp := s.worker.FetchRemote(fp, obj)
					remoteBytes += resp.Size
					deserTotal += resp.DeserTime
					serWaitTotal += resp.SerWaitTime
					xmit := (s.k.Clock - reqStart) - resp.SerWaitTime - resp.DeserTime
					if xmit < 0 {
						xmit = 0
					}
					transmitTotal += xmit
				}
				completions[i].Fire(struct{}{})
			})
		}
		p.WaitAll(completions...)
	}

	t.Stats.RemoteBytes = remoteBytes
	t.Stats.LocalBytes = localBytes
	t.Stats.TransmitTime = transmitTotal
	t.Stats.DeserializationTime = deserTotal
	t.Stats.WaitForSerialization = serWaitTotal

	computeDone := s.k.NewEvent()
	if t.IsNOP() {
		// NOPs never enter the CPU's fair-share running set: they only
		// fetch their inputs, they do not compute. The fetched bytes are
		// counted in the NOP's stats but not inserted into this worker's
		// cache (spec.md §4.5/§4.7).
		computeDone.Fire(struct{}{})
	} else {
		s.worker.CPU.Submit(t.ExecTime, computeDone)
	}
	p.Wait(computeDone)
	t.Stats.CPUTime = t.ExecTime
	if t.ComputeCompletion != nil {
		t.ComputeCompletion.Fire(struct{}{})
	}

	if t.Output != nil && !t.IsNOP() {
		t.Output.Owner = sim.WorkerID(s.worker.IP)
		insertEv := s.worker.Cache.Insert(t.Output)
		if s.worker.Policy != cacheengine.Lazy {
			p.Wait(insertEv)
		}
	}

	t.Status = sim.TaskFinished
	t.Stats.EndTS = s.k.Clock
	t.Stats.TaskEndToEndDelay = s.k.Clock - start
	if t.Completion != nil {
		t.Completion.Fire(t.Stats)
	}
}
