// Package cpushare models a worker's single logical CPU slot shared
// equally among every task currently placed on it, recomputing each
// task's estimated finish time whenever the concurrency set changes
// (spec.md §4.4).
package cpushare

import (
	"math"

	"github.com/chainsim/chainsim/sim"
)

// RunningTask is one task currently occupying the CPU's shared slot.
type RunningTask struct {
	ExecTime         int64
	Progress         float64
	CurrentRateStart int64
	estFinish        int64
	seq              int64

	Completion *sim.Event
}

// CPU is a worker's single fair-share compute resource. NewCPU spawns its
// driver fiber; callers interact only through Submit.
type CPU struct {
	k        *sim.Kernel
	workerID string

	running  []*RunningTask
	timer    *sim.Timer
	idleWake *sim.Event
	seqNext  int64
}

// RunningCount reports how many tasks currently occupy the CPU's shared
// slot (diagnostic/testing only).
func (c *CPU) RunningCount() int { return len(c.running) }

// NewCPU constructs and starts a worker's CPU.
func NewCPU(k *sim.Kernel, workerID string) *CPU {
	c := &CPU{k: k, workerID: workerID}
	k.Spawn(c.run)
	return c
}

// Submit places a task of the given exec_time onto the CPU. completion
// fires the moment the task's share of compute finishes.
func (c *CPU) Submit(execTime int64, completion *sim.Event) *RunningTask {
	now := c.k.Clock
	c.advanceProgress(now)
	rt := &RunningTask{ExecTime: execTime, Completion: completion, CurrentRateStart: now, seq: c.seqNext}
	c.seqNext++
	c.running = append(c.running, rt)
	c.recomputeFinishTimes(now)
	c.wake()
	return rt
}

func (c *CPU) advanceProgress(now int64) {
	n := len(c.running)
	if n == 0 {
		return
	}
	for _, r := range c.running {
		r.Progress += float64(now-r.CurrentRateStart) / float64(n)
	}
}

func (c *CPU) recomputeFinishTimes(now int64) {
	n := len(c.running)
	for _, r := range c.running {
		r.CurrentRateStart = now
		remaining := float64(r.ExecTime) - r.Progress
		if remaining < 0 {
			remaining = 0
		}
		r.estFinish = now + int64(math.Ceil(remaining*float64(n)))
	}
}

func (c *CPU) wake() {
	if c.idleWake != nil {
		ev := c.idleWake
		c.idleWake = nil
		ev.Fire(struct{}{})
		return
	}
	if c.timer != nil {
		c.timer.Interrupt("recompute")
	}
}

func (c *CPU) earliestFinishTask() *RunningTask {
	best := c.running[0]
	for _, r := range c.running[1:] {
		if r.estFinish < best.estFinish || (r.estFinish == best.estFinish && r.seq < best.seq) {
			best = r
		}
	}
	return best
}

func (c *CPU) run(p *sim.Proc) {
	for {
		for len(c.running) == 0 {
			c.idleWake = c.k.NewEvent()
			p.Wait(c.idleWake)
		}
		target := c.earliestFinishTask()
		delay := target.estFinish - c.k.Clock
		if delay < 0 {
			delay = 0
		}
		c.timer = p.NewTimer(delay)
		interrupted, _ := p.WaitTimer(c.timer)
		if interrupted {
			continue
		}
		c.complete(target)
	}
}

func (c *CPU) complete(rt *RunningTask) {
	now := c.k.Clock
	c.advanceProgress(now)
	idx := -1
	for i, r := range c.running {
		if r == rt {
			idx = i
			break
		}
	}
	if idx >= 0 {
		c.running = append(c.running[:idx], c.running[idx+1:]...)
	}
	c.recomputeFinishTimes(now)
	c.timer = nil
	rt.Completion.Fire(struct{}{})
}
