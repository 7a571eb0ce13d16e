package scheduler

import (
	"testing"

	"github.com/chainsim/chainsim/cacheengine"
	"github.com/chainsim/chainsim/executor"
	"github.com/chainsim/chainsim/netfabric"
	"github.com/chainsim/chainsim/scheduler/policy"
	"github.com/chainsim/chainsim/sim"
	"github.com/stretchr/testify/require"
)

func zeroLatency() cacheengine.SizeLatencyModel { return cacheengine.LinearLatencyModel{} }

func newTestWorker(k *sim.Kernel, ip string) *executor.Worker {
	ni := netfabric.NewNetworkInterface(k, ip, 1_000_000_000)
	ni.Start(k)
	cache := cacheengine.NewCache(k, ip, cacheengine.Lazy, zeroLatency(), zeroLatency(), cacheengine.EvictionNone, 0)
	return executor.NewWorker(k, ip, ni, cache, cacheengine.Lazy, 9000, 9001)
}

func TestAdmitRunsLinearJobToCompletionAndRecordsMetrics(t *testing.T) {
	k := sim.NewKernel(0)

	w1 := newTestWorker(k, "10.0.0.1")
	w2 := newTestWorker(k, "10.0.0.2")
	w1.NI.SetUplink(w2.NI)
	w2.NI.SetUplink(w1.NI)

	slots := map[sim.WorkerID][]*executor.Slot{
		"10.0.0.1": {executor.NewSlot(k, w1)},
		"10.0.0.2": {executor.NewSlot(k, w2)},
	}
	placer := policy.NewPlacer(policy.RoundRobin, []sim.WorkerID{"10.0.0.1", "10.0.0.2"}, 1, nil, nil)
	metrics := sim.NewMetrics()
	s := New(k, placer, false, slots, metrics)

	obj := &sim.Object{Name: "o0", Size: 100}
	job := sim.NewJob("j0", 2)
	job.SetTask(0, &sim.Task{Name: "t0", ExecTime: 5, Output: obj})
	job.SetTask(1, &sim.Task{Name: "t1", ExecTime: 3, Inputs: []*sim.Object{obj}})
	job.AddEdge(0, 1)

	s.Admit(job)
	k.Run()

	require.True(t, job.Done())
	require.Equal(t, 2, metrics.CompletedTasks)
}

func TestPrefetchInjectsNOPForColorCrossingDependent(t *testing.T) {
	k := sim.NewKernel(0)

	w1 := newTestWorker(k, "10.0.0.1")
	w2 := newTestWorker(k, "10.0.0.2")
	w1.NI.SetUplink(w2.NI)
	w2.NI.SetUplink(w1.NI)

	slots := map[sim.WorkerID][]*executor.Slot{
		"10.0.0.1": {executor.NewSlot(k, w1)},
		"10.0.0.2": {executor.NewSlot(k, w2)},
	}
	placer := policy.NewPlacer(policy.RoundRobin, []sim.WorkerID{"10.0.0.1", "10.0.0.2"}, 1, nil, nil)
	metrics := sim.NewMetrics()
	s := New(k, placer, true, slots, metrics)

	obj := &sim.Object{Name: "o0", Size: 100}
	job := sim.NewJob("j0", 2)
	job.SetTask(0, &sim.Task{Name: "t0", ExecTime: 1, Output: obj, Color: 0})
	job.SetTask(1, &sim.Task{Name: "t1", ExecTime: 1, Inputs: []*sim.Object{obj}, Color: 1})
	job.AddEdge(0, 1)

	s.Admit(job)
	k.Run()

	require.True(t, job.Done())
	// the NOP never registers a completion callback, so only the two real
	// tasks are reflected in metrics even though a prefetch ran.
	require.Equal(t, 2, metrics.CompletedTasks)
}
