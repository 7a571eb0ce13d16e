package executor

import (
	"testing"

	"github.com/chainsim/chainsim/cacheengine"
	"github.com/chainsim/chainsim/netfabric"
	"github.com/chainsim/chainsim/sim"
	"github.com/stretchr/testify/require"
)

func zeroLatency() cacheengine.SizeLatencyModel {
	return cacheengine.LinearLatencyModel{}
}

func newTestWorker(k *sim.Kernel, ip string, policy cacheengine.SerializationPolicy) *Worker {
	ni := netfabric.NewNetworkInterface(k, ip, 1_000_000_000)
	ni.Start(k)
	cache := cacheengine.NewCache(k, ip, policy, zeroLatency(), zeroLatency(), cacheengine.EvictionNone, 0)
	return NewWorker(k, ip, ni, cache, policy, 9000, 9001)
}

func TestSingleTaskNoInputsCompletesAfterExecTime(t *testing.T) {
	k := sim.NewKernel(0)
	w := newTestWorker(k, "10.0.0.1", cacheengine.Lazy)
	slot := NewSlot(k, w)

	task := &sim.Task{
		Name:     "t0",
		ExecTime: 10,
		Output:   &sim.Object{Name: "o0", Size: 100},
	}
	done := k.NewEvent()
	task.Completion = done

	var finish int64 = -1
	k.Spawn(func(p *sim.Proc) {
		slot.Submit(task)
		p.Wait(done)
		finish = k.Clock
	})

	k.Run()
	require.Equal(t, int64(10), finish)
	require.Equal(t, sim.TaskFinished, task.Status)
}

func TestTwoWorkerRemoteFetchAccountsRemoteBytes(t *testing.T) {
	k := sim.NewKernel(0)

	producer := newTestWorker(k, "10.0.0.1", cacheengine.SyncWDeser)
	consumer := newTestWorker(k, "10.0.0.2", cacheengine.SyncWDeser)
	producer.NI.SetUplink(consumer.NI)
	consumer.NI.SetUplink(producer.NI)

	pSlot := NewSlot(k, producer)
	cSlot := NewSlot(k, consumer)

	obj := &sim.Object{Name: "shared", Size: 1000}
	producerTask := &sim.Task{Name: "p", ExecTime: 1, Output: obj}
	producerDone := k.NewEvent()
	producerTask.Completion = producerDone

	var consumerTask *sim.Task
	consumerDone := k.NewEvent()

	k.Spawn(func(p *sim.Proc) {
		pSlot.Submit(producerTask)
		p.Wait(producerDone)

		consumerTask = &sim.Task{Name: "c", ExecTime: 1, Inputs: []*sim.Object{obj}}
		consumerTask.Completion = consumerDone
		cSlot.Submit(consumerTask)
		p.Wait(consumerDone)
	})

	k.Run()
	require.Equal(t, int64(1000), consumerTask.Stats.RemoteBytes)
	require.Equal(t, int64(0), consumerTask.Stats.LocalBytes)
}

func TestNOPTaskNeverEntersCPURunningSet(t *testing.T) {
	k := sim.NewKernel(0)
	w := newTestWorker(k, "10.0.0.1", cacheengine.Lazy)
	obj := &sim.Object{Name: "o0", Size: 100, Owner: "10.0.0.1"}
	w.Cache.Insert(obj)
	slot := NewSlot(k, w)

	nop := &sim.Task{Name: sim.NOPName, ExecTime: 0, Inputs: []*sim.Object{obj}}
	done := k.NewEvent()
	nop.Completion = done

	var sawRunning int = -1
	k.Spawn(func(p *sim.Proc) {
		slot.Submit(nop)
		p.Wait(done)
		sawRunning = w.CPU.RunningCount()
	})

	k.Run()
	require.Equal(t, 0, sawRunning)
	require.Nil(t, nop.Output)
}
