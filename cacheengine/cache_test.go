package cacheengine

import (
	"testing"

	"github.com/chainsim/chainsim/sim"
	"github.com/stretchr/testify/require"
)

func constLatency(n int64) SizeLatencyModel {
	return LinearLatencyModel{Slope: 0, Intercept: float64(n)}
}

func TestLazyProducerDoesNotBlockAndReaderDoesNotWait(t *testing.T) {
	k := sim.NewKernel(0)
	c := NewCache(k, "10.0.0.1", Lazy, constLatency(50), constLatency(5), EvictionNone, 0)

	obj := &sim.Object{Name: "o1", Size: 100, Owner: "10.0.0.1"}
	var insertReturned int64 = -1
	var peekWait int64 = -1

	k.Spawn(func(p *sim.Proc) {
		c.Insert(obj) // lazy: producer does not wait on its own call
		insertReturned = k.Clock
	})
	k.Spawn(func(p *sim.Proc) {
		_, w := c.Peek(p, "o1", false)
		peekWait = w
	})

	k.Run()
	require.Equal(t, int64(0), insertReturned)
	require.Equal(t, int64(0), peekWait)
}

func TestSyncWDeserLocalReaderWaitsAndPaysDeser(t *testing.T) {
	k := sim.NewKernel(0)
	c := NewCache(k, "10.0.0.1", SyncWDeser, constLatency(50), constLatency(7), EvictionNone, 0)

	obj := &sim.Object{Name: "o1", Size: 100, Owner: "10.0.0.1"}
	var size, serWait, deser int64

	k.Spawn(func(p *sim.Proc) {
		ev := c.Insert(obj)
		p.Wait(ev) // producer blocks on its own write under syncwdeser
	})
	k.Spawn(func(p *sim.Proc) {
		size, serWait, deser = c.HandleRequest(p, true, "o1")
	})

	k.Run()
	require.Equal(t, int64(100), size)
	require.Equal(t, int64(50), serWait)
	require.Equal(t, int64(7), deser)
}

func TestSyncNoDeserLocalReaderBypassesWaitAndSkipsDeser(t *testing.T) {
	k := sim.NewKernel(0)
	c := NewCache(k, "10.0.0.1", SyncNoDeser, constLatency(50), constLatency(7), EvictionNone, 0)

	obj := &sim.Object{Name: "o1", Size: 100, Owner: "10.0.0.1"}
	var serWait, deser int64 = -1, -1

	k.Spawn(func(p *sim.Proc) { c.Insert(obj) })
	k.Spawn(func(p *sim.Proc) {
		_, serWait, deser = c.HandleRequest(p, true, "o1")
	})

	k.Run()
	require.Equal(t, int64(0), serWait) // local + syncnodeser: bypasses the pending write
	require.Equal(t, int64(0), deser)
}

func TestRemoteReaderAlwaysPaysDeserRegardlessOfPolicy(t *testing.T) {
	k := sim.NewKernel(0)
	c := NewCache(k, "10.0.0.1", Lazy, constLatency(50), constLatency(9), EvictionNone, 0)

	obj := &sim.Object{Name: "o1", Size: 100, Owner: "10.0.0.1"}
	var deser int64

	k.Spawn(func(p *sim.Proc) { c.Insert(obj) })
	k.Spawn(func(p *sim.Proc) {
		p.Sleep(100) // let the lazy insert finish publishing first
		_, _, deser = c.HandleRequest(p, false, "o1")
	})

	k.Run()
	require.Equal(t, int64(9), deser)
}

func TestLazyRemoteReaderWaitsForPendingWrite(t *testing.T) {
	k := sim.NewKernel(0)
	c := NewCache(k, "10.0.0.1", Lazy, constLatency(50), constLatency(9), EvictionNone, 0)

	obj := &sim.Object{Name: "o1", Size: 100, Owner: "10.0.0.1"}
	var serWait int64 = -1

	k.Spawn(func(p *sim.Proc) { c.Insert(obj) })
	k.Spawn(func(p *sim.Proc) {
		_, serWait, _ = c.HandleRequest(p, false, "o1") // remote: waits even though policy is lazy
	})

	k.Run()
	require.Equal(t, int64(50), serWait)
}

func TestPeekMissReturnsZeroSize(t *testing.T) {
	k := sim.NewKernel(0)
	c := NewCache(k, "10.0.0.1", Lazy, constLatency(50), constLatency(5), EvictionNone, 0)

	var size int64 = -1
	k.Spawn(func(p *sim.Proc) {
		size, _ = c.Peek(p, "missing", false)
	})
	k.Run()
	require.Equal(t, int64(0), size)
}

func TestFIFOEvictionReclaimsOldestFirst(t *testing.T) {
	k := sim.NewKernel(0)
	c := NewCache(k, "10.0.0.1", Lazy, constLatency(0), constLatency(0), EvictionFIFO, 150)

	k.Spawn(func(p *sim.Proc) {
		c.Insert(&sim.Object{Name: "a", Size: 100, Owner: "10.0.0.1"})
		p.Sleep(1)
		c.Insert(&sim.Object{Name: "b", Size: 100, Owner: "10.0.0.1"})
	})
	k.Run()

	var sizeA, sizeB int64
	k.Spawn(func(p *sim.Proc) {
		sizeA, _ = c.Peek(p, "a", false)
		sizeB, _ = c.Peek(p, "b", false)
	})
	k.Run()

	require.Equal(t, int64(0), sizeA) // evicted
	require.Equal(t, int64(100), sizeB)
}
