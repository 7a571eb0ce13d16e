// Package executor implements the per-slot control/data plane: it issues
// fetches for a task's inputs (locally or over the network), waits,
// computes on the worker's CPU, writes the output object, and fires the
// task's completion event (spec.md §4.5).
package executor

import (
	"fmt"

	"github.com/chainsim/chainsim/cacheengine"
	"github.com/chainsim/chainsim/cpushare"
	"github.com/chainsim/chainsim/netfabric"
	"github.com/chainsim/chainsim/sim"
)

// Worker bundles the per-node runtime a set of Slots share: its network
// interface, cache (with RPC service), CPU, and the demux that routes
// incoming fetch responses back to the slot fiber awaiting them.
type Worker struct {
	IP     string
	Policy cacheengine.SerializationPolicy

	k     *sim.Kernel
	NI    *netfabric.NetworkInterface
	Cache *cacheengine.Cache
	CPU   *cpushare.CPU

	cacheSvc     *cacheengine.Service
	cachePort    int
	execRespPort int

	respQueue *sim.Queue[*netfabric.Request]
	pending   map[string]*sim.Event
	seq       int64
}

// NewWorker wires a worker's cache, CPU, and network plumbing together and
// starts its background fibers.
func NewWorker(k *sim.Kernel, ip string, ni *netfabric.NetworkInterface, cache *cacheengine.Cache, policy cacheengine.SerializationPolicy, cachePort, execRespPort int) *Worker {
	w := &Worker{
		IP:           ip,
		Policy:       policy,
		k:            k,
		NI:           ni,
		Cache:        cache,
		CPU:          cpushare.NewCPU(k, ip),
		cachePort:    cachePort,
		execRespPort: execRespPort,
		pending:      make(map[string]*sim.Event),
	}
	w.cacheSvc = cacheengine.NewService(k, cache, ni, cachePort)
	w.cacheSvc.Start(k)
	w.respQueue = sim.NewQueue[*netfabric.Request](k)
	ni.Register(execRespPort, w.respQueue)
	k.Spawn(w.runDemux)
	return w
}

func (w *Worker) runDemux(p *sim.Proc) {
	for {
		resp := w.respQueue.Get(p)
		ev, ok := w.pending[resp.ID]
		if !ok {
			continue
		}
		delete(w.pending, resp.ID)
		ev.Fire(resp)
	}
}

func (w *Worker) nextReqID() string {
	w.seq++
	return fmt.Sprintf("%s-%d", w.IP, w.seq)
}

// FetchRemote sends a fetch_data request for obj to its owning worker and
// suspends until the response arrives.
func (w *Worker) FetchRemote(p *sim.Proc, obj *sim.Object) *netfabric.Request {
	id := w.nextReqID()
	ev := w.k.NewEvent()
	w.pending[id] = ev
	w.NI.Put(&netfabric.Request{
		ID:      id,
		Kind:    netfabric.RPCFetch,
		SrcIP:   w.IP,
		SrcPort: w.execRespPort,
		DstIP:   string(obj.Owner),
		DstPort: w.cachePort,
		Object:  obj,
		Size:    64, // header-only request
	})
	v := p.Wait(ev)
	return v.(*netfabric.Request)
}
