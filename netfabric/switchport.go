package netfabric

import "github.com/chainsim/chainsim/sim"

// SwitchPort is a bandwidth-limited, store-and-forward link out of a
// Router. Unlike NetworkInterface's out-queue it has an optional byte or
// packet depth limit: once full, arriving requests are dropped rather than
// applying backpressure to the sender (spec.md §4.2).
type SwitchPort struct {
	rateBps     int64
	byteLimit   int64 // 0 = unbounded
	packetLimit int   // 0 = unbounded

	queue      *sim.Queue[*Request]
	curBytes   int64
	downstream Endpoint

	packetsDrop int64
}

func newSwitchPort(k *sim.Kernel, rateBps, byteLimit int64, packetLimit int) *SwitchPort {
	return &SwitchPort{
		rateBps:     rateBps,
		byteLimit:   byteLimit,
		packetLimit: packetLimit,
		queue:       sim.NewQueue[*Request](k),
	}
}

// PacketsDrop returns the count of requests dropped for overflowing the
// port's configured byte or packet limit.
func (sp *SwitchPort) PacketsDrop() int64 { return sp.packetsDrop }

// Enqueue admits req onto the port's transmit queue, dropping it and
// counting the drop if it would overflow the configured limit.
func (sp *SwitchPort) Enqueue(req *Request) {
	if sp.byteLimit > 0 && sp.curBytes+req.Size > sp.byteLimit {
		sp.packetsDrop++
		return
	}
	if sp.packetLimit > 0 && sp.queue.Len() >= sp.packetLimit {
		sp.packetsDrop++
		return
	}
	sp.curBytes += req.Size
	sp.queue.Put(req)
}

func (sp *SwitchPort) run(p *sim.Proc) {
	for {
		req := sp.queue.Get(p)
		sp.curBytes -= req.Size
		p.Sleep(transmissionDelay(req.Size, sp.rateBps))
		sp.downstream.Put(req)
	}
}
