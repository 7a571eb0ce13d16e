package netfabric

import (
	"fmt"

	"github.com/chainsim/chainsim/sim"
)

// transmissionDelay is ceil(8*size/rate), the time to put size bytes on a
// link of the given bits-per-second rate (spec.md §4.2).
func transmissionDelay(sizeBytes, rateBps int64) int64 {
	if rateBps <= 0 {
		panic("netfabric: rate must be positive")
	}
	bits := sizeBytes * 8
	return (bits + rateBps - 1) / rateBps
}

// NetworkInterface is a worker's network card: an in-queue for arrivals
// destined for this IP, an out-queue for departures, and a registry of
// local recipients keyed by destination port.
type NetworkInterface struct {
	ip      string
	rateBps int64

	inQ  *sim.Queue[*Request]
	outQ *sim.Queue[*Request]

	uplink     Endpoint
	recipients map[int]*sim.Queue[*Request]
}

// NewNetworkInterface constructs an interface bound to ip with the given
// link rate. Call Start once the kernel is ready to run its fibers.
func NewNetworkInterface(k *sim.Kernel, ip string, rateBps int64) *NetworkInterface {
	return &NetworkInterface{
		ip:         ip,
		rateBps:    rateBps,
		inQ:        sim.NewQueue[*Request](k),
		outQ:       sim.NewQueue[*Request](k),
		recipients: make(map[int]*sim.Queue[*Request]),
	}
}

// IP returns the interface's address.
func (ni *NetworkInterface) IP() string { return ni.ip }

// SetUplink wires the next hop for outbound traffic: the router port or
// peer interface this card forwards non-local requests to.
func (ni *NetworkInterface) SetUplink(e Endpoint) { ni.uplink = e }

// Register binds a local recipient queue to a destination port. Requests
// arriving for that port are handed to q without further delay.
func (ni *NetworkInterface) Register(port int, q *sim.Queue[*Request]) {
	ni.recipients[port] = q
}

// Put is the single entry point for both local senders and upstream
// delivery: requests addressed to this IP go straight to the in-queue,
// everything else is stamped with our address and queued for transmission.
func (ni *NetworkInterface) Put(req *Request) {
	if req.DstIP == ni.ip {
		ni.inQ.Put(req)
		return
	}
	req.SrcIP = ni.ip
	ni.outQ.Put(req)
}

// Start spawns the interface's in-worker and out-worker fibers.
func (ni *NetworkInterface) Start(k *sim.Kernel) {
	k.Spawn(ni.runIn)
	k.Spawn(ni.runOut)
}

func (ni *NetworkInterface) runIn(p *sim.Proc) {
	for {
		req := ni.inQ.Get(p)
		q, ok := ni.recipients[req.DstPort]
		if !ok {
			panic(fmt.Sprintf("netfabric: %s: no recipient registered for port %d", ni.ip, req.DstPort))
		}
		q.Put(req)
	}
}

func (ni *NetworkInterface) runOut(p *sim.Proc) {
	for {
		req := ni.outQ.Get(p)
		p.Sleep(transmissionDelay(req.Size, ni.rateBps))
		if ni.uplink == nil {
			panic(fmt.Sprintf("netfabric: %s: no uplink wired for outbound traffic", ni.ip))
		}
		ni.uplink.Put(req)
	}
}
