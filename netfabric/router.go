package netfabric

import (
	"fmt"
	"strings"

	"github.com/chainsim/chainsim/sim"
)

// Router forwards Requests across a fixed set of SwitchPorts, resolving
// the outgoing port by exact destination IP, then by subnet (the address
// with its last dotted octet stripped), then by a default gateway port if
// one is configured (spec.md §4.2).
type Router struct {
	ip string
	k  *sim.Kernel

	ports       []*SwitchPort
	numPorts    int
	routeExact  map[string]int
	routeSubnet map[string]int
	gatewayPort int

	rateBps     int64
	byteLimit   int64
	packetLimit int
}

// NewRouter constructs a Router with numPorts free ports, all sharing the
// given link rate and optional per-port byte/packet limits.
func NewRouter(k *sim.Kernel, ip string, numPorts int, rateBps, byteLimit int64, packetLimit int) *Router {
	return &Router{
		ip:          ip,
		k:           k,
		ports:       make([]*SwitchPort, 0, numPorts),
		numPorts:    numPorts,
		routeExact:  make(map[string]int),
		routeSubnet: make(map[string]int),
		gatewayPort: -1,
		rateBps:     rateBps,
		byteLimit:   byteLimit,
		packetLimit: packetLimit,
	}
}

// IP returns the router's address.
func (r *Router) IP() string { return r.ip }

// PacketsDrop sums dropped-packet counts across every port.
func (r *Router) PacketsDrop() int64 {
	var total int64
	for _, p := range r.ports {
		total += p.PacketsDrop()
	}
	return total
}

// Connect binds a new port toward sink: requests addressed exactly to
// sink.IP(), or falling in its subnet, are routed out this port. When
// gateway is true the port also becomes the default route for addresses
// matching no exact or subnet entry. Returns an error if the router has no
// free ports left within its constructed capacity.
func (r *Router) Connect(sink Endpoint, gateway bool) error {
	if len(r.ports) >= r.numPorts {
		return fmt.Errorf("netfabric: router %s: no free ports (capacity %d)", r.ip, r.numPorts)
	}
	sp := newSwitchPort(r.k, r.rateBps, r.byteLimit, r.packetLimit)
	sp.downstream = sink
	idx := len(r.ports)
	r.ports = append(r.ports, sp)
	r.routeExact[sink.IP()] = idx
	r.routeSubnet[subnetOf(sink.IP())] = idx
	if gateway {
		r.gatewayPort = idx
	}
	r.k.Spawn(sp.run)
	return nil
}

// Put routes req to the appropriate outgoing port. A route miss — no
// exact match, no subnet match, no default gateway — is a topology bug
// and is fatal (spec.md §7).
func (r *Router) Put(req *Request) {
	idx, ok := r.routeExact[req.DstIP]
	if !ok {
		idx, ok = r.routeSubnet[subnetOf(req.DstIP)]
	}
	if !ok && r.gatewayPort >= 0 {
		idx, ok = r.gatewayPort, true
	}
	if !ok {
		panic(fmt.Sprintf("netfabric: router %s: no route to %s", r.ip, req.DstIP))
	}
	r.ports[idx].Enqueue(req)
}

func subnetOf(ip string) string {
	i := strings.LastIndex(ip, ".")
	if i < 0 {
		return ip
	}
	return ip[:i]
}
