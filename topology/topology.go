// Package topology builds the runtime netfabric/cacheengine/executor
// object graph described by a config.Config (spec.md §6.1).
//
// Scope note: only a single tier of routers is wired (each worker/storage
// node connects to the router named by its own `gateway` field); chaining
// a non-root router up through another router's `gateway` field is not
// supported, matching the simulator's "no packet-level modeling" Non-goal
// — multi-level topologies are out of scope for this core.
package topology

import (
	"fmt"
	"sort"

	"github.com/chainsim/chainsim/cacheengine"
	"github.com/chainsim/chainsim/config"
	"github.com/chainsim/chainsim/executor"
	"github.com/chainsim/chainsim/netfabric"
	"github.com/chainsim/chainsim/sim"
)

// Topology is the constructed runtime: every worker and its executor
// slots, keyed by IP, plus the routers for diagnostics (e.g. packet drop
// counts).
type Topology struct {
	Workers map[sim.WorkerID]*executor.Worker
	Slots   map[sim.WorkerID][]*executor.Slot
	Routers map[string]*netfabric.Router
}

// Build constructs every topology node and wires workers/storage nodes to
// their configured router gateway. Unknown node types or unsupported
// serialization policies are reported as errors for the caller to treat as
// fatal at construction (spec.md §7).
func Build(k *sim.Kernel, cfg *config.Config) (*Topology, error) {
	t := &Topology{
		Workers: make(map[sim.WorkerID]*executor.Worker),
		Slots:   make(map[sim.WorkerID][]*executor.Slot),
		Routers: make(map[string]*netfabric.Router),
	}
	interfaces := make(map[string]*netfabric.NetworkInterface)

	for name, n := range cfg.Topology {
		if n.Type == config.NodeRouter {
			t.Routers[name] = netfabric.NewRouter(k, n.IP, n.Ports, n.Rate, 0, 0)
		}
	}

	for name, n := range cfg.Topology {
		switch n.Type {
		case config.NodeRouter:
			continue
		case config.NodeWorker:
			ni := netfabric.NewNetworkInterface(k, n.IP, n.Rate)
			ni.Start(k)
			interfaces[name] = ni

			policy, err := cacheengine.ParseSerializationPolicy(n.Cache.Policy)
			if err != nil {
				return nil, fmt.Errorf("topology: worker %q: %w", name, err)
			}
			cache := cacheengine.NewCache(k, n.IP, policy,
				cacheengine.LinearLatencyModel{}, cacheengine.LinearLatencyModel{},
				cacheengine.EvictionNone, 0)
			w := executor.NewWorker(k, n.IP, ni, cache, policy, n.Cache.Port, n.Cache.Port+1)
			id := sim.WorkerID(n.IP)
			t.Workers[id] = w

			executors := n.Executors
			if executors <= 0 {
				executors = 1
			}
			slots := make([]*executor.Slot, executors)
			for i := range slots {
				slots[i] = executor.NewSlot(k, w)
			}
			t.Slots[id] = slots
		case config.NodeStorage:
			ni := netfabric.NewNetworkInterface(k, n.IP, n.Rate)
			ni.Start(k)
			interfaces[name] = ni
		default:
			return nil, fmt.Errorf("topology: node %q: unknown type %q", name, n.Type)
		}
	}

	for name, n := range cfg.Topology {
		if n.Type == config.NodeRouter || n.Gateway == "" || n.Gateway == "None" {
			continue
		}
		router, ok := t.Routers[n.Gateway]
		if !ok {
			return nil, fmt.Errorf("topology: node %q: gateway %q is not a router", name, n.Gateway)
		}
		ni := interfaces[name]
		if err := router.Connect(ni, false); err != nil {
			return nil, fmt.Errorf("topology: %w", err)
		}
		ni.SetUplink(router)
	}

	return t, nil
}

// WorkerIDs returns every active worker's id, sorted for determinism
// (placement policies fold this list into round-robin order and hash ring
// construction — stable input order matters for reproducibility).
func (t *Topology) WorkerIDs() []sim.WorkerID {
	ids := make([]sim.WorkerID, 0, len(t.Workers))
	for id := range t.Workers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
