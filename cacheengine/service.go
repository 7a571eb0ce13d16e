package cacheengine

import (
	"github.com/chainsim/chainsim/netfabric"
	"github.com/chainsim/chainsim/sim"
)

// Service exposes a worker's Cache to the network: it listens on a
// registered port for fetch_data requests and replies with the hit/miss
// accounting — CacheEngine's "third path" that handles incoming RPCs
// (spec.md §4.3). Only remote fetches cross the network; a task fetching
// from its own worker's cache calls Cache.HandleRequest directly.
type Service struct {
	cache *Cache
	ni    *netfabric.NetworkInterface
	inbox *sim.Queue[*netfabric.Request]
}

// NewService registers port on ni and returns a Service ready to Start.
func NewService(k *sim.Kernel, cache *Cache, ni *netfabric.NetworkInterface, port int) *Service {
	inbox := sim.NewQueue[*netfabric.Request](k)
	ni.Register(port, inbox)
	return &Service{cache: cache, ni: ni, inbox: inbox}
}

// Start spawns the service's request-handling fiber.
func (s *Service) Start(k *sim.Kernel) { k.Spawn(s.run) }

func (s *Service) run(p *sim.Proc) {
	for {
		req := s.inbox.Get(p)
		size, serWait, deser := s.cache.HandleRequest(p, false, req.Object.Name)
		resp := &netfabric.Request{
			ID:          req.ID,
			Kind:        netfabric.RPCFetchResponse,
			SrcIP:       s.ni.IP(),
			DstIP:       req.SrcIP,
			DstPort:     req.SrcPort,
			Object:      req.Object,
			Size:        size,
			SerWaitTime: serWait,
			DeserTime:   deser,
		}
		s.ni.Put(resp)
	}
}
