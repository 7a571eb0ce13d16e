// Package cacheengine implements the per-worker object cache: insert with
// simulated serialization latency, peek with deserialization/wait
// accounting, and the RPC-facing hit/miss translation (spec.md §4.3).
package cacheengine

import (
	"container/list"

	"github.com/chainsim/chainsim/sim"
)

// CacheEntry is one cached object. Pending fires once the object's
// simulated serialization delay has elapsed and it becomes visible.
type CacheEntry struct {
	Object    *sim.Object
	Pending   *sim.Event
	Published bool

	lruElem *list.Element
}

// Cache is a worker-local object store. It is not safe for use outside the
// kernel's single driving goroutine, same as every other sim component.
type Cache struct {
	k        *sim.Kernel
	workerIP string
	policy   SerializationPolicy

	serModel   SizeLatencyModel
	deserModel SizeLatencyModel

	evictionPolicy EvictionPolicy
	capacity       int64 // 0 = unbounded, never evicts
	curSize        int64

	entries map[string]*CacheEntry
	lru     *list.List // front = least recently used
}

// NewCache constructs an empty cache for one worker.
func NewCache(k *sim.Kernel, workerIP string, policy SerializationPolicy, serModel, deserModel SizeLatencyModel, evictionPolicy EvictionPolicy, capacity int64) *Cache {
	return &Cache{
		k:              k,
		workerIP:       workerIP,
		policy:         policy,
		serModel:       serModel,
		deserModel:     deserModel,
		evictionPolicy: evictionPolicy,
		capacity:       capacity,
		entries:        make(map[string]*CacheEntry),
		lru:            list.New(),
	}
}

// Insert publishes obj into the cache after a simulated serialization delay.
// It never blocks the caller; the returned event fires once the object is
// visible. Callers that must block on their own write (syncwdeser,
// syncnodeser) wait on it; lazy callers discard it (spec.md §4.3, §4.5).
func (c *Cache) Insert(obj *sim.Object) *sim.Event {
	entry := &CacheEntry{Object: obj, Pending: c.k.NewEvent()}
	c.entries[obj.Name] = entry
	c.k.Spawn(func(p *sim.Proc) {
		p.Sleep(c.serModel.Latency(obj.Size))
		entry.Published = true
		c.curSize += obj.Size
		entry.lruElem = c.lru.PushBack(obj.Name)
		c.evictIfNeeded()
		entry.Pending.Fire(struct{}{})
	})
	return entry.Pending
}

// Peek returns (size, ser_wait_time) for key. Size is zero if the object is
// not present (a miss). If the object is pending and wait is true, the
// caller suspends until it is published.
func (c *Cache) Peek(p *sim.Proc, key string, wait bool) (size int64, serWaitTime int64) {
	entry, ok := c.entries[key]
	if !ok {
		return 0, 0
	}
	if !entry.Published && wait {
		start := c.k.Clock
		p.Wait(entry.Pending)
		serWaitTime = c.k.Clock - start
	}
	c.touch(entry)
	return entry.Object.Size, serWaitTime
}

// HandleRequest translates an incoming fetch_data / fetch_from_local_cache
// RPC into hit/miss accounting: size (0 on miss), ser_wait_time, and
// deserialization time. local is true for fetch_from_local_cache. Remote
// readers always wait for a pending write; local readers wait only under
// syncwdeser (lazy and syncnodeser local readers get a pending entry's size
// at once, as if already published). Deserialization is paid by remote readers unconditionally
// and by local readers only under syncwdeser (spec.md §4.3).
func (c *Cache) HandleRequest(p *sim.Proc, local bool, key string) (size, serWaitTime, deserTime int64) {
	wait := !local || c.policy == SyncWDeser
	size, serWaitTime = c.Peek(p, key, wait)
	if size == 0 {
		return 0, serWaitTime, 0
	}
	payDeser := !local || c.policy == SyncWDeser
	if payDeser {
		deserTime = c.deserModel.Latency(size)
	}
	return size, serWaitTime, deserTime
}

func (c *Cache) touch(entry *CacheEntry) {
	if c.evictionPolicy == EvictionLRU && entry.lruElem != nil {
		c.lru.MoveToBack(entry.lruElem)
	}
}

func (c *Cache) evictIfNeeded() {
	if c.evictionPolicy == EvictionNone || c.capacity <= 0 {
		return
	}
	for c.curSize > c.capacity && c.lru.Len() > 0 {
		front := c.lru.Front()
		name := front.Value.(string)
		entry, ok := c.entries[name]
		if !ok {
			c.lru.Remove(front)
			continue
		}
		c.curSize -= entry.Object.Size
		c.lru.Remove(front)
		delete(c.entries, name)
	}
}
