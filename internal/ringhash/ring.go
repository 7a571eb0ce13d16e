// Package ringhash implements a consistent-hash ring used by the
// consistent_hash and chain_color_ch placement policies (spec.md §4.7).
// Hashing is FNV-1a, the same deterministic-seed-derivation idiom the
// teacher's cluster RNG partitioning uses, applied here to ring points
// instead of RNG streams so identical configs always produce identical
// rings.
package ringhash

import (
	"fmt"
	"hash/fnv"
	"sort"
)

type point struct {
	hash uint64
	node string
}

// Ring is an immutable consistent-hash ring over a fixed node set.
type Ring struct {
	points []point
}

// New builds a ring placing `replicas` virtual points per node.
func New(nodes []string, replicas int) *Ring {
	r := &Ring{}
	for _, n := range nodes {
		for i := 0; i < replicas; i++ {
			r.points = append(r.points, point{hash: hashKey(fmt.Sprintf("%s#%d", n, i)), node: n})
		}
	}
	sort.Slice(r.points, func(i, j int) bool { return r.points[i].hash < r.points[j].hash })
	return r
}

func hashKey(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// Get returns the node owning key, walking clockwise from key's hash.
func (r *Ring) Get(key string) string {
	if len(r.points) == 0 {
		return ""
	}
	h := hashKey(key)
	idx := sort.Search(len(r.points), func(i int) bool { return r.points[i].hash >= h })
	if idx == len(r.points) {
		idx = 0
	}
	return r.points[idx].node
}
