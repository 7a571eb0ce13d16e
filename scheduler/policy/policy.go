// Package policy implements the Scheduler's worker-placement policies
// (spec.md §4.7): round_robin, random, consistent_hash, chain_color_ch,
// chain_color_rr, hcolor_rr, vanilla, and optimal.
package policy

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/chainsim/chainsim/internal/ringhash"
	"github.com/chainsim/chainsim/sim"
)

// Kind names one of the supported placement policies.
type Kind int

const (
	RoundRobin Kind = iota
	Random
	ConsistentHash
	ChainColorCH
	ChainColorRR
	HColorRR
	Vanilla
	Optimal
)

// UnsupportedPolicyError is returned by Parse for an unrecognized
// cluster.scheduling value — fatal at construction (spec.md §7).
type UnsupportedPolicyError struct{ Name string }

func (e UnsupportedPolicyError) Error() string {
	return fmt.Sprintf("scheduler: unsupported scheduling policy %q", e.Name)
}

// MissingPlacementError is returned when the optimal policy has no entry
// for a task — fatal at first submit (spec.md §7).
type MissingPlacementError struct{ TaskName string }

func (e MissingPlacementError) Error() string {
	return fmt.Sprintf("scheduler: no optimal placement recorded for task %q", e.TaskName)
}

// Parse maps a config string to a Kind.
func Parse(s string) (Kind, error) {
	switch s {
	case "round_robin":
		return RoundRobin, nil
	case "random":
		return Random, nil
	case "consistent_hash":
		return ConsistentHash, nil
	case "chain_color_ch":
		return ChainColorCH, nil
	case "chain_color_rr":
		return ChainColorRR, nil
	case "hcolor_rr":
		return HColorRR, nil
	case "vanilla":
		return Vanilla, nil
	case "optimal":
		return Optimal, nil
	default:
		return 0, UnsupportedPolicyError{Name: s}
	}
}

// Placer holds the per-run mutable state a placement policy needs: the
// round-robin cursor, the random source, the hash ring, and the
// first-come caches for chain_color_rr/hcolor_rr.
type Placer struct {
	kind    Kind
	workers []sim.WorkerID

	rrIdx int
	rng   *rand.Rand
	ring  *ringhash.Ring

	colorRR  map[int]sim.WorkerID
	hcolorRR map[int]sim.WorkerID

	vanilla map[string]sim.WorkerID
	optimal map[string]sim.WorkerID

	log2Workers int
}

// NewPlacer constructs a Placer for kind over the given active worker set.
// vanilla and optimal are pre-recorded placements keyed by task name, used
// only by their matching policy.
func NewPlacer(kind Kind, workers []sim.WorkerID, seed int64, vanilla, optimal map[string]sim.WorkerID) *Placer {
	names := make([]string, len(workers))
	for i, w := range workers {
		names[i] = string(w)
	}
	return &Placer{
		kind:        kind,
		workers:     workers,
		rng:         rand.New(rand.NewSource(seed)),
		ring:        ringhash.New(names, 100),
		colorRR:     make(map[int]sim.WorkerID),
		hcolorRR:    make(map[int]sim.WorkerID),
		vanilla:     vanilla,
		optimal:     optimal,
		log2Workers: int(math.Log2(float64(len(workers)))),
	}
}

func (p *Placer) nextRR() sim.WorkerID {
	w := p.workers[p.rrIdx%len(p.workers)]
	p.rrIdx++
	return w
}

// Place chooses a worker for t according to the configured policy.
func (p *Placer) Place(t *sim.Task) (sim.WorkerID, error) {
	switch p.kind {
	case RoundRobin:
		return p.nextRR(), nil
	case Random:
		return p.workers[p.rng.Intn(len(p.workers))], nil
	case ConsistentHash:
		return sim.WorkerID(p.ring.Get(t.Output.Name)), nil
	case ChainColorCH:
		return sim.WorkerID(p.ring.Get(fmt.Sprintf("color-%d", t.Color))), nil
	case ChainColorRR:
		if w, ok := p.colorRR[t.Color]; ok {
			return w, nil
		}
		w := p.nextRR()
		p.colorRR[t.Color] = w
		return w, nil
	case HColorRR:
		shift := t.HColorBits - p.log2Workers
		if shift < 0 {
			shift = 0
		}
		group := t.HColor >> uint(shift)
		if w, ok := p.hcolorRR[group]; ok {
			return w, nil
		}
		w := p.nextRR()
		p.hcolorRR[group] = w
		return w, nil
	case Vanilla:
		w, ok := p.vanilla[t.Name]
		if !ok {
			return "", MissingPlacementError{TaskName: t.Name}
		}
		return w, nil
	case Optimal:
		w, ok := p.optimal[t.Name]
		if !ok {
			return "", MissingPlacementError{TaskName: t.Name}
		}
		return w, nil
	default:
		return "", fmt.Errorf("scheduler: placer has unknown kind %d", p.kind)
	}
}
