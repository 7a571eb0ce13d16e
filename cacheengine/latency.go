package cacheengine

import "math"

// SizeLatencyModel maps an object's size in bytes to a (de)serialization
// latency in the simulator's virtual-time units. Pluggable so CacheEngine
// never hard-codes a particular cost model (spec.md §4.3).
type SizeLatencyModel interface {
	Latency(size int64) int64
}

// LinearLatencyModel is a bytes-per-unit-time regression: latency =
// round(Slope*size + Intercept), floored at zero.
type LinearLatencyModel struct {
	Slope     float64
	Intercept float64
}

func (m LinearLatencyModel) Latency(size int64) int64 {
	v := m.Slope*float64(size) + m.Intercept
	if v < 0 {
		return 0
	}
	return int64(math.Round(v))
}

// Bucket is one entry of a PiecewiseLatencyModel: sizes up to MaxSize pay
// Latency.
type Bucket struct {
	MaxSize int64
	Latency int64
}

// PiecewiseLatencyModel looks up latency by size bucket, the last bucket
// acting as a catch-all for anything larger. Buckets must be sorted
// ascending by MaxSize.
type PiecewiseLatencyModel struct {
	Buckets []Bucket
}

func (m PiecewiseLatencyModel) Latency(size int64) int64 {
	for _, b := range m.Buckets {
		if size <= b.MaxSize {
			return b.Latency
		}
	}
	if len(m.Buckets) == 0 {
		return 0
	}
	return m.Buckets[len(m.Buckets)-1].Latency
}
