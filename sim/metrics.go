// Tracks simulation-wide statistics: makespan, remote vs. local reads,
// transfer time, CPU time, and (de)serialization overheads (spec.md §1, §6).
package sim

import "fmt"

// Metrics aggregates job- and cluster-wide statistics for final reporting.
type Metrics struct {
	CompletedTasks int
	RemoteBytes    int64
	LocalBytes     int64
	TransmitTime   int64
	CPUTime        int64
	DeserTime      int64
	SerTime        int64
	TaskTime       int64 // sum of per-task end-to-end delay

	PacketsDrop int64
}

// NewMetrics returns a zeroed Metrics.
func NewMetrics() *Metrics { return &Metrics{} }

// Record folds a finished task's TaskStats into the running totals.
func (m *Metrics) Record(s TaskStats) {
	m.CompletedTasks++
	m.RemoteBytes += s.RemoteBytes
	m.LocalBytes += s.LocalBytes
	m.TransmitTime += s.TransmitTime
	m.CPUTime += s.CPUTime
	m.DeserTime += s.DeserializationTime
	m.SerTime += s.SerializationTime
	m.TaskTime += s.TaskEndToEndDelay
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print(makespan int64) {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Completed Tasks   : %d\n", m.CompletedTasks)
	fmt.Printf("Makespan          : %d\n", makespan)
	fmt.Printf("Remote Read Bytes : %d\n", m.RemoteBytes)
	fmt.Printf("Local Read Bytes  : %d\n", m.LocalBytes)
	fmt.Printf("Transmit Time     : %d\n", m.TransmitTime)
	fmt.Printf("CPU Time          : %d\n", m.CPUTime)
	fmt.Printf("Deserialize Time  : %d\n", m.DeserTime)
	fmt.Printf("Serialize Time    : %d\n", m.SerTime)
	fmt.Printf("Packets Dropped   : %d\n", m.PacketsDrop)
}
