package sim

// TaskStatus tracks a task's position in its lifecycle. Status advances
// monotonically: waiting -> submitted -> finished.
type TaskStatus int

const (
	TaskWaiting TaskStatus = iota
	TaskSubmitted
	TaskFinished
)

func (s TaskStatus) String() string {
	switch s {
	case TaskWaiting:
		return "waiting"
	case TaskSubmitted:
		return "submitted"
	case TaskFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// TaskStats accumulates the per-task accounting fields recorded at
// completion (spec §6 "per-task accounting record").
type TaskStats struct {
	StartTS               int64
	EndTS                 int64
	TransmitTime          int64
	RemoteBytes           int64
	LocalBytes            int64
	DeserializationTime   int64
	SerializationTime     int64
	WaitForSerialization  int64
	CPUTime               int64
	TaskEndToEndDelay     int64
}

// NOPName marks a synthetic prefetch task: zero computation, no output,
// injected by the Scheduler to fetch a dependency's output on a dependent
// chain's worker ahead of time. The fetched data is not stored in that
// worker's cache (spec §4.5, §4.7).
const NOPName = "NOP"

// Task is a unit of computation in a job DAG.
type Task struct {
	ID       int // index into the owning Job's vertex arrays
	Name     string
	ExecTime int64
	Inputs   []*Object
	Output   *Object

	// ScheduleDelay is the placement/dispatch overhead measured by the
	// Scheduler between a task becoming ready and being submitted.
	ScheduleDelay int64

	// Coloring, set by chains.Assign. Color is the chain identity after the
	// Phase B merge (used by chain_color_ch/chain_color_rr); HColor is the Phase C
	// bit-encoded hierarchical color (used by hcolor_rr), HColorBits its
	// bit width.
	Color      int
	ChildColor int
	HColor     int
	HColorBits int

	Worker WorkerID
	Status TaskStatus

	Completion        *Event
	ComputeCompletion *Event

	Stats TaskStats
}

// IsNOP reports whether this is a synthetic prefetch task: zero output, no
// cache insert, and no CPU submission; it only traverses the fetch path for
// its inputs, which are not stored in the target worker's cache (spec §4.5,
// §4.6 usage, §4.7).
func (t *Task) IsNOP() bool {
	return t.Name == NOPName
}
