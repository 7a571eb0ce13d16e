// Package trace emits the per-task accounting record and per-job summary
// CSV line (spec.md §6, SPEC_FULL.md §6.4).
package trace

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/chainsim/chainsim/sim"
)

// TaskRecord is one completed task's accounting record.
type TaskRecord struct {
	Name                 string
	Transfer             int64
	CPUTime              int64
	RemoteRead           int64
	LocalRead            int64
	FetchTime            int64
	StartTS              int64
	EndTS                int64
	DeserializationTime  int64
	SerializationTime    int64
	TaskEndToEndDelay    int64
	Write                int64
	WaitForSerialization int64
	Worker               string
}

// FromTask builds a TaskRecord from a finished task's stats.
func FromTask(t *sim.Task) TaskRecord {
	s := t.Stats
	var write int64
	if t.Output != nil {
		write = t.Output.Size
	}
	return TaskRecord{
		Name:                 t.Name,
		Transfer:             s.TransmitTime,
		CPUTime:              s.CPUTime,
		RemoteRead:           s.RemoteBytes,
		LocalRead:            s.LocalBytes,
		FetchTime:            s.TransmitTime + s.WaitForSerialization + s.DeserializationTime,
		StartTS:              s.StartTS,
		EndTS:                s.EndTS,
		DeserializationTime:  s.DeserializationTime,
		SerializationTime:    s.SerializationTime,
		TaskEndToEndDelay:    s.TaskEndToEndDelay,
		Write:                write,
		WaitForSerialization: s.WaitForSerialization,
		Worker:               string(t.Worker),
	}
}

var taskHeader = []string{
	"name", "transfer", "cpu_time", "remote_read", "local_read", "fetch_time",
	"start_ts", "end_ts", "deserialization_time", "serialization_time",
	"task_endtoend_delay", "write", "wait_for_serialization", "worker",
}

func (r TaskRecord) row() []string {
	return []string{
		r.Name,
		fmt.Sprint(r.Transfer),
		fmt.Sprint(r.CPUTime),
		fmt.Sprint(r.RemoteRead),
		fmt.Sprint(r.LocalRead),
		fmt.Sprint(r.FetchTime),
		fmt.Sprint(r.StartTS),
		fmt.Sprint(r.EndTS),
		fmt.Sprint(r.DeserializationTime),
		fmt.Sprint(r.SerializationTime),
		fmt.Sprint(r.TaskEndToEndDelay),
		fmt.Sprint(r.Write),
		fmt.Sprint(r.WaitForSerialization),
		r.Worker,
	}
}

// WriteTaskLog writes every task record for a job to a per-job CSV log
// under logDir, named "<job>.tasks.csv".
func WriteTaskLog(logDir, jobName string, records []TaskRecord) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("trace: creating %s: %w", logDir, err)
	}
	path := logDir + "/" + jobName + ".tasks.csv"
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("trace: creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(taskHeader); err != nil {
		return fmt.Errorf("trace: writing %s: %w", path, err)
	}
	for _, r := range records {
		if err := w.Write(r.row()); err != nil {
			return fmt.Errorf("trace: writing %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

// JobSummary is one job's aggregate line in the statistics CSV.
type JobSummary struct {
	Name          string
	Policy        string
	ExecutionTime int64
	RemoteRead    int64
	LocalRead     int64
	TransmitTime  int64
	CPUTime       int64
	DeserTime     int64
	SerTime       int64
	TaskTime      int64
}

// SummaryFromMetrics builds a JobSummary from a run's aggregated metrics.
func SummaryFromMetrics(name, policy string, makespan int64, m *sim.Metrics) JobSummary {
	return JobSummary{
		Name:          name,
		Policy:        policy,
		ExecutionTime: makespan,
		RemoteRead:    m.RemoteBytes,
		LocalRead:     m.LocalBytes,
		TransmitTime:  m.TransmitTime,
		CPUTime:       m.CPUTime,
		DeserTime:     m.DeserTime,
		SerTime:       m.SerTime,
		TaskTime:      m.TaskTime,
	}
}

var summaryHeader = []string{
	"name", "policy", "execution_time", "remote_read", "local_read",
	"transmit_time", "cpu_time", "deser_time", "ser_time", "task_time",
}

func (s JobSummary) row() []string {
	return []string{
		s.Name, s.Policy,
		fmt.Sprint(s.ExecutionTime),
		fmt.Sprint(s.RemoteRead),
		fmt.Sprint(s.LocalRead),
		fmt.Sprint(s.TransmitTime),
		fmt.Sprint(s.CPUTime),
		fmt.Sprint(s.DeserTime),
		fmt.Sprint(s.SerTime),
		fmt.Sprint(s.TaskTime),
	}
}

// AppendSummary appends one job's summary line to the statistics CSV at
// path, writing the header first if the file does not yet exist.
func AppendSummary(path string, s JobSummary) error {
	_, statErr := os.Stat(path)
	needsHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("trace: opening %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if needsHeader {
		if err := w.Write(summaryHeader); err != nil {
			return fmt.Errorf("trace: writing %s: %w", path, err)
		}
	}
	if err := w.Write(s.row()); err != nil {
		return fmt.Errorf("trace: writing %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}
