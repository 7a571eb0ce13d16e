// Package config loads the run YAML: cluster topology, scheduling/
// serialization policy, and benchmark workload selection (spec.md §6).
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// NodeKind names one of the three topology node kinds.
type NodeKind string

const (
	NodeWorker  NodeKind = "worker"
	NodeRouter  NodeKind = "router"
	NodeStorage NodeKind = "storage"
)

// CacheConfig is a worker node's embedded cache section.
type CacheConfig struct {
	Policy string `yaml:"policy"`
	Port   int    `yaml:"port"`
}

// Node is one topology entry. Fields not meaningful for a node's Type are
// left zero; KnownFields(true) still requires every YAML key present in the
// file to map to one of these.
type Node struct {
	Type        NodeKind    `yaml:"type"`
	IP          string      `yaml:"ip"`
	Rate        int64       `yaml:"rate"`
	Executors   int         `yaml:"executors"`
	Memory      int64       `yaml:"memory"`
	Gateway     string      `yaml:"gateway"`
	Storage     string      `yaml:"storage"`
	Cache       CacheConfig `yaml:"cache"`
	Ports       int         `yaml:"ports"`
	Port        int         `yaml:"port"`
	StorageRate int64       `yaml:"storage_rate"`
	Metadata    string      `yaml:"metadata"`
}

// Cluster holds the run-wide serialization/scheduling/prefetch knobs.
type Cluster struct {
	Serialization string `yaml:"serialization"`
	Scheduling    string `yaml:"scheduling"`
	Prefetch      bool   `yaml:"prefetch"`
}

// Benchmark selects which job traces to load and where to write results.
type Benchmark struct {
	WorkloadDir string   `yaml:"workloaddir"`
	Workloads   []string `yaml:"workloads"`
	LogDir      string   `yaml:"logdir"`
	Statistics  string   `yaml:"statistics"`
}

// Config is the full run YAML structure.
type Config struct {
	Topology  map[string]Node `yaml:"topology"`
	Cluster   Cluster         `yaml:"cluster"`
	Benchmark Benchmark       `yaml:"benchmark"`
}

// Load reads and strictly parses the run config at path. Any unknown field
// or I/O failure is fatal at construction, matching spec.md §7: the
// simulation must not start on a bad config.
func Load(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Fatalf("config: failed to read %s: %v", path, err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		logrus.Fatalf("config: failed to parse %s: %v", path, err)
	}

	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("config: %v", err)
	}
	return &cfg
}

// Validate checks every topology node has a recognized type. Unsupported
// serialization/scheduling values are validated where they are parsed
// (cacheengine.ParseSerializationPolicy, scheduler/policy.Parse) so the
// fatal diagnostic names the actual offending value only once.
func (c *Config) Validate() error {
	for name, n := range c.Topology {
		switch n.Type {
		case NodeWorker, NodeRouter, NodeStorage:
		default:
			return fmt.Errorf("topology node %q: unknown type %q", name, n.Type)
		}
	}
	return nil
}
