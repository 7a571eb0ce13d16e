package topology

import (
	"testing"

	"github.com/chainsim/chainsim/config"
	"github.com/chainsim/chainsim/sim"
	"github.com/stretchr/testify/require"
)

func TestBuildWiresWorkersThroughRouter(t *testing.T) {
	cfg := &config.Config{
		Topology: map[string]config.Node{
			"router-0": {Type: config.NodeRouter, IP: "10.0.0.254", Ports: 4, Rate: 1_000_000_000},
			"worker-0": {
				Type: config.NodeWorker, IP: "10.0.0.1", Rate: 1_000_000_000, Executors: 2,
				Gateway: "router-0", Cache: config.CacheConfig{Policy: "lazy", Port: 9000},
			},
			"worker-1": {
				Type: config.NodeWorker, IP: "10.0.0.2", Rate: 1_000_000_000, Executors: 1,
				Gateway: "router-0", Cache: config.CacheConfig{Policy: "lazy", Port: 9000},
			},
		},
	}
	k := sim.NewKernel(0)
	topo, err := Build(k, cfg)
	require.NoError(t, err)

	require.Len(t, topo.Workers, 2)
	require.Len(t, topo.Slots["10.0.0.1"], 2)
	require.Len(t, topo.Slots["10.0.0.2"], 1)
	require.Equal(t, []sim.WorkerID{"10.0.0.1", "10.0.0.2"}, topo.WorkerIDs())
}

func TestBuildRejectsUnknownNodeType(t *testing.T) {
	cfg := &config.Config{Topology: map[string]config.Node{"bad": {Type: "gadget"}}}
	k := sim.NewKernel(0)
	_, err := Build(k, cfg)
	require.Error(t, err)
}
