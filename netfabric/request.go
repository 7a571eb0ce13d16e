// Package netfabric models the wire-level network: per-worker network
// interfaces, bandwidth-limited switch ports, and routers that forward
// Requests between them (spec.md §4.2).
package netfabric

import "github.com/chainsim/chainsim/sim"

// RPCKind distinguishes the kinds of wire messages Requests carry.
type RPCKind int

const (
	RPCFetch RPCKind = iota
	RPCFetchResponse
)

func (k RPCKind) String() string {
	switch k {
	case RPCFetch:
		return "fetch"
	case RPCFetchResponse:
		return "fetch_response"
	default:
		return "unknown"
	}
}

// Request is the wire message exchanged between workers: a fetch for an
// Object, or the response carrying it.
type Request struct {
	ID      string
	Kind    RPCKind
	SrcIP   string
	SrcPort int
	DstIP   string
	DstPort int

	// Object is the payload being requested or delivered. Size is tracked
	// independently of Object because a fetch request itself is small
	// regardless of the object it names.
	Object *sim.Object
	Size   int64

	// SerWaitTime and DeserTime carry cache-side accounting on the response
	// leg of a fetch (RPCFetchResponse); unused on the request leg.
	SerWaitTime int64
	DeserTime   int64
}

// Endpoint is anything a SwitchPort or NetworkInterface can hand a fully
// transmitted Request to: another Router, or the destination's
// NetworkInterface.
type Endpoint interface {
	IP() string
	Put(req *Request)
}
