// Package conn implements the connection classifier: it peeks the first
// non-Echo/Flush request on a freshly accepted stream and binds that
// connection to one of the four ABCI connection types for its lifetime.
package conn

import (
	"github.com/dusk-network/abci-go/internal/transport"
	"github.com/dusk-network/abci-go/internal/wire"
	"github.com/dusk-network/abci-go/pkg/types"
)

// Type is the role a connection is bound to. A connection starts Unknown and
// is assigned at most once, on its first role-specific request.
type Type int

const (
	Unknown Type = iota
	Consensus
	Mempool
	Info
	Snapshot
)

func (t Type) String() string {
	switch t {
	case Consensus:
		return "consensus"
	case Mempool:
		return "mempool"
	case Info:
		return "info"
	case Snapshot:
		return "snapshot"
	default:
		return "unknown"
	}
}

// RoleOf reports which connection type a request variant belongs to. ok is
// false for the role-neutral Echo/Flush variants, and for an empty request.
func RoleOf(req *types.Request) (t Type, ok bool) {
	switch req.Value().(type) {
	case *types.InitChain, *types.BeginBlock, *types.DeliverTx, *types.EndBlock, *types.Commit:
		return Consensus, true
	case *types.CheckTx:
		return Mempool, true
	case *types.Info, *types.SetOption, *types.Query:
		return Info, true
	case *types.ListSnapshots, *types.OfferSnapshot, *types.LoadSnapshotChunk, *types.ApplySnapshotChunk:
		return Snapshot, true
	default:
		return Unknown, false
	}
}

// Connection is a classified (or not-yet-classified) ABCI socket connection:
// a byte stream, its codec, and a role tag assigned at most once.
type Connection struct {
	Stream transport.Stream
	Peer   string
	Role   Type

	Dec *wire.Decoder
	Enc *wire.Encoder
}

// New wraps a freshly accepted stream with its codec. The connection starts
// Unknown; the classifier assigns Role on the first role-specific request.
func New(stream transport.Stream, peer string) *Connection {
	return &Connection{
		Stream: stream,
		Peer:   peer,
		Role:   Unknown,
		Dec:    wire.NewDecoder(stream),
		Enc:    wire.NewEncoder(stream),
	}
}

// Close releases the underlying stream.
func (c *Connection) Close() error {
	return c.Stream.Close()
}
