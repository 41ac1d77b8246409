// Package abci defines the capability interfaces a user application
// implements, and the Server type that hosts them behind the ABCI socket
// protocol.
package abci

import (
	"context"

	"github.com/dusk-network/abci-go/pkg/types"
)

// Consensus is invoked on the Consensus connection. The library already
// serializes these calls per ABCI's ordering contract; implementations need
// not add their own locking for this sequence, though they must still
// coordinate with concurrent Mempool/Info calls over shared state.
type Consensus interface {
	InitChain(ctx context.Context, req *types.InitChain) (*types.ResponseInitChain, error)
	BeginBlock(ctx context.Context, req *types.BeginBlock) (*types.ResponseBeginBlock, error)
	DeliverTx(ctx context.Context, req *types.DeliverTx) (*types.ResponseDeliverTx, error)
	EndBlock(ctx context.Context, req *types.EndBlock) (*types.ResponseEndBlock, error)
	Commit(ctx context.Context) (*types.ResponseCommit, error)
}

// Mempool is invoked concurrently on the Mempool connection; CheckTx calls
// may run in parallel with each other and with Consensus.
type Mempool interface {
	CheckTx(ctx context.Context, req *types.CheckTx) (*types.ResponseCheckTx, error)
}

// Info is invoked on the Info connection, one request at a time per
// connection, concurrently with calls on the other connections.
type Info interface {
	Info(ctx context.Context, req *types.Info) (*types.ResponseInfo, error)
	SetOption(ctx context.Context, req *types.SetOption) (*types.ResponseSetOption, error)
	Query(ctx context.Context, req *types.Query) (*types.ResponseQuery, error)
}

// Snapshot is invoked sequentially on its own connection.
type Snapshot interface {
	ListSnapshots(ctx context.Context, req *types.ListSnapshots) (*types.ResponseListSnapshots, error)
	OfferSnapshot(ctx context.Context, req *types.OfferSnapshot) (*types.ResponseOfferSnapshot, error)
	LoadSnapshotChunk(ctx context.Context, req *types.LoadSnapshotChunk) (*types.ResponseLoadSnapshotChunk, error)
	ApplySnapshotChunk(ctx context.Context, req *types.ApplySnapshotChunk) (*types.ResponseApplySnapshotChunk, error)
}

// Echo is the role-neutral capability every connection accepts regardless of
// its classified role.
type Echo interface {
	Echo(ctx context.Context, message string) (string, error)
}

// BaseApplication supplies no-op default implementations for every method of
// every capability interface. Embed it and override only what matters.
type BaseApplication struct{}

func (BaseApplication) InitChain(context.Context, *types.InitChain) (*types.ResponseInitChain, error) {
	return &types.ResponseInitChain{}, nil
}

func (BaseApplication) BeginBlock(context.Context, *types.BeginBlock) (*types.ResponseBeginBlock, error) {
	return &types.ResponseBeginBlock{}, nil
}

func (BaseApplication) DeliverTx(context.Context, *types.DeliverTx) (*types.ResponseDeliverTx, error) {
	return &types.ResponseDeliverTx{}, nil
}

func (BaseApplication) EndBlock(context.Context, *types.EndBlock) (*types.ResponseEndBlock, error) {
	return &types.ResponseEndBlock{}, nil
}

func (BaseApplication) Commit(context.Context) (*types.ResponseCommit, error) {
	return &types.ResponseCommit{}, nil
}

func (BaseApplication) CheckTx(context.Context, *types.CheckTx) (*types.ResponseCheckTx, error) {
	return &types.ResponseCheckTx{}, nil
}

func (BaseApplication) Info(context.Context, *types.Info) (*types.ResponseInfo, error) {
	return &types.ResponseInfo{}, nil
}

func (BaseApplication) SetOption(context.Context, *types.SetOption) (*types.ResponseSetOption, error) {
	return &types.ResponseSetOption{}, nil
}

func (BaseApplication) Query(context.Context, *types.Query) (*types.ResponseQuery, error) {
	return &types.ResponseQuery{}, nil
}

func (BaseApplication) ListSnapshots(context.Context, *types.ListSnapshots) (*types.ResponseListSnapshots, error) {
	return &types.ResponseListSnapshots{}, nil
}

func (BaseApplication) OfferSnapshot(context.Context, *types.OfferSnapshot) (*types.ResponseOfferSnapshot, error) {
	return &types.ResponseOfferSnapshot{Result: types.OfferSnapshotReject}, nil
}

func (BaseApplication) LoadSnapshotChunk(context.Context, *types.LoadSnapshotChunk) (*types.ResponseLoadSnapshotChunk, error) {
	return &types.ResponseLoadSnapshotChunk{}, nil
}

func (BaseApplication) ApplySnapshotChunk(context.Context, *types.ApplySnapshotChunk) (*types.ResponseApplySnapshotChunk, error) {
	return &types.ResponseApplySnapshotChunk{Result: types.ApplySnapshotChunkAbort}, nil
}

func (BaseApplication) Echo(_ context.Context, message string) (string, error) {
	return message, nil
}
