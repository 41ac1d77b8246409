package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-network/abci-go/internal/csv"
	"github.com/dusk-network/abci-go/pkg/types"
)

type stubConsensus struct {
	commitErr error
}

func (stubConsensus) InitChain(context.Context, *types.InitChain) (*types.ResponseInitChain, error) {
	return &types.ResponseInitChain{}, nil
}
func (stubConsensus) BeginBlock(context.Context, *types.BeginBlock) (*types.ResponseBeginBlock, error) {
	return &types.ResponseBeginBlock{}, nil
}
func (stubConsensus) DeliverTx(context.Context, *types.DeliverTx) (*types.ResponseDeliverTx, error) {
	return &types.ResponseDeliverTx{}, nil
}
func (stubConsensus) EndBlock(context.Context, *types.EndBlock) (*types.ResponseEndBlock, error) {
	return &types.ResponseEndBlock{}, nil
}
func (s stubConsensus) Commit(context.Context) (*types.ResponseCommit, error) {
	if s.commitErr != nil {
		return nil, s.commitErr
	}
	return &types.ResponseCommit{Data: []byte{1, 2}}, nil
}

func TestConsensusInitChainRejectedBeforeInfo(t *testing.T) {
	v := csv.New() // starts NoInfo
	resp := Consensus(context.Background(), &types.Request{InitChain: &types.InitChain{}}, stubConsensus{}, v)
	require.NotNil(t, resp.Exception)
	assert.Contains(t, resp.Exception.Error, "InitChain cannot be called after NoInfo")
}

func TestConsensusCommitHandlerErrorSurfacesAsException(t *testing.T) {
	v := csv.New()
	v.OnInfoResponse(0, nil)
	require.NoError(t, v.OnInitChainRequest())
	require.NoError(t, v.OnBeginBlockRequest(1, nil))
	require.NoError(t, v.OnEndBlockRequest(1))

	resp := Consensus(context.Background(), &types.Request{Commit: &types.Commit{}}, stubConsensus{commitErr: errors.New("disk full")}, v)
	require.NotNil(t, resp.Exception)
	assert.Contains(t, resp.Exception.Error, "disk full")
}

func TestConsensusBeginBlockRequiresHeader(t *testing.T) {
	v := csv.New()
	v.OnInfoResponse(0, nil)
	require.NoError(t, v.OnInitChainRequest())

	resp := Consensus(context.Background(), &types.Request{BeginBlock: &types.BeginBlock{}}, stubConsensus{}, v)
	require.NotNil(t, resp.Exception)
	assert.Contains(t, resp.Exception.Error, "requires a header")
}

func TestHandleNeutralEcho(t *testing.T) {
	resp, ok := HandleNeutral(context.Background(), &types.Request{Echo: &types.Echo{Message: "hi"}}, nil)
	require.True(t, ok)
	assert.Equal(t, "hi", resp.Echo.Message)
}

func TestHandleNeutralIgnoresRoleSpecificRequests(t *testing.T) {
	_, ok := HandleNeutral(context.Background(), &types.Request{CheckTx: &types.CheckTx{}}, nil)
	assert.False(t, ok)
}
