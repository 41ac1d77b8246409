package mempool

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-network/abci-go/internal/wire"
	"github.com/dusk-network/abci-go/pkg/types"
)

// slowestFirst answers CheckTx with the check result equal to the tx
// payload, but the tx addressed "tx-0" sleeps the longest and later ones
// sleep less — if the pipeline reordered its writes, the responses would
// arrive out of request order. The delay is keyed off the tx content
// itself (not call-arrival order), so it stays deterministic under
// concurrent goroutines.
type slowestFirst struct{}

func (slowestFirst) CheckTx(_ context.Context, req *types.CheckTx) (*types.ResponseCheckTx, error) {
	var idx int
	fmt.Sscanf(string(req.Tx), "tx-%d", &idx)
	time.Sleep(time.Duration(50-idx*10) * time.Millisecond)
	return &types.ResponseCheckTx{Log: string(req.Tx)}, nil
}

type noopEcho struct{}

func (noopEcho) Echo(_ context.Context, msg string) (string, error) { return msg, nil }

func TestPipelinePreservesResponseOrder(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	h := slowestFirst{}
	p := NewPipeline(wire.NewDecoder(serverConn), wire.NewEncoder(serverConn), h, noopEcho{})

	runErr := make(chan error, 1)
	go func() { runErr <- p.Run(context.Background()) }()

	clientEnc := wire.NewEncoder(clientConn)
	clientDec := wire.NewDecoder(clientConn)

	const n = 4
	for i := 0; i < n; i++ {
		req := &types.Request{CheckTx: &types.CheckTx{Tx: []byte(fmt.Sprintf("tx-%d", i))}}
		require.NoError(t, clientEnc.WriteRequest(req))
	}

	for i := 0; i < n; i++ {
		resp, err := clientDec.ReadResponse()
		require.NoError(t, err)
		require.NotNil(t, resp.CheckTx)
		assert.Equal(t, fmt.Sprintf("tx-%d", i), resp.CheckTx.Log)
	}

	clientConn.Close()
	serverConn.Close()
	<-runErr
}
