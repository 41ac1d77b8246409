package conn

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-network/abci-go/internal/wire"
	"github.com/dusk-network/abci-go/pkg/types"
)

type echoOnly struct{}

func (echoOnly) Echo(_ context.Context, msg string) (string, error) { return msg, nil }

func TestRoleOf(t *testing.T) {
	cases := []struct {
		req  *types.Request
		want Type
		ok   bool
	}{
		{&types.Request{InitChain: &types.InitChain{}}, Consensus, true},
		{&types.Request{CheckTx: &types.CheckTx{}}, Mempool, true},
		{&types.Request{Info: &types.Info{}}, Info, true},
		{&types.Request{ListSnapshots: &types.ListSnapshots{}}, Snapshot, true},
		{&types.Request{Echo: &types.Echo{}}, Unknown, false},
		{&types.Request{Flush: &types.Flush{}}, Unknown, false},
		{&types.Request{}, Unknown, false},
	}
	for _, c := range cases {
		got, ok := RoleOf(c.req)
		assert.Equal(t, c.want, got)
		assert.Equal(t, c.ok, ok)
	}
}

func TestClassifySkipsEchoAndFlushInline(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := New(server, "peer")

	clientEnc := wire.NewEncoder(client)
	clientDec := wire.NewDecoder(client)

	go func() {
		_ = clientEnc.WriteRequest(&types.Request{Echo: &types.Echo{Message: "hi"}})
		_ = clientEnc.WriteRequest(&types.Request{Flush: &types.Flush{}})
		_ = clientEnc.WriteRequest(&types.Request{CheckTx: &types.CheckTx{Tx: []byte("t")}})
	}()

	classifyDone := make(chan *types.Request, 1)
	go func() {
		req, err := Classify(context.Background(), c, echoOnly{})
		require.NoError(t, err)
		classifyDone <- req
	}()

	echoResp, err := clientDec.ReadResponse()
	require.NoError(t, err)
	assert.Equal(t, "hi", echoResp.Echo.Message)

	flushResp, err := clientDec.ReadResponse()
	require.NoError(t, err)
	assert.NotNil(t, flushResp.Flush)

	req := <-classifyDone
	require.NotNil(t, req.CheckTx)
	assert.Equal(t, Mempool, c.Role)
}

func TestServeRoleStopsOnEOF(t *testing.T) {
	server, client := net.Pipe()
	c := New(server, "peer")
	c.Role = Info

	done := make(chan error, 1)
	go func() {
		done <- ServeRole(context.Background(), c, echoOnly{}, func(context.Context, *types.Request) *types.Response {
			return &types.Response{}
		})
	}()

	client.Close()

	err := <-done
	server.Close()
	assert.NoError(t, err)
}
