package abci_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-network/abci-go/internal/transport"
	"github.com/dusk-network/abci-go/internal/wire"
	"github.com/dusk-network/abci-go/pkg/abci"
	"github.com/dusk-network/abci-go/pkg/types"
)

// testApp is a minimal Consensus+Info+Mempool+Echo application used to
// drive the Server's end-to-end wiring without pulling in examples/counter.
type testApp struct {
	abci.BaseApplication

	lastHeight  int64
	lastAppHash []byte
}

func (a *testApp) Info(context.Context, *types.Info) (*types.ResponseInfo, error) {
	return &types.ResponseInfo{LastBlockHeight: a.lastHeight, LastBlockAppHash: a.lastAppHash}, nil
}

func (a *testApp) InitChain(context.Context, *types.InitChain) (*types.ResponseInitChain, error) {
	return &types.ResponseInitChain{}, nil
}

func (a *testApp) BeginBlock(context.Context, *types.BeginBlock) (*types.ResponseBeginBlock, error) {
	return &types.ResponseBeginBlock{}, nil
}

func (a *testApp) DeliverTx(context.Context, *types.DeliverTx) (*types.ResponseDeliverTx, error) {
	return &types.ResponseDeliverTx{}, nil
}

func (a *testApp) EndBlock(context.Context, *types.EndBlock) (*types.ResponseEndBlock, error) {
	return &types.ResponseEndBlock{}, nil
}

func (a *testApp) Commit(context.Context) (*types.ResponseCommit, error) {
	return &types.ResponseCommit{Data: []byte{0xCA, 0xFE}}, nil
}

func (a *testApp) CheckTx(context.Context, *types.CheckTx) (*types.ResponseCheckTx, error) {
	return &types.ResponseCheckTx{Code: 0}, nil
}

type client struct {
	enc *wire.Encoder
	dec *wire.Decoder
}

func dial(t *testing.T, ml *transport.MockListener) *client {
	t.Helper()
	stream, err := ml.Dial()
	require.NoError(t, err)
	return &client{enc: wire.NewEncoder(stream), dec: wire.NewDecoder(stream)}
}

func (c *client) roundTrip(t *testing.T, req *types.Request) *types.Response {
	t.Helper()
	require.NoError(t, c.enc.WriteRequest(req))
	resp, err := c.dec.ReadResponse()
	require.NoError(t, err)
	return resp
}

func newTestServer(t *testing.T, app *testApp) (*abci.Server, *transport.MockListener) {
	t.Helper()
	ml := transport.NewMockListener()
	server := abci.NewServer(ml, abci.Handlers{
		Consensus: app,
		Mempool:   app,
		Info:      app,
		Snapshot:  app,
		Echo:      app,
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go server.Serve(ctx)
	return server, ml
}

func TestEchoAndFlushAreRoleNeutral(t *testing.T) {
	app := &testApp{}
	_, ml := newTestServer(t, app)
	c := dial(t, ml)

	resp := c.roundTrip(t, &types.Request{Echo: &types.Echo{Message: "hi"}})
	require.NotNil(t, resp.Echo)
	assert.Equal(t, "hi", resp.Echo.Message)

	resp = c.roundTrip(t, &types.Request{Flush: &types.Flush{}})
	assert.NotNil(t, resp.Flush)
}

func TestColdStartHandshake(t *testing.T) {
	app := &testApp{}
	_, ml := newTestServer(t, app)

	info := dial(t, ml)
	resp := info.roundTrip(t, &types.Request{Info: &types.Info{Version: "1.0"}})
	require.NotNil(t, resp.Info)

	consensus := dial(t, ml)
	resp = consensus.roundTrip(t, &types.Request{InitChain: &types.InitChain{ChainID: "test"}})
	require.NotNil(t, resp.InitChain)
}

func TestOneBlockHappyPathOverWire(t *testing.T) {
	app := &testApp{}
	_, ml := newTestServer(t, app)

	info := dial(t, ml)
	resp := info.roundTrip(t, &types.Request{Info: &types.Info{Version: "1.0"}})
	require.NotNil(t, resp.Info)

	consensus := dial(t, ml)
	resp = consensus.roundTrip(t, &types.Request{InitChain: &types.InitChain{ChainID: "test"}})
	require.NotNil(t, resp.InitChain)

	resp = consensus.roundTrip(t, &types.Request{BeginBlock: &types.BeginBlock{
		Header: &types.Header{Height: 1},
	}})
	require.NotNil(t, resp.BeginBlock)

	resp = consensus.roundTrip(t, &types.Request{DeliverTx: &types.DeliverTx{Tx: []byte("tx-1")}})
	require.NotNil(t, resp.DeliverTx)

	resp = consensus.roundTrip(t, &types.Request{EndBlock: &types.EndBlock{Height: 1}})
	require.NotNil(t, resp.EndBlock)

	resp = consensus.roundTrip(t, &types.Request{Commit: &types.Commit{}})
	require.NotNil(t, resp.Commit)
	assert.Equal(t, []byte{0xCA, 0xFE}, resp.Commit.Data)
}

func TestWrongRoleRejected(t *testing.T) {
	app := &testApp{}
	_, ml := newTestServer(t, app)

	info := dial(t, ml)
	resp := info.roundTrip(t, &types.Request{Info: &types.Info{Version: "1.0"}})
	require.NotNil(t, resp.Info)

	consensus := dial(t, ml)
	resp = consensus.roundTrip(t, &types.Request{InitChain: &types.InitChain{ChainID: "test"}})
	require.NotNil(t, resp.InitChain)

	resp = consensus.roundTrip(t, &types.Request{CheckTx: &types.CheckTx{Tx: []byte("nope")}})
	require.NotNil(t, resp.Exception, "a mempool request on a classified consensus connection must be rejected")
}

func TestOrderingViolationOverWire(t *testing.T) {
	app := &testApp{}
	_, ml := newTestServer(t, app)

	info := dial(t, ml)
	resp := info.roundTrip(t, &types.Request{Info: &types.Info{Version: "1.0"}})
	require.NotNil(t, resp.Info)

	consensus := dial(t, ml)
	resp = consensus.roundTrip(t, &types.Request{InitChain: &types.InitChain{ChainID: "test"}})
	require.NotNil(t, resp.InitChain)

	resp = consensus.roundTrip(t, &types.Request{EndBlock: &types.EndBlock{Height: 1}})
	require.NotNil(t, resp.Exception)
	assert.Contains(t, resp.Exception.Error, "EndBlock cannot be called after")
}

func TestMempoolConcurrency(t *testing.T) {
	app := &testApp{}
	_, ml := newTestServer(t, app)

	mp := dial(t, ml)
	const n = 8

	// net.Pipe is synchronous: writing all n requests before reading any
	// response would deadlock against the server's own blocking response
	// write, so the client pipelines writes and reads concurrently, same
	// as a real ABCI client would over a buffered socket.
	go func() {
		for i := 0; i < n; i++ {
			_ = mp.enc.WriteRequest(&types.Request{CheckTx: &types.CheckTx{Tx: []byte("tx")}})
		}
	}()

	for i := 0; i < n; i++ {
		resp, err := mp.dec.ReadResponse()
		require.NoError(t, err)
		require.NotNil(t, resp.CheckTx)
	}
}

func TestServeStopsOnClose(t *testing.T) {
	app := &testApp{}
	server, ml := newTestServer(t, app)
	require.NoError(t, server.Close())

	_, err := ml.Dial()
	assert.Error(t, err, "a closed server's listener must refuse new connections")
}
