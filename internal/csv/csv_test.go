package csv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColdStartThenInitChain(t *testing.T) {
	v := New()

	v.OnInfoResponse(0, nil)

	require.NoError(t, v.OnInitChainRequest())
	assert.Error(t, v.OnInitChainRequest(), "a second InitChain must be rejected, not treated as idempotent")
}

func TestRestartHandshake(t *testing.T) {
	v := New()

	v.OnInfoResponse(4, []byte{0xAA, 0xBB})

	assert.NoError(t, v.OnBeginBlockRequest(5, []byte{0xAA, 0xBB}))
}

func TestRestartHandshakeWrongHeight(t *testing.T) {
	v := New()
	v.OnInfoResponse(4, []byte{0xAA})

	err := v.OnBeginBlockRequest(6, []byte{0xAA})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected height 5")
}

func TestRestartHandshakeWrongAppHash(t *testing.T) {
	v := New()
	v.OnInfoResponse(4, []byte{0xAA})

	err := v.OnBeginBlockRequest(5, []byte{0xBB})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected app hash")
}

func TestOneBlockHappyPath(t *testing.T) {
	v := New()
	v.OnInfoResponse(0, nil)
	require.NoError(t, v.OnInitChainRequest())

	require.NoError(t, v.OnBeginBlockRequest(1, nil))
	require.NoError(t, v.OnDeliverTxRequest())
	require.NoError(t, v.OnDeliverTxRequest())
	require.NoError(t, v.OnEndBlockRequest(1))

	appHash, err := v.Commit(func() ([]byte, error) {
		return []byte{1, 2, 3}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, appHash)

	state, height := v.Snapshot()
	assert.Equal(t, "WaitingForBlock{height=2}", state)
	assert.Equal(t, int64(1), height)
}

func TestDoubleCommitRejected(t *testing.T) {
	v := New()
	v.OnInfoResponse(0, nil)
	require.NoError(t, v.OnInitChainRequest())
	require.NoError(t, v.OnBeginBlockRequest(1, nil))
	require.NoError(t, v.OnEndBlockRequest(1))

	_, err := v.Commit(func() ([]byte, error) { return []byte{1}, nil })
	require.NoError(t, err)

	_, err = v.Commit(func() ([]byte, error) { return []byte{2}, nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be called after WaitingForBlock")
}

func TestPhaseAutomatonRejectsDeliverTxAfterEndBlock(t *testing.T) {
	v := New()
	v.OnInfoResponse(0, nil)
	require.NoError(t, v.OnInitChainRequest())
	require.NoError(t, v.OnBeginBlockRequest(1, nil))

	require.NoError(t, v.OnEndBlockRequest(1))
	err := v.OnDeliverTxRequest()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DeliverTx cannot be called after")
}

func TestEndBlockHeightMismatch(t *testing.T) {
	v := New()
	v.OnInfoResponse(0, nil)
	require.NoError(t, v.OnInitChainRequest())
	require.NoError(t, v.OnBeginBlockRequest(1, nil))

	err := v.OnEndBlockRequest(2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match executing block height")
}

func TestCommitFailureLeavesBlockExecuting(t *testing.T) {
	v := New()
	v.OnInfoResponse(0, nil)
	require.NoError(t, v.OnInitChainRequest())
	require.NoError(t, v.OnBeginBlockRequest(1, nil))
	require.NoError(t, v.OnEndBlockRequest(1))

	_, err := v.Commit(func() ([]byte, error) {
		return nil, assertErr{"handler blew up"}
	})
	require.Error(t, err)

	state, height := v.Snapshot()
	assert.Equal(t, "ExecutingBlock{height=1, phase=Commit}", state)
	assert.Equal(t, int64(1), height)
}

func TestSecondInfoResponseIgnored(t *testing.T) {
	v := New()
	v.OnInfoResponse(4, []byte{0xAA})
	v.OnInfoResponse(99, []byte{0xFF})

	err := v.OnBeginBlockRequest(5, []byte{0xAA})
	assert.NoError(t, err, "a later Info response must not perturb the block automaton (I5)")
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }
