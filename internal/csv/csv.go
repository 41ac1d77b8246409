// Package csv implements the Consensus State Validator: the global state
// machine that enforces ABCI's per-block call ordering and the
// height/app-hash handshake between the Consensus and Info connections.
package csv

import (
	"fmt"
	"sync"

	logger "github.com/sirupsen/logrus"
)

var log = logger.WithFields(logger.Fields{"prefix": "csv"})

// Phase tracks progress through a single BeginBlock..Commit cycle.
type Phase int

const (
	PhaseBeginBlock Phase = iota
	PhaseDeliverTx
	PhaseEndBlock
	PhaseCommit
)

func (p Phase) String() string {
	switch p {
	case PhaseBeginBlock:
		return "BeginBlock"
	case PhaseDeliverTx:
		return "DeliverTx"
	case PhaseEndBlock:
		return "EndBlock"
	case PhaseCommit:
		return "Commit"
	default:
		return "Unknown"
	}
}

type tag int

const (
	tagNoInfo tag = iota
	tagNotInitialized
	tagInitChain
	tagWaitingForBlock
	tagExecutingBlock
)

// Validator is the CSV. It is shared by the Consensus and Info dispatchers
// across their two separate connections and protected by a single mutex
// (invariant I1); every hook acquires, inspects/mutates, and releases before
// invoking any user handler, except Commit, which brackets the handler call
// too (see Validator.Commit).
type Validator struct {
	mu sync.Mutex

	state tag

	// valid when state == tagWaitingForBlock
	waitHeight  int64
	waitAppHash []byte

	// valid when state == tagExecutingBlock
	execHeight int64
	execPhase  Phase
}

// New returns a CSV in its initial NoInfo state.
func New() *Validator {
	return &Validator{state: tagNoInfo}
}

// OnInfoResponse updates CSV from an Info response, per invariant I5: this
// only has an effect the first time it is called (while state == NoInfo);
// later Info responses never perturb the block automaton.
func (v *Validator) OnInfoResponse(lastBlockHeight int64, lastBlockAppHash []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != tagNoInfo {
		return
	}

	if lastBlockHeight == 0 {
		v.state = tagNotInitialized
		log.Debug("csv: NoInfo -> NotInitialized")
		return
	}

	v.state = tagWaitingForBlock
	v.waitHeight = lastBlockHeight + 1
	v.waitAppHash = append([]byte(nil), lastBlockAppHash...)
	log.WithField("height", v.waitHeight).Debug("csv: NoInfo -> WaitingForBlock")
}

// OnInitChainRequest validates and applies an InitChain request. The latest
// ABCI iteration rejects a second InitChain (no idempotent InitChain ->
// InitChain transition); see SPEC_FULL.md / DESIGN.md for this Open Question
// resolution.
func (v *Validator) OnInitChainRequest() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != tagNotInitialized {
		return fmt.Errorf("InitChain cannot be called after %s", v.describeLocked())
	}

	v.state = tagInitChain
	return nil
}

// OnBeginBlockRequest validates and applies a BeginBlock request.
func (v *Validator) OnBeginBlockRequest(height int64, appHash []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch v.state {
	case tagInitChain:
		// Any height is accepted for the first block after InitChain.
	case tagWaitingForBlock:
		if height != v.waitHeight {
			return fmt.Errorf("Expected height %d, got %d", v.waitHeight, height)
		}
		if !bytesEqual(appHash, v.waitAppHash) {
			return fmt.Errorf("Expected app hash %x, got %x", v.waitAppHash, appHash)
		}
	default:
		return fmt.Errorf("BeginBlock cannot be called after %s", v.describeLocked())
	}

	v.state = tagExecutingBlock
	v.execHeight = height
	v.execPhase = PhaseBeginBlock
	return nil
}

// OnDeliverTxRequest validates a DeliverTx request against the phase
// automaton.
func (v *Validator) OnDeliverTxRequest() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != tagExecutingBlock {
		return fmt.Errorf("DeliverTx cannot be called after %s", v.describeLocked())
	}
	return v.advancePhaseLocked(PhaseDeliverTx)
}

// OnEndBlockRequest validates an EndBlock request.
func (v *Validator) OnEndBlockRequest(height int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != tagExecutingBlock {
		return fmt.Errorf("EndBlock cannot be called after %s", v.describeLocked())
	}
	if height != v.execHeight {
		return fmt.Errorf("EndBlock height %d does not match executing block height %d", height, v.execHeight)
	}
	return v.advancePhaseLocked(PhaseEndBlock)
}

// Commit validates a Commit request, invokes call while holding the CSV
// lock, and on success transitions CSV to WaitingForBlock using the height
// and app-hash the call produced. The lock brackets both sides of call so no
// interleaving CSV transition (in particular from a concurrent Info request)
// is observable across the Commit boundary, per §5/§9 of the design.
//
// If the pre-check fails, call is never invoked. If call returns an error,
// CSV is left in ExecutingBlock{height, PhaseCommit} (the commit did not
// happen) and the error is returned unwrapped for the caller to report.
func (v *Validator) Commit(call func() (appHash []byte, err error)) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != tagExecutingBlock {
		return nil, fmt.Errorf("Commit cannot be called after %s", v.describeLocked())
	}
	if err := v.advancePhaseLocked(PhaseCommit); err != nil {
		return nil, err
	}

	height := v.execHeight

	appHash, err := call()
	if err != nil {
		return nil, err
	}

	v.state = tagWaitingForBlock
	v.waitHeight = height + 1
	v.waitAppHash = append([]byte(nil), appHash...)
	log.WithField("height", v.waitHeight).Debug("csv: ExecutingBlock -> WaitingForBlock")

	return appHash, nil
}

// advancePhaseLocked applies the phase automaton:
//
//	BeginBlock -> DeliverTx | EndBlock
//	DeliverTx  -> DeliverTx | EndBlock
//	EndBlock   -> Commit
//
// Must be called with v.mu held and v.state == tagExecutingBlock.
func (v *Validator) advancePhaseLocked(next Phase) error {
	ok := false
	switch v.execPhase {
	case PhaseBeginBlock, PhaseDeliverTx:
		ok = next == PhaseDeliverTx || next == PhaseEndBlock
	case PhaseEndBlock:
		ok = next == PhaseCommit
	}

	if !ok {
		return fmt.Errorf("%s cannot be called after %s", next, v.describeLocked())
	}

	v.execPhase = next
	return nil
}

// Snapshot reports the current state for read-only introspection (the debug
// gRPC side-channel). It never blocks on a Commit in progress for longer
// than the in-flight handler call takes, same as any other CSV hook.
func (v *Validator) Snapshot() (state string, height int64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch v.state {
	case tagWaitingForBlock:
		height = v.waitHeight - 1
	case tagExecutingBlock:
		height = v.execHeight
	}
	return v.describeLocked(), height
}

// describeLocked renders the current state for error messages. Must be
// called with v.mu held.
func (v *Validator) describeLocked() string {
	switch v.state {
	case tagNoInfo:
		return "NoInfo"
	case tagNotInitialized:
		return "NotInitialized"
	case tagInitChain:
		return "InitChain"
	case tagWaitingForBlock:
		return fmt.Sprintf("WaitingForBlock{height=%d}", v.waitHeight)
	case tagExecutingBlock:
		return fmt.Sprintf("ExecutingBlock{height=%d, phase=%s}", v.execHeight, v.execPhase)
	default:
		return "Unknown"
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
