// Package mempool implements the Mempool connection's pipelined dispatch: a
// single reader spawns one goroutine per CheckTx request so application
// validation overlaps across transactions, while a single writer drains
// completions strictly in request order, preserving ABCI's response-ordering
// contract on the wire even though the work underneath is concurrent.
package mempool

import (
	"context"
	"sync"

	logger "github.com/sirupsen/logrus"

	"github.com/dusk-network/abci-go/internal/dispatch"
	"github.com/dusk-network/abci-go/internal/wire"
	"github.com/dusk-network/abci-go/pkg/types"
)

var log = logger.WithFields(logger.Fields{"prefix": "mempool"})

// ticket is a completion handle: done closes once resp is set. Tickets may
// complete in any order; the writer waits on them in the order they were
// enqueued, regardless of which CheckTx goroutine finishes first.
type ticket struct {
	resp *types.Response
	done chan struct{}
}

// Pipeline runs the Mempool connection's reader/writer loop until the
// decoder reports an error (including a clean EOF on peer disconnect). It
// blocks until the connection closes, so callers run it in its own
// goroutine.
type Pipeline struct {
	dec *wire.Decoder
	enc *wire.Encoder
	h   dispatch.MempoolHandler
	eh  dispatch.EchoHandler

	mu      sync.Mutex
	queue   []*ticket
	wake    chan struct{}
	closing chan struct{}
}

// NewPipeline builds a mempool dispatch pipeline over an already-classified
// connection's codec.
func NewPipeline(dec *wire.Decoder, enc *wire.Encoder, h dispatch.MempoolHandler, eh dispatch.EchoHandler) *Pipeline {
	return &Pipeline{
		dec:     dec,
		enc:     enc,
		h:       h,
		eh:      eh,
		wake:    make(chan struct{}, 1),
		closing: make(chan struct{}),
	}
}

// Depth reports the number of tickets (CheckTx, plus inline Echo/Flush
// replies) still queued for the writer on this connection, for the debug
// introspection side-channel. The ticket the writer is currently waiting on
// has already left the queue and is not counted.
func (p *Pipeline) Depth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Run drives the connection to completion: it reads until the decoder
// returns an error, then drains and writes whatever is already in flight
// before returning. ctx is passed through to the handler calls; its
// cancellation does not stop the reader.
func (p *Pipeline) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	writeErrCh := make(chan error, 1)

	go p.writer(writeErrCh)

	readErr := p.reader(ctx, &wg)

	wg.Wait()
	p.enqueue(nil) // sentinel: wake the writer so it can observe closing
	close(p.closing)

	if writeErr := <-writeErrCh; writeErr != nil {
		return writeErr
	}
	return readErr
}

func (p *Pipeline) reader(ctx context.Context, wg *sync.WaitGroup) error {
	for {
		req, err := p.dec.ReadRequest()
		if err != nil {
			return err
		}
		if req == nil {
			continue // zero-length frame: benign, per the framing spec
		}

		if resp, handled := dispatch.HandleNeutral(ctx, req, p.eh); handled {
			t := &ticket{done: make(chan struct{})}
			p.enqueue(t)
			t.resp = resp
			close(t.done)
			continue
		}

		ct, ok := req.Value().(*types.CheckTx)
		if !ok {
			t := &ticket{done: make(chan struct{})}
			p.enqueue(t)
			t.resp = types.NewException("Non-mempool request on mempool connection")
			close(t.done)
			continue
		}

		t := &ticket{done: make(chan struct{})}
		p.enqueue(t)

		wg.Add(1)
		go func(ct *types.CheckTx, t *ticket) {
			defer wg.Done()
			t.resp = dispatch.CheckTx(ctx, ct, p.h)
			close(t.done)
		}(ct, t)
	}
}

func (p *Pipeline) enqueue(t *ticket) {
	p.mu.Lock()
	p.queue = append(p.queue, t)
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Pipeline) writer(errCh chan<- error) {
	for {
		p.mu.Lock()
		if len(p.queue) == 0 {
			p.mu.Unlock()
			select {
			case <-p.wake:
				continue
			case <-p.closing:
				errCh <- nil
				return
			}
		}
		t := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		if t == nil {
			// sentinel enqueued by Run after the reader stopped; keep
			// draining any real tickets still ahead of it in the slice
			// (none, since it's appended last), then exit on closing.
			continue
		}

		<-t.done
		if err := p.enc.WriteResponse(t.resp); err != nil {
			log.WithError(err).Warn("mempool: write failed")
			errCh <- err
			return
		}
	}
}
