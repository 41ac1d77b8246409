package abci

import (
	"context"
	"sync"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/dusk-network/abci-go/internal/conn"
	"github.com/dusk-network/abci-go/internal/csv"
	"github.com/dusk-network/abci-go/internal/debugsrv"
	"github.com/dusk-network/abci-go/internal/dispatch"
	"github.com/dusk-network/abci-go/internal/mempool"
	"github.com/dusk-network/abci-go/internal/transport"
	"github.com/dusk-network/abci-go/pkg/types"
)

var log = logger.WithFields(logger.Fields{"prefix": "abci"})

// Handlers bundles the capability implementations a Server hosts. An
// application need not implement every interface; embed BaseApplication to
// fill in the rest with no-ops.
type Handlers struct {
	Consensus Consensus
	Mempool   Mempool
	Info      Info
	Snapshot  Snapshot
	Echo      Echo
}

// Server accepts connections on a single transport.Listener, classifies
// each one by its first role-specific request, and serves it for its
// lifetime against the shared Consensus State Validator. Consensus and Info
// connections are expected exactly once each for the CSV's height/app-hash
// handshake to mean anything; Mempool and Snapshot connections may be
// dialed any number of times.
type Server struct {
	ln transport.Listener
	h  Handlers
	v  *csv.Validator

	mu        sync.Mutex
	closed    bool
	pipelines []*mempool.Pipeline
}

// NewServer builds a Server over an already-created listener. Use
// transport.Listen to create one from an Address.
func NewServer(ln transport.Listener, h Handlers) *Server {
	return &Server{ln: ln, h: h, v: csv.New()}
}

// Serve accepts connections until ctx is cancelled or the listener closes.
// Each connection is served in its own goroutine under an errgroup so a
// panic-free connection error never takes down the others; Serve returns
// the first connection-independent error (i.e. from Accept itself).
func (s *Server) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return s.Close()
	})

	for {
		stream, peer, err := s.ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return g.Wait()
			}
			return err
		}

		c := conn.New(stream, peer)
		g.Go(func() error {
			if err := s.serveConn(ctx, c); err != nil {
				log.WithFields(logger.Fields{"peer": c.Peer, "err": err}).Debug("abci: connection closed")
			}
			return nil
		})
	}
}

// Close stops accepting new connections. In-flight connections run to
// completion or until their own read/write fails.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.ln.Close()
}

// MempoolDepth sums Pipeline.Depth (tickets still queued for the writer)
// across every currently-connected Mempool connection. Exposed for
// debugsrv.DepthFunc.
func (s *Server) MempoolDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, p := range s.pipelines {
		total += p.Depth()
	}
	return total
}

// CSV exposes the shared Consensus State Validator for read-only
// introspection (debugsrv.NewServer takes it directly).
func (s *Server) CSV() *csv.Validator {
	return s.v
}

// NewDebugServer builds a debugsrv gRPC server reporting this Server's CSV
// state and mempool depth. Callers Serve() the result over their own
// net.Listener (a Unix socket is typical for an operator-only channel).
func (s *Server) NewDebugServer() *grpc.Server {
	return debugsrv.NewServer(s.v, s.MempoolDepth)
}

func (s *Server) serveConn(ctx context.Context, c *conn.Connection) error {
	defer c.Close()

	first, err := conn.Classify(ctx, c, s.h.Echo)
	if err != nil {
		return err
	}

	switch c.Role {
	case conn.Consensus:
		resp := dispatch.Consensus(ctx, first, s.h.Consensus, s.v)
		if err := c.Enc.WriteResponse(resp); err != nil {
			return err
		}
		return conn.ServeRole(ctx, c, s.h.Echo, func(ctx context.Context, r *types.Request) *types.Response {
			return dispatch.Consensus(ctx, r, s.h.Consensus, s.v)
		})

	case conn.Info:
		resp := dispatch.Info(ctx, first, s.h.Info, s.v)
		if err := c.Enc.WriteResponse(resp); err != nil {
			return err
		}
		return conn.ServeRole(ctx, c, s.h.Echo, func(ctx context.Context, r *types.Request) *types.Response {
			return dispatch.Info(ctx, r, s.h.Info, s.v)
		})

	case conn.Snapshot:
		resp := dispatch.Snapshot(ctx, first, s.h.Snapshot)
		if err := c.Enc.WriteResponse(resp); err != nil {
			return err
		}
		return conn.ServeRole(ctx, c, s.h.Echo, func(ctx context.Context, r *types.Request) *types.Response {
			return dispatch.Snapshot(ctx, r, s.h.Snapshot)
		})

	case conn.Mempool:
		resp := dispatch.CheckTx(ctx, first.CheckTx, s.h.Mempool)
		if err := c.Enc.WriteResponse(resp); err != nil {
			return err
		}
		p := mempool.NewPipeline(c.Dec, c.Enc, s.h.Mempool, s.h.Echo)
		s.mu.Lock()
		s.pipelines = append(s.pipelines, p)
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			for i, q := range s.pipelines {
				if q == p {
					s.pipelines = append(s.pipelines[:i], s.pipelines[i+1:]...)
					break
				}
			}
			s.mu.Unlock()
		}()
		return p.Run(ctx)

	default:
		return nil
	}
}
