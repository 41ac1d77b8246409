// Package debugsrv exposes a read-only gRPC introspection side-channel
// reporting the Consensus State Validator's current state and the mempool
// pipeline depth, for operators to poll without perturbing the ABCI
// sockets themselves. It is optional: a Server works without it wired up.
package debugsrv

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/dusk-network/abci-go/internal/csv"
)

var log = logger.WithFields(logger.Fields{"prefix": "debugsrv"})

// StatusRequest carries no fields; it exists so the RPC shape matches the
// rest of the pack's request/response style instead of taking no argument.
type StatusRequest struct{}

// StatusResponse is the polled snapshot of server state.
type StatusResponse struct {
	CSVState     string `json:"csv_state"`
	CSVHeight    int64  `json:"csv_height"`
	MempoolDepth int    `json:"mempool_depth"`
}

// DepthFunc reports the number of tickets still queued for the writer
// across all mempool connections (see mempool.Pipeline.Depth).
type DepthFunc func() int

type service struct {
	v     *csv.Validator
	depth DepthFunc
}

func (s *service) status(ctx context.Context, req interface{}) (interface{}, error) {
	state, height := s.v.Snapshot()
	depth := 0
	if s.depth != nil {
		depth = s.depth()
	}
	return &StatusResponse{CSVState: state, CSVHeight: height, MempoolDepth: depth}, nil
}

func statusHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(StatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*service).status(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/abci.debug.Debug/Status"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(*service).status(ctx, req)
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: "abci.debug.Debug",
	HandlerType: (*interface{})(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Status", Handler: statusHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "debugsrv.proto",
}

// NewServer builds a grpc.Server exposing the Debug/Status RPC over v and
// depth. Callers Serve() it over any net.Listener (a Unix socket is typical
// for an operator-only side channel).
func NewServer(v *csv.Validator, depth DepthFunc) *grpc.Server {
	gs := grpc.NewServer()
	gs.RegisterService(&serviceDesc, &service{v: v, depth: depth})
	log.Debug("debugsrv: registered abci.debug.Debug/Status")
	return gs
}
