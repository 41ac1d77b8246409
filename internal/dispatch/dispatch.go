// Package dispatch implements the four per-role dispatchers: decode/validate
// (against the CSV where applicable)/invoke/encode chains for Consensus,
// Info, and Snapshot connections, plus the Echo/Flush role-neutral path
// shared by the classifier and every dispatcher. Mempool's pipelined
// dispatch lives in internal/mempool, which reuses CheckTx below for the
// actual CheckTx call.
package dispatch

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/dusk-network/abci-go/internal/csv"
	"github.com/dusk-network/abci-go/pkg/types"
)

var log = logger.WithFields(logger.Fields{"prefix": "dispatch"})

// ConsensusHandler is the subset of pkg/abci.Consensus the dispatcher calls.
// Defined locally so this package need not import pkg/abci (whose Server in
// turn imports this package).
type ConsensusHandler interface {
	InitChain(ctx context.Context, req *types.InitChain) (*types.ResponseInitChain, error)
	BeginBlock(ctx context.Context, req *types.BeginBlock) (*types.ResponseBeginBlock, error)
	DeliverTx(ctx context.Context, req *types.DeliverTx) (*types.ResponseDeliverTx, error)
	EndBlock(ctx context.Context, req *types.EndBlock) (*types.ResponseEndBlock, error)
	Commit(ctx context.Context) (*types.ResponseCommit, error)
}

// InfoHandler is the subset of pkg/abci.Info the dispatcher calls.
type InfoHandler interface {
	Info(ctx context.Context, req *types.Info) (*types.ResponseInfo, error)
	SetOption(ctx context.Context, req *types.SetOption) (*types.ResponseSetOption, error)
	Query(ctx context.Context, req *types.Query) (*types.ResponseQuery, error)
}

// SnapshotHandler is the subset of pkg/abci.Snapshot the dispatcher calls.
type SnapshotHandler interface {
	ListSnapshots(ctx context.Context, req *types.ListSnapshots) (*types.ResponseListSnapshots, error)
	OfferSnapshot(ctx context.Context, req *types.OfferSnapshot) (*types.ResponseOfferSnapshot, error)
	LoadSnapshotChunk(ctx context.Context, req *types.LoadSnapshotChunk) (*types.ResponseLoadSnapshotChunk, error)
	ApplySnapshotChunk(ctx context.Context, req *types.ApplySnapshotChunk) (*types.ResponseApplySnapshotChunk, error)
}

// MempoolHandler is the subset of pkg/abci.Mempool the dispatcher calls.
type MempoolHandler interface {
	CheckTx(ctx context.Context, req *types.CheckTx) (*types.ResponseCheckTx, error)
}

// EchoHandler is the role-neutral Echo capability.
type EchoHandler interface {
	Echo(ctx context.Context, message string) (string, error)
}

// HandleNeutral answers an Echo or Flush request directly, independent of
// connection role or classification state. It returns (resp, true) when req
// was role-neutral, (nil, false) otherwise.
func HandleNeutral(ctx context.Context, req *types.Request, echo EchoHandler) (*types.Response, bool) {
	switch v := req.Value().(type) {
	case *types.Echo:
		msg := v.Message
		if echo != nil {
			reply, err := echo.Echo(ctx, v.Message)
			if err != nil {
				return types.NewException("echo failed: %v", err), true
			}
			msg = reply
		}
		return &types.Response{Echo: &types.ResponseEcho{Message: msg}}, true
	case *types.Flush:
		return &types.Response{Flush: &types.ResponseFlush{}}, true
	default:
		return nil, false
	}
}

// Consensus dispatches one request on a Consensus connection.
func Consensus(ctx context.Context, req *types.Request, h ConsensusHandler, v *csv.Validator) *types.Response {
	switch r := req.Value().(type) {
	case *types.InitChain:
		if err := v.OnInitChainRequest(); err != nil {
			log.WithError(err).Debug("InitChain rejected by csv")
			return types.NewException(err.Error())
		}
		resp, err := h.InitChain(ctx, r)
		if err != nil {
			return types.NewException("InitChain failed: %v", err)
		}
		return &types.Response{InitChain: resp}

	case *types.BeginBlock:
		if r.Header == nil {
			return types.NewException("BeginBlock requires a header")
		}
		if err := v.OnBeginBlockRequest(r.Header.Height, r.Header.AppHash); err != nil {
			log.WithError(err).Debug("BeginBlock rejected by csv")
			return types.NewException(err.Error())
		}
		resp, err := h.BeginBlock(ctx, r)
		if err != nil {
			return types.NewException("BeginBlock failed: %v", err)
		}
		return &types.Response{BeginBlock: resp}

	case *types.DeliverTx:
		if err := v.OnDeliverTxRequest(); err != nil {
			log.WithError(err).Debug("DeliverTx rejected by csv")
			return types.NewException(err.Error())
		}
		resp, err := h.DeliverTx(ctx, r)
		if err != nil {
			return types.NewException("DeliverTx failed: %v", err)
		}
		return &types.Response{DeliverTx: resp}

	case *types.EndBlock:
		if err := v.OnEndBlockRequest(r.Height); err != nil {
			log.WithError(err).Debug("EndBlock rejected by csv")
			return types.NewException(err.Error())
		}
		resp, err := h.EndBlock(ctx, r)
		if err != nil {
			return types.NewException("EndBlock failed: %v", err)
		}
		return &types.Response{EndBlock: resp}

	case *types.Commit:
		var commitResp *types.ResponseCommit
		appHash, err := v.Commit(func() ([]byte, error) {
			resp, err := h.Commit(ctx)
			if err != nil {
				return nil, err
			}
			commitResp = resp
			return resp.Data, nil
		})
		if err != nil {
			log.WithError(err).Debug("Commit rejected or failed")
			return types.NewException(err.Error())
		}
		commitResp.Data = appHash
		return &types.Response{Commit: commitResp}

	default:
		return types.NewException("Non-consensus request on consensus connection")
	}
}

// Info dispatches one request on an Info connection.
func Info(ctx context.Context, req *types.Request, h InfoHandler, v *csv.Validator) *types.Response {
	switch r := req.Value().(type) {
	case *types.Info:
		resp, err := h.Info(ctx, r)
		if err != nil {
			return types.NewException("Info failed: %v", err)
		}
		v.OnInfoResponse(resp.LastBlockHeight, resp.LastBlockAppHash)
		return &types.Response{Info: resp}

	case *types.SetOption:
		resp, err := h.SetOption(ctx, r)
		if err != nil {
			return types.NewException("SetOption failed: %v", err)
		}
		return &types.Response{SetOption: resp}

	case *types.Query:
		resp, err := h.Query(ctx, r)
		if err != nil {
			return types.NewException("Query failed: %v", err)
		}
		return &types.Response{Query: resp}

	default:
		return types.NewException("Non-info request on info connection")
	}
}

// Snapshot dispatches one request on a Snapshot connection.
func Snapshot(ctx context.Context, req *types.Request, h SnapshotHandler) *types.Response {
	switch r := req.Value().(type) {
	case *types.ListSnapshots:
		resp, err := h.ListSnapshots(ctx, r)
		if err != nil {
			return types.NewException("ListSnapshots failed: %v", err)
		}
		return &types.Response{ListSnapshots: resp}

	case *types.OfferSnapshot:
		resp, err := h.OfferSnapshot(ctx, r)
		if err != nil {
			return types.NewException("OfferSnapshot failed: %v", err)
		}
		return &types.Response{OfferSnapshot: resp}

	case *types.LoadSnapshotChunk:
		resp, err := h.LoadSnapshotChunk(ctx, r)
		if err != nil {
			return types.NewException("LoadSnapshotChunk failed: %v", err)
		}
		return &types.Response{LoadSnapshotChunk: resp}

	case *types.ApplySnapshotChunk:
		resp, err := h.ApplySnapshotChunk(ctx, r)
		if err != nil {
			return types.NewException("ApplySnapshotChunk failed: %v", err)
		}
		return &types.Response{ApplySnapshotChunk: resp}

	default:
		return types.NewException("Non-snapshot request on snapshot connection")
	}
}

// CheckTx dispatches a single CheckTx call. Exported for internal/mempool's
// pipelined reader, which calls it once per spawned task.
func CheckTx(ctx context.Context, req *types.CheckTx, h MempoolHandler) *types.Response {
	resp, err := h.CheckTx(ctx, req)
	if err != nil {
		return types.NewException("CheckTx failed: %v", err)
	}
	return &types.Response{CheckTx: resp}
}

// WrongRole builds the Exception response for a request whose variant
// doesn't match the connection's classified role (§4.C).
func WrongRole(role fmt.Stringer) *types.Response {
	return types.NewException("Non-%s request on %s connection", role, role)
}
