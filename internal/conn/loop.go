package conn

import (
	"context"
	"io"

	logger "github.com/sirupsen/logrus"

	"github.com/dusk-network/abci-go/internal/dispatch"
	"github.com/dusk-network/abci-go/pkg/types"
)

var log = logger.WithFields(logger.Fields{"prefix": "conn"})

// Classify reads requests off c, answering Echo/Flush inline, until it sees
// the first request that carries a role (§4.C). It assigns c.Role and
// returns that request for the caller to dispatch and hand the connection
// off to the matching role loop. io.EOF (or any decoder error) propagates to
// the caller unchanged so it can close the connection without logging noise
// for a routine disconnect.
func Classify(ctx context.Context, c *Connection, echo dispatch.EchoHandler) (*types.Request, error) {
	for {
		req, err := c.Dec.ReadRequest()
		if err != nil {
			return nil, err
		}
		if req == nil {
			continue
		}

		if resp, handled := dispatch.HandleNeutral(ctx, req, echo); handled {
			if err := c.Enc.WriteResponse(resp); err != nil {
				return nil, err
			}
			continue
		}

		role, ok := RoleOf(req)
		if !ok {
			// An empty request (no known variant decoded) carries no
			// role; the neutral variants were already consumed above.
			continue
		}
		c.Role = role
		log.WithFields(logger.Fields{"peer": c.Peer, "role": role}).Debug("conn: classified")
		return req, nil
	}
}

// ServeRole runs the steady-state loop for a connection whose Role is
// already assigned: read, answer Echo/Flush inline, dispatch anything else
// via handle, write, repeat, until the decoder returns an error (io.EOF on a
// clean peer disconnect, or a framing error).
func ServeRole(ctx context.Context, c *Connection, echo dispatch.EchoHandler, handle func(context.Context, *types.Request) *types.Response) error {
	for {
		req, err := c.Dec.ReadRequest()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if req == nil {
			continue
		}

		resp, handled := dispatch.HandleNeutral(ctx, req, echo)
		if !handled {
			resp = handle(ctx, req)
		}
		if err := c.Enc.WriteResponse(resp); err != nil {
			return err
		}
	}
}
