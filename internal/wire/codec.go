// Package wire implements the ABCI framing format: a signed varint
// byte-length prefix followed by exactly that many protobuf-encoded bytes.
package wire

import (
	"bufio"
	"errors"
	"io"
	"sync"

	pkgerrors "github.com/pkg/errors"

	"github.com/dusk-network/abci-go/pkg/types"
)

// MaxMsgSize caps a single frame's payload. Tendermint does not specify an
// upper bound; we impose one to resist a misbehaving or compromised peer
// from exhausting memory with a bogus length prefix.
var MaxMsgSize = 64 << 20 // 64 MiB

// ErrInvalidFrameLength is returned when a frame's varint length prefix is
// negative or exceeds MaxMsgSize.
var ErrInvalidFrameLength = errors.New("wire: invalid frame length")

// Decoder reads length-prefixed Request messages off a byte stream.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder wraps r with ABCI frame decoding.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// ReadRequest reads the next frame and decodes it as a Request.
//
// It returns io.EOF when the stream ends cleanly before any byte of a new
// frame is read. A zero-length frame is a benign no-op: ReadRequest returns
// (nil, nil) and the caller should simply read again.
func (d *Decoder) ReadRequest() (*types.Request, error) {
	n, err := d.readLength()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, pkgerrors.Wrapf(err, "[ReadRequest] short read of %d-byte frame", n)
	}

	req, err := types.UnmarshalRequest(buf)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[ReadRequest] decode")
	}
	return req, nil
}

// ReadResponse reads the next frame and decodes it as a Response. Used by
// ABCI clients (and tests standing in for one) reading off the same
// length-prefixed stream a Decoder's peer writes with Encoder.WriteResponse.
func (d *Decoder) ReadResponse() (*types.Response, error) {
	n, err := d.readLength()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, pkgerrors.Wrapf(err, "[ReadResponse] short read of %d-byte frame", n)
	}

	resp, err := types.UnmarshalResponse(buf)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[ReadResponse] decode")
	}
	return resp, nil
}

// readLength reads a signed LEB128 varint frame length. It returns io.EOF
// only when zero bytes of the varint have been consumed.
func (d *Decoder) readLength() (int, error) {
	var (
		result int64
		shift  uint
	)

	for i := 0; i < 10; i++ {
		b, err := d.r.ReadByte()
		if err != nil {
			if i == 0 && errors.Is(err, io.EOF) {
				return 0, io.EOF
			}
			return 0, pkgerrors.Wrap(err, "[readLength]")
		}

		result |= int64(b&0x7f) << shift
		if b&0x80 == 0 {
			if result < 0 || result > int64(MaxMsgSize) {
				return 0, ErrInvalidFrameLength
			}
			return int(result), nil
		}
		shift += 7
	}

	return 0, ErrInvalidFrameLength
}

// Encoder writes length-prefixed Response messages to a byte stream. Writes
// are serialized so concurrent callers never interleave a frame.
type Encoder struct {
	mu sync.Mutex
	w  io.Writer
}

// NewEncoder wraps w with ABCI frame encoding.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteResponse encodes resp, frames it, and writes it atomically.
func (e *Encoder) WriteResponse(resp *types.Response) error {
	payload, err := types.MarshalResponse(resp)
	if err != nil {
		return pkgerrors.Wrap(err, "[WriteResponse] encode")
	}

	frame := appendVarint(nil, int64(len(payload)))
	frame = append(frame, payload...)

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.w.Write(frame); err != nil {
		return pkgerrors.Wrap(err, "[WriteResponse] write frame")
	}
	return nil
}

// WriteRequest encodes req, frames it, and writes it atomically. Used by
// ABCI clients (and tests standing in for one).
func (e *Encoder) WriteRequest(req *types.Request) error {
	payload, err := types.MarshalRequest(req)
	if err != nil {
		return pkgerrors.Wrap(err, "[WriteRequest] encode")
	}

	frame := appendVarint(nil, int64(len(payload)))
	frame = append(frame, payload...)

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.w.Write(frame); err != nil {
		return pkgerrors.Wrap(err, "[WriteRequest] write frame")
	}
	return nil
}

// appendVarint appends a signed LEB128 varint (groups of 7 bits,
// little-endian, continuation bit set on all but the last byte).
func appendVarint(b []byte, v int64) []byte {
	u := uint64(v)
	for {
		c := byte(u & 0x7f)
		u >>= 7
		if u != 0 {
			b = append(b, c|0x80)
		} else {
			b = append(b, c)
			break
		}
	}
	return b
}
