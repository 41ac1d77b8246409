package types

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Marshal/Unmarshal implement the protobuf wire format for Request and
// Response by hand, field by field, using protowire's low-level primitives.
// This is the format a protoc-gen-go-generated type would produce; we write
// it directly since the .proto sources are an external collaborator (see
// pkg/types doc comment).

// --- small helpers shared by every message type ---

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarint(b, num, 1)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// appendMessage always emits the field, even for a zero-length payload,
// since presence (not content) is what the caller is signalling.
func appendMessage(b []byte, num protowire.Number, payload []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, payload)
}

// field is one decoded (number, wire-type, raw-value) tuple.
type field struct {
	num   protowire.Number
	typ   protowire.Type
	u64   uint64
	bytes []byte
}

func consumeFields(b []byte, fn func(field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("types: invalid field tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		var f field
		f.num, f.typ = num, typ

		switch typ {
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return fmt.Errorf("types: invalid varint: %w", protowire.ParseError(m))
			}
			f.u64 = v
			b = b[m:]
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return fmt.Errorf("types: invalid length-delimited field: %w", protowire.ParseError(m))
			}
			f.bytes = v
			b = b[m:]
		case protowire.Fixed32Type:
			_, m := protowire.ConsumeFixed32(b)
			if m < 0 {
				return fmt.Errorf("types: invalid fixed32: %w", protowire.ParseError(m))
			}
			b = b[m:]
		case protowire.Fixed64Type:
			_, m := protowire.ConsumeFixed64(b)
			if m < 0 {
				return fmt.Errorf("types: invalid fixed64: %w", protowire.ParseError(m))
			}
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return fmt.Errorf("types: invalid field: %w", protowire.ParseError(m))
			}
			b = b[m:]
		}

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// --- Echo ---

func marshalEcho(v *Echo) []byte {
	var b []byte
	b = appendString(b, 1, v.Message)
	return b
}

func unmarshalEcho(data []byte) (*Echo, error) {
	v := &Echo{}
	err := consumeFields(data, func(f field) error {
		if f.num == 1 && f.typ == protowire.BytesType {
			v.Message = string(f.bytes)
		}
		return nil
	})
	return v, err
}

func marshalResponseEcho(v *ResponseEcho) []byte {
	var b []byte
	b = appendString(b, 1, v.Message)
	return b
}

func unmarshalResponseEcho(data []byte) (*ResponseEcho, error) {
	v := &ResponseEcho{}
	err := consumeFields(data, func(f field) error {
		if f.num == 1 && f.typ == protowire.BytesType {
			v.Message = string(f.bytes)
		}
		return nil
	})
	return v, err
}

// --- Info ---

func marshalInfo(v *Info) []byte {
	var b []byte
	b = appendString(b, 1, v.Version)
	b = appendVarint(b, 2, v.BlockVersion)
	b = appendVarint(b, 3, v.P2PVersion)
	return b
}

func unmarshalInfo(data []byte) (*Info, error) {
	v := &Info{}
	err := consumeFields(data, func(f field) error {
		switch f.num {
		case 1:
			v.Version = string(f.bytes)
		case 2:
			v.BlockVersion = f.u64
		case 3:
			v.P2PVersion = f.u64
		}
		return nil
	})
	return v, err
}

func marshalResponseInfo(v *ResponseInfo) []byte {
	var b []byte
	b = appendString(b, 1, v.Data)
	b = appendString(b, 2, v.Version)
	b = appendVarint(b, 3, v.AppVersion)
	b = appendVarint(b, 4, uint64(v.LastBlockHeight))
	b = appendBytes(b, 5, v.LastBlockAppHash)
	return b
}

func unmarshalResponseInfo(data []byte) (*ResponseInfo, error) {
	v := &ResponseInfo{}
	err := consumeFields(data, func(f field) error {
		switch f.num {
		case 1:
			v.Data = string(f.bytes)
		case 2:
			v.Version = string(f.bytes)
		case 3:
			v.AppVersion = f.u64
		case 4:
			v.LastBlockHeight = int64(f.u64)
		case 5:
			v.LastBlockAppHash = append([]byte(nil), f.bytes...)
		}
		return nil
	})
	return v, err
}

// --- SetOption ---

func marshalSetOption(v *SetOption) []byte {
	var b []byte
	b = appendString(b, 1, v.Key)
	b = appendString(b, 2, v.Value)
	return b
}

func unmarshalSetOption(data []byte) (*SetOption, error) {
	v := &SetOption{}
	err := consumeFields(data, func(f field) error {
		switch f.num {
		case 1:
			v.Key = string(f.bytes)
		case 2:
			v.Value = string(f.bytes)
		}
		return nil
	})
	return v, err
}

func marshalResponseSetOption(v *ResponseSetOption) []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(v.Code))
	b = appendString(b, 2, v.Log)
	b = appendString(b, 3, v.Info)
	return b
}

func unmarshalResponseSetOption(data []byte) (*ResponseSetOption, error) {
	v := &ResponseSetOption{}
	err := consumeFields(data, func(f field) error {
		switch f.num {
		case 1:
			v.Code = uint32(f.u64)
		case 2:
			v.Log = string(f.bytes)
		case 3:
			v.Info = string(f.bytes)
		}
		return nil
	})
	return v, err
}

// --- Query ---

func marshalQuery(v *Query) []byte {
	var b []byte
	b = appendBytes(b, 1, v.Data)
	b = appendString(b, 2, v.Path)
	b = appendVarint(b, 3, uint64(v.Height))
	b = appendBool(b, 4, v.Prove)
	return b
}

func unmarshalQuery(data []byte) (*Query, error) {
	v := &Query{}
	err := consumeFields(data, func(f field) error {
		switch f.num {
		case 1:
			v.Data = append([]byte(nil), f.bytes...)
		case 2:
			v.Path = string(f.bytes)
		case 3:
			v.Height = int64(f.u64)
		case 4:
			v.Prove = f.u64 != 0
		}
		return nil
	})
	return v, err
}

func marshalResponseQuery(v *ResponseQuery) []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(v.Code))
	b = appendString(b, 2, v.Log)
	b = appendString(b, 3, v.Info)
	b = appendVarint(b, 4, uint64(v.Index))
	b = appendBytes(b, 5, v.Key)
	b = appendBytes(b, 6, v.Value)
	b = appendBytes(b, 7, v.ProofOps)
	b = appendVarint(b, 8, uint64(v.Height))
	b = appendString(b, 9, v.Codespace)
	return b
}

func unmarshalResponseQuery(data []byte) (*ResponseQuery, error) {
	v := &ResponseQuery{}
	err := consumeFields(data, func(f field) error {
		switch f.num {
		case 1:
			v.Code = uint32(f.u64)
		case 2:
			v.Log = string(f.bytes)
		case 3:
			v.Info = string(f.bytes)
		case 4:
			v.Index = int64(f.u64)
		case 5:
			v.Key = append([]byte(nil), f.bytes...)
		case 6:
			v.Value = append([]byte(nil), f.bytes...)
		case 7:
			v.ProofOps = append([]byte(nil), f.bytes...)
		case 8:
			v.Height = int64(f.u64)
		case 9:
			v.Codespace = string(f.bytes)
		}
		return nil
	})
	return v, err
}

// --- InitChain ---

func marshalInitChain(v *InitChain) []byte {
	var b []byte
	b = appendString(b, 1, v.ChainID)
	b = appendBytes(b, 2, v.AppStateBytes)
	b = appendVarint(b, 3, uint64(v.InitialHeight))
	return b
}

func unmarshalInitChain(data []byte) (*InitChain, error) {
	v := &InitChain{}
	err := consumeFields(data, func(f field) error {
		switch f.num {
		case 1:
			v.ChainID = string(f.bytes)
		case 2:
			v.AppStateBytes = append([]byte(nil), f.bytes...)
		case 3:
			v.InitialHeight = int64(f.u64)
		}
		return nil
	})
	return v, err
}

func marshalResponseInitChain(v *ResponseInitChain) []byte {
	var b []byte
	b = appendBytes(b, 1, v.AppHash)
	return b
}

func unmarshalResponseInitChain(data []byte) (*ResponseInitChain, error) {
	v := &ResponseInitChain{}
	err := consumeFields(data, func(f field) error {
		if f.num == 1 {
			v.AppHash = append([]byte(nil), f.bytes...)
		}
		return nil
	})
	return v, err
}

// --- Header (embedded submessage) ---

func marshalHeader(h Header) []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(h.Height))
	b = appendBytes(b, 2, h.AppHash)
	return b
}

func unmarshalHeader(data []byte) (Header, error) {
	var h Header
	err := consumeFields(data, func(f field) error {
		switch f.num {
		case 1:
			h.Height = int64(f.u64)
		case 2:
			h.AppHash = append([]byte(nil), f.bytes...)
		}
		return nil
	})
	return h, err
}

// --- BeginBlock ---

func marshalBeginBlock(v *BeginBlock) []byte {
	var b []byte
	b = appendBytes(b, 1, v.Hash)
	if v.Header != nil {
		b = appendMessage(b, 2, marshalHeader(*v.Header))
	}
	return b
}

func unmarshalBeginBlock(data []byte) (*BeginBlock, error) {
	v := &BeginBlock{}
	err := consumeFields(data, func(f field) error {
		switch f.num {
		case 1:
			v.Hash = append([]byte(nil), f.bytes...)
		case 2:
			h, err := unmarshalHeader(f.bytes)
			if err != nil {
				return err
			}
			v.Header = &h
		}
		return nil
	})
	return v, err
}

func marshalEventList(num protowire.Number, events []Event) []byte {
	var b []byte
	for _, e := range events {
		var eb []byte
		eb = appendString(eb, 1, e.Type)
		var attrsBuf []byte
		for _, a := range e.Attributes {
			var ab []byte
			ab = appendString(ab, 1, a.Key)
			ab = appendString(ab, 2, a.Value)
			ab = appendBool(ab, 3, a.Index)
			attrsBuf = appendMessage(attrsBuf, 2, ab)
		}
		eb = append(eb, attrsBuf...)
		b = appendMessage(b, num, eb)
	}
	return b
}

func unmarshalEventList(data []byte) ([]Event, error) {
	var events []Event
	err := consumeFields(data, func(f field) error {
		e := Event{}
		innerErr := consumeFields(f.bytes, func(inner field) error {
			switch inner.num {
			case 1:
				e.Type = string(inner.bytes)
			case 2:
				a := EventAttribute{}
				aErr := consumeFields(inner.bytes, func(af field) error {
					switch af.num {
					case 1:
						a.Key = string(af.bytes)
					case 2:
						a.Value = string(af.bytes)
					case 3:
						a.Index = af.u64 != 0
					}
					return nil
				})
				if aErr != nil {
					return aErr
				}
				e.Attributes = append(e.Attributes, a)
			}
			return nil
		})
		if innerErr != nil {
			return innerErr
		}
		events = append(events, e)
		return nil
	})
	return events, err
}

func marshalResponseBeginBlock(v *ResponseBeginBlock) []byte {
	return marshalEventList(1, v.Events)
}

func unmarshalResponseBeginBlock(data []byte) (*ResponseBeginBlock, error) {
	events, err := unmarshalEventList(data)
	return &ResponseBeginBlock{Events: events}, err
}

// --- DeliverTx ---

func marshalDeliverTx(v *DeliverTx) []byte {
	var b []byte
	b = appendBytes(b, 1, v.Tx)
	return b
}

func unmarshalDeliverTx(data []byte) (*DeliverTx, error) {
	v := &DeliverTx{}
	err := consumeFields(data, func(f field) error {
		if f.num == 1 {
			v.Tx = append([]byte(nil), f.bytes...)
		}
		return nil
	})
	return v, err
}

func marshalResponseDeliverTx(v *ResponseDeliverTx) []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(v.Code))
	b = appendBytes(b, 2, v.Data)
	b = appendString(b, 3, v.Log)
	b = appendString(b, 4, v.Info)
	b = appendVarint(b, 5, uint64(v.GasWanted))
	b = appendVarint(b, 6, uint64(v.GasUsed))
	b = append(b, marshalEventList(7, v.Events)...)
	b = appendString(b, 8, v.Codespace)
	return b
}

func unmarshalResponseDeliverTx(data []byte) (*ResponseDeliverTx, error) {
	v := &ResponseDeliverTx{}
	err := consumeFields(data, func(f field) error {
		switch f.num {
		case 1:
			v.Code = uint32(f.u64)
		case 2:
			v.Data = append([]byte(nil), f.bytes...)
		case 3:
			v.Log = string(f.bytes)
		case 4:
			v.Info = string(f.bytes)
		case 5:
			v.GasWanted = int64(f.u64)
		case 6:
			v.GasUsed = int64(f.u64)
		case 7:
			// each field-7 occurrence holds a single Event
			e, err := unmarshalEventList(appendMessage(nil, 1, f.bytes))
			if err != nil {
				return err
			}
			v.Events = append(v.Events, e...)
		case 8:
			v.Codespace = string(f.bytes)
		}
		return nil
	})
	return v, err
}

// --- EndBlock ---

func marshalEndBlock(v *EndBlock) []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(v.Height))
	return b
}

func unmarshalEndBlock(data []byte) (*EndBlock, error) {
	v := &EndBlock{}
	err := consumeFields(data, func(f field) error {
		if f.num == 1 {
			v.Height = int64(f.u64)
		}
		return nil
	})
	return v, err
}

func marshalResponseEndBlock(v *ResponseEndBlock) []byte {
	return marshalEventList(1, v.Events)
}

func unmarshalResponseEndBlock(data []byte) (*ResponseEndBlock, error) {
	events, err := unmarshalEventList(data)
	return &ResponseEndBlock{Events: events}, err
}

// --- Commit ---

func marshalCommit(_ *Commit) []byte { return nil }

func unmarshalCommit(_ []byte) (*Commit, error) { return &Commit{}, nil }

func marshalResponseCommit(v *ResponseCommit) []byte {
	var b []byte
	b = appendBytes(b, 1, v.Data)
	b = appendVarint(b, 2, uint64(v.RetainHeight))
	return b
}

func unmarshalResponseCommit(data []byte) (*ResponseCommit, error) {
	v := &ResponseCommit{}
	err := consumeFields(data, func(f field) error {
		switch f.num {
		case 1:
			v.Data = append([]byte(nil), f.bytes...)
		case 2:
			v.RetainHeight = int64(f.u64)
		}
		return nil
	})
	return v, err
}

// --- CheckTx ---

func marshalCheckTx(v *CheckTx) []byte {
	var b []byte
	b = appendBytes(b, 1, v.Tx)
	b = appendVarint(b, 2, uint64(v.Type))
	return b
}

func unmarshalCheckTx(data []byte) (*CheckTx, error) {
	v := &CheckTx{}
	err := consumeFields(data, func(f field) error {
		switch f.num {
		case 1:
			v.Tx = append([]byte(nil), f.bytes...)
		case 2:
			v.Type = CheckTxType(f.u64)
		}
		return nil
	})
	return v, err
}

func marshalResponseCheckTx(v *ResponseCheckTx) []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(v.Code))
	b = appendBytes(b, 2, v.Data)
	b = appendString(b, 3, v.Log)
	b = appendString(b, 4, v.Info)
	b = appendVarint(b, 5, uint64(v.GasWanted))
	b = appendVarint(b, 6, uint64(v.GasUsed))
	b = append(b, marshalEventList(7, v.Events)...)
	b = appendString(b, 8, v.Codespace)
	return b
}

func unmarshalResponseCheckTx(data []byte) (*ResponseCheckTx, error) {
	v := &ResponseCheckTx{}
	err := consumeFields(data, func(f field) error {
		switch f.num {
		case 1:
			v.Code = uint32(f.u64)
		case 2:
			v.Data = append([]byte(nil), f.bytes...)
		case 3:
			v.Log = string(f.bytes)
		case 4:
			v.Info = string(f.bytes)
		case 5:
			v.GasWanted = int64(f.u64)
		case 6:
			v.GasUsed = int64(f.u64)
		case 7:
			// each field-7 occurrence holds a single Event
			e, err := unmarshalEventList(appendMessage(nil, 1, f.bytes))
			if err != nil {
				return err
			}
			v.Events = append(v.Events, e...)
		case 8:
			v.Codespace = string(f.bytes)
		}
		return nil
	})
	return v, err
}

// --- Snapshot connection ---

func marshalListSnapshots(_ *ListSnapshots) []byte { return nil }

func unmarshalListSnapshots(_ []byte) (*ListSnapshots, error) { return &ListSnapshots{}, nil }

func marshalSnapshot(s *Snapshot) []byte {
	if s == nil {
		return nil
	}
	var b []byte
	b = appendVarint(b, 1, s.Height)
	b = appendVarint(b, 2, uint64(s.Format))
	b = appendVarint(b, 3, uint64(s.Chunks))
	b = appendBytes(b, 4, s.Hash)
	b = appendBytes(b, 5, s.Metadata)
	return b
}

func unmarshalSnapshot(data []byte) (*Snapshot, error) {
	s := &Snapshot{}
	err := consumeFields(data, func(f field) error {
		switch f.num {
		case 1:
			s.Height = f.u64
		case 2:
			s.Format = uint32(f.u64)
		case 3:
			s.Chunks = uint32(f.u64)
		case 4:
			s.Hash = append([]byte(nil), f.bytes...)
		case 5:
			s.Metadata = append([]byte(nil), f.bytes...)
		}
		return nil
	})
	return s, err
}

func marshalResponseListSnapshots(v *ResponseListSnapshots) []byte {
	var b []byte
	for _, s := range v.Snapshots {
		b = appendMessage(b, 1, marshalSnapshot(s))
	}
	return b
}

func unmarshalResponseListSnapshots(data []byte) (*ResponseListSnapshots, error) {
	v := &ResponseListSnapshots{}
	err := consumeFields(data, func(f field) error {
		if f.num == 1 {
			s, err := unmarshalSnapshot(f.bytes)
			if err != nil {
				return err
			}
			v.Snapshots = append(v.Snapshots, s)
		}
		return nil
	})
	return v, err
}

func marshalOfferSnapshot(v *OfferSnapshot) []byte {
	var b []byte
	b = appendMessage(b, 1, marshalSnapshot(v.Snapshot))
	b = appendBytes(b, 2, v.AppHash)
	return b
}

func unmarshalOfferSnapshot(data []byte) (*OfferSnapshot, error) {
	v := &OfferSnapshot{}
	err := consumeFields(data, func(f field) error {
		switch f.num {
		case 1:
			s, err := unmarshalSnapshot(f.bytes)
			if err != nil {
				return err
			}
			v.Snapshot = s
		case 2:
			v.AppHash = append([]byte(nil), f.bytes...)
		}
		return nil
	})
	return v, err
}

func marshalResponseOfferSnapshot(v *ResponseOfferSnapshot) []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(v.Result))
	return b
}

func unmarshalResponseOfferSnapshot(data []byte) (*ResponseOfferSnapshot, error) {
	v := &ResponseOfferSnapshot{}
	err := consumeFields(data, func(f field) error {
		if f.num == 1 {
			v.Result = OfferSnapshotResult(f.u64)
		}
		return nil
	})
	return v, err
}

func marshalLoadSnapshotChunk(v *LoadSnapshotChunk) []byte {
	var b []byte
	b = appendVarint(b, 1, v.Height)
	b = appendVarint(b, 2, uint64(v.Format))
	b = appendVarint(b, 3, uint64(v.Chunk))
	return b
}

func unmarshalLoadSnapshotChunk(data []byte) (*LoadSnapshotChunk, error) {
	v := &LoadSnapshotChunk{}
	err := consumeFields(data, func(f field) error {
		switch f.num {
		case 1:
			v.Height = f.u64
		case 2:
			v.Format = uint32(f.u64)
		case 3:
			v.Chunk = uint32(f.u64)
		}
		return nil
	})
	return v, err
}

func marshalResponseLoadSnapshotChunk(v *ResponseLoadSnapshotChunk) []byte {
	var b []byte
	b = appendBytes(b, 1, v.Chunk)
	return b
}

func unmarshalResponseLoadSnapshotChunk(data []byte) (*ResponseLoadSnapshotChunk, error) {
	v := &ResponseLoadSnapshotChunk{}
	err := consumeFields(data, func(f field) error {
		if f.num == 1 {
			v.Chunk = append([]byte(nil), f.bytes...)
		}
		return nil
	})
	return v, err
}

func marshalApplySnapshotChunk(v *ApplySnapshotChunk) []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(v.Index))
	b = appendBytes(b, 2, v.Chunk)
	b = appendString(b, 3, v.Sender)
	return b
}

func unmarshalApplySnapshotChunk(data []byte) (*ApplySnapshotChunk, error) {
	v := &ApplySnapshotChunk{}
	err := consumeFields(data, func(f field) error {
		switch f.num {
		case 1:
			v.Index = uint32(f.u64)
		case 2:
			v.Chunk = append([]byte(nil), f.bytes...)
		case 3:
			v.Sender = string(f.bytes)
		}
		return nil
	})
	return v, err
}

func marshalResponseApplySnapshotChunk(v *ResponseApplySnapshotChunk) []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(v.Result))
	for _, c := range v.RefetchChunks {
		b = appendVarint(b, 2, uint64(c))
	}
	for _, s := range v.RejectSenders {
		b = appendString(b, 3, s)
	}
	return b
}

func unmarshalResponseApplySnapshotChunk(data []byte) (*ResponseApplySnapshotChunk, error) {
	v := &ResponseApplySnapshotChunk{}
	err := consumeFields(data, func(f field) error {
		switch f.num {
		case 1:
			v.Result = ApplySnapshotChunkResult(f.u64)
		case 2:
			v.RefetchChunks = append(v.RefetchChunks, uint32(f.u64))
		case 3:
			v.RejectSenders = append(v.RejectSenders, string(f.bytes))
		}
		return nil
	})
	return v, err
}

// --- Exception ---

func marshalException(v *Exception) []byte {
	var b []byte
	b = appendString(b, 1, v.Error)
	return b
}

func unmarshalException(data []byte) (*Exception, error) {
	v := &Exception{}
	err := consumeFields(data, func(f field) error {
		if f.num == 1 {
			v.Error = string(f.bytes)
		}
		return nil
	})
	return v, err
}

// --- Request oneof ---

const (
	tagEcho protowire.Number = iota + 1
	tagFlush
	tagInfo
	tagSetOption
	tagQuery
	tagInitChain
	tagBeginBlock
	tagDeliverTx
	tagEndBlock
	tagCommit
	tagCheckTx
	tagListSnapshots
	tagOfferSnapshot
	tagLoadSnapshotChunk
	tagApplySnapshotChunk
	tagException // response-only
)

// MarshalRequest encodes a Request to protobuf wire bytes.
func MarshalRequest(r *Request) ([]byte, error) {
	var b []byte
	switch {
	case r.Echo != nil:
		b = appendMessage(b, tagEcho, marshalEcho(r.Echo))
	case r.Flush != nil:
		b = appendMessage(b, tagFlush, nil)
	case r.Info != nil:
		b = appendMessage(b, tagInfo, marshalInfo(r.Info))
	case r.SetOption != nil:
		b = appendMessage(b, tagSetOption, marshalSetOption(r.SetOption))
	case r.Query != nil:
		b = appendMessage(b, tagQuery, marshalQuery(r.Query))
	case r.InitChain != nil:
		b = appendMessage(b, tagInitChain, marshalInitChain(r.InitChain))
	case r.BeginBlock != nil:
		b = appendMessage(b, tagBeginBlock, marshalBeginBlock(r.BeginBlock))
	case r.DeliverTx != nil:
		b = appendMessage(b, tagDeliverTx, marshalDeliverTx(r.DeliverTx))
	case r.EndBlock != nil:
		b = appendMessage(b, tagEndBlock, marshalEndBlock(r.EndBlock))
	case r.Commit != nil:
		b = appendMessage(b, tagCommit, marshalCommit(r.Commit))
	case r.CheckTx != nil:
		b = appendMessage(b, tagCheckTx, marshalCheckTx(r.CheckTx))
	case r.ListSnapshots != nil:
		b = appendMessage(b, tagListSnapshots, marshalListSnapshots(r.ListSnapshots))
	case r.OfferSnapshot != nil:
		b = appendMessage(b, tagOfferSnapshot, marshalOfferSnapshot(r.OfferSnapshot))
	case r.LoadSnapshotChunk != nil:
		b = appendMessage(b, tagLoadSnapshotChunk, marshalLoadSnapshotChunk(r.LoadSnapshotChunk))
	case r.ApplySnapshotChunk != nil:
		b = appendMessage(b, tagApplySnapshotChunk, marshalApplySnapshotChunk(r.ApplySnapshotChunk))
	default:
		return nil, fmt.Errorf("types: empty request")
	}
	return b, nil
}

// UnmarshalRequest decodes protobuf wire bytes into a Request.
func UnmarshalRequest(data []byte) (*Request, error) {
	r := &Request{}
	err := consumeFields(data, func(f field) error {
		var err error
		switch f.num {
		case tagEcho:
			r.Echo, err = unmarshalEcho(f.bytes)
		case tagFlush:
			r.Flush = &Flush{}
		case tagInfo:
			r.Info, err = unmarshalInfo(f.bytes)
		case tagSetOption:
			r.SetOption, err = unmarshalSetOption(f.bytes)
		case tagQuery:
			r.Query, err = unmarshalQuery(f.bytes)
		case tagInitChain:
			r.InitChain, err = unmarshalInitChain(f.bytes)
		case tagBeginBlock:
			r.BeginBlock, err = unmarshalBeginBlock(f.bytes)
		case tagDeliverTx:
			r.DeliverTx, err = unmarshalDeliverTx(f.bytes)
		case tagEndBlock:
			r.EndBlock, err = unmarshalEndBlock(f.bytes)
		case tagCommit:
			r.Commit, err = unmarshalCommit(f.bytes)
		case tagCheckTx:
			r.CheckTx, err = unmarshalCheckTx(f.bytes)
		case tagListSnapshots:
			r.ListSnapshots, err = unmarshalListSnapshots(f.bytes)
		case tagOfferSnapshot:
			r.OfferSnapshot, err = unmarshalOfferSnapshot(f.bytes)
		case tagLoadSnapshotChunk:
			r.LoadSnapshotChunk, err = unmarshalLoadSnapshotChunk(f.bytes)
		case tagApplySnapshotChunk:
			r.ApplySnapshotChunk, err = unmarshalApplySnapshotChunk(f.bytes)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// MarshalResponse encodes a Response to protobuf wire bytes.
func MarshalResponse(r *Response) ([]byte, error) {
	var b []byte
	switch {
	case r.Echo != nil:
		b = appendMessage(b, tagEcho, marshalResponseEcho(r.Echo))
	case r.Flush != nil:
		b = appendMessage(b, tagFlush, nil)
	case r.Info != nil:
		b = appendMessage(b, tagInfo, marshalResponseInfo(r.Info))
	case r.SetOption != nil:
		b = appendMessage(b, tagSetOption, marshalResponseSetOption(r.SetOption))
	case r.Query != nil:
		b = appendMessage(b, tagQuery, marshalResponseQuery(r.Query))
	case r.InitChain != nil:
		b = appendMessage(b, tagInitChain, marshalResponseInitChain(r.InitChain))
	case r.BeginBlock != nil:
		b = appendMessage(b, tagBeginBlock, marshalResponseBeginBlock(r.BeginBlock))
	case r.DeliverTx != nil:
		b = appendMessage(b, tagDeliverTx, marshalResponseDeliverTx(r.DeliverTx))
	case r.EndBlock != nil:
		b = appendMessage(b, tagEndBlock, marshalResponseEndBlock(r.EndBlock))
	case r.Commit != nil:
		b = appendMessage(b, tagCommit, marshalResponseCommit(r.Commit))
	case r.CheckTx != nil:
		b = appendMessage(b, tagCheckTx, marshalResponseCheckTx(r.CheckTx))
	case r.ListSnapshots != nil:
		b = appendMessage(b, tagListSnapshots, marshalResponseListSnapshots(r.ListSnapshots))
	case r.OfferSnapshot != nil:
		b = appendMessage(b, tagOfferSnapshot, marshalResponseOfferSnapshot(r.OfferSnapshot))
	case r.LoadSnapshotChunk != nil:
		b = appendMessage(b, tagLoadSnapshotChunk, marshalResponseLoadSnapshotChunk(r.LoadSnapshotChunk))
	case r.ApplySnapshotChunk != nil:
		b = appendMessage(b, tagApplySnapshotChunk, marshalResponseApplySnapshotChunk(r.ApplySnapshotChunk))
	case r.Exception != nil:
		b = appendMessage(b, tagException, marshalException(r.Exception))
	default:
		return nil, fmt.Errorf("types: empty response")
	}
	return b, nil
}

// UnmarshalResponse decodes protobuf wire bytes into a Response.
func UnmarshalResponse(data []byte) (*Response, error) {
	r := &Response{}
	err := consumeFields(data, func(f field) error {
		var err error
		switch f.num {
		case tagEcho:
			r.Echo, err = unmarshalResponseEcho(f.bytes)
		case tagFlush:
			r.Flush = &ResponseFlush{}
		case tagInfo:
			r.Info, err = unmarshalResponseInfo(f.bytes)
		case tagSetOption:
			r.SetOption, err = unmarshalResponseSetOption(f.bytes)
		case tagQuery:
			r.Query, err = unmarshalResponseQuery(f.bytes)
		case tagInitChain:
			r.InitChain, err = unmarshalResponseInitChain(f.bytes)
		case tagBeginBlock:
			r.BeginBlock, err = unmarshalResponseBeginBlock(f.bytes)
		case tagDeliverTx:
			r.DeliverTx, err = unmarshalResponseDeliverTx(f.bytes)
		case tagEndBlock:
			r.EndBlock, err = unmarshalResponseEndBlock(f.bytes)
		case tagCommit:
			r.Commit, err = unmarshalResponseCommit(f.bytes)
		case tagCheckTx:
			r.CheckTx, err = unmarshalResponseCheckTx(f.bytes)
		case tagListSnapshots:
			r.ListSnapshots, err = unmarshalResponseListSnapshots(f.bytes)
		case tagOfferSnapshot:
			r.OfferSnapshot, err = unmarshalResponseOfferSnapshot(f.bytes)
		case tagLoadSnapshotChunk:
			r.LoadSnapshotChunk, err = unmarshalResponseLoadSnapshotChunk(f.bytes)
		case tagApplySnapshotChunk:
			r.ApplySnapshotChunk, err = unmarshalResponseApplySnapshotChunk(f.bytes)
		case tagException:
			r.Exception, err = unmarshalException(f.bytes)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}
