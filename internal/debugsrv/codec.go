package debugsrv

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec lets the debug service exchange plain Go structs over gRPC
// without generated protobuf bindings, since the .proto toolchain is out of
// scope here (see pkg/types for the same tradeoff on the ABCI wire itself).
// gRPC's encoding.Codec is a stable, first-class extension point for this.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return "json"
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
