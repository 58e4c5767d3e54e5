package controlplane

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/grpc/encoding"
)

// eventCodecName is the gRPC call content-subtype corert registers its
// Event codec under, selected via grpc.CallContentSubtype. The wire
// proto schema is out of scope for this core (spec.md §1); Event
// messages travel as msgpack frames instead of generated protobuf.
const eventCodecName = "corert-event"

func init() {
	encoding.RegisterCodec(eventCodec{})
}

// eventCodec implements encoding.Codec for *Event using msgpack,
// letting the control-plane client open a gRPC bidi stream without a
// protoc-generated message type.
type eventCodec struct{}

func (eventCodec) Name() string { return eventCodecName }

func (eventCodec) Marshal(v interface{}) ([]byte, error) {
	e, ok := v.(*Event)
	if !ok {
		return nil, fmt.Errorf("controlplane: eventCodec cannot marshal %T", v)
	}
	return msgpack.Marshal(e)
}

func (eventCodec) Unmarshal(data []byte, v interface{}) error {
	e, ok := v.(*Event)
	if !ok {
		return fmt.Errorf("controlplane: eventCodec cannot unmarshal into %T", v)
	}
	return msgpack.Unmarshal(data, e)
}
