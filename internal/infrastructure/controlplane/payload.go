package controlplane

import "github.com/streamfabric/corert/pkg/serialization"

// AnyPayload is the core's in-memory shape of the wire protocol's
// tagged opaque payload (spec.md §6): a type URL plus bytes. The core
// neither parses nor interprets it beyond copying it into user-supplied
// response types.
type AnyPayload struct {
	TypeURL string
	Value   []byte
}

// EncodePayload serializes v with the given Serializer and tags the
// result with typeURL, the name callers use on the receiving side to
// pick a matching Decode target.
func EncodePayload(ser *serialization.Serializer, typeURL string, v interface{}) (AnyPayload, error) {
	data, err := ser.Serialize(v)
	if err != nil {
		return AnyPayload{}, err
	}
	return AnyPayload{TypeURL: typeURL, Value: data}, nil
}

// Decode deserializes p.Value with the given Serializer into v. The
// caller is responsible for knowing the expected Go type from
// p.TypeURL; the core never inspects it itself.
func (p AnyPayload) Decode(ser *serialization.Serializer, v interface{}) error {
	return ser.Deserialize(p.Value, v)
}
