package codec

import "google.golang.org/protobuf/proto"

// Protobuf caches generated messages as wire-format payloads. ctor builds an
// empty message to decode into, e.g. func() *mypb.User { return &mypb.User{} }.
func Protobuf[M proto.Message](ctor func() M) Codec[M, Blob[M]] {
	return Opaque[M](protobufFormat[M]{new: ctor})
}

type protobufFormat[M proto.Message] struct {
	new func() M
}

func (protobufFormat[M]) Name() string { return "protobuf" }

func (protobufFormat[M]) Marshal(v *M) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(*v)
}

func (c protobufFormat[M]) Unmarshal(b []byte) (M, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}
