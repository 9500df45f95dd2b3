package rpc

import (
	"encoding/json"

	"github.com/fxamacker/cbor/v2"
	"google.golang.org/grpc/encoding"
)

// Messages are plain structs, so they travel as json or cbor instead of protobuf. Clients pick
// one with grpc.CallContentSubtype, see Dial.
const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

type jsonCodec struct{}

func (jsonCodec) Name() string {
	return CodecJSON
}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBORCodec() cborCodec {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
	return cborCodec{enc: em, dec: dm}
}

func (cborCodec) Name() string {
	return CodecCBOR
}

func (T cborCodec) Marshal(v any) ([]byte, error) {
	return T.enc.Marshal(v)
}

func (T cborCodec) Unmarshal(data []byte, v any) error {
	return T.dec.Unmarshal(data, v)
}

var (
	_ encoding.Codec = jsonCodec{}
	_ encoding.Codec = cborCodec{}
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
	encoding.RegisterCodec(newCBORCodec())
}
