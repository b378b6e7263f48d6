// Package serialization encodes run snapshots and event payloads for
// recorders and other side-channel consumers.
package serialization

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes and decodes payload values.
type Codec interface {
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte, v interface{}) error
	Name() string
}

// JSONCodec encodes payloads as JSON. Human-readable, interoperable with the
// recorders' SQL tooling.
type JSONCodec struct{}

func (JSONCodec) Encode(v interface{}) ([]byte, error)    { return json.Marshal(v) }
func (JSONCodec) Decode(data []byte, v interface{}) error { return json.Unmarshal(data, v) }
func (JSONCodec) Name() string                            { return "json" }

// MsgpackCodec encodes payloads as MessagePack. Compact, preferred for large
// snapshots.
type MsgpackCodec struct{}

func (MsgpackCodec) Encode(v interface{}) ([]byte, error)    { return msgpack.Marshal(v) }
func (MsgpackCodec) Decode(data []byte, v interface{}) error { return msgpack.Unmarshal(data, v) }
func (MsgpackCodec) Name() string                            { return "msgpack" }
