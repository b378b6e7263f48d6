package serialization

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePayload = map[string]interface{}{
	"run_id": "run-1",
	"count":  int64(3),
	"keys":   []interface{}{"a", "b"},
}

func roundTrip(t *testing.T, s *Serializer) map[string]interface{} {
	t.Helper()
	data, err := s.Serialize(samplePayload)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	var out map[string]interface{}
	require.NoError(t, s.Deserialize(data, &out))
	return out
}

func TestSerializerDefaultsToMsgpack(t *testing.T) {
	s := NewSerializer(Config{})
	out := roundTrip(t, s)
	assert.Equal(t, "run-1", out["run_id"])
}

func TestSerializerJSONWithGzip(t *testing.T) {
	s := NewSerializer(Config{Codec: JSONCodec{}, Compression: CompressionGzip})
	out := roundTrip(t, s)
	assert.Equal(t, "run-1", out["run_id"])
	assert.Equal(t, float64(3), out["count"])
}

func TestSerializerZstdShrinksRepetitiveData(t *testing.T) {
	s := NewSerializer(Config{Codec: JSONCodec{}, Compression: CompressionZstd})
	payload := map[string]interface{}{"blob": string(bytes.Repeat([]byte("stategraph "), 500))}

	compressed, err := s.Serialize(payload)
	require.NoError(t, err)

	plain, err := NewSerializer(Config{Codec: JSONCodec{}}).Serialize(payload)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(plain))

	var out map[string]interface{}
	require.NoError(t, s.Deserialize(compressed, &out))
	assert.Equal(t, payload["blob"], out["blob"])
}

func TestSerializerEncryption(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	s := NewSerializer(Config{Codec: JSONCodec{}, Key: key})

	data, err := s.Serialize(samplePayload)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "run-1")

	var out map[string]interface{}
	require.NoError(t, s.Deserialize(data, &out))
	assert.Equal(t, "run-1", out["run_id"])

	t.Run("WrongKey", func(t *testing.T) {
		other := NewSerializer(Config{Codec: JSONCodec{}, Key: bytes.Repeat([]byte{0x24}, 32)})
		var out map[string]interface{}
		assert.Error(t, other.Deserialize(data, &out))
	})

	t.Run("ShortCiphertext", func(t *testing.T) {
		var out map[string]interface{}
		err := s.Deserialize([]byte{0x01}, &out)
		assert.ErrorIs(t, err, ErrShortCiphertext)
	})

	t.Run("BadKeyLength", func(t *testing.T) {
		bad := NewSerializer(Config{Codec: JSONCodec{}, Key: []byte("short")})
		_, err := bad.Serialize(samplePayload)
		assert.Error(t, err)
	})
}

func TestSerializerFullPipeline(t *testing.T) {
	key := bytes.Repeat([]byte{0x07}, 32)
	s := NewSerializer(Config{Codec: MsgpackCodec{}, Compression: CompressionZstd, Key: key})
	out := roundTrip(t, s)
	assert.Equal(t, "run-1", out["run_id"])
}
