package codec_test

import (
	"testing"

	"github.com/abhissng/relay/utils/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	RequestID string         `json:"request_id"`
	Payload   map[string]any `json:"payload"`
}

func TestMessagePackHonoursJSONTags(t *testing.T) {
	in := envelope{RequestID: "r1", Payload: map[string]any{"prompt": "hi"}}

	data, err := codec.Encode(in, codec.MessagePack)
	require.NoError(t, err)

	raw, err := codec.Decode[map[string]any](data, codec.MessagePack)
	require.NoError(t, err)
	assert.Equal(t, "r1", raw["request_id"])

	out, err := codec.Decode[envelope](data, codec.MessagePack)
	require.NoError(t, err)
	assert.Equal(t, "hi", out.Payload["prompt"])
}

func TestContentTypeMapping(t *testing.T) {
	assert.Equal(t, codec.MessagePack, codec.CodecFor("application/msgpack"))
	assert.Equal(t, codec.JSON, codec.CodecFor("application/json; charset=utf-8"))
	assert.Equal(t, codec.JSON, codec.CodecFor(""))
	assert.Equal(t, codec.ContentTypeYAML, codec.ContentTypeFor(codec.YAML))
}

func TestParse(t *testing.T) {
	c, err := codec.Parse("MSGPACK")
	require.NoError(t, err)
	assert.Equal(t, codec.MessagePack, c)

	c, err = codec.Parse("")
	require.NoError(t, err)
	assert.Equal(t, codec.JSON, c)

	_, err = codec.Parse("gob")
	assert.ErrorIs(t, err, codec.ErrUnsupportedCodec)
}
