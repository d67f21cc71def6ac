package message_test

import (
	"testing"

	"github.com/abhissng/relay/utils/codec"
	"github.com/abhissng/relay/utils/structures/message"
	"github.com/abhissng/relay/utils/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestCarriesBothKeys(t *testing.T) {
	req := message.NewRequest("r1", map[string]any{"prompt": "a cat"})
	body, err := req.Encode(codec.JSON)
	require.NoError(t, err)

	assert.Contains(t, string(body), `"request_id":"r1"`)
	assert.Contains(t, string(body), `"task_id":"r1"`)

	back, err := message.DecodeRequest(body, string(codec.ContentTypeJSON))
	require.NoError(t, err)
	assert.Equal(t, types.RequestID("r1"), back.ID)
	assert.Equal(t, "a cat", back.Payload["prompt"])
	assert.False(t, back.CreatedAt.IsZero())
}

func TestNewRequestCopiesPayload(t *testing.T) {
	payload := map[string]any{"k": "v"}
	req := message.NewRequest("r1", payload)
	payload["k"] = "changed"
	assert.Equal(t, "v", req.Payload["k"])
}

func TestDecodeReplyWithPayloadObject(t *testing.T) {
	reply, err := message.DecodeReply([]byte(`{"request_id":"r1","payload":{"image":"x.png"}}`), "application/json")
	require.NoError(t, err)
	assert.Equal(t, types.RequestID("r1"), reply.RequestID)
	assert.Equal(t, map[string]any{"image": "x.png"}, reply.Payload)
	assert.False(t, reply.ReceivedAt.IsZero())
}

func TestDecodeReplyLegacyFlatDocument(t *testing.T) {
	reply, err := message.DecodeReply([]byte(`{"task_id":"basic_1","status":"success","result_url":"u"}`), "")
	require.NoError(t, err)
	assert.Equal(t, types.RequestID("basic_1"), reply.RequestID)
	assert.Equal(t, map[string]any{"status": "success", "result_url": "u"}, reply.Payload)
}

func TestDecodeReplyMsgPack(t *testing.T) {
	body, err := message.NewReply("r2", map[string]any{"n": "1"}).Encode(codec.MessagePack)
	require.NoError(t, err)

	reply, err := message.DecodeReply(body, string(codec.ContentTypeMsgPack))
	require.NoError(t, err)
	assert.Equal(t, types.RequestID("r2"), reply.RequestID)
	assert.Equal(t, "1", reply.Payload["n"])
}

func TestDecodeReplyRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":    `{{{`,
		"array":       `[1,2]`,
		"null":        `null`,
		"missing key": `{"payload":{}}`,
		"empty key":   `{"request_id":""}`,
		"numeric key": `{"request_id":7}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := message.DecodeReply([]byte(body), "application/json")
			assert.Error(t, err)
		})
	}
}
