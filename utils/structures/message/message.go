// Package message defines the request and reply envelopes exchanged over the
// task and result queues.
package message

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/abhissng/relay/utils/codec"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/types"
)

var (
	// ErrMissingRequestID is returned when a reply carries no correlation key.
	ErrMissingRequestID = errors.New("reply has no request_id")
	// ErrNotAnObject is returned when a reply body is not a key/value document.
	ErrNotAnObject = errors.New("reply is not an object")
)

// Request is a unit of work sent to a task queue. It is immutable once sent.
type Request struct {
	ID        types.RequestID `json:"request_id"`
	Payload   map[string]any  `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewRequest creates a Request stamped with the current time.
func NewRequest(id types.RequestID, payload map[string]any) *Request {
	if payload == nil {
		payload = map[string]any{}
	}
	return &Request{
		ID:        id,
		Payload:   maps.Clone(payload),
		CreatedAt: time.Now().UTC(),
	}
}

// wireRequest mirrors the id under task_id for workers that read that key.
type wireRequest struct {
	ID        types.RequestID `json:"request_id"`
	TaskID    types.RequestID `json:"task_id"`
	Payload   map[string]any  `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Encode serializes the request with the given codec.
func (r *Request) Encode(codecType types.CodecType) ([]byte, error) {
	return codec.Encode(wireRequest{
		ID:        r.ID,
		TaskID:    r.ID,
		Payload:   r.Payload,
		CreatedAt: r.CreatedAt,
	}, codecType)
}

// DecodeRequest is the worker side of Encode.
func DecodeRequest(body []byte, contentType string) (*Request, error) {
	doc, err := decodeDocument(body, contentType)
	if err != nil {
		return nil, err
	}
	id, ok := correlationKey(doc)
	if !ok {
		return nil, ErrMissingRequestID
	}
	req := &Request{ID: id, Payload: payloadOf(doc)}
	if created, ok := doc["created_at"].(string); ok {
		req.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	}
	return req, nil
}

// Reply is a result message observed on a result queue.
type Reply struct {
	RequestID  types.RequestID `json:"request_id"`
	Payload    map[string]any  `json:"payload"`
	ReceivedAt time.Time       `json:"received_at"`
}

// NewReply builds the reply a worker sends for req.
func NewReply(id types.RequestID, payload map[string]any) *Reply {
	return &Reply{RequestID: id, Payload: payload, ReceivedAt: time.Now().UTC()}
}

// Encode serializes the reply with the given codec. ReceivedAt is local to
// the receiver and is not sent.
func (r *Reply) Encode(codecType types.CodecType) ([]byte, error) {
	return codec.Encode(map[string]any{
		constant.RequestID: r.RequestID.String(),
		"payload":          r.Payload,
	}, codecType)
}

// DecodeReply parses a result queue body. The correlation key may be
// request_id or task_id. When the document has no payload object, the rest
// of the document is the payload.
func DecodeReply(body []byte, contentType string) (*Reply, error) {
	doc, err := decodeDocument(body, contentType)
	if err != nil {
		return nil, err
	}
	id, ok := correlationKey(doc)
	if !ok {
		return nil, ErrMissingRequestID
	}
	return &Reply{
		RequestID:  id,
		Payload:    payloadOf(doc),
		ReceivedAt: time.Now().UTC(),
	}, nil
}

func decodeDocument(body []byte, contentType string) (map[string]any, error) {
	codecType := codec.CodecFor(contentType)
	doc, err := codec.Decode[map[string]any](body, codecType)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", codecType, err)
	}
	if doc == nil {
		return nil, ErrNotAnObject
	}
	return doc, nil
}

func correlationKey(doc map[string]any) (types.RequestID, bool) {
	for _, key := range []string{constant.RequestID, constant.TaskID} {
		if id, ok := doc[key].(string); ok && id != "" {
			return types.RequestID(id), true
		}
	}
	return "", false
}

func payloadOf(doc map[string]any) map[string]any {
	if payload, ok := doc["payload"].(map[string]any); ok {
		return payload
	}
	payload := maps.Clone(doc)
	delete(payload, constant.RequestID)
	delete(payload, constant.TaskID)
	return payload
}
