package nats

import (
	"strings"
	"time"

	"github.com/abhissng/relay/adapters/events"
	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/types"
	"github.com/nats-io/nats.go"
)

// StreamName maps a queue name to a valid stream name.
func StreamName(queue string) string {
	return strings.ToUpper(sanitize(queue))
}

// DurableName maps a queue name to the durable consumer shared by its subscribers.
func DurableName(queue string) string {
	return sanitize(queue) + "_consumer"
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(nameReplacer, r) {
			return '_'
		}
		return r
	}, name)
}

// toMsg converts an envelope to a NATS message on subject.
func toMsg(subject string, m events.Message) *nats.Msg {
	msg := nats.NewMsg(subject)
	msg.Data = m.Body
	if m.MessageID != "" {
		msg.Header.Set(nats.MsgIdHdr, m.MessageID)
		msg.Header.Set(constant.MessageIdHeader, m.MessageID)
	}
	if m.CorrelationID != "" {
		msg.Header.Set(constant.CorrelationIDHeader, m.CorrelationID)
	}
	if m.ContentType != "" {
		msg.Header.Set(constant.ContentTypeHeader, m.ContentType)
	}
	if !m.Timestamp.IsZero() {
		msg.Header.Set(timestampHeader, m.Timestamp.UTC().Format(time.RFC3339Nano))
	}
	return msg
}

const timestampHeader = "X-Timestamp"

// fromMsg is the inverse of toMsg.
func fromMsg(msg *nats.Msg) events.Message {
	m := events.Message{Body: msg.Data}
	if msg.Header == nil {
		return m
	}
	m.MessageID = msg.Header.Get(constant.MessageIdHeader)
	if m.MessageID == "" {
		m.MessageID = msg.Header.Get(nats.MsgIdHdr)
	}
	m.CorrelationID = msg.Header.Get(constant.CorrelationIDHeader)
	m.ContentType = msg.Header.Get(constant.ContentTypeHeader)
	if ts := msg.Header.Get(timestampHeader); ts != "" {
		m.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
	}
	return m
}

// redelivered reports whether JetStream has delivered msg before.
func redelivered(msg *nats.Msg) bool {
	meta, err := msg.Metadata()
	if err != nil {
		return false
	}
	return meta.NumDelivered > 1
}

// Slog returns the log fields describing msg.
func Slog(msg *nats.Msg, withFields ...types.Field) []types.Field {
	fields := make([]types.Field, 0, 3+len(withFields))
	fields = append(fields, log.String("subject", msg.Subject))
	if msg.Header != nil {
		fields = append(fields,
			log.String(constant.MessageIdHeader, msg.Header.Get(constant.MessageIdHeader)),
			log.String(constant.CorrelationIDHeader, msg.Header.Get(constant.CorrelationIDHeader)),
		)
	}
	return append(fields, withFields...)
}
