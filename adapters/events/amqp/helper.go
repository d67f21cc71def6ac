package amqp

import (
	"errors"
	"net/url"
	"strings"

	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/helpers"
	"github.com/abhissng/relay/utils/types"
	amqp091 "github.com/rabbitmq/amqp091-go"
)

// BuildURL returns the amqp:// URI for the given parameters.
func BuildURL(host string, port int, user, password, vhost string) string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(user, password),
		Host:   helpers.JoinHostPort(host, port),
		Path:   "/" + vhostPath(vhost),
	}
	if vhost != "" && vhost != DefaultVHost {
		u.RawPath = "/" + url.PathEscape(strings.TrimPrefix(vhost, "/"))
	}
	return u.String()
}

// RedactedURL is BuildURL without credentials, for logs and errors.
func RedactedURL(host string, port int, vhost string) string {
	u := url.URL{Scheme: "amqp", Host: helpers.JoinHostPort(host, port), Path: "/" + vhostPath(vhost)}
	return u.String()
}

func vhostPath(vhost string) string {
	if vhost == "" || vhost == DefaultVHost {
		return ""
	}
	return strings.TrimPrefix(vhost, "/")
}

// IsPreconditionFailed reports whether the broker refused a declaration
// because the queue exists with different properties.
func IsPreconditionFailed(err error) bool {
	return hasCode(err, amqp091.PreconditionFailed)
}

// IsAccessRefused reports whether the broker refused the credentials or vhost.
func IsAccessRefused(err error) bool {
	return hasCode(err, amqp091.AccessRefused) || hasCode(err, amqp091.NotAllowed)
}

func hasCode(err error, code int) bool {
	var amqpErr *amqp091.Error
	if errors.As(err, &amqpErr) {
		return amqpErr.Code == code
	}
	return false
}

func hint(err error) string {
	switch {
	case IsPreconditionFailed(err):
		return "queue exists with different properties"
	case IsAccessRefused(err):
		return "check credentials and vhost permissions"
	case errors.Is(err, amqp091.ErrSASL), errors.Is(err, amqp091.ErrCredentials):
		return "authentication failed"
	case errors.Is(err, amqp091.ErrClosed):
		return "connection or channel closed"
	}
	return ""
}

// Slog returns the log fields describing a publishing.
func Slog(queue string, pub *amqp091.Publishing, withFields ...types.Field) []types.Field {
	fields := make([]types.Field, 0, 4+len(withFields))
	fields = append(fields,
		log.String("queue", queue),
		log.String(constant.MessageIdHeader, pub.MessageId),
		log.String(constant.CorrelationIDHeader, pub.CorrelationId),
		log.String(constant.ContentTypeHeader, pub.ContentType),
	)
	return append(fields, withFields...)
}
