package engine

import (
	"time"

	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/utils/codec"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/helpers"
	"github.com/abhissng/relay/utils/random"
	"github.com/abhissng/relay/utils/types"
)

// IDGenerator returns a fresh request id per call.
type IDGenerator func() types.RequestID

type options struct {
	timeout     time.Duration
	logger      *log.Log
	codecType   types.CodecType
	metrics     Metrics
	idGenerator IDGenerator
	serviceName string
}

func defaultOptions() options {
	return options{
		timeout:   constant.DefaultTaskTimeout,
		codecType: codec.JSON,
		metrics:   nopMetrics{},
		idGenerator: func() types.RequestID {
			return types.RequestID(random.GenerateUUIDString())
		},
	}
}

// Option configures a Coordinator or a Gateway.
type Option func(*options)

// WithTimeout sets the default wait for a reply.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Log) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCodec sets the codec requests are encoded with.
func WithCodec(codecType types.CodecType) Option {
	return func(o *options) {
		if codecType != "" {
			o.codecType = codecType
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(metrics Metrics) Option {
	return func(o *options) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

// WithIDGenerator replaces the UUID request id generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *options) {
		if gen != nil {
			o.idGenerator = gen
		}
	}
}

// WithServiceName labels logs and metrics. The Gateway sets it from the
// service kind.
func WithServiceName(name string) Option {
	return func(o *options) {
		o.serviceName = name
	}
}

func (o *options) finalize() {
	if o.logger == nil {
		o.logger = log.NewBasicLogger(helpers.IsProdEnvironment())
	}
}

type sendConfig struct {
	timeout time.Duration
}

// SendOption overrides settings for a single Send.
type SendOption func(*sendConfig)

// WithSendTimeout overrides the coordinator timeout for one call.
func WithSendTimeout(timeout time.Duration) SendOption {
	return func(c *sendConfig) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}
