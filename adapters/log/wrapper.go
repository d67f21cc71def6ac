package log

import (
	"fmt"
	"io"
	"time"

	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/helpers"
	"github.com/abhissng/relay/utils/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity level of a log message.
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
	FatalLevel LogLevel = "fatal"
)

// Helper functions to create fields without directly using zap

// String creates a single types.Field (string) for a given key-value pair.
func String(key string, value string) types.Field {
	return zap.String(key, value)
}

// Int creates a single types.Field (int) for a given key-value pair.
func Int(key string, value int) types.Field {
	return zap.Int(key, value)
}

// Int64 creates a single types.Field (int64) for a given key-value pair.
func Int64(key string, value int64) types.Field {
	return zap.Int64(key, value)
}

// Bool creates a single types.Field (bool) for a given key-value pair.
func Bool(key string, value bool) types.Field {
	return zap.Bool(key, value)
}

// Time creates a single types.Field (time.Time) for a given key-value pair.
func Time(key string, value time.Time) types.Field {
	return zap.Time(key, value)
}

// Duration creates a single types.Field (time.Duration) for a given key-value pair.
func Duration(key string, value time.Duration) types.Field {
	return zap.Duration(key, value)
}

// Any creates a single types.Field (any) for a given key-value pair.
func Any(key string, value any) types.Field {
	return zap.Any(key, value)
}

// Err creates a single types.Field (error).
func Err(err error) types.Field {
	return zap.Error(err)
}

type errorArray []error

func (a errorArray) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, e := range a {
		if e == nil {
			enc.AppendString("<nil>")
		} else {
			enc.AppendString(e.Error())
		}
	}
	return nil
}

// Blame logs the error code of b together with its causes.
func Blame(b blame.Blame) zap.Field {
	if b == nil {
		return zap.Skip()
	}
	return zap.Object("blame", blameObject{b})
}

type blameObject struct {
	b blame.Blame
}

func (o blameObject) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("code", o.b.FetchErrCode().String())
	enc.AddString("reason", o.b.FetchReasonCode())
	if causes := o.b.FetchCauses(); len(causes) > 0 {
		return enc.AddArray("causes", errorArray(causes))
	}
	return nil
}

// Stringer creates a single types.Field (fmt.Stringer) for a given key-value pair.
func Stringer(key string, value fmt.Stringer) types.Field {
	return zap.Stringer(key, value)
}

// GetLogLevelForEnvironment returns the appropriate log level based on environment
func GetLogLevelForEnvironment(isProd bool) LogLevel {
	if isProd {
		return InfoLevel
	}
	return DebugLevel
}

// getZapLevel converts our LogLevel to zap.Level
func getZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

type LoggerConfig struct {
	// IsProd enables production mode (JSON output, Info level)
	IsProd bool

	// Level overrides the environment derived level when set
	Level string

	ZapOptions []zap.Option

	ServiceName string

	Environment string

	EncoderTailLength int

	// Output receives console entries; os.Stdout when nil
	Output io.Writer

	// FilePath enables an additional rotating JSON file sink
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// LoggerOption defines a function that modifies LoggerConfig
type LoggerOption func(*LoggerConfig)

// NewLoggerConfig creates a new LoggerConfig with default values
func NewLoggerConfig(isProd bool, opts ...LoggerOption) *LoggerConfig {
	cfg := &LoggerConfig{
		ServiceName: helpers.GetServiceName(),
		Environment: helpers.GetEnvironment(),
		IsProd:      isProd,
		MaxSizeMB:   50,
		MaxBackups:  5,
		MaxAgeDays:  30,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// WithZapOptions adds zap logger options
func WithZapOptions(opts ...zap.Option) LoggerOption {
	return func(c *LoggerConfig) {
		c.ZapOptions = append(c.ZapOptions, opts...)
	}
}

// WithServiceName sets the service name
func WithServiceName(name string) LoggerOption {
	return func(c *LoggerConfig) {
		if name != "" {
			c.ServiceName = name
		}
	}
}

// WithEnvironment sets the environment
func WithEnvironment(env string) LoggerOption {
	return func(c *LoggerConfig) {
		if env != "" {
			c.Environment = env
		}
	}
}

// WithLevel sets an explicit level such as "debug" or "warn".
func WithLevel(level string) LoggerOption {
	return func(c *LoggerConfig) {
		c.Level = level
	}
}

// WithFile adds a rotating file sink.
func WithFile(path string, maxSizeMB, maxBackups, maxAgeDays int) LoggerOption {
	return func(c *LoggerConfig) {
		c.FilePath = path
		if maxSizeMB > 0 {
			c.MaxSizeMB = maxSizeMB
		}
		if maxBackups > 0 {
			c.MaxBackups = maxBackups
		}
		if maxAgeDays > 0 {
			c.MaxAgeDays = maxAgeDays
		}
	}
}

// WithOutput sends console entries to w instead of stdout.
func WithOutput(w io.Writer) LoggerOption {
	return func(c *LoggerConfig) {
		c.Output = w
	}
}

// WithEncoderTailLength sets the encoder tail length
func WithEncoderTailLength(length int) LoggerOption {
	return func(c *LoggerConfig) {
		if length > 0 {
			// Values <= 2 don't provide meaningful context beyond short encoder
			if length <= 2 {
				length = 0
			}
			if length > 7 {
				length = 7
			}
			c.EncoderTailLength = length
		}
	}
}
