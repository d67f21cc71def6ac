// Package config builds the typed runtime configuration once, from defaults,
// an optional file and the environment. The resulting value is passed to
// constructors explicitly.
package config

import (
	"time"

	"github.com/abhissng/relay/adapters/validator"
	"github.com/abhissng/relay/adapters/viper"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/codec"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/helpers"
	"github.com/abhissng/relay/utils/structures/service"
	"github.com/abhissng/relay/utils/types"
	govalidator "github.com/go-playground/validator/v10"
)

// Config is the complete relay configuration.
type Config struct {
	Service     string         `mapstructure:"service" yaml:"service"`
	Environment string         `mapstructure:"environment" yaml:"environment"`
	Timeout     time.Duration  `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
	Broker      BrokerConfig   `mapstructure:"broker" yaml:"broker"`
	Services    ServicesConfig `mapstructure:"services" yaml:"services"`
	Breaker     BreakerConfig  `mapstructure:"breaker" yaml:"breaker"`
	HTTP        HTTPConfig     `mapstructure:"http" yaml:"http"`
	Log         LogConfig      `mapstructure:"log" yaml:"log"`
}

// BrokerConfig describes how to reach the broker.
type BrokerConfig struct {
	Backend        string        `mapstructure:"backend" yaml:"backend" validate:"oneof=amqp nats memory"`
	Host           string        `mapstructure:"host" yaml:"host" validate:"required"`
	Port           int           `mapstructure:"port" yaml:"port" validate:"gt=0,lte=65535"`
	VHost          string        `mapstructure:"vhost" yaml:"vhost"`
	User           string        `mapstructure:"user" yaml:"user"`
	Password       string        `mapstructure:"password" yaml:"-"`
	Heartbeat      time.Duration `mapstructure:"heartbeat" yaml:"heartbeat" validate:"gt=0"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout" validate:"gt=0"`
	CloseTimeout   time.Duration `mapstructure:"close_timeout" yaml:"close_timeout" validate:"gt=0"`
	Codec          string        `mapstructure:"codec" yaml:"codec" validate:"oneof=json yaml msgpack"`
	NATSURL        string        `mapstructure:"nats_url" yaml:"nats_url"`
}

// Address is host:port.
func (b BrokerConfig) Address() string {
	return helpers.JoinHostPort(b.Host, b.Port)
}

// QueueConfig is the task/result queue pair of one service.
type QueueConfig struct {
	Queue       string `mapstructure:"queue" yaml:"queue" validate:"required"`
	ResultQueue string `mapstructure:"result_queue" yaml:"result_queue" validate:"required,nefield=Queue"`
}

// ServicesConfig holds the binding of every service kind.
type ServicesConfig struct {
	Basic    QueueConfig `mapstructure:"basic" yaml:"basic"`
	Advanced QueueConfig `mapstructure:"advanced" yaml:"advanced"`
}

// BreakerConfig tunes the circuit breaker in front of the broker dialer.
type BreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled" yaml:"enabled"`
	MaxRequests      uint32        `mapstructure:"max_requests" yaml:"max_requests"`
	Interval         time.Duration `mapstructure:"interval" yaml:"interval"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold" yaml:"failure_threshold" validate:"gte=1"`
}

// HTTPConfig configures the gateway server.
type HTTPConfig struct {
	Host                 string `mapstructure:"host" yaml:"host"`
	Port                 int    `mapstructure:"port" yaml:"port" validate:"gt=0,lte=65535"`
	MaxRequestsPerMinute int    `mapstructure:"max_requests_per_minute" yaml:"max_requests_per_minute" validate:"gte=0"`
	MetricsEnabled       bool   `mapstructure:"metrics_enabled" yaml:"metrics_enabled"`
	ShutdownGraceSeconds int    `mapstructure:"shutdown_grace_seconds" yaml:"shutdown_grace_seconds" validate:"gte=0"`
}

// Address is host:port of the gateway listener.
func (h HTTPConfig) Address() string {
	return helpers.JoinHostPort(h.Host, h.Port)
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// Defaults mirrors the values the compose client ran with.
func Defaults() map[string]any {
	return map[string]any{
		"service":                        constant.DefaultServiceName,
		"environment":                    "dev",
		"timeout":                        constant.DefaultTaskTimeout,
		"broker.backend":                 string(constant.BrokerAMQP),
		"broker.host":                    "localhost",
		"broker.port":                    5672,
		"broker.vhost":                   "/",
		"broker.user":                    "guest",
		"broker.password":                "guest",
		"broker.heartbeat":               constant.DefaultHeartbeat,
		"broker.connect_timeout":         constant.DefaultConnectTimeout,
		"broker.close_timeout":           constant.DefaultCloseTimeout,
		"broker.codec":                   "json",
		"broker.nats_url":                "",
		"services.basic.queue":           "compose.service.basic",
		"services.basic.result_queue":    "compose.service.basic.result",
		"services.advanced.queue":        "compose.service.advanced",
		"services.advanced.result_queue": "compose.service.advanced.result",
		"breaker.enabled":                true,
		"breaker.max_requests":           1,
		"breaker.interval":               time.Minute,
		"breaker.timeout":                30 * time.Second,
		"breaker.failure_threshold":      5,
		"http.host":                      "0.0.0.0",
		"http.port":                      8005,
		"http.max_requests_per_minute":   60,
		"http.metrics_enabled":           true,
		"http.shutdown_grace_seconds":    10,
		"log.level":                      "",
		"log.file":                       "",
		"log.max_size_mb":                50,
		"log.max_backups":                5,
		"log.max_age_days":               30,
	}
}

// envBindings keeps the variable names the compose deployment already uses.
var envBindings = map[string][]string{
	"broker.host":                    {"RABBITMQ_HOST"},
	"broker.port":                    {"RABBITMQ_PORT"},
	"broker.user":                    {"RABBITMQ_USER"},
	"broker.password":                {"RABBITMQ_PASSWORD"},
	"broker.vhost":                   {"RABBITMQ_VHOST"},
	"broker.nats_url":                {"NATS_URL"},
	"services.basic.queue":           {"COMPOSE_SERVICE_1_QUEUE"},
	"services.basic.result_queue":    {"COMPOSE_SERVICE_1_RESULT_QUEUE"},
	"services.advanced.queue":        {"COMPOSE_SERVICE_2_QUEUE"},
	"services.advanced.result_queue": {"COMPOSE_SERVICE_2_RESULT_QUEUE"},
	"http.host":                      {"APP_HOST"},
	"http.port":                      {"APP_PORT"},
	"timeout":                        {"TASK_TIMEOUT"},
	"environment":                    {"Environment", "RunMode"},
}

// EnvPrefix prefixes the automatic variables, e.g. RELAY_BROKER_CODEC.
const EnvPrefix = "RELAY"

// LoadOption adjusts loading.
type LoadOption func(*loadOptions)

type loadOptions struct {
	file      string
	dir       string
	overrides map[string]any
}

// WithFile reads the given config file, which must exist.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.file = path
	}
}

// WithDir looks for relay.yaml under dir/<environment>/ and dir/.
func WithDir(dir string) LoadOption {
	return func(o *loadOptions) {
		o.dir = dir
	}
}

// WithOverride sets a key with the highest precedence, used for CLI flags.
func WithOverride(key string, value any) LoadOption {
	return func(o *loadOptions) {
		o.overrides[key] = value
	}
}

// Load builds and validates a Config.
func Load(opts ...LoadOption) (*Config, blame.Blame) {
	o := &loadOptions{overrides: map[string]any{}}
	for _, opt := range opts {
		opt(o)
	}

	vopts := []viper.Option{
		viper.WithDefaults(Defaults()),
		viper.WithEnvPrefix(EnvPrefix),
	}
	for key, envs := range envBindings {
		vopts = append(vopts, viper.WithEnvBinding(key, envs...))
	}
	switch {
	case o.file != "":
		vopts = append(vopts, viper.WithConfigFile(o.file))
	case o.dir != "":
		vopts = append(vopts, viper.WithConfigPath(o.dir), viper.WithConfigName("relay"))
	}

	v := viper.NewViper(vopts...)
	if err := v.InitialiseViper(); err != nil {
		return nil, blame.ConfigLoadFailure(err)
	}
	for key, value := range o.overrides {
		v.Set(key, value)
	}

	cfg := &Config{}
	if err := viper.UnmarshalConfig(v, cfg); err != nil {
		return nil, blame.ConfigLoadFailure(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, blame.ConfigLoadFailure(err)
	}
	return cfg, nil
}

// Validate checks field constraints and that the broker heartbeat outlives
// the longest wait, so an idle connection is never dropped mid-wait.
func (c *Config) Validate() error {
	val := validator.NewValidator()
	val.RegisterStructValidation(func(sl govalidator.StructLevel) {
		cfg := sl.Current().Interface().(Config)
		if cfg.Broker.Heartbeat <= cfg.Timeout {
			sl.ReportError(cfg.Broker.Heartbeat, "Broker.Heartbeat", "Heartbeat", "heartbeat", "")
		}
	}, Config{})
	return val.Validate(c)
}

// IsProd reports whether the configured environment is production.
func (c *Config) IsProd() bool {
	switch c.Environment {
	case "prod", "production":
		return true
	}
	return helpers.IsProdEnvironment()
}

// Registry builds the service registry from the configured queue pairs.
func (c *Config) Registry() *service.Registry {
	return service.NewRegistry(map[service.Kind]service.Binding{
		service.KindBasic:    c.Services.Basic.Binding(),
		service.KindAdvanced: c.Services.Advanced.Binding(),
	})
}

// Binding converts the queue pair to a service binding.
func (q QueueConfig) Binding() service.Binding {
	return service.Binding{TaskQueue: q.Queue, ResultQueue: q.ResultQueue}
}

// CodecType is the envelope codec for requests.
func (b BrokerConfig) CodecType() types.CodecType {
	codecType, err := codec.Parse(b.Codec)
	if err != nil {
		return codec.JSON
	}
	return codecType
}
