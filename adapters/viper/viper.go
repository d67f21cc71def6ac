package viper

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/abhissng/relay/utils/helpers"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Viper wraps a private viper instance so callers never touch the global one.
type Viper struct {
	v          *viper.Viper
	configName string
	configType string
	configPath string // folder only, the environment sub folder is appended
	configFile string
	envPrefix  string
	bindings   map[string][]string
	defaults   map[string]any
}

// Option configures a Viper.
type Option func(*Viper)

// WithConfigName sets the name (without extension) of the config file.
func WithConfigName(name string) Option {
	return func(v *Viper) {
		v.configName = name
	}
}

// WithConfigType sets the config file format (yaml, json, toml).
func WithConfigType(configType string) Option {
	return func(v *Viper) {
		v.configType = configType
	}
}

// WithConfigPath sets the folder holding one sub folder per environment.
func WithConfigPath(path string) Option {
	return func(v *Viper) {
		v.configPath = strings.TrimSuffix(path, "/")
	}
}

// WithConfigFile reads exactly this file; it must exist.
func WithConfigFile(file string) Option {
	return func(v *Viper) {
		v.configFile = file
	}
}

// WithEnvPrefix enables automatic env lookup, e.g. RELAY_BROKER_HOST for broker.host.
func WithEnvPrefix(prefix string) Option {
	return func(v *Viper) {
		v.envPrefix = prefix
	}
}

// WithEnvBinding binds a config key to one or more environment variables.
func WithEnvBinding(key string, envs ...string) Option {
	return func(v *Viper) {
		v.bindings[key] = append(v.bindings[key], envs...)
	}
}

// WithDefaults registers default values keyed by config path.
func WithDefaults(defaults map[string]any) Option {
	return func(v *Viper) {
		for key, value := range defaults {
			v.defaults[key] = value
		}
	}
}

// NewViper creates the viper configuration using the RunMode environment.
func NewViper(opts ...Option) *Viper {
	v := &Viper{
		v:          viper.New(),
		configType: "yaml",
		bindings:   map[string][]string{},
		defaults:   map[string]any{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// InitialiseViper applies defaults and env bindings and reads the config
// file. A missing file is only an error when it was named explicitly.
func (v *Viper) InitialiseViper() error {
	for key, value := range v.defaults {
		v.v.SetDefault(key, value)
	}

	if v.envPrefix != "" {
		v.v.SetEnvPrefix(v.envPrefix)
	}
	v.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.v.AutomaticEnv()

	for key, envs := range v.bindings {
		if err := v.v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("error binding env for %s: %w", key, err)
		}
	}

	switch {
	case v.configFile != "":
		v.v.SetConfigFile(v.configFile)
	case v.configName != "" && v.configPath != "":
		env := helpers.GetEnvironment()
		if helpers.IsEmpty(env) {
			env = "dev"
		}
		v.v.SetConfigName(v.configName)
		v.v.SetConfigType(v.configType)
		v.v.AddConfigPath(v.configPath + "/" + env + "/")
		v.v.AddConfigPath(v.configPath)
	default:
		return nil
	}

	if err := v.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if v.configFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading configuration file: %w", err)
	}
	return nil
}

// ConfigFileUsed returns the file that was read, if any.
func (v *Viper) ConfigFileUsed() string {
	return v.v.ConfigFileUsed()
}

// Set overrides a key, taking precedence over file and env values.
func (v *Viper) Set(key string, value any) {
	v.v.Set(key, value)
}

// AllSettings returns the merged settings map.
func (v *Viper) AllSettings() map[string]any {
	return v.v.AllSettings()
}

// UnmarshalConfig unmarshals the whole configuration into target. Durations
// accept strings like "120s" or bare numbers of seconds, and comma separated
// strings become slices.
func UnmarshalConfig[T any](v *Viper, target *T) error {
	if target == nil {
		return fmt.Errorf("target struct cannot be nil")
	}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		SecondsToDurationHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	))
	if err := v.v.Unmarshal(target, hook); err != nil {
		return fmt.Errorf("failed to unmarshal viper config: %w", err)
	}

	return nil
}

// SecondsToDurationHookFunc decodes a bare number, such as "120" or 1.5, into
// a duration of that many seconds. Other values pass through untouched.
func SecondsToDurationHookFunc() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType || from == durationType {
			return data, nil
		}
		var seconds float64
		switch from.Kind() {
		case reflect.String:
			n, err := strconv.ParseFloat(strings.TrimSpace(reflect.ValueOf(data).String()), 64)
			if err != nil {
				return data, nil
			}
			seconds = n
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			seconds = float64(reflect.ValueOf(data).Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			seconds = float64(reflect.ValueOf(data).Uint())
		case reflect.Float32, reflect.Float64:
			seconds = reflect.ValueOf(data).Float()
		default:
			return data, nil
		}
		return time.Duration(seconds * float64(time.Second)), nil
	}
}
