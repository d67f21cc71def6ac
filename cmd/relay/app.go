package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abhissng/relay/adapters/events"
	"github.com/abhissng/relay/adapters/events/broker"
	"github.com/abhissng/relay/adapters/events/memory"
	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/config"
	"github.com/abhissng/relay/engine"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/graceful"
	"github.com/abhissng/relay/utils/helpers"
	"github.com/abhissng/relay/utils/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func submain(ctx context.Context) int {
	baseLogger := log.NewBasicLogger(helpers.IsProdEnvironment())
	defer func() { _ = baseLogger.Sync() }()

	ctx, stop := graceful.SignalContext(ctx)
	defer stop()

	cmd := newRootCommand(baseLogger)
	if _, err := cmd.ExecuteContextC(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "%s\n", err)
		}
		return 1
	}
	return 0
}

// rootFlags are shared by every subcommand and override the loaded config.
type rootFlags struct {
	configFile string
	backend    string
	logLevel   string
	timeout    time.Duration
}

// runtime is what a subcommand needs once configuration is resolved.
type runtime struct {
	cfg    *config.Config
	logger *log.Log
	memory *memory.Broker
}

func newRootCommand(baseLogger *log.Log) *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "relay",
		Short:         "relay runs synchronous requests over a message broker",
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	registerRootFlags(cmd.PersistentFlags(), flags)

	cmd.AddCommand(
		newServeCommand(baseLogger, flags),
		newSendCommand(baseLogger, flags),
		newSubmitCommand(baseLogger, flags),
		newWorkerCommand(baseLogger, flags),
		newConfigCommand(flags),
	)
	return cmd
}

func registerRootFlags(fs *pflag.FlagSet, flags *rootFlags) {
	fs.StringVarP(&flags.configFile, "config", "c", os.Getenv("RELAY_CONFIG"), "path to a config file (env RELAY_CONFIG)")
	fs.StringVar(&flags.backend, "backend", "", "broker backend: amqp, nats or memory")
	fs.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.DurationVar(&flags.timeout, "timeout", 0, "default wait for a reply")
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	var opts []config.LoadOption
	if flags.configFile != "" {
		opts = append(opts, config.WithFile(flags.configFile))
	}
	if flags.backend != "" {
		opts = append(opts, config.WithOverride("broker.backend", flags.backend))
	}
	if flags.logLevel != "" {
		opts = append(opts, config.WithOverride("log.level", flags.logLevel))
	}
	if flags.timeout > 0 {
		opts = append(opts, config.WithOverride("timeout", flags.timeout))
	}
	cfg, b := config.Load(opts...)
	if b != nil {
		return nil, b
	}
	return cfg, nil
}

// newRuntime resolves configuration and builds the logger. Log entries go to
// logOut so command output on stdout stays parseable.
func newRuntime(baseLogger *log.Log, flags *rootFlags, logOut io.Writer) (*runtime, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	logger, err := log.NewLogger(log.NewLoggerConfig(cfg.IsProd(),
		log.WithServiceName(cfg.Service),
		log.WithEnvironment(cfg.Environment),
		log.WithLevel(cfg.Log.Level),
		log.WithFile(cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays),
		log.WithOutput(logOut),
	))
	if err != nil {
		baseLogger.Warn(constant.ServiceStartMessage, log.String("stage", "logger"), log.Err(err))
		logger = baseLogger
	}
	rt := &runtime{cfg: cfg, logger: logger}
	if types.BrokerType(cfg.Broker.Backend) == constant.BrokerMemory {
		rt.memory = memory.New()
	}
	return rt, nil
}

func (rt *runtime) dialer() (events.Dialer, error) {
	var opts []broker.Option
	if rt.memory != nil {
		opts = append(opts, broker.WithMemoryBroker(rt.memory))
	}
	return broker.NewDialer(rt.cfg, rt.logger, opts...)
}

func (rt *runtime) gateway(dialer events.Dialer, opts ...engine.Option) *engine.Gateway {
	opts = append([]engine.Option{
		engine.WithLogger(rt.logger),
		engine.WithCodec(rt.cfg.Broker.CodecType()),
		engine.WithTimeout(rt.cfg.Timeout),
	}, opts...)
	return engine.NewGateway(rt.cfg.Registry(), dialer, opts...)
}

// startLocalWorkers answers every configured service in process and waits
// until each task queue has a consumer. It is only used with the memory
// backend, where no outside worker can connect.
func (rt *runtime) startLocalWorkers(ctx context.Context, dialer events.Dialer, delay time.Duration) error {
	if rt.memory == nil {
		return nil
	}
	bindings := rt.cfg.Registry().Bindings()
	for name, binding := range bindings {
		w := engine.NewWorker(binding, dialer, engine.EchoTask(delay),
			engine.WithLogger(rt.logger),
			engine.WithCodec(rt.cfg.Broker.CodecType()),
			engine.WithServiceName(name),
		)
		go func() {
			if b := w.Run(ctx); b != nil {
				rt.logger.Error(constant.WorkerMessage, log.String(constant.Service, name), log.Blame(b))
			}
		}()
	}

	deadline := time.Now().Add(localWorkerStartup)
	for name, binding := range bindings {
		for {
			if stats, ok := rt.memory.Stats(binding.TaskQueue); ok && stats.Consumers > 0 {
				break
			}
			if time.Now().After(deadline) {
				return fmt.Errorf("local worker for %s did not start", name)
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
	return nil
}

const localWorkerStartup = 2 * time.Second
