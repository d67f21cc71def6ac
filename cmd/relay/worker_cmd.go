package main

import (
	"time"

	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/engine"
	"github.com/abhissng/relay/utils/structures/service"
	"github.com/spf13/cobra"
)

func newWorkerCommand(baseLogger *log.Log, flags *rootFlags) *cobra.Command {
	var delay time.Duration
	cmd := &cobra.Command{
		Use:   "worker <service>",
		Short: "Run an echo worker for a service",
		Long:  "Worker consumes the service's task queue and answers every request with its own payload, for trying out a deployment end to end.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			kind, b := service.ParseKind(args[0])
			if b != nil {
				return b
			}
			rt, err := newRuntime(baseLogger, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			binding, b := rt.cfg.Registry().Lookup(kind)
			if b != nil {
				return b
			}
			dialer, err := rt.dialer()
			if err != nil {
				return err
			}
			w := engine.NewWorker(binding, dialer, engine.EchoTask(delay),
				engine.WithLogger(rt.logger),
				engine.WithCodec(rt.cfg.Broker.CodecType()),
				engine.WithServiceName(kind.String()),
			)
			if b := w.Run(cmd.Context()); b != nil {
				return b
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", 0, "wait before replying")
	return cmd
}
