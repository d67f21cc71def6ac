package main

import (
	"context"
	"net"
	"time"

	"github.com/abhissng/relay/adapters/gin/handler"
	"github.com/abhissng/relay/adapters/gin/middleware"
	"github.com/abhissng/relay/adapters/gin/server"
	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/adapters/prometheus"
	"github.com/abhissng/relay/engine"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/graceful"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCommand(baseLogger *log.Log, flags *rootFlags) *cobra.Command {
	var (
		logBodies   bool
		workerDelay time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			rt, err := newRuntime(baseLogger, flags, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			ln, err := net.Listen(string(constant.TCP), rt.cfg.HTTP.Address())
			if err != nil {
				return err
			}
			return serve(cmd.Context(), rt, ln, logBodies, workerDelay)
		},
	}
	cmd.Flags().BoolVar(&logBodies, "log-bodies", false, "log request and response bodies")
	cmd.Flags().DurationVar(&workerDelay, "worker-delay", 0, "reply delay of the in-process workers (memory backend)")
	return cmd
}

// serve runs the gateway on ln until ctx is done.
func serve(ctx context.Context, rt *runtime, ln net.Listener, logBodies bool, workerDelay time.Duration) error {
	logger := rt.logger
	dialer, err := rt.dialer()
	if err != nil {
		return err
	}
	if err := rt.startLocalWorkers(ctx, dialer, workerDelay); err != nil {
		return err
	}

	collector := prometheus.NewMetricsCollector(prometheus.WithServiceName(rt.cfg.Service))
	gateway := rt.gateway(dialer, engine.WithMetrics(collector))
	ctl := handler.NewController(gateway, handler.WithControllerLogger(logger), handler.WithName(rt.cfg.Service))

	global := []gin.HandlerFunc{
		middleware.RequestIDMiddleware(),
		middleware.RecoveryMiddleware(logger),
		middleware.GinRequestLogger(logger, logBodies),
	}
	if rt.cfg.HTTP.MetricsEnabled {
		global = append(global, middleware.GinMiddleware(collector))
	}

	var apiMiddlewares []gin.HandlerFunc
	var limiter *middleware.IPRateLimiter
	if perMinute := rt.cfg.HTTP.MaxRequestsPerMinute; perMinute > 0 {
		limiter = middleware.NewPerMinuteLimiter(perMinute, middleware.DefaultLimiterTTL).WithLogger(logger)
		apiMiddlewares = append(apiMiddlewares, limiter.Middleware())
	}

	grace := time.Duration(rt.cfg.HTTP.ShutdownGraceSeconds) * time.Second
	if grace <= 0 {
		grace = constant.ServerDefaultGracefulTime
	}
	opts := []server.ServerOption{
		server.WithLogger(logger),
		server.WithAddress(ln.Addr().String()),
		server.WithReleaseMode(rt.cfg.IsProd()),
		server.WithGracefulTimeOut(grace),
		server.WithGlobalMiddleware(global...),
	}
	for _, group := range ctl.RouteGroups(apiMiddlewares...) {
		opts = append(opts, server.WithRouteGroup(group))
	}
	if rt.cfg.HTTP.MetricsEnabled {
		opts = append(opts, server.WithRoutingConfigurator(func(router *gin.Engine) {
			middleware.RegisterMetricsEndpoint(router, collector)
		}))
	}
	srv := server.NewServer(opts...)

	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()
	logger.Info(constant.ServiceStartMessage,
		log.String("address", ln.Addr().String()),
		log.String("broker", dialer.Address()),
		log.String("backend", rt.cfg.Broker.Backend),
	)

	select {
	case err := <-served:
		if limiter != nil {
			limiter.StopCleanup()
		}
		return err
	case <-ctx.Done():
	}

	services := []graceful.Shutdowner{srv}
	if limiter != nil {
		services = append(services, graceful.ShutdownFunc(func(context.Context) error {
			limiter.StopCleanup()
			return nil
		}))
	}
	if err := graceful.ShutdownAll(logger, grace, services...); err != nil {
		return err
	}
	return <-served
}
