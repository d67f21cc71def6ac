// Package server builds the gin engine and owns the HTTP listener.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/helpers"
	"github.com/gin-gonic/gin"
)

// Server is a gin engine behind an http.Server.
type Server struct {
	options *ServerOptions
	router  *gin.Engine
	http    *http.Server
	logger  *log.Log
}

// NewServer merges opts and registers every route.
func NewServer(opts ...ServerOption) *Server {
	options := DefaultServerOptions()
	for _, opt := range opts {
		opt(options)
	}
	logger := options.log
	if logger == nil {
		logger = log.NewBasicLogger(helpers.IsProdEnvironment())
	}

	if options.releaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	applyGlobalMiddlewares(router, options.GlobalMiddlewares)

	baseGroup := router.Group(options.baseURL)
	configureRouteGroups(baseGroup, options.RouteGroups, logger)
	if options.RoutingConfigurator != nil {
		options.RoutingConfigurator(router)
	}

	return &Server{
		options: options,
		router:  router,
		logger:  logger,
		http: &http.Server{
			Addr:              options.address,
			Handler:           router,
			ReadHeaderTimeout: options.readHeaderTimeout,
		},
	}
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Address is the configured listen address.
func (s *Server) Address() string {
	return s.options.address
}

// Start listens and serves until Shutdown. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen(string(constant.TCP), s.options.address)
	if err != nil {
		s.logger.Error(blame.ErrorServerStartFailed.String(), log.String("address", s.options.address), log.Err(err))
		return blame.ServerStartFailed(err)
	}
	return s.Serve(ln)
}

// Serve serves on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info(constant.ServerStarted, log.String("address", ln.Addr().String()))
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error(blame.ErrorServerStartFailed.String(), log.Err(err))
		return blame.ServerStartFailed(err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests,
// bounded by ctx and the graceful timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(constant.ServerStopping, log.Duration("grace", s.options.gracefulTimeOut))
	ctx, cancel := context.WithTimeout(ctx, s.options.gracefulTimeOut)
	defer cancel()
	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Warn(constant.ServerStopped, log.Err(err))
		return err
	}
	s.logger.Info(constant.ServerStopped)
	return nil
}
