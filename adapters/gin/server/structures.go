package server

import (
	"time"

	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/utils/constant"
	"github.com/gin-gonic/gin"
)

// ServerOptions encapsulates the configuration for the Gin server
type ServerOptions struct {
	address           string
	baseURL           string
	gracefulTimeOut   time.Duration
	readHeaderTimeout time.Duration
	releaseMode       bool
	GlobalMiddlewares []gin.HandlerFunc
	RouteGroups       []RouteGroupConfig
	// A custom routing configurator allows complete control over route registration.
	RoutingConfigurator func(*gin.Engine)
	log                 *log.Log
}

// DefaultServerOptions returns the default server options
func DefaultServerOptions() *ServerOptions {
	return &ServerOptions{
		address:           ":8005",
		baseURL:           "/",
		gracefulTimeOut:   constant.ServerDefaultGracefulTime,
		readHeaderTimeout: 10 * time.Second,
		GlobalMiddlewares: []gin.HandlerFunc{},
		RouteGroups:       []RouteGroupConfig{},
	}
}

// RouteGroupConfig defines configuration for a specific route group
type RouteGroupConfig struct {
	Prefix      string
	Middlewares []gin.HandlerFunc
	Routes      []RouteConfig
}

// NewRouteGroupConfig creates a new RouteGroupConfig instance
func NewRouteGroupConfig(
	prefix string,
	middlewares []gin.HandlerFunc,
	routes []RouteConfig) RouteGroupConfig {
	return RouteGroupConfig{
		Prefix:      prefix,
		Middlewares: middlewares,
		Routes:      routes,
	}
}

// RouteConfig defines an individual route
type RouteConfig struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

// NewRouteConfig creates a new RouteConfig instance
func NewRouteConfig(method, path string, handler gin.HandlerFunc) RouteConfig {
	return RouteConfig{
		Method:  method,
		Path:    path,
		Handler: handler,
	}
}
