package server

import (
	"net/http"
	"time"

	"github.com/abhissng/relay/adapters/log"
	"github.com/gin-gonic/gin"
)

// ServerOption defines a functional option for configuring the server
type ServerOption func(*ServerOptions)

// WithAddress sets the listen address, host:port
func WithAddress(address string) ServerOption {
	return func(o *ServerOptions) {
		o.address = address
	}
}

// WithBaseURL sets the base URL for the server
func WithBaseURL(baseURL string) ServerOption {
	return func(o *ServerOptions) {
		o.baseURL = baseURL
	}
}

// WithReleaseMode switches gin to release mode
func WithReleaseMode(release bool) ServerOption {
	return func(o *ServerOptions) {
		o.releaseMode = release
	}
}

// WithGlobalMiddleware adds global middleware
func WithGlobalMiddleware(middleware ...gin.HandlerFunc) ServerOption {
	return func(o *ServerOptions) {
		o.GlobalMiddlewares = append(o.GlobalMiddlewares, middleware...)
	}
}

// WithRouteGroup adds a route group
func WithRouteGroup(group RouteGroupConfig) ServerOption {
	return func(o *ServerOptions) {
		o.RouteGroups = append(o.RouteGroups, group)
	}
}

// WithRoutes adds routes directly under the base URL
func WithRoutes(routes []RouteConfig) ServerOption {
	return func(o *ServerOptions) {
		o.RouteGroups = append(o.RouteGroups, RouteGroupConfig{
			Prefix: "",
			Routes: routes,
		})
	}
}

// WithGracefulTimeOut bounds how long Shutdown waits for in-flight requests
func WithGracefulTimeOut(timeOut time.Duration) ServerOption {
	return func(o *ServerOptions) {
		o.gracefulTimeOut = timeOut
	}
}

// WithRoutingConfigurator allows you to supply a custom routing function.
// It runs after the route groups are registered.
func WithRoutingConfigurator(fn func(*gin.Engine)) ServerOption {
	return func(o *ServerOptions) {
		o.RoutingConfigurator = fn
	}
}

// WithLogger sets the logger for the server
func WithLogger(log *log.Log) ServerOption {
	return func(o *ServerOptions) {
		o.log = log
	}
}

// applyGlobalMiddlewares applies global middlewares to the router
func applyGlobalMiddlewares(router *gin.Engine, middlewares []gin.HandlerFunc) {
	for _, mw := range middlewares {
		router.Use(mw)
	}
}

// configureRouteGroups configures route groups and their routes
func configureRouteGroups(baseGroup *gin.RouterGroup, routeGroups []RouteGroupConfig, logger *log.Log) {
	for _, groupConfig := range routeGroups {
		group := baseGroup.Group(groupConfig.Prefix)
		for _, mw := range groupConfig.Middlewares {
			group.Use(mw)
		}

		for _, route := range groupConfig.Routes {
			switch route.Method {
			case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
				group.Handle(route.Method, route.Path, route.Handler)
			default:
				logger.Warn("unsupported route method", log.String("method", route.Method), log.String("path", route.Path))
			}
		}
	}
}
