package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abhissng/relay/adapters/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(c *gin.Context) {
	c.String(http.StatusOK, c.FullPath())
}

func TestNewServerRegistersGroups(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer(
		WithLogger(log.NewNopLogger()),
		WithRoutes([]RouteConfig{NewRouteConfig(http.MethodGet, "/health", ok)}),
		WithRouteGroup(NewRouteGroupConfig("/api", nil, []RouteConfig{
			NewRouteConfig(http.MethodPost, "/:service/compose", ok),
			NewRouteConfig("UPDATE", "/ignored", ok),
		})),
	)

	for _, tc := range []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodPost, "/api/basic/compose", http.StatusOK},
		{"UPDATE", "/api/ignored", http.StatusNotFound},
	} {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.status, w.Code, tc.path)
	}
}

func TestGroupMiddlewareAppliesOnlyToGroup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tag := func(c *gin.Context) {
		c.Header("X-Group", "api")
		c.Next()
	}
	s := NewServer(
		WithLogger(log.NewNopLogger()),
		WithRoutes([]RouteConfig{NewRouteConfig(http.MethodGet, "/health", ok)}),
		WithRouteGroup(NewRouteGroupConfig("/api", []gin.HandlerFunc{tag}, []RouteConfig{
			NewRouteConfig(http.MethodGet, "/services", ok),
		})),
	)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/services", nil))
	assert.Equal(t, "api", w.Header().Get("X-Group"))

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, w.Header().Get("X-Group"))
}

func TestServeAndShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer(
		WithLogger(log.NewNopLogger()),
		WithGracefulTimeOut(time.Second),
		WithRoutes([]RouteConfig{NewRouteConfig(http.MethodGet, "/health", ok)}),
	)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	res, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	_ = res.Body.Close()
	assert.Equal(t, "/health", string(body))

	require.NoError(t, s.Shutdown(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestStartFailsOnBusyAddress(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := NewServer(WithLogger(log.NewNopLogger()), WithAddress(ln.Addr().String()))
	assert.Error(t, s.Start())
}
