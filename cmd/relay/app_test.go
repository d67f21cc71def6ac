package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/abhissng/relay/adapters/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeRootCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("RELAY_CONFIG", "")
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cmd := newRootCommand(log.NewNopLogger())
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), err
}

func TestConfigCommandPrintsOverrides(t *testing.T) {
	out, err := executeRootCommand(t, "--backend", "memory", "--timeout", "3s", "config")

	require.NoError(t, err)
	assert.Contains(t, out, "backend: memory")
	assert.Contains(t, out, "timeout: 3s")
	assert.Contains(t, out, "queue: compose.service.basic")
	assert.NotContains(t, out, "password")
}

func TestConfigCommandRejectsUnknownBackend(t *testing.T) {
	_, err := executeRootCommand(t, "--backend", "kafka", "config")

	assert.Error(t, err)
}

func TestSendCommandDeliversOverMemoryBackend(t *testing.T) {
	out, err := executeRootCommand(t, "--backend", "memory", "send", "basic", "--payload", `{"prompt":"linen"}`)

	require.NoError(t, err)
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	assert.Equal(t, "completed", res["status"])
	assert.Equal(t, "basic", res["service"])
	assert.Equal(t, map[string]any{"echo": map[string]any{"prompt": "linen"}}, res["data"])
}

func TestSendCommandFailsOnTimeout(t *testing.T) {
	start := time.Now()
	out, err := executeRootCommand(t, "--backend", "memory", "--timeout", "100ms",
		"send", "advanced", "--worker-delay", "2s")

	require.ErrorIs(t, err, ErrNoReply)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Contains(t, out, `"status": "timeout"`)
}

func TestSendCommandValidatesArguments(t *testing.T) {
	_, err := executeRootCommand(t, "--backend", "memory", "send", "premium")
	assert.Error(t, err)

	_, err = executeRootCommand(t, "--backend", "memory", "send", "basic", "--payload", "[1,2]")
	assert.ErrorContains(t, err, "--payload must be a JSON object")

	_, err = executeRootCommand(t, "send")
	assert.Error(t, err)
}

func TestSubmitCommandReturnsRequestID(t *testing.T) {
	out, err := executeRootCommand(t, "--backend", "memory", "submit", "basic", "-p", `{"n":1}`)

	require.NoError(t, err)
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	assert.Equal(t, "accepted", res["status"])
	assert.NotEmpty(t, res["request_id"])
}

func TestServeAnswersUntilCanceled(t *testing.T) {
	rt, err := newRuntime(log.NewNopLogger(), &rootFlags{backend: "memory", logLevel: "error"}, io.Discard)
	require.NoError(t, err)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, rt, ln, false, 0) }()
	base := "http://" + ln.Addr().String()

	require.Eventually(t, func() bool {
		res, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		_ = res.Body.Close()
		return res.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	res, err := http.Post(base+"/api/basic/compose", "application/json", strings.NewReader(`{"payload":{"prompt":"silk"}}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode, string(body))
	assert.Contains(t, string(body), `"echo":{"prompt":"silk"}`)

	res, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(res.Body)
	_ = res.Body.Close()
	assert.Contains(t, string(body), "_sends_total")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return")
	}
}
