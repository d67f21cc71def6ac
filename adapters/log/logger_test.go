package log_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/blame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkReceivesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.log")
	logger, err := log.NewLogger(log.NewLoggerConfig(true, log.WithFile(path, 1, 1, 1), log.WithServiceName("relay-test")))
	require.NoError(t, err)

	logger.Info("reply delivered",
		log.String("request_id", "r1"),
		log.Blame(blame.PublishMessageError("q", "r1", errors.New("nack"))),
	)
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"request_id":"r1"`)
	assert.Contains(t, string(data), `"service":"relay-test"`)
	assert.Contains(t, string(data), "error-publish-message-failed")
}

func TestInvalidLevelIsRejected(t *testing.T) {
	_, err := log.NewLogger(log.NewLoggerConfig(false, log.WithLevel("loud")))
	assert.Error(t, err)
}

func TestOutputReceivesConsoleEntries(t *testing.T) {
	var buf bytes.Buffer
	logger, err := log.NewLogger(log.NewLoggerConfig(true, log.WithOutput(&buf), log.WithLevel("warn")))
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("wait timed out", log.String("request_id", "r2"))
	_ = logger.Sync()

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"request_id":"r2"`)
}
