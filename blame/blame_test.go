package blame_test

import (
	"errors"
	"testing"

	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/constant"
	"github.com/stretchr/testify/assert"
)

func TestDefinitionsAreLoaded(t *testing.T) {
	err := blame.QueueDeclareError("compose.service.basic.result", errors.New("PRECONDITION_FAILED"))

	assert.Equal(t, blame.ErrorQueueDeclareFailed, err.FetchErrCode())
	assert.Equal(t, constant.InternalServer, err.FetchResponseType())
	assert.Equal(t, "compose.service.basic.result", err.FetchFields()["queue"])
	assert.Contains(t, err.FetchReasonCode(), blame.ReasonCodeNameSpace)

	msg, _ := err.Translate()
	assert.Equal(t, "Failed to declare queue [compose.service.basic.result]", msg)
}

func TestFetchDoesNotShareState(t *testing.T) {
	first := blame.PublishMessageError("q1", "r1", errors.New("boom"))
	second := blame.PublishMessageError("q2", "r2", nil)

	assert.Len(t, first.FetchCauses(), 1)
	assert.Empty(t, second.FetchCauses())
	assert.Equal(t, "q1", first.FetchFields()["queue"])
	assert.Equal(t, "q2", second.FetchFields()["queue"])
}

func TestCausesUnwrap(t *testing.T) {
	root := errors.New("dial tcp: connection refused")
	err := blame.BrokerUnreachableError("localhost:5672", root)

	assert.ErrorIs(t, err, root)
	assert.True(t, blame.Is(err, blame.ErrorBrokerUnreachable))
	assert.False(t, blame.Is(root, blame.ErrorBrokerUnreachable))
}

func TestErrorResponseWithoutCauses(t *testing.T) {
	err := blame.ServiceDefinitionNotFound("premium")

	resp := err.FetchErrorResponse(blame.WithTranslation(), blame.WithoutCauses())
	assert.Equal(t, blame.ErrorServiceDefinitionNotFound, resp.ErrorCode)
	assert.Equal(t, "Service [premium] is not registered", resp.Message)
	assert.Nil(t, resp.Causes)
}
