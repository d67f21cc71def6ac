package result_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/result"
)

func TestNewSuccess(t *testing.T) {
	value := "success value"
	successResult := result.NewSuccess(&value)

	assert.False(t, successResult.IsError())
	assert.Zero(t, successResult.Code())
	assert.Equal(t, &value, successResult.ToValue())
	assert.EqualError(t, successResult.Error(), "success-cannot-be-error")
}

func TestNewSuccessWithCode(t *testing.T) {
	value := "queued"
	accepted := result.NewSuccessWithCode(&value, http.StatusAccepted)

	assert.False(t, accepted.IsError())
	assert.Equal(t, http.StatusAccepted, accepted.Code())
}

func TestNewFailure(t *testing.T) {
	testErr := blame.NewBasicBlame("test-error")
	errorResult := result.NewFailure[any](testErr)

	assert.True(t, errorResult.IsError())
	assert.Nil(t, errorResult.ToValue())
	assert.Zero(t, errorResult.Code())
	assert.Equal(t, testErr, errorResult.Error())
}
