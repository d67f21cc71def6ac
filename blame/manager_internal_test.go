package blame

import (
	"testing"

	"github.com/abhissng/relay/utils/types"

	"github.com/stretchr/testify/assert"
)

func TestUnknownCodeFallsBack(t *testing.T) {
	b := getLocalBlameManager().FetchBlameForError("error-does-not-exist", WithField("queue", "q"))

	assert.Equal(t, "error-does-not-exist", b.FetchErrCode().String())
	assert.Equal(t, "q", b.FetchFields()["queue"])
}

func TestEveryIdentifierHasDefinition(t *testing.T) {
	codes := []types.ErrorCode{
		ErrorUnmarshalFailed,
		ErrorMalformedReply,
		ErrorConfigLoadFailure,
		ErrorRateLimitExceeded,
	}
	for _, code := range codes {
		_, ok := getLocalBlameManager().BlameDefinitions[code]
		assert.True(t, ok, code.String())
	}
}
