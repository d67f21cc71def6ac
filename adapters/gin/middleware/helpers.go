package middleware

import (
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/structures/acknowledgment"
	"github.com/abhissng/relay/utils/types"
	"github.com/gin-gonic/gin"
)

// GetCorrelationID returns the correlation id set by RequestIDMiddleware.
func GetCorrelationID(c *gin.Context) types.CorrelationID {
	return types.CorrelationID(c.GetString(constant.CorrelationID))
}

// GetRequestID returns the request id set by RequestIDMiddleware.
func GetRequestID(c *gin.Context) string {
	return c.GetString(constant.RequestID)
}

// AbortWithBlame writes b as a failed APIResponse and stops the chain.
func AbortWithBlame(c *gin.Context, status int, b blame.Blame) {
	res := b.FetchErrorResponse(blame.WithTranslation(), blame.WithoutCauses())
	c.AbortWithStatusJSON(status, acknowledgment.NewAPIResponse(false, GetCorrelationID(c), res))
}
