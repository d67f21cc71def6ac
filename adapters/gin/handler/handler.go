// Package handler adapts result-returning controllers to gin and holds the
// relay HTTP controllers.
package handler

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/abhissng/relay/adapters/gin/middleware"
	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/result"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/helpers"
	"github.com/abhissng/relay/utils/structures/acknowledgment"
	"github.com/gin-gonic/gin"
)

// RequestHandler produces the result written for one request.
type RequestHandler[T any] func(*gin.Context) result.Result[T]

// ExecuteControllerHandler runs handler and writes its result as an APIResponse.
func ExecuteControllerHandler[T any](logger *log.Log, handler RequestHandler[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var handlerResult result.Result[T]

		defer func() {
			if err := recover(); err != nil {
				handleException(c, logger, err)
				return
			}
			processResult(c, logger, handlerResult)
		}()

		handlerResult = handler(c)
	}
}

// handleException logs the panic with its stack and writes a 500.
func handleException(c *gin.Context, logger *log.Log, err any) {
	serverBlame := blame.InternalServerError(fmt.Errorf("error %+v", err))
	logger.Error(constant.HandlerPanic,
		log.Any("exception", err),
		log.String(constant.CorrelationID, middleware.GetCorrelationID(c).String()),
		log.String("stack", string(debug.Stack())),
	)
	middleware.AbortWithBlame(c, http.StatusInternalServerError, serverBlame)
}

// processResult writes a failure with the status of its blame and a success
// with its own code, 200 by default.
func processResult[T any](c *gin.Context, logger *log.Log, res result.Result[T]) {
	correlationID := middleware.GetCorrelationID(c)
	if res == nil {
		middleware.AbortWithBlame(c, http.StatusInternalServerError, blame.InternalServerError(nil))
		return
	}

	if res.IsError() {
		blameInfo := res.Error()
		status := helpers.FetchHTTPStatusCode(blameInfo.FetchResponseType())
		logger.Warn(constant.HandlerFailed,
			log.Blame(blameInfo),
			log.Int("status_code", status),
			log.String(constant.CorrelationID, correlationID.String()),
		)
		middleware.AbortWithBlame(c, status, blameInfo)
		return
	}

	status := res.Code()
	if status == 0 {
		status = http.StatusOK
	}
	data := res.ToValue()
	c.JSON(status, acknowledgment.NewAPIResponse(status < http.StatusBadRequest, correlationID, data))
}
