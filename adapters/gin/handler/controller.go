package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/abhissng/relay/adapters/gin/server"
	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/engine"
	"github.com/abhissng/relay/result"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/helpers"
	"github.com/abhissng/relay/utils/structures/acknowledgment"
	"github.com/abhissng/relay/utils/structures/service"
	"github.com/gin-gonic/gin"
)

// maxRequestTimeout caps the per-call timeout a client may ask for.
const maxRequestTimeout = 10 * time.Minute

// ComposeRequest is the body of the compose route.
type ComposeRequest struct {
	Payload map[string]any `json:"payload" binding:"required"`
	// TimeoutSeconds overrides the configured wait for this call.
	TimeoutSeconds float64 `json:"timeout_seconds,omitempty" binding:"omitempty,gt=0"`
}

// Controller serves the relay routes on top of a Gateway.
type Controller struct {
	gateway     *engine.Gateway
	logger      *log.Log
	serviceName string
	now         func() time.Time
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerLogger sets the controller logger.
func WithControllerLogger(logger *log.Log) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithName sets the service name reported by the health route.
func WithName(name string) ControllerOption {
	return func(c *Controller) {
		c.serviceName = name
	}
}

// NewController creates a controller for gateway.
func NewController(gateway *engine.Gateway, opts ...ControllerOption) *Controller {
	c := &Controller{
		gateway:     gateway,
		serviceName: constant.DefaultServiceName,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.NewBasicLogger(helpers.IsProdEnvironment())
	}
	return c
}

// RouteGroups returns the health route and the /api group.
func (ctl *Controller) RouteGroups(apiMiddlewares ...gin.HandlerFunc) []server.RouteGroupConfig {
	return []server.RouteGroupConfig{
		server.NewRouteGroupConfig("", nil, []server.RouteConfig{
			server.NewRouteConfig(http.MethodGet, constant.HealthRoute, ExecuteControllerHandler(ctl.logger, ctl.Health)),
		}),
		server.NewRouteGroupConfig(constant.APIGroup, apiMiddlewares, []server.RouteConfig{
			server.NewRouteConfig(http.MethodGet, constant.ServicesRoute, ExecuteControllerHandler(ctl.logger, ctl.Services)),
			server.NewRouteConfig(http.MethodPost, constant.ComposeRoute, ExecuteControllerHandler(ctl.logger, ctl.Compose)),
			server.NewRouteConfig(http.MethodGet, constant.TaskRoute, ExecuteControllerHandler(ctl.logger, ctl.Task)),
		}),
	}
}

// Health reports liveness together with the services the gateway can reach.
// It does not dial the broker.
func (ctl *Controller) Health(_ *gin.Context) result.Result[acknowledgment.HealthResponse] {
	return result.NewSuccess(&acknowledgment.HealthResponse{
		Status:            constant.Healthy,
		Service:           ctl.serviceName,
		Timestamp:         ctl.now().Unix(),
		Broker:            ctl.gateway.Address(),
		SupportedServices: ctl.kindNames(),
		QueueInfo:         ctl.gateway.Services(),
	})
}

// Services lists the registered services and their queue pairs.
func (ctl *Controller) Services(_ *gin.Context) result.Result[acknowledgment.ServicesResponse] {
	return result.NewSuccess(&acknowledgment.ServicesResponse{
		Services:       ctl.gateway.Services(),
		SupportedTypes: ctl.kindNames(),
	})
}

// Compose sends the payload to the named service and waits for its reply.
// With ?async=true it only enqueues the request and answers 202.
func (ctl *Controller) Compose(c *gin.Context) result.Result[acknowledgment.ComposeResponse] {
	kind, b := service.ParseKind(c.Param(constant.ServiceParam))
	if b != nil {
		return result.NewFailure[acknowledgment.ComposeResponse](b)
	}

	var body ComposeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		return result.NewFailure[acknowledgment.ComposeResponse](blame.RequestBodyInvalid(err))
	}

	async, b := ctl.asyncFlag(c)
	if b != nil {
		return result.NewFailure[acknowledgment.ComposeResponse](b)
	}

	ctx := c.Request.Context()
	logger := ctl.logger.With(
		log.String(constant.Service, kind.String()),
		log.String(constant.CorrelationID, c.GetString(constant.CorrelationID)),
	)

	if async {
		req, b := ctl.gateway.Submit(ctx, kind, body.Payload)
		if b != nil {
			return result.NewFailure[acknowledgment.ComposeResponse](b)
		}
		logger.Info(constant.TaskSubmitted, log.String(constant.RequestID, req.ID.String()))
		return result.NewSuccessWithCode(&acknowledgment.ComposeResponse{
			RequestID: req.ID,
			Service:   kind.String(),
			Status:    constant.Accepted,
		}, http.StatusAccepted)
	}

	var sendOpts []engine.SendOption
	if body.TimeoutSeconds > 0 {
		timeout := time.Duration(body.TimeoutSeconds * float64(time.Second))
		sendOpts = append(sendOpts, engine.WithSendTimeout(min(timeout, maxRequestTimeout)))
	}

	outcome, b := ctl.gateway.Send(ctx, kind, body.Payload, sendOpts...)
	if b != nil {
		return result.NewFailure[acknowledgment.ComposeResponse](b)
	}
	return result.NewSuccessWithCode(NewComposeResponse(kind, outcome), outcomeStatus(ctx, outcome))
}

// Task is the lookup route for async requests. Replies are only ever handed
// to the waiting caller, so there is nothing to look up.
func (ctl *Controller) Task(c *gin.Context) result.Result[acknowledgment.TaskResponse] {
	return result.NewFailure[acknowledgment.TaskResponse](blame.TaskLookupNotImplemented(c.Param(constant.TaskIDParam)))
}

func (ctl *Controller) asyncFlag(c *gin.Context) (bool, blame.Blame) {
	raw, ok := c.GetQuery(constant.AsyncQuery)
	if !ok || raw == "" {
		return false, nil
	}
	async, err := strconv.ParseBool(raw)
	if err != nil {
		return false, blame.MalformedParameterError(constant.AsyncQuery, err)
	}
	return async, nil
}

func (ctl *Controller) kindNames() []string {
	kinds := ctl.gateway.Kinds()
	names := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		names = append(names, kind.String())
	}
	return names
}

// NewComposeResponse renders an outcome for callers of the compose endpoint.
func NewComposeResponse(kind service.Kind, outcome *engine.Outcome) *acknowledgment.ComposeResponse {
	res := &acknowledgment.ComposeResponse{
		RequestID: outcome.Request.ID,
		Service:   kind.String(),
		Status:    outcome.Status(),
		ElapsedMS: outcome.Elapsed.Milliseconds(),
	}
	if outcome.Delivered() {
		res.Data = outcome.Reply.Payload
	}
	return res
}

func outcomeStatus(ctx context.Context, outcome *engine.Outcome) int {
	switch {
	case outcome.Delivered():
		return http.StatusOK
	case outcome.TimedOut():
		return http.StatusGatewayTimeout
	case outcome.Canceled() || ctx.Err() != nil:
		return constant.StatusClientClosedRequest
	}
	return http.StatusInternalServerError
}
