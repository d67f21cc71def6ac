package engine

import (
	"context"

	"github.com/abhissng/relay/adapters/events"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/structures/message"
	"github.com/abhissng/relay/utils/structures/service"
)

// Gateway routes requests for a service kind to a fresh Coordinator bound
// to that kind's queues. It is safe for concurrent use.
type Gateway struct {
	registry *service.Registry
	dialer   events.Dialer
	opts     []Option
}

// NewGateway builds a gateway. opts are applied to every Coordinator it creates.
func NewGateway(registry *service.Registry, dialer events.Dialer, opts ...Option) *Gateway {
	return &Gateway{registry: registry, dialer: dialer, opts: opts}
}

// Coordinator returns a new coordinator for kind.
func (g *Gateway) Coordinator(kind service.Kind) (*Coordinator, blame.Blame) {
	binding, b := g.registry.Lookup(kind)
	if b != nil {
		return nil, b
	}
	opts := append(append([]Option(nil), g.opts...), WithServiceName(kind.String()))
	return NewCoordinator(binding, g.dialer, opts...), nil
}

// Send runs a synchronous request against kind.
func (g *Gateway) Send(ctx context.Context, kind service.Kind, payload map[string]any, opts ...SendOption) (*Outcome, blame.Blame) {
	c, b := g.Coordinator(kind)
	if b != nil {
		return nil, b
	}
	return c.Send(ctx, payload, opts...)
}

// Submit enqueues a request for kind without waiting.
func (g *Gateway) Submit(ctx context.Context, kind service.Kind, payload map[string]any) (*message.Request, blame.Blame) {
	c, b := g.Coordinator(kind)
	if b != nil {
		return nil, b
	}
	return c.Submit(ctx, payload)
}

// Services returns the registered services and their queues.
func (g *Gateway) Services() map[string]service.Binding {
	return g.registry.Bindings()
}

// Kinds returns the registered kinds.
func (g *Gateway) Kinds() []service.Kind {
	return g.registry.Kinds()
}

// Address returns the broker address.
func (g *Gateway) Address() string {
	return g.dialer.Address()
}
