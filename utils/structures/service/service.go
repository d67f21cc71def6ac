// Package service maps the closed set of service kinds to their queue bindings.
package service

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abhissng/relay/blame"
)

// Kind is a logical compose service.
type Kind int

const (
	KindBasic Kind = iota + 1
	KindAdvanced
)

var kindNames = map[Kind]string{
	KindBasic:    "basic",
	KindAdvanced: "advanced",
}

// Kinds lists every known kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindBasic, KindAdvanced}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves a service name such as "basic" case-insensitively.
func ParseKind(name string) (Kind, blame.Blame) {
	want := strings.ToLower(strings.TrimSpace(name))
	for kind, n := range kindNames {
		if n == want {
			return kind, nil
		}
	}
	return 0, blame.ServiceDefinitionNotFound(name)
}

// MarshalText lets Kind be used as a JSON/YAML map key or value.
func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown service kind %d", int(k))
	}
	return []byte(name), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Binding is the queue pair of one service.
type Binding struct {
	TaskQueue   string `json:"task_queue"`
	ResultQueue string `json:"result_queue"`
}

// Registry is the static kind to binding table. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	bindings map[Kind]Binding
}

// NewRegistry copies bindings into a Registry.
func NewRegistry(bindings map[Kind]Binding) *Registry {
	r := &Registry{bindings: make(map[Kind]Binding, len(bindings))}
	for kind, binding := range bindings {
		r.bindings[kind] = binding
	}
	return r
}

// Lookup returns the binding for kind.
func (r *Registry) Lookup(kind Kind) (Binding, blame.Blame) {
	binding, ok := r.bindings[kind]
	if !ok {
		return Binding{}, blame.ServiceDefinitionNotFound(kind.String())
	}
	return binding, nil
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.bindings))
	for kind := range r.bindings {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

// Bindings returns a copy of the table keyed by service name.
func (r *Registry) Bindings() map[string]Binding {
	out := make(map[string]Binding, len(r.bindings))
	for kind, binding := range r.bindings {
		out[kind.String()] = binding
	}
	return out
}
