// Package registry binds logical map names to their codec pairs.
//
// The delta wire format carries no type tags: both ends of a connection
// must agree out of band which codecs decode a given logical map. A
// Registry is that agreement, populated once at startup and read on
// every inbound delta, hence the lock-free map underneath.
package registry

import (
	"errors"
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/clustermesh/statediff"
)

var (
	ErrDuplicate = errors.New("registry: map name already bound")
	ErrUnknown   = errors.New("registry: unknown map name")
	ErrMismatch  = errors.New("registry: bound codecs have a different type")
)

// Binding pairs the codecs of one logical map.
type Binding[K comparable, V any] struct {
	Keys statediff.KeyCodec[K]
	Vals statediff.ValueCodec[K, V]
}

type Registry struct {
	bindings *xsync.MapOf[string, any]
}

func New() *Registry {
	return &Registry{bindings: xsync.NewMapOf[string, any]()}
}

// Register binds name to the codec pair. Names bind once.
func Register[K comparable, V any](r *Registry, name string, b Binding[K, V]) error {
	if _, loaded := r.bindings.LoadOrStore(name, b); loaded {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}
	return nil
}

// Resolve returns the binding for name with the requested type.
func Resolve[K comparable, V any](r *Registry, name string) (Binding[K, V], error) {
	stored, ok := r.bindings.Load(name)
	if !ok {
		return Binding[K, V]{}, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	b, ok := stored.(Binding[K, V])
	if !ok {
		return Binding[K, V]{}, fmt.Errorf("%w: %q is %T", ErrMismatch, name, stored)
	}
	return b, nil
}

// Names returns the bound map names, in no particular order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.bindings.Size())
	r.bindings.Range(func(name string, _ any) bool {
		names = append(names, name)
		return true
	})
	return names
}
