// Package di provides a minimal, lazily-resolving dependency injection container
// used to wire each bounded context's services together at startup.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry is the read side of the container: services look up their
// dependencies by string token.
type ServiceRegistry interface {
	Get(name string) interface{}
}

// Container is the write side: modules register eager values or lazy factories
// during their RegisterServices phase.
type Container interface {
	ServiceRegistry
	// Register stores an already-constructed value under name.
	Register(name string, instance interface{})
	// RegisterLazy stores a factory invoked at most once, the first time name
	// is resolved via Get. The factory receives the same registry so it can
	// pull its own dependencies regardless of registration order.
	RegisterLazy(name string, factory func(ServiceRegistry) interface{})
}

type lazyEntry struct {
	once    sync.Once
	factory func(ServiceRegistry) interface{}
	value   interface{}
}

type container struct {
	mu      sync.RWMutex
	values  map[string]interface{}
	lazies  map[string]*lazyEntry
}

// NewContainer creates an empty Container.
func NewContainer() Container {
	return &container{
		values: make(map[string]interface{}),
		lazies: make(map[string]*lazyEntry),
	}
}

func (c *container) Register(name string, instance interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = instance
}

func (c *container) RegisterLazy(name string, factory func(ServiceRegistry) interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lazies[name] = &lazyEntry{factory: factory}
}

func (c *container) Get(name string) interface{} {
	c.mu.RLock()
	if v, ok := c.values[name]; ok {
		c.mu.RUnlock()
		return v
	}
	entry, ok := c.lazies[name]
	c.mu.RUnlock()

	if !ok {
		panic(fmt.Sprintf("di: no service registered for token %q", name))
	}

	entry.once.Do(func() {
		entry.value = entry.factory(c)
	})
	return entry.value
}

// RegisterToken registers a typed lazy factory for token on c. Consumers
// retrieve it through a generated Get<Name>(sr) helper in the owning
// context's di package rather than calling sr.Get directly.
func RegisterToken[T any](c Container, token string, factory func(ServiceRegistry) T) {
	c.RegisterLazy(token, func(sr ServiceRegistry) interface{} {
		return factory(sr)
	})
}

// MustGet resolves token as T, panicking with a descriptive message on
// type mismatch instead of an opaque type assertion panic.
func MustGet[T any](sr ServiceRegistry, token string) T {
	v := sr.Get(token)
	t, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type %T", token, v))
	}
	return t
}
