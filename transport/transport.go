package transport

import (
	"context"
	"time"
)

// Transport delivers a prepared Request to its destination and settles
// it through the request's own emitters. Send must not settle a
// request whose latch is already claimed.
type Transport interface {
	Send(ctx context.Context, req *Request) error
}

// ConfigFuture marks a request for asynchronous delivery: Send returns
// as soon as the request is handed to the transport, and settlement
// happens on a transport-owned goroutine.
const ConfigFuture = "conveyor.future"

// Config is the per-request configuration bag. Transports read from it
// the options they understand and ignore the rest.
type Config map[string]any

// With sets a configuration value, allocating the bag when needed, and
// returns it to allow for chaining.
func (c Config) With(key string, value any) Config {
	if c == nil {
		c = make(Config, 1)
	}

	c[key] = value

	return c
}

// Bool returns the boolean value for key, or false when the key is
// missing or holds a different type.
func (c Config) Bool(key string) bool {
	v, ok := c[key].(bool)
	return ok && v
}

// String returns the string value for key, or "" when the key is
// missing or holds a different type.
func (c Config) String(key string) string {
	v, _ := c[key].(string)
	return v
}

// Duration returns the duration value for key, or 0 when the key is
// missing or holds a different type.
func (c Config) Duration(key string) time.Duration {
	v, _ := c[key].(time.Duration)
	return v
}

// Header carries transport metadata for a Request or Response. Keys
// are not canonicalized at this layer; each transport folds them
// according to its own wire rules.
type Header map[string][]string

// Add appends a value to key, allocating the header when needed, and
// returns it to allow for chaining.
func (h Header) Add(key, value string) Header {
	if h == nil {
		h = make(Header, 1)
	}

	h[key] = append(h[key], value)

	return h
}

// Set replaces the values of key with a single value, allocating the
// header when needed, and returns it to allow for chaining.
func (h Header) Set(key, value string) Header {
	if h == nil {
		h = make(Header, 1)
	}

	h[key] = []string{value}

	return h
}

// Get returns the first value for key, or "" if the key is unset.
func (h Header) Get(key string) string {
	if values := h[key]; len(values) > 0 {
		return values[0]
	}

	return ""
}
