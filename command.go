package conveyor

import "github.com/get-conveyor/go-conveyor/emitter"

// Payload carries the parameters of a command and names the operation
// they belong to.
//
// Each payload type should have a unique name, used to route the
// command to the right transport endpoint. Name commands in the
// present tense, as they represent an action being requested.
type Payload interface {
	Name() string
}

// Metadata contains supporting information attached to a Command that
// is not functional for the command itself, such as correlation
// identifiers or audit context.
type Metadata map[string]string

// With returns the Metadata extended with the given key and value,
// allocating the map when needed.
func (m Metadata) With(key, value string) Metadata {
	if m == nil {
		m = make(Metadata)
	}

	m[key] = value

	return m
}

// Merge merges the other Metadata into the current map, which wins on
// conflicting keys, and returns the extended map.
func (m Metadata) Merge(other Metadata) Metadata {
	if m == nil {
		return other
	}

	for k, v := range other {
		if _, ok := m[k]; !ok {
			m[k] = v
		}
	}

	return m
}

// Hooks groups the three lifecycle emitters of a Command. Listeners
// subscribed here observe every execution of that command value.
type Hooks struct {
	Prepare *emitter.Emitter[*PrepareEvent]
	Process *emitter.Emitter[*ProcessEvent]
	Error   *emitter.Emitter[*ErrorEvent]
}

// NewHooks returns a Hooks value with all three emitters ready for
// subscription.
func NewHooks() *Hooks {
	return &Hooks{
		Prepare: emitter.New[*PrepareEvent](),
		Process: emitter.New[*ProcessEvent](),
		Error:   emitter.New[*ErrorEvent](),
	}
}

// Command pairs a Payload with the execution options and listener
// registrations for one logical operation.
//
// Build commands with NewCommand from a single goroutine. A command
// value can be executed multiple times; its hooks then observe each
// execution through that execution's own Transaction.
type Command struct {
	// Payload names the operation and carries its parameters.
	Payload Payload
	// Metadata travels with the command through every lifecycle event.
	Metadata Metadata
	// Future requests asynchronous execution: Execute returns as soon
	// as the request is handed to the transport, and the outcome is
	// observed through the Transaction.
	Future bool

	hooks *Hooks
}

// NewCommand returns a Command wrapping the given payload.
func NewCommand(payload Payload, opts ...CommandOption) *Command {
	cmd := &Command{
		Payload: payload,
		hooks:   NewHooks(),
	}

	for _, opt := range opts {
		opt(cmd)
	}

	return cmd
}

// Hooks returns the command's lifecycle emitters, allocating them on
// first use for command values built without NewCommand.
func (c *Command) Hooks() *Hooks {
	if c.hooks == nil {
		c.hooks = NewHooks()
	}

	return c.hooks
}

// Name returns the payload's operation name, or the empty string for
// a command without payload.
func (c *Command) Name() string {
	if c == nil || c.Payload == nil {
		return ""
	}

	return c.Payload.Name()
}

// CommandOption configures a Command at construction time.
type CommandOption func(*Command)

// WithMetadata merges md into the command's metadata.
func WithMetadata(md Metadata) CommandOption {
	return func(c *Command) {
		c.Metadata = c.Metadata.Merge(md)
	}
}

// AsFuture flags the command for asynchronous execution.
func AsFuture() CommandOption {
	return func(c *Command) {
		c.Future = true
	}
}
