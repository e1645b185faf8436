package integration

import (
	"context"
	"fmt"
	"sync"

	"github.com/ryan12324/OpenAssistant-sub003/capability"
)

// Status is the connection state of an instance.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// Result is the normalized outcome of one skill invocation. Success=false
// always carries a non-empty, actionable Output; handlers never let a raw
// upstream error escape as a Go error.
type Result struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Data    any    `json:"data,omitempty"`
}

// Text returns a successful result with a plain output string.
func Text(output string) Result {
	return Result{Success: true, Output: output}
}

// TextData returns a successful result carrying a structured payload.
func TextData(output string, data any) Result {
	return Result{Success: true, Output: output, Data: data}
}

// Failf returns a failed result with a formatted diagnostic.
func Failf(format string, args ...any) Result {
	return Result{Success: false, Output: fmt.Sprintf(format, args...)}
}

// HandlerFunc performs one logical upstream operation for one skill.
// Implementations translate every upstream failure mode into a failed
// Result instead of returning it out of band.
type HandlerFunc func(ctx context.Context, args map[string]any) Result

// Instance is one live integration bound to a resolved configuration.
//
// The state machine is: disconnected --Connect--> connected, with a failed
// Connect landing in error; Disconnect always lands in disconnected and is
// safe from any state. ExecuteSkill requires connected, which the
// dispatcher enforces before calling in.
type Instance interface {
	Schema() *capability.Schema
	Status() Status
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context)
	ExecuteSkill(ctx context.Context, skillID string, args map[string]any) Result
}

// ConnectFunc verifies upstream reachability for a Base instance. It may
// return a session token to be released on disconnect (empty if the
// upstream has no session concept).
type ConnectFunc func(ctx context.Context) (token string, err error)

// Base is the reusable Instance implementation: a handler map keyed by
// skill id plus the status machine. Concrete integrations embed it and
// register their handlers at construction time.
type Base struct {
	schema  *capability.Schema
	connect ConnectFunc
	release func(ctx context.Context, token string)

	mu       sync.RWMutex
	status   Status
	token    string
	handlers map[string]HandlerFunc
}

func NewBase(schema *capability.Schema, connect ConnectFunc) *Base {
	return &Base{
		schema:   schema,
		connect:  connect,
		status:   StatusDisconnected,
		handlers: make(map[string]HandlerFunc),
	}
}

// Handle registers the handler for one skill id.
func (b *Base) Handle(skillID string, fn HandlerFunc) {
	b.handlers[skillID] = fn
}

// OnDisconnect sets the hook releasing an upstream session token.
func (b *Base) OnDisconnect(release func(ctx context.Context, token string)) {
	b.release = release
}

func (b *Base) Schema() *capability.Schema { return b.schema }

func (b *Base) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

// Token returns the current upstream session token, if any. Handlers use
// it to authenticate requests issued after Connect.
func (b *Base) Token() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.token
}

func (b *Base) setStatus(s Status) {
	b.mu.Lock()
	b.status = s
	b.mu.Unlock()
}

// Connect runs the upstream reachability check. Safe to call again after
// Disconnect; the dispatcher serializes Connect/Disconnect per instance.
func (b *Base) Connect(ctx context.Context) error {
	b.setStatus(StatusConnecting)
	if b.connect == nil {
		b.setStatus(StatusConnected)
		return nil
	}
	token, err := b.connect(ctx)
	if err != nil {
		b.setStatus(StatusError)
		return err
	}
	b.mu.Lock()
	b.token = token
	b.status = StatusConnected
	b.mu.Unlock()
	return nil
}

// Disconnect releases any held session and always lands in disconnected,
// whatever the prior state.
func (b *Base) Disconnect(ctx context.Context) {
	b.mu.Lock()
	token := b.token
	b.token = ""
	b.status = StatusDisconnected
	release := b.release
	b.mu.Unlock()

	if release != nil && token != "" {
		release(ctx, token)
	}
}

// ExecuteSkill routes to the registered handler. An unrecognized skill id
// is a caller mistake, reported as a normal failed result rather than an
// error.
func (b *Base) ExecuteSkill(ctx context.Context, skillID string, args map[string]any) Result {
	fn, ok := b.handlers[skillID]
	if !ok {
		return Failf("Unknown skill: %s", skillID)
	}
	return fn(ctx, args)
}
