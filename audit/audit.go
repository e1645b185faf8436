// Package audit records every skill invocation to an append-only log.
// Writes are best-effort: a failed write is logged and dropped, never
// surfaced to the operation that produced it.
package audit

import (
	"context"
	"time"
)

// Action is the closed set of auditable operations.
type Action string

const (
	ActionToolCall        Action = "tool_call"
	ActionSkillExecute    Action = "skill_execute"
	ActionMemoryStore     Action = "memory_store"
	ActionMemoryRecall    Action = "memory_recall"
	ActionInboundMessage  Action = "inbound_message"
	ActionOutboundReply   Action = "outbound_reply"
	ActionAgentSpawn      Action = "agent_spawn"
)

func (a Action) Valid() bool {
	switch a {
	case ActionToolCall, ActionSkillExecute, ActionMemoryStore, ActionMemoryRecall,
		ActionInboundMessage, ActionOutboundReply, ActionAgentSpawn:
		return true
	}
	return false
}

// DefaultMaxFieldLen bounds stored input/output text.
const DefaultMaxFieldLen = 2000

// Entry is one invocation record. Input and Output are stored truncated;
// entries are immutable once written.
type Entry struct {
	ID         string
	UserID     string
	Action     Action
	SkillID    string
	Input      string
	Output     string
	Source     string
	DurationMs int64
	Success    bool
	CreatedAt  time.Time
}

// Filter narrows a Query. Zero values match everything.
type Filter struct {
	Action  Action
	SkillID string
	Success *bool
}

// Page is limit/offset pagination for Query.
type Page struct {
	Limit  int
	Offset int
}

// Recorder is the audit persistence contract. Record is on the hot
// dispatch path only through the async wrapper; Query is not.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	Query(ctx context.Context, userID string, f Filter, p Page) ([]Entry, error)
}

// Truncate caps s at max runes, appending an ellipsis marker when content
// was dropped. The result is at most max+1 runes long.
func Truncate(s string, max int) string {
	if max <= 0 {
		max = DefaultMaxFieldLen
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
