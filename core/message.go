package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a Message.
type Role string

const (
	// RoleSystem carries instructions that frame the whole conversation.
	RoleSystem Role = "system"
	// RoleUser carries end-user input (and synthetic tool-result turns).
	RoleUser Role = "user"
	// RoleAssistant carries model output.
	RoleAssistant Role = "assistant"
	// RoleTool carries raw tool output when a caller records it separately.
	RoleTool Role = "tool"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	default:
		return false
	}
}

// Message is a single immutable conversational record. Fields are unexported
// so a Message cannot change after NewMessage returns; accessors hand out
// copies of any reference data.
type Message struct {
	id        string
	role      Role
	content   string
	timestamp time.Time
	metadata  map[string]any
}

// MessageOption customizes NewMessage.
type MessageOption func(m *Message)

// WithTimestamp overrides the creation timestamp (defaults to time.Now()).
func WithTimestamp(ts time.Time) MessageOption {
	return func(m *Message) { m.timestamp = ts }
}

// WithMetadata attaches a copy of the provided metadata map.
func WithMetadata(md map[string]any) MessageOption {
	return func(m *Message) {
		for k, v := range md {
			m.metadata[k] = v
		}
	}
}

// NewMessage constructs a Message with a fresh ID.
func NewMessage(role Role, content string, opts ...MessageOption) Message {
	m := Message{
		id:        uuid.NewString(),
		role:      role,
		content:   content,
		timestamp: time.Now(),
		metadata:  map[string]any{},
	}

	for _, o := range opts {
		o(&m)
	}

	return m
}

// ID returns the unique message identifier.
func (m Message) ID() string { return m.id }

// Role returns the message author role.
func (m Message) Role() Role { return m.role }

// Content returns the message text.
func (m Message) Content() string { return m.content }

// Timestamp returns when the message was created.
func (m Message) Timestamp() time.Time { return m.timestamp }

// Metadata returns a copy of the metadata map.
func (m Message) Metadata() map[string]any {
	out := make(map[string]any, len(m.metadata))
	for k, v := range m.metadata {
		out[k] = v
	}

	return out
}

// String renders the message as "[role] content".
func (m Message) String() string {
	return fmt.Sprintf("[%s] %s", m.role, m.content)
}

// SystemMessage is shorthand for NewMessage(RoleSystem, content).
func SystemMessage(content string) Message { return NewMessage(RoleSystem, content) }

// UserMessage is shorthand for NewMessage(RoleUser, content).
func UserMessage(content string) Message { return NewMessage(RoleUser, content) }

// AssistantMessage is shorthand for NewMessage(RoleAssistant, content).
func AssistantMessage(content string) Message { return NewMessage(RoleAssistant, content) }
