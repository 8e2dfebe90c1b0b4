// Package llm defines the model-client boundary for kagentic: conversations,
// the Client interface, the retry policy, and a gollm-backed implementation.
//
// The orchestration core in package agent talks to the model exclusively
// through this package. A Conversation is an exclusively-owned message log;
// the Client appends to it and returns either structured JSON (when the
// backend honored a schema hint) or raw text for the caller to decode.
package llm

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Role identifies who produced a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemMessage creates a system Message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// UserMessage creates a user Message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage creates an assistant Message.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// Conversation is an ordered message log with a stable identity. Each
// conversation is exclusively owned by a single run (or by a delegation
// adapter, where it intentionally outlives individual runs); it is not safe
// for concurrent use by more than one caller.
type Conversation struct {
	id       string
	name     string
	messages []Message
}

// NewConversation creates an empty conversation. The name is a human-readable
// label used in transcripts and logs.
func NewConversation(name string) *Conversation {
	return &Conversation{
		id:   uuid.New().String(),
		name: name,
	}
}

// ID returns the conversation identifier.
func (c *Conversation) ID() string { return c.id }

// Name returns the conversation label.
func (c *Conversation) Name() string { return c.name }

// Append adds a message to the conversation.
func (c *Conversation) Append(msg Message) {
	c.messages = append(c.messages, msg)
}

// Len returns the number of messages in the conversation.
func (c *Conversation) Len() int { return len(c.messages) }

// Messages returns a copy of the conversation's messages.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Transcript renders the conversation as plain text, one "role: content"
// block per message.
func (c *Conversation) Transcript() string {
	var sb strings.Builder
	for _, m := range c.messages {
		sb.WriteString(string(m.Role))
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// SchemaHint asks the client to steer the model toward a JSON shape. Backends
// without native structured output append the rendered schema to the request
// as a text instruction.
type SchemaHint struct {
	// Name labels the shape in the instruction text (e.g. "ReActStep").
	Name string
	// Schema is the JSON Schema describing the required output object.
	Schema json.RawMessage
}

// Instruction renders the hint as a plain-text request suffix.
func (h *SchemaHint) Instruction() string {
	var sb strings.Builder
	sb.WriteString("Respond ONLY with a JSON object matching this ")
	if h.Name != "" {
		sb.WriteString(h.Name)
		sb.WriteString(" ")
	}
	sb.WriteString("schema:\n")
	sb.Write(h.Schema)
	return sb.String()
}

// RawResponse is the model's reply to a Send or Respond call. Exactly one of
// the two views is meaningful: Structured is non-nil when the backend
// returned an object already matching the requested schema; otherwise Text
// holds the raw output for the caller to decode.
type RawResponse struct {
	Structured json.RawMessage
	Text       string
}

// IsStructured reports whether the response carries schema-shaped JSON.
func (r *RawResponse) IsStructured() bool { return len(r.Structured) > 0 }

// Body returns the response payload as text regardless of form.
func (r *RawResponse) Body() string {
	if r.IsStructured() {
		return string(r.Structured)
	}
	return r.Text
}
