package llm

import "context"

// Client is the capability the orchestration core consumes. Send appends text
// as a user message and returns the model's reply; Respond requests the next
// reply over the conversation as it stands. Both record the assistant reply
// on the conversation before returning, so the conversation is always a
// complete transcript.
//
// Implementations must be safe for use by multiple conversations, but a
// single conversation must only ever be passed in from one goroutine at a
// time.
type Client interface {
	Send(ctx context.Context, conv *Conversation, text string, schema *SchemaHint) (*RawResponse, error)
	Respond(ctx context.Context, conv *Conversation, schema *SchemaHint) (*RawResponse, error)
}

// Closer is implemented by clients that hold releasable resources.
type Closer interface {
	Close() error
}
