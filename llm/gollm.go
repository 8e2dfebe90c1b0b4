package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teilomillet/gollm"
)

// GollmClient implements Client on top of a gollm.LLM instance. It renders
// the conversation into a gollm prompt, appends schema hints as text
// instructions (the portable path: it works on any backend whether or not it
// supports native structured output), and classifies backend errors into the
// package's error taxonomy.
type GollmClient struct {
	provider string
	model    string
	llm      gollm.LLM
	retry    RetryPolicy
}

// GollmOption configures a GollmClient.
type GollmOption func(*gollmConfig)

type gollmConfig struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	retry       *RetryPolicy
	extraOpts   []gollm.ConfigOption
}

// WithAPIKey sets the API key. When empty, gollm reads it from the
// provider's environment variable.
func WithAPIKey(key string) GollmOption {
	return func(c *gollmConfig) { c.apiKey = key }
}

// WithModel sets the model ID.
func WithModel(model string) GollmOption {
	return func(c *gollmConfig) { c.model = model }
}

// WithMaxTokens sets the response token cap.
func WithMaxTokens(n int) GollmOption {
	return func(c *gollmConfig) { c.maxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) GollmOption {
	return func(c *gollmConfig) { c.temperature = t }
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p RetryPolicy) GollmOption {
	return func(c *gollmConfig) { c.retry = &p }
}

// WithGollmOptions passes extra configuration straight through to gollm.
func WithGollmOptions(opts ...gollm.ConfigOption) GollmOption {
	return func(c *gollmConfig) { c.extraOpts = append(c.extraOpts, opts...) }
}

// NewGollmClient creates a GollmClient for the given provider.
func NewGollmClient(provider string, opts ...GollmOption) (*GollmClient, error) {
	cfg := &gollmConfig{
		maxTokens:   4096,
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	model := cfg.model
	if model == "" {
		model = DefaultModel(provider)
	}
	if model == "" {
		return nil, &ConfigurationError{ClientError: ClientError{
			Message: fmt.Sprintf("no model configured and no catalog default for provider %q", provider),
		}}
	}

	gollmOpts := []gollm.ConfigOption{
		gollm.SetProvider(provider),
		gollm.SetModel(model),
		gollm.SetMaxTokens(cfg.maxTokens),
		gollm.SetTemperature(cfg.temperature),
		gollm.SetMaxRetries(0), // retries are handled here, never in parallel
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if cfg.apiKey != "" {
		gollmOpts = append(gollmOpts, gollm.SetAPIKey(cfg.apiKey))
	}
	gollmOpts = append(gollmOpts, cfg.extraOpts...)

	backend, err := gollm.NewLLM(gollmOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gollm LLM for provider %s: %w", provider, err)
	}

	retry := DefaultRetryPolicy()
	if cfg.retry != nil {
		retry = *cfg.retry
	}

	return &GollmClient{
		provider: provider,
		model:    model,
		llm:      backend,
		retry:    retry,
	}, nil
}

// NewGollmClientFromLLM wraps an existing gollm.LLM instance.
func NewGollmClientFromLLM(provider string, backend gollm.LLM) *GollmClient {
	return &GollmClient{
		provider: provider,
		llm:      backend,
		retry:    DefaultRetryPolicy(),
	}
}

// Provider returns the provider identifier.
func (c *GollmClient) Provider() string { return c.provider }

// Model returns the configured model ID.
func (c *GollmClient) Model() string { return c.model }

// Send appends text as a user message and returns the model's reply.
func (c *GollmClient) Send(ctx context.Context, conv *Conversation, text string, schema *SchemaHint) (*RawResponse, error) {
	conv.Append(UserMessage(text))
	return c.Respond(ctx, conv, schema)
}

// Respond requests the next reply over the conversation as it stands.
func (c *GollmClient) Respond(ctx context.Context, conv *Conversation, schema *SchemaHint) (*RawResponse, error) {
	prompt := c.translateConversation(conv, schema)

	text, err := Retry(ctx, c.retry, func(ctx context.Context) (string, error) {
		out, genErr := c.llm.Generate(ctx, prompt)
		if genErr != nil {
			return "", c.translateError(genErr)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	conv.Append(AssistantMessage(text))
	return classifyResponse(text, schema), nil
}

// translateConversation renders the conversation into a gollm prompt. System
// messages become the system prompt; the rest is flattened into a single
// prompt body, with assistant turns labeled so the model sees the dialogue
// structure.
func (c *GollmClient) translateConversation(conv *Conversation, schema *SchemaHint) *gollm.Prompt {
	var system strings.Builder
	var parts []string

	for _, msg := range conv.Messages() {
		switch msg.Role {
		case RoleSystem:
			system.WriteString(msg.Content)
			system.WriteString("\n")
		case RoleUser:
			parts = append(parts, msg.Content)
		case RoleAssistant:
			if msg.Content != "" {
				parts = append(parts, "[Assistant]: "+msg.Content)
			}
		}
	}

	body := strings.Join(parts, "\n")
	if schema != nil {
		body = body + "\n\n" + schema.Instruction()
	}
	if body == "" {
		body = "Begin."
	}

	promptOpts := []gollm.PromptOption{}
	if system.Len() > 0 {
		promptOpts = append(promptOpts, gollm.WithSystemPrompt(strings.TrimSpace(system.String()), gollm.CacheTypeEphemeral))
	}

	return gollm.NewPrompt(body, promptOpts...)
}

// classifyResponse decides whether the reply already matches the requested
// schema shape. A reply that parses as a JSON object is surfaced as
// structured; anything else is raw text for the decode waterfall.
func classifyResponse(text string, schema *SchemaHint) *RawResponse {
	if schema == nil {
		return &RawResponse{Text: text}
	}
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &probe); err == nil {
			return &RawResponse{Structured: json.RawMessage(trimmed)}
		}
	}
	return &RawResponse{Text: text}
}

// translateError converts a gollm error into the unified error taxonomy.
// gollm flattens provider errors into strings, so classification is by
// message content.
func (c *GollmClient) translateError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	msgLower := strings.ToLower(msg)

	switch {
	case strings.Contains(msgLower, "401") || strings.Contains(msgLower, "unauthorized") || strings.Contains(msgLower, "invalid api key"):
		return &AuthenticationError{ProviderError: ProviderError{
			ClientError: ClientError{Message: msg, Cause: err}, Provider: c.provider, StatusCode: 401,
		}}
	case strings.Contains(msgLower, "429") || strings.Contains(msgLower, "rate limit"):
		return &RateLimitError{ProviderError: ProviderError{
			ClientError: ClientError{Message: msg, Cause: err}, Provider: c.provider, StatusCode: 429, Retryable: true,
		}}
	case strings.Contains(msgLower, "context length") || strings.Contains(msgLower, "too many tokens"):
		return &ContextLengthError{ProviderError: ProviderError{
			ClientError: ClientError{Message: msg, Cause: err}, Provider: c.provider, StatusCode: 413,
		}}
	case strings.Contains(msgLower, "400") || strings.Contains(msgLower, "invalid request"):
		return &InvalidRequestError{ProviderError: ProviderError{
			ClientError: ClientError{Message: msg, Cause: err}, Provider: c.provider, StatusCode: 400,
		}}
	case strings.Contains(msgLower, "500") || strings.Contains(msgLower, "internal server"):
		return &ServerError{ProviderError: ProviderError{
			ClientError: ClientError{Message: msg, Cause: err}, Provider: c.provider, StatusCode: 500, Retryable: true,
		}}
	case strings.Contains(msgLower, "content filter") || strings.Contains(msgLower, "safety"):
		return &ContentFilterError{ProviderError: ProviderError{
			ClientError: ClientError{Message: msg, Cause: err}, Provider: c.provider,
		}}
	case strings.Contains(msgLower, "timeout"):
		return &RequestTimeoutError{ClientError: ClientError{Message: msg, Cause: err}}
	default:
		return &ProviderError{
			ClientError: ClientError{Message: msg, Cause: err},
			Provider:    c.provider,
			Retryable:   true,
		}
	}
}
