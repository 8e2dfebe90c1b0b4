package llm

// ModelInfo describes a known model in the catalog.
type ModelInfo struct {
	ID            string `json:"id"`
	Provider      string `json:"provider"`
	DisplayName   string `json:"display_name"`
	ContextWindow int    `json:"context_window"`
}

// Models is the built-in model catalog.
var Models = []ModelInfo{
	{ID: "claude-opus-4-6", Provider: "anthropic", DisplayName: "Claude Opus 4.6", ContextWindow: 200000},
	{ID: "claude-sonnet-4-5", Provider: "anthropic", DisplayName: "Claude Sonnet 4.5", ContextWindow: 200000},
	{ID: "gpt-5.2", Provider: "openai", DisplayName: "GPT-5.2", ContextWindow: 1047576},
	{ID: "gpt-5.2-mini", Provider: "openai", DisplayName: "GPT-5.2 Mini", ContextWindow: 1047576},
	{ID: "gpt-4o-mini", Provider: "openai", DisplayName: "GPT-4o Mini", ContextWindow: 128000},
	{ID: "gemini-3-pro", Provider: "gemini", DisplayName: "Gemini 3 Pro", ContextWindow: 1048576},
}

// GetModelInfo returns catalog data for a model ID, or nil if unknown.
func GetModelInfo(id string) *ModelInfo {
	for i := range Models {
		if Models[i].ID == id {
			return &Models[i]
		}
	}
	return nil
}

// DefaultModel returns the first catalog entry for a provider, or "" if the
// provider has none.
func DefaultModel(provider string) string {
	for i := range Models {
		if Models[i].Provider == provider {
			return Models[i].ID
		}
	}
	return ""
}
