// Package agent implements the kagentic orchestration core: a ReAct loop
// that drives a model through reason-act-observe cycles until it produces a
// terminal answer.
//
// The package is organized around these concepts:
//
//   - Step / Action: the structured shape the model must emit every turn,
//     with a multi-strategy decoder tolerant of malformed JSON.
//   - Registry / Tool: name-to-capability mapping used both to render the
//     system prompt and to dispatch calls.
//   - Memory: step counting and the summarize-and-restart compression cycle.
//   - Agent: the loop state machine tying model calls, step execution, and
//     compression together.
//   - AgentTool: wraps a whole worker Agent as a single callable tool with
//     its own persistent conversation (manager/worker delegation).
//
// # Quick Start
//
//	client, _ := llm.NewGollmClient("anthropic")
//	ag, _ := agent.New(client, &agent.Config{
//	    Tools:    []agent.Tool{toolkit.NewShell(nil, 0, 0)},
//	    MaxSteps: 10,
//	})
//	result, err := ag.Run(ctx, "What is the capital of France?")
package agent

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Action is one tool invocation requested by the model: a tool name plus its
// arguments, normalized to a canonical mapping regardless of whether the
// model supplied a native JSON object or a string-encoded one.
type Action struct {
	// Name of the tool to call, or TerminalToolName to finish the run.
	Name string
	// Arguments in canonical mapping form.
	Arguments map[string]any
	// Raw is the canonical JSON serialization of Arguments, kept for audit
	// logging and for the terminal-answer fallback path.
	Raw string
}

// Step is one turn's complete decoded output. Never mutated after decode.
type Step struct {
	Thought string
	Action  Action
	// Extra holds companion fields the model supplied beyond the step
	// schema. They are retained, not dropped.
	Extra map[string]json.RawMessage
}

// CorrectionReason classifies why a non-terminal outcome is corrective
// rather than a genuine observation.
type CorrectionReason string

const (
	CorrectionNone     CorrectionReason = ""
	CorrectionUnknown  CorrectionReason = "unknown_tool"
	CorrectionFault    CorrectionReason = "tool_fault"
	CorrectionContract CorrectionReason = "contract_violation"
)

// Outcome is the result of executing one step. Failures are outcomes too:
// the executor converts unknown tools, tool faults, and contract violations
// into non-terminal outcomes whose Output describes the problem, so control
// flow stays data.
type Outcome struct {
	ToolName   string
	Output     string
	Terminal   bool
	Parsed     any
	Correction CorrectionReason
}

// StepRecord is one entry in the run-level ordered step log.
type StepRecord struct {
	Index    int    `json:"index"`
	Thought  string `json:"thought,omitempty"`
	ToolName string `json:"tool_name"`
	Output   string `json:"output"`
	Terminal bool   `json:"terminal"`
	Parsed   any    `json:"parsed,omitempty"`
}

// normalizeArguments converts a raw arguments value into the canonical
// mapping representation. The input may be a JSON object, a JSON string
// containing an (optionally malformed) object, or absent. Normalizing an
// already-canonical value yields the identical result.
func normalizeArguments(raw json.RawMessage) (map[string]any, string) {
	if len(raw) == 0 {
		return map[string]any{}, "{}"
	}

	trimmed := strings.TrimSpace(string(raw))

	// String-encoded arguments: unquote first, then parse the payload.
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
			return parseArgumentText(inner)
		}
	}

	return parseArgumentText(trimmed)
}

// parseArgumentText parses text into an argument map, falling back to
// lenient repair for malformed JSON. Non-object payloads normalize to an
// empty map; the raw text survives in Action.Raw via the caller.
func parseArgumentText(text string) (map[string]any, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return map[string]any{}, "{}"
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(text), &args); err != nil {
		repaired, repErr := jsonrepair.JSONRepair(text)
		if repErr != nil || json.Unmarshal([]byte(repaired), &args) != nil {
			// Not an object. Keep the text verbatim so the terminal-answer
			// fallback can still use it.
			return map[string]any{}, text
		}
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, canonicalJSON(args)
}

// canonicalJSON serializes an argument map. encoding/json writes map keys in
// sorted order at every level, so equal mappings always produce
// byte-identical output.
func canonicalJSON(args map[string]any) string {
	b, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// StringArg extracts a string argument from an argument mapping.
func StringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IntArg extracts an integer argument from an argument mapping.
func IntArg(args map[string]any, key string) (int, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

// BoolArg extracts a boolean argument from an argument mapping.
func BoolArg(args map[string]any, key string) (bool, bool) {
	v, ok := args[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
