package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// DecodeError reports that no decode strategy could turn the model output
// into a Step. The loop treats it as a transient model failure eligible for
// retry, never as a fatal error on its own.
type DecodeError struct {
	Raw      string
	Attempts []string
}

func (e *DecodeError) Error() string {
	preview := e.Raw
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	return fmt.Sprintf("failed to decode step (%s): %q", strings.Join(e.Attempts, "; "), preview)
}

// stepEnvelope mirrors the JSON shape the model must emit each turn.
type stepEnvelope struct {
	Thought string `json:"thought"`
	Action  *struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"action"`
}

// DecodeStep turns raw model output into a Step. Strategies, in strict
// priority order, stopping at the first success:
//
//  1. strict parse of the entire text;
//  2. lenient JSON repair of the entire text, re-validated;
//  3. extraction of the first balanced object containing an "action" key,
//     then lenient-parsed.
//
// Well-formed output always succeeds at strategy 1.
func DecodeStep(raw string) (*Step, error) {
	var attempts []string

	if step, err := decodeStrict(raw); err == nil {
		return step, nil
	} else {
		attempts = append(attempts, "strict: "+err.Error())
	}

	if repaired, err := jsonrepair.JSONRepair(raw); err == nil {
		if step, err := decodeStrict(repaired); err == nil {
			return step, nil
		} else {
			attempts = append(attempts, "repair: "+err.Error())
		}
	} else {
		attempts = append(attempts, "repair: "+err.Error())
	}

	if candidate := extractActionObject(raw); candidate != "" {
		if repaired, err := jsonrepair.JSONRepair(candidate); err == nil {
			if step, err := decodeStrict(repaired); err == nil {
				return step, nil
			} else {
				attempts = append(attempts, "extract: "+err.Error())
			}
		} else {
			attempts = append(attempts, "extract: "+err.Error())
		}
	} else {
		attempts = append(attempts, "extract: no action object found")
	}

	return nil, &DecodeError{Raw: raw, Attempts: attempts}
}

// decodeStrict parses text that must already be valid JSON matching the step
// envelope. Companion fields beyond the envelope are retained in Step.Extra.
func decodeStrict(text string) (*Step, error) {
	text = strings.TrimSpace(text)

	var env stepEnvelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return nil, err
	}
	if env.Action == nil || env.Action.Name == "" {
		return nil, fmt.Errorf("missing action.name")
	}

	args, canonical := normalizeArguments(env.Action.Arguments)

	var all map[string]json.RawMessage
	_ = json.Unmarshal([]byte(text), &all)
	extra := make(map[string]json.RawMessage)
	for k, v := range all {
		if k == "thought" || k == "action" {
			continue
		}
		extra[k] = v
	}
	if len(extra) == 0 {
		extra = nil
	}

	return &Step{
		Thought: env.Thought,
		Action: Action{
			Name:      env.Action.Name,
			Arguments: args,
			Raw:       canonical,
		},
		Extra: extra,
	}, nil
}

// extractActionObject scans for the first balanced JSON object containing an
// "action" key. Quotes and escapes are honored so braces inside strings do
// not unbalance the scan.
func extractActionObject(text string) string {
	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}
		end := matchBrace(text, start)
		if end < 0 {
			continue
		}
		candidate := text[start : end+1]
		if strings.Contains(candidate, `"action"`) {
			return candidate
		}
	}
	return ""
}

// matchBrace returns the index of the brace closing the object opened at
// start, or -1 if the object never closes.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return i
				}
			}
		}
	}
	return -1
}
