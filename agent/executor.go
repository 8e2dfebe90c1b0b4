package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// executeStep runs one decoded step and always produces an Outcome. Unknown
// tools, tool faults, and contract violations become non-terminal corrective
// outcomes; nothing here terminates the loop except a valid terminal answer.
func (a *Agent) executeStep(ctx context.Context, step *Step) Outcome {
	name := step.Action.Name

	if name == TerminalToolName {
		return a.executeTerminal(step)
	}

	tool := a.registry.Get(name)
	if tool == nil {
		return Outcome{
			ToolName: name,
			Output: fmt.Sprintf("Unknown tool %q. Available tools: %s.",
				name, strings.Join(a.registry.Names(), ", ")),
			Correction: CorrectionUnknown,
		}
	}

	output, err := invokeWithRecover(ctx, tool, step.Action.Arguments)
	if err != nil {
		return Outcome{
			ToolName:   name,
			Output:     fmt.Sprintf("Tool %q raised %T: %v", name, err, err),
			Correction: CorrectionFault,
		}
	}

	// Delegated sub-agents bound their own answers; everything else gets the
	// observation cap.
	if _, isDelegate := tool.(*AgentTool); !isDelegate {
		output = truncateObservation(output, name, a.cfg.ObservationLimits)
	}

	return Outcome{ToolName: name, Output: output}
}

// executeTerminal handles the reserved final_answer action: extract the
// payload, validate against the output contract when one is set, and either
// finish the run or send a corrective observation back through the standard
// feedback path.
func (a *Agent) executeTerminal(step *Step) Outcome {
	raw := extractAnswerPayload(step)

	if a.contract == nil {
		return Outcome{ToolName: TerminalToolName, Output: raw, Terminal: true, Parsed: raw}
	}

	payload, err := a.contract.Validate(raw)
	if err != nil {
		// The model sometimes spreads the contract fields directly into the
		// arguments object instead of nesting them under "answer".
		if fallback, fbErr := a.contract.Validate(step.Action.Raw); fbErr == nil {
			payload = fallback
			raw = step.Action.Raw
			err = nil
		}
	}
	if err != nil {
		correction := fmt.Sprintf(
			"Your final_answer was rejected because the %q value did not match the required JSON schema.\n"+
				"Error: %v\n"+
				"Please call final_answer again with a properly JSON-encoded object matching this schema: %s\n"+
				"Example: {\"answer\": %q}",
			AnswerKey, err, a.contract.Hint(), a.contract.Example())
		return Outcome{
			ToolName:   TerminalToolName,
			Output:     correction,
			Correction: CorrectionContract,
		}
	}

	return Outcome{ToolName: TerminalToolName, Output: raw, Terminal: true, Parsed: payload}
}

// extractAnswerPayload pulls the answer out of the terminal action's
// arguments, falling back to the raw argument serialization when the
// expected key is absent.
func extractAnswerPayload(step *Step) string {
	v, present := step.Action.Arguments[AnswerKey]
	if !present {
		return step.Action.Raw
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return step.Action.Raw
	}
	return string(b)
}

// invokeWithRecover calls the tool inside a fault boundary: a panic is
// converted into an error so tool failures can never unwind the loop.
func invokeWithRecover(ctx context.Context, tool Tool, args map[string]any) (output string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &toolPanicError{value: r}
		}
	}()
	return tool.Invoke(ctx, args)
}

// toolPanicError wraps a recovered panic value as an error.
type toolPanicError struct {
	value any
}

func (e *toolPanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}
