package agent

import (
	"context"
	"fmt"
)

// TerminalToolName is the reserved action name that ends a run. Every agent
// has exactly one tool under this name.
const TerminalToolName = "final_answer"

// AnswerKey is the argument carrying the terminal answer payload.
const AnswerKey = "answer"

// finalAnswerTool is the agent's exit signal. The step executor intercepts
// it before Invoke would run; Invoke only exists so the tool satisfies the
// Tool interface and shows up in the prompt like any other capability.
type finalAnswerTool struct {
	desc Descriptor
}

func newFinalAnswerTool(contract *OutputContract) *finalAnswerTool {
	t := &finalAnswerTool{
		desc: Descriptor{
			Name: TerminalToolName,
			Description: "Use this tool when you have a complete, well-formed answer for the user. " +
				"Calling this tool ends the run and returns the answer immediately.",
			Params: map[string]ParamSpec{
				AnswerKey: {
					Type:        "string",
					Description: "The final answer to return to the user.",
					Required:    true,
				},
			},
			OutputType: "string",
		},
	}
	if contract != nil {
		// The tool description is re-rendered into every model turn, so
		// embedding the schema hint here keeps it in the model's active
		// attention window even for long contexts.
		hint := contract.Hint()
		t.desc.Description = fmt.Sprintf(
			"Use this tool when you have a complete answer for the user. "+
				"STRUCTURED OUTPUT REQUIRED: the %q value must be a JSON object matching %s %s.",
			AnswerKey, contract.Name(), hint)
		t.desc.Params = map[string]ParamSpec{
			AnswerKey: {
				Type:        "string",
				Description: fmt.Sprintf("A JSON-encoded %s object with fields %s. Example: %s", contract.Name(), hint, contract.Example()),
				Required:    true,
			},
		}
	}
	return t
}

func (t *finalAnswerTool) Descriptor() Descriptor { return t.desc }

func (t *finalAnswerTool) Invoke(_ context.Context, args map[string]any) (string, error) {
	answer, _ := StringArg(args, AnswerKey)
	return answer, nil
}
