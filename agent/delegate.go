package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anpc849/kagentic/llm"
)

// TaskKey is the single parameter a delegation tool accepts.
const TaskKey = "task"

// AgentTool exposes a worker Agent as a Tool so a managing agent can
// delegate tasks to it through the ordinary action interface. The worker
// keeps one persistent conversation across invocations, so a follow-up task
// sees everything the worker already did. Invocations are serialized.
type AgentTool struct {
	worker *Agent
	desc   Descriptor

	mu   sync.Mutex
	conv *llm.Conversation
}

// NewAgentTool wraps a worker agent as a delegation tool. The tool's name is
// the worker's name and the description tells the manager that the worker
// remembers prior tasks.
func NewAgentTool(worker *Agent) *AgentTool {
	description := worker.description
	if description == "" {
		description = "A delegated sub-agent that can work on tasks independently."
	}
	description += "\nCall this tool again with a follow-up task to refine the result; " +
		"the agent remembers all prior context."

	return &AgentTool{
		worker: worker,
		desc: Descriptor{
			Name:        worker.name,
			Description: description,
			Params: map[string]ParamSpec{
				TaskKey: {
					Type:        "string",
					Description: "The task or instruction for the agent to carry out.",
					Required:    true,
				},
			},
			OutputType: "string",
		},
	}
}

// Descriptor implements Tool.
func (t *AgentTool) Descriptor() Descriptor { return t.desc }

// Invoke runs the worker against the delegated task on its persistent
// conversation and returns only the worker's final answer. Intermediate
// steps stay inside the worker; a worker that exhausts its budget reports
// that as its answer rather than failing the manager's step.
func (t *AgentTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	task, ok := StringArg(args, TaskKey)
	if !ok || task == "" {
		return "", fmt.Errorf("delegation to %q requires a %q argument", t.desc.Name, TaskKey)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conv == nil {
		t.conv = llm.NewConversation(t.desc.Name + "_worker")
		t.conv.Append(llm.SystemMessage(t.worker.systemPrompt))
	}

	runID := uuid.New().String()
	log := t.worker.logger.With(
		zap.String("run_id", runID),
		zap.String("delegated_task", task))

	// Worker windows never compress: the conversation must persist across
	// invocations, and replacing it would erase the shared history.
	memory := NewMemory(0)
	result := &RunResult{RunID: runID}

	wr, err := t.worker.runWindow(ctx, t.conv, BuildTaskPrompt(task),
		t.worker.cfg.MaxSteps, memory, result, runID, log)
	if err != nil {
		return "", err
	}

	if wr.kind != windowTerminal {
		return fmt.Sprintf("[%s] Reached max steps without a final answer.", t.desc.Name), nil
	}

	if m, ok := wr.outcome.Parsed.(map[string]any); ok {
		b, err := json.Marshal(m)
		if err == nil {
			return string(b), nil
		}
	}
	return wr.outcome.Output, nil
}
