package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anpc849/kagentic/llm"
)

const (
	// DefaultMaxSteps bounds a run when the config does not say otherwise.
	DefaultMaxSteps = 10

	// DefaultModelRetries is how many times a single reasoning request is
	// attempted before the run is declared model-unavailable.
	DefaultModelRetries = 3

	// DefaultLoopWindow is the number of trailing actions examined for
	// repeating patterns.
	DefaultLoopWindow = 6

	// ExhaustedAnswer is the sentinel answer reported when the step budget
	// runs out before the model produces a terminal action.
	ExhaustedAnswer = "Max steps reached without a final answer."
)

// Config describes an agent before construction. Zero values fall back to
// the defaults above.
type Config struct {
	// Name identifies the agent in logs, events, and delegation descriptors.
	Name string

	// Description is surfaced to a managing agent when this agent is wrapped
	// as a delegation tool.
	Description string

	// Tools are registered alongside the reserved final_answer tool.
	Tools []Tool

	// Workers are sub-agents exposed to this agent as delegation tools.
	Workers []*Agent

	// MaxSteps bounds the total number of reason/act cycles per run.
	MaxSteps int

	// CompressThreshold triggers summarize-and-restart every N steps within
	// a conversation window. Zero disables compression.
	CompressThreshold int

	// ExtraInstructions are appended to the system prompt verbatim.
	ExtraInstructions string

	// Contract, when set, gates final answers behind JSON schema validation.
	Contract *OutputContract

	// ModelRetries bounds attempts per reasoning request.
	ModelRetries int

	// LoopWindow is the trailing action window for loop detection. Negative
	// disables detection.
	LoopWindow int

	// ObservationLimits overrides the per-tool observation cap by tool name.
	ObservationLimits map[string]int

	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// EventBuffer sizes the event channel.
	EventBuffer int
}

// DefaultConfig returns a Config with the standard limits and no tools.
func DefaultConfig(name string) Config {
	return Config{
		Name:         name,
		MaxSteps:     DefaultMaxSteps,
		ModelRetries: DefaultModelRetries,
		LoopWindow:   DefaultLoopWindow,
	}
}

// Agent is a ReAct orchestrator: it drives a model through structured
// reason/act cycles, executes tool calls, and feeds observations back until
// a terminal answer arrives or the step budget runs out.
//
// An Agent is safe for concurrent runs; all mutable run state is per-call.
type Agent struct {
	name         string
	description  string
	client       llm.Client
	registry     *Registry
	contract     *OutputContract
	cfg          Config
	systemPrompt string
	logger       *zap.Logger
	emitter      *EventEmitter
}

// RunResult is the outcome of a completed run.
type RunResult struct {
	// RunID is the unique identifier assigned to this run.
	RunID string

	// Answer is the terminal answer text, or ExhaustedAnswer when the step
	// budget ran out.
	Answer string

	// Parsed is the contract-validated payload when a contract is set,
	// otherwise the raw answer string. Nil on exhaustion.
	Parsed any

	// Steps is the ordered record of every executed step.
	Steps []StepRecord

	// TotalSteps counts steps across all compression windows.
	TotalSteps int

	// Exhausted reports that the budget ran out before a final answer.
	Exhausted bool
}

// New builds an Agent from the config. The tool registry, delegation
// wrappers, and system prompt are assembled once here; construction fails on
// duplicate or reserved tool names.
func New(client llm.Client, cfg Config) (*Agent, error) {
	if client == nil {
		return nil, fmt.Errorf("agent: client is required")
	}
	if cfg.Name == "" {
		cfg.Name = "agent"
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if cfg.ModelRetries <= 0 {
		cfg.ModelRetries = DefaultModelRetries
	}
	if cfg.LoopWindow == 0 {
		cfg.LoopWindow = DefaultLoopWindow
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := NewRegistry()
	for _, t := range cfg.Tools {
		if t.Descriptor().Name == TerminalToolName {
			return nil, fmt.Errorf("agent: tool name %q is reserved", TerminalToolName)
		}
		if err := registry.Register(t); err != nil {
			return nil, fmt.Errorf("agent: %w", err)
		}
	}

	a := &Agent{
		name:        cfg.Name,
		description: cfg.Description,
		client:      client,
		registry:    registry,
		contract:    cfg.Contract,
		cfg:         cfg,
		logger:      logger.With(zap.String("agent", cfg.Name)),
		emitter:     NewEventEmitter(cfg.EventBuffer),
	}

	for _, w := range cfg.Workers {
		if w == nil {
			return nil, fmt.Errorf("agent: nil worker")
		}
		if err := registry.Register(NewAgentTool(w)); err != nil {
			return nil, fmt.Errorf("agent: %w", err)
		}
	}

	if err := registry.Register(newFinalAnswerTool(cfg.Contract)); err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}

	a.systemPrompt = BuildSystemPrompt(registry.Descriptors(), cfg.ExtraInstructions, cfg.Contract)
	return a, nil
}

// Name returns the agent's configured name.
func (a *Agent) Name() string { return a.name }

// SystemPrompt returns the rendered system prompt.
func (a *Agent) SystemPrompt() string { return a.systemPrompt }

// Events returns the channel of run events. Events are dropped rather than
// blocking the loop when the channel is full.
func (a *Agent) Events() <-chan RunEvent { return a.emitter.Events() }

// Close releases the event channel. Pending Runs keep working; their events
// are silently dropped.
func (a *Agent) Close() { a.emitter.Close() }

// Run drives the loop to completion on a fresh conversation. The only error
// return is model unavailability after bounded retries; exhaustion is a
// normal result with Exhausted set.
func (a *Agent) Run(ctx context.Context, task string) (*RunResult, error) {
	runID := uuid.New().String()
	log := a.logger.With(zap.String("run_id", runID))
	memory := NewMemory(a.cfg.CompressThreshold)

	result := &RunResult{RunID: runID}
	remaining := a.cfg.MaxSteps
	seed := ""
	window := 1

	log.Info("run started", zap.String("task", task), zap.Int("max_steps", remaining))
	a.emit(EventRunStart, runID, map[string]any{"task": task, "max_steps": remaining})

	for remaining > 0 {
		conv := llm.NewConversation(fmt.Sprintf("%s_run_%d", a.name, window))
		conv.Append(llm.SystemMessage(a.systemPrompt))

		opening := BuildTaskPrompt(task)
		if seed != "" {
			opening = FormatSummaryAsContext(seed) + "\n\n" + opening
		}

		wr, err := a.runWindow(ctx, conv, opening, remaining, memory, result, runID, log)
		if err != nil {
			a.emit(EventError, runID, map[string]any{"error": err.Error()})
			log.Error("run failed", zap.Error(err))
			return nil, err
		}

		switch wr.kind {
		case windowTerminal:
			result.Answer = wr.outcome.Output
			result.Parsed = wr.outcome.Parsed
			result.TotalSteps = memory.TotalSteps()
			log.Info("run finished", zap.Int("steps", result.TotalSteps))
			a.emit(EventRunEnd, runID, map[string]any{"steps": result.TotalSteps, "exhausted": false})
			return result, nil

		case windowCompressed:
			consumed := memory.WindowSteps()
			memory.Reset()
			remaining -= consumed
			seed = wr.summary
			window++
			log.Info("context compressed",
				zap.Int("window", window),
				zap.Int("consumed", consumed),
				zap.Int("remaining", remaining))
			a.emit(EventCompression, runID, map[string]any{
				"window":    window,
				"consumed":  consumed,
				"remaining": remaining,
			})

		case windowExhausted:
			remaining = 0
		}
	}

	result.Answer = ExhaustedAnswer
	result.TotalSteps = memory.TotalSteps()
	result.Exhausted = true
	log.Warn("run exhausted", zap.Int("steps", result.TotalSteps))
	a.emit(EventRunEnd, runID, map[string]any{"steps": result.TotalSteps, "exhausted": true})
	return result, nil
}

type windowKind int

const (
	windowTerminal windowKind = iota
	windowCompressed
	windowExhausted
)

type windowResult struct {
	kind    windowKind
	outcome Outcome
	summary string
}

// runWindow drives reason/act cycles on one conversation until a terminal
// answer, a compression trigger, or the budget. The opening message carries
// the task (and any summary seed); subsequent messages are observations.
func (a *Agent) runWindow(ctx context.Context, conv *llm.Conversation, opening string, budget int, memory *Memory, result *RunResult, runID string, log *zap.Logger) (windowResult, error) {
	var signatures []string

	step, err := a.requestStep(ctx, conv, opening, log)
	if err != nil {
		return windowResult{}, err
	}

	for i := 0; i < budget; i++ {
		a.emit(EventStep, runID, map[string]any{
			"thought": step.Thought,
			"tool":    step.Action.Name,
		})
		a.emit(EventToolCall, runID, map[string]any{
			"tool":      step.Action.Name,
			"arguments": step.Action.Arguments,
		})

		outcome := a.executeStep(ctx, step)
		memory.Increment()

		record := StepRecord{
			Index:    memory.TotalSteps(),
			Thought:  step.Thought,
			ToolName: outcome.ToolName,
			Output:   outcome.Output,
			Terminal: outcome.Terminal,
			Parsed:   outcome.Parsed,
		}
		result.Steps = append(result.Steps, record)

		if outcome.Correction != CorrectionNone {
			log.Warn("corrective observation",
				zap.String("tool", outcome.ToolName),
				zap.String("reason", string(outcome.Correction)))
			a.emit(EventCorrection, runID, map[string]any{
				"tool":   outcome.ToolName,
				"reason": string(outcome.Correction),
			})
		} else {
			a.emit(EventToolResult, runID, map[string]any{
				"tool":     outcome.ToolName,
				"terminal": outcome.Terminal,
			})
		}

		if outcome.Terminal {
			return windowResult{kind: windowTerminal, outcome: outcome}, nil
		}

		if memory.ShouldCompress() {
			summary, err := a.requestSummary(ctx, conv, log)
			if err != nil {
				return windowResult{}, err
			}
			return windowResult{kind: windowCompressed, summary: summary}, nil
		}

		// Budget spent; do not request a step that will never execute.
		if i == budget-1 {
			break
		}

		observation := fmt.Sprintf("Observation from %q:\n%s", outcome.ToolName, outcome.Output)
		observation += a.loopWarning(&signatures, step, runID, log)

		step, err = a.requestStep(ctx, conv, observation, log)
		if err != nil {
			return windowResult{}, err
		}
	}

	return windowResult{kind: windowExhausted}, nil
}

// requestStep sends text to the model and decodes the reply into a Step,
// retrying up to ModelRetries times. Retries re-prompt the same conversation
// sequentially; the text is appended only once. A structured response from
// the provider skips the decode waterfall.
func (a *Agent) requestStep(ctx context.Context, conv *llm.Conversation, text string, log *zap.Logger) (*Step, error) {
	hint := &llm.SchemaHint{Name: "react_step", Schema: json.RawMessage(StepSchemaJSON)}

	var lastErr error
	for attempt := 1; attempt <= a.cfg.ModelRetries; attempt++ {
		var resp *llm.RawResponse
		var err error
		if attempt == 1 {
			resp, err = a.client.Send(ctx, conv, text, hint)
		} else {
			resp, err = a.client.Respond(ctx, conv, hint)
		}
		if err != nil {
			lastErr = err
			log.Warn("model request failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		step, derr := DecodeStep(resp.Body())
		if derr != nil {
			lastErr = derr
			log.Warn("undecodable model reply",
				zap.Int("attempt", attempt),
				zap.Error(derr))
			continue
		}
		return step, nil
	}

	return nil, fmt.Errorf("model unavailable after %d attempts: %w", a.cfg.ModelRetries, lastErr)
}

// requestSummary asks the model for a work summary on the current
// conversation. The reply is free text; no schema hint is sent.
func (a *Agent) requestSummary(ctx context.Context, conv *llm.Conversation, log *zap.Logger) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= a.cfg.ModelRetries; attempt++ {
		var resp *llm.RawResponse
		var err error
		if attempt == 1 {
			resp, err = a.client.Send(ctx, conv, SummaryPrompt, nil)
		} else {
			resp, err = a.client.Respond(ctx, conv, nil)
		}
		if err != nil {
			lastErr = err
			log.Warn("summary request failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		return resp.Body(), nil
	}
	return "", fmt.Errorf("model unavailable after %d attempts: %w", a.cfg.ModelRetries, lastErr)
}

// loopWarning records the step's action signature and, when a repeating
// pattern is detected, returns a steering note to append to the observation.
func (a *Agent) loopWarning(signatures *[]string, step *Step, runID string, log *zap.Logger) string {
	if a.cfg.LoopWindow < 0 {
		return ""
	}
	canonical, err := json.Marshal(step.Action.Arguments)
	if err != nil {
		canonical = []byte("{}")
	}
	*signatures = append(*signatures, actionSignature(step.Action.Name, string(canonical)))
	if !detectActionLoop(*signatures, a.cfg.LoopWindow) {
		return ""
	}
	log.Warn("repeating action pattern detected", zap.String("tool", step.Action.Name))
	a.emit(EventLoopWarning, runID, map[string]any{"tool": step.Action.Name})
	return "\n\nNote: you appear to be repeating the same action with the same arguments. " +
		"The result will not change. Try a different approach or call final_answer with your best answer."
}

func (a *Agent) emit(kind EventKind, runID string, data map[string]any) {
	a.emitter.Emit(RunEvent{
		Kind:      kind,
		Timestamp: time.Now(),
		RunID:     runID,
		Data:      data,
	})
}
