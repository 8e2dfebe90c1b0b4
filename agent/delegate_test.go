package agent

import (
	"context"
	"strings"
	"testing"
)

func TestAgentToolDescriptor(t *testing.T) {
	worker := mustAgent(t, &scriptedClient{}, Config{
		Name:        "researcher",
		Description: "Finds facts.",
	})
	tool := NewAgentTool(worker)

	desc := tool.Descriptor()
	if desc.Name != "researcher" {
		t.Errorf("unexpected tool name: %q", desc.Name)
	}
	if !strings.Contains(desc.Description, "Finds facts.") {
		t.Errorf("worker description not surfaced: %q", desc.Description)
	}
	if !strings.Contains(desc.Description, "remembers all prior context") {
		t.Errorf("description should advertise persistence: %q", desc.Description)
	}
	spec, ok := desc.Params[TaskKey]
	if !ok || !spec.Required {
		t.Error("task parameter must be required")
	}
}

func TestAgentToolRequiresTask(t *testing.T) {
	worker := mustAgent(t, &scriptedClient{}, Config{Name: "worker"})
	tool := NewAgentTool(worker)

	if _, err := tool.Invoke(context.Background(), map[string]any{}); err == nil {
		t.Fatal("expected error for missing task")
	}
}

func TestAgentToolReturnsOnlyFinalAnswer(t *testing.T) {
	workerClient := &scriptedClient{replies: []string{
		stepReply("echo", `{"text": "intermediate"}`),
		finalReply("the finding"),
	}}
	worker := mustAgent(t, workerClient, Config{
		Name:  "researcher",
		Tools: []Tool{echoTool("echo")},
	})
	tool := NewAgentTool(worker)

	out, err := tool.Invoke(context.Background(), map[string]any{TaskKey: "Find it."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "the finding" {
		t.Errorf("only the final answer should surface, got %q", out)
	}
	if strings.Contains(out, "intermediate") {
		t.Error("intermediate observations must not leak to the caller")
	}
}

func TestAgentToolConversationPersists(t *testing.T) {
	workerClient := &scriptedClient{replies: []string{
		finalReply("first result"),
		finalReply("second result"),
	}}
	worker := mustAgent(t, workerClient, Config{Name: "worker"})
	tool := NewAgentTool(worker)

	if _, err := tool.Invoke(context.Background(), map[string]any{TaskKey: "Task one."}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := tool.Invoke(context.Background(), map[string]any{TaskKey: "Task two."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "second result" {
		t.Errorf("unexpected second answer: %q", out)
	}

	// Both tasks landed on the same conversation, with one system message.
	if workerClient.convs[0] != workerClient.convs[1] {
		t.Fatal("follow-up task must reuse the worker conversation")
	}
	transcript := workerClient.convs[0].Transcript()
	if !strings.Contains(transcript, "Task one.") || !strings.Contains(transcript, "Task two.") {
		t.Error("both tasks should be visible in the worker transcript")
	}
	if strings.Count(transcript, "You are an expert AI assistant") != 1 {
		t.Error("the worker system prompt must be seeded exactly once")
	}
}

func TestAgentToolWorkerExhaustion(t *testing.T) {
	same := stepReply("echo", `{"text": "spin"}`)
	workerClient := &scriptedClient{replies: []string{same, same, same}}
	worker := mustAgent(t, workerClient, Config{
		Name:     "worker",
		Tools:    []Tool{echoTool("echo")},
		MaxSteps: 2,
		// Loop detection stays quiet so exhaustion is what we exercise.
		LoopWindow: -1,
	})
	tool := NewAgentTool(worker)

	out, err := tool.Invoke(context.Background(), map[string]any{TaskKey: "Spin."})
	if err != nil {
		t.Fatalf("worker exhaustion must not be an error: %v", err)
	}
	if !strings.Contains(out, "Reached max steps") {
		t.Errorf("expected exhaustion notice, got %q", out)
	}
	if !strings.Contains(out, "worker") {
		t.Errorf("notice should name the worker: %q", out)
	}
}

func TestAgentToolStructuredWorkerAnswer(t *testing.T) {
	c, err := NewContract(&userRecord{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	workerClient := &scriptedClient{replies: []string{
		finalReply(`{"name": "Alice", "email": "alice@example.com"}`),
	}}
	worker := mustAgent(t, workerClient, Config{Name: "worker", Contract: c})
	tool := NewAgentTool(worker)

	out, err := tool.Invoke(context.Background(), map[string]any{TaskKey: "Build the record."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"email":"alice@example.com"`) {
		t.Errorf("structured answer should serialize the validated payload: %q", out)
	}
}

func TestManagerDelegatesToWorker(t *testing.T) {
	workerClient := &scriptedClient{replies: []string{
		finalReply("42"),
	}}
	worker := mustAgent(t, workerClient, Config{
		Name:        "calculator",
		Description: "Does arithmetic.",
	})

	managerClient := &scriptedClient{replies: []string{
		stepReply("calculator", `{"task": "Compute 40 + 2."}`),
		finalReply("The worker says 42."),
	}}
	manager := mustAgent(t, managerClient, Config{
		Name:    "manager",
		Workers: []*Agent{worker},
	})

	result, err := manager.Run(context.Background(), "What is 40 + 2?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Answer != "The worker says 42." {
		t.Errorf("unexpected answer: %q", result.Answer)
	}

	// The worker's answer comes back to the manager as an observation.
	if !strings.Contains(managerClient.sent[1], "42") {
		t.Errorf("manager observation should carry the worker answer: %q", managerClient.sent[1])
	}

	// Manager and worker conversations stay separate.
	managerTranscript := managerClient.convs[0].Transcript()
	if strings.Contains(managerTranscript, "Compute 40 + 2.") && workerClient.convs[0] == managerClient.convs[0] {
		t.Error("worker must run on its own conversation")
	}
	workerTranscript := workerClient.convs[0].Transcript()
	if !strings.Contains(workerTranscript, "Compute 40 + 2.") {
		t.Error("the delegated task should open the worker conversation")
	}
	if strings.Contains(workerTranscript, "What is 40 + 2?") {
		t.Error("the manager's task must not leak into the worker conversation")
	}
}
