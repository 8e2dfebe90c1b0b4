package toolkit

import (
	"context"
	"fmt"
	"strings"

	"github.com/anpc849/kagentic/agent"
)

const (
	// DefaultShellTimeoutMs bounds a shell command when no timeout is given.
	DefaultShellTimeoutMs = 120000

	// MaxShellTimeoutMs caps caller-supplied timeouts.
	MaxShellTimeoutMs = 600000
)

// ShellTool executes shell commands in the environment with a bounded
// timeout.
type ShellTool struct {
	env              Environment
	defaultTimeoutMs int
	maxTimeoutMs     int
}

// NewShellTool creates a shell tool. Non-positive timeouts fall back to the
// package defaults.
func NewShellTool(env Environment, defaultTimeoutMs, maxTimeoutMs int) *ShellTool {
	if defaultTimeoutMs <= 0 {
		defaultTimeoutMs = DefaultShellTimeoutMs
	}
	if maxTimeoutMs <= 0 {
		maxTimeoutMs = MaxShellTimeoutMs
	}
	return &ShellTool{env: env, defaultTimeoutMs: defaultTimeoutMs, maxTimeoutMs: maxTimeoutMs}
}

func (t *ShellTool) Descriptor() agent.Descriptor {
	return agent.Descriptor{
		Name:        "shell",
		Description: "Execute a shell command. Returns stdout, stderr, and exit code.",
		Params: map[string]agent.ParamSpec{
			"command": {
				Type:        "string",
				Description: "The command to run.",
				Required:    true,
			},
			"timeout_ms": {
				Type:        "integer",
				Description: "Override the default command timeout in milliseconds.",
			},
		},
		OutputType: "string",
	}
}

func (t *ShellTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	command, ok := agent.StringArg(args, "command")
	if !ok || command == "" {
		return "", fmt.Errorf("command is required")
	}
	timeoutMs, _ := agent.IntArg(args, "timeout_ms")
	if timeoutMs <= 0 {
		timeoutMs = t.defaultTimeoutMs
	}
	if timeoutMs > t.maxTimeoutMs {
		timeoutMs = t.maxTimeoutMs
	}

	result, err := t.env.ExecCommand(ctx, command, timeoutMs, "")
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(result.Output())

	if result.TimedOut {
		fmt.Fprintf(&sb, "\n\n[ERROR: Command timed out after %dms. Partial output is shown above.\n"+
			"You can retry with a longer timeout by setting the timeout_ms parameter.]", timeoutMs)
	}
	if result.ExitCode != 0 && !result.TimedOut {
		fmt.Fprintf(&sb, "\n\n[Exit code: %d]", result.ExitCode)
	}

	return sb.String(), nil
}
