package agent

import (
	"strings"
	"testing"
)

func TestTruncateOutputUnderLimit(t *testing.T) {
	out := TruncateOutput("short output", 100, TruncateHeadTail)
	if out != "short output" {
		t.Errorf("output under limit must pass through, got %q", out)
	}
}

func TestTruncateOutputHeadTail(t *testing.T) {
	input := strings.Repeat("a", 500) + strings.Repeat("z", 500)
	out := TruncateOutput(input, 100, TruncateHeadTail)

	if !strings.Contains(out, "truncated") {
		t.Error("expected truncation warning")
	}
	if !strings.HasPrefix(out, "aaaa") {
		t.Error("head should be preserved")
	}
	if !strings.HasSuffix(out, "zzzz") {
		t.Error("tail should be preserved")
	}
}

func TestTruncateOutputTailMode(t *testing.T) {
	input := strings.Repeat("a", 500) + strings.Repeat("z", 500)
	out := TruncateOutput(input, 100, TruncateTail)

	if !strings.HasSuffix(out, "zzzz") {
		t.Error("tail mode should keep the end")
	}
	if strings.HasSuffix(out, "aaaa") {
		t.Error("tail mode should drop the start")
	}
}

func TestTruncateLines(t *testing.T) {
	var lines []string
	for i := 0; i < 100; i++ {
		lines = append(lines, "line")
	}
	out := TruncateLines(strings.Join(lines, "\n"), 10)
	if !strings.Contains(out, "lines omitted") {
		t.Error("expected omission marker")
	}
}

func TestTruncateObservationPerToolLimit(t *testing.T) {
	input := strings.Repeat("x", 200)
	out := truncateObservation(input, "shell", map[string]int{"shell": 50})
	if len(out) <= 50 {
		// Warning text is added on top of the kept content.
		t.Errorf("unexpected length %d", len(out))
	}
	if !strings.Contains(out, "truncated") {
		t.Error("expected truncation for tool over its limit")
	}

	// Another tool without an override keeps the default generous limit.
	if got := truncateObservation(input, "grep", map[string]int{"shell": 50}); got != input {
		t.Error("tool without override must use the default limit")
	}
}

func TestActionSignatureStability(t *testing.T) {
	a := actionSignature("shell", `{"command":"ls"}`)
	b := actionSignature("shell", `{"command":"ls"}`)
	c := actionSignature("shell", `{"command":"pwd"}`)

	if a != b {
		t.Error("identical actions must produce identical signatures")
	}
	if a == c {
		t.Error("different arguments must produce different signatures")
	}
	if !strings.HasPrefix(a, "shell:") {
		t.Errorf("signature should carry the tool name: %q", a)
	}
}

func TestDetectActionLoopSingleAction(t *testing.T) {
	sig := actionSignature("shell", `{"command":"ls"}`)
	sigs := []string{sig, sig, sig, sig, sig, sig}
	if !detectActionLoop(sigs, 6) {
		t.Error("expected loop detection for repeated identical action")
	}
}

func TestDetectActionLoopAlternatingPair(t *testing.T) {
	a := actionSignature("shell", `{"command":"ls"}`)
	b := actionSignature("read_file", `{"file_path":"x"}`)
	sigs := []string{a, b, a, b, a, b}
	if !detectActionLoop(sigs, 6) {
		t.Error("expected loop detection for alternating pair")
	}
}

func TestDetectActionLoopVariedActions(t *testing.T) {
	sigs := []string{
		actionSignature("shell", `{"command":"ls"}`),
		actionSignature("shell", `{"command":"pwd"}`),
		actionSignature("read_file", `{"file_path":"a"}`),
		actionSignature("read_file", `{"file_path":"b"}`),
		actionSignature("shell", `{"command":"date"}`),
		actionSignature("grep", `{"pattern":"x"}`),
	}
	if detectActionLoop(sigs, 6) {
		t.Error("varied actions must not trigger loop detection")
	}
}

func TestDetectActionLoopTooFewSteps(t *testing.T) {
	sig := actionSignature("shell", `{}`)
	if detectActionLoop([]string{sig, sig}, 6) {
		t.Error("fewer signatures than the window must not trigger")
	}
}
