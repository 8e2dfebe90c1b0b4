package agent

import "fmt"

// Memory counts steps and decides when the conversation should be compressed
// into a summary and restarted. It never talks to the model itself: the loop
// requests the summary, then calls Reset before opening the next window.
//
// Accounting policy: the window counter resets to zero exactly once per
// compression cycle, so after a reset the trigger cannot refire until a full
// threshold of further steps has elapsed. A cumulative total is kept
// separately for reporting only.
type Memory struct {
	// Threshold is the number of steps per compression window.
	// Zero or negative permanently disables compression for the run.
	Threshold int

	window int
	total  int
}

// NewMemory creates a Memory with the given compression threshold.
func NewMemory(threshold int) *Memory {
	return &Memory{Threshold: threshold}
}

// Increment records that one step completed.
func (m *Memory) Increment() {
	m.window++
	m.total++
}

// WindowSteps returns the step count within the current window.
func (m *Memory) WindowSteps() int { return m.window }

// TotalSteps returns the cumulative step count across all windows.
func (m *Memory) TotalSteps() int { return m.total }

// ShouldCompress reports whether it is time to compress the conversation.
func (m *Memory) ShouldCompress() bool {
	if m.Threshold <= 0 {
		return false
	}
	return m.window > 0 && m.window%m.Threshold == 0
}

// Reset zeroes the window counter after a compression cycle. Without this,
// ShouldCompress would fire again on the first step of the new window.
func (m *Memory) Reset() {
	m.window = 0
}

// SummaryPrompt asks the model for a free-text summary of the work so far.
// The conversation already carries full context, so no step log is attached.
const SummaryPrompt = "Please write a concise summary of all the work done so far in this session. " +
	"Include: what tasks were completed, key findings, files written, and any " +
	"important context the next session should know about."

const (
	summaryMarkerBegin = "=== CONTEXT FROM PREVIOUS SESSION ==="
	summaryMarkerEnd   = "=== END CONTEXT ==="
)

// FormatSummaryAsContext wraps a summary for use as the seed of a fresh
// conversation. The summary text appears verbatim between the markers, and
// the continuation instruction tells the model to pick up without repeating
// completed sub-steps.
func FormatSummaryAsContext(summary string) string {
	return fmt.Sprintf("%s\n%s\n%s\n\nContinue the task from where we left off. Do not repeat work that is already done.",
		summaryMarkerBegin, summary, summaryMarkerEnd)
}
