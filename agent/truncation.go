package agent

import (
	"fmt"
	"strings"
)

// Observation truncation bounds what a single tool result can contribute to
// the conversation. Delegated sub-agent answers bypass this path: the worker
// already bounds its own output.

// TruncationMode specifies how output is truncated.
type TruncationMode string

const (
	TruncateHeadTail TruncationMode = "head_tail"
	TruncateTail     TruncationMode = "tail"
)

// DefaultObservationLimit is the character cap applied to a tool observation
// when no per-tool limit is configured.
const DefaultObservationLimit = 30000

// TruncateOutput applies character-based truncation to output.
func TruncateOutput(output string, maxChars int, mode TruncationMode) string {
	if maxChars <= 0 || len(output) <= maxChars {
		return output
	}

	removed := len(output) - maxChars
	switch mode {
	case TruncateTail:
		return fmt.Sprintf("[WARNING: Tool output was truncated. First %d characters were removed.]\n\n", removed) +
			output[len(output)-maxChars:]
	default:
		half := maxChars / 2
		return output[:half] +
			fmt.Sprintf("\n\n[WARNING: Tool output was truncated. %d characters were removed from the middle. "+
				"If you need to see specific parts, re-run the tool with more targeted parameters.]\n\n", removed) +
			output[len(output)-half:]
	}
}

// TruncateLines applies line-based truncation using a head/tail split.
func TruncateLines(output string, maxLines int) string {
	lines := strings.Split(output, "\n")
	if maxLines <= 0 || len(lines) <= maxLines {
		return output
	}

	headCount := maxLines / 2
	tailCount := maxLines - headCount
	omitted := len(lines) - headCount - tailCount

	return strings.Join(lines[:headCount], "\n") +
		fmt.Sprintf("\n[... %d lines omitted ...]\n", omitted) +
		strings.Join(lines[len(lines)-tailCount:], "\n")
}

// truncateObservation applies the per-tool limit (falling back to the
// default) in head/tail mode.
func truncateObservation(output, toolName string, limits map[string]int) string {
	maxChars := DefaultObservationLimit
	if limits != nil {
		if n, ok := limits[toolName]; ok {
			maxChars = n
		}
	}
	return TruncateOutput(output, maxChars, TruncateHeadTail)
}
