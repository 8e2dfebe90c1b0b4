package agent

import (
	"fmt"
	"sort"
	"strings"
)

// Prompt building is pure: identical inputs always render identical text.
// Nothing here reads the clock, the filesystem, or any other ambient state,
// which keeps prompts testable and cache-stable.

const systemPromptHeader = `You are an expert AI assistant that solves tasks step by step using a ReAct loop.

## How you must respond
Every response MUST be a valid JSON object matching this schema:
{
  "thought": "<optional: your internal reasoning (not shown to user)>",
  "action": {
    "name": "<name of the tool to call>",
    "arguments": {"<param>": "<value>"}
  }
}

## Rules
1. Think step-by-step in "thought" before choosing a tool.
2. Call exactly ONE tool per response.
3. When you have a complete answer, use action.name = "final_answer" and action.arguments = {"answer": "<your answer>"}.
4. NEVER output plain text outside of the JSON structure.
5. Use the tool results (provided as "Observation:") to decide your next step.
6. If a tool call fails, read the error carefully and try a corrected call.
`

const taskPromptTemplate = `Here is the task you must solve:

%s

Begin by thinking about the task, then choose the right tool to start solving it.
Remember: respond ONLY with a JSON object matching the required schema.`

// BuildSystemPrompt renders the full system prompt: turn protocol, one block
// per tool, optional extra instructions, and the output contract section
// when one is set.
func BuildSystemPrompt(tools []Descriptor, extraInstructions string, contract *OutputContract) string {
	var sb strings.Builder
	sb.WriteString(systemPromptHeader)

	sb.WriteString("\n## Available tools\n")
	for _, desc := range tools {
		sb.WriteString(formatToolBlock(desc))
	}

	sb.WriteString("\n## Important\n")
	sb.WriteString("- Only use one of the tool names listed above.\n")
	sb.WriteString("- action.arguments must be a JSON object.\n")

	if extra := strings.TrimSpace(extraInstructions); extra != "" {
		sb.WriteString("\n## Additional Instructions\n")
		sb.WriteString(extra)
		sb.WriteString("\n")
	}

	if contract != nil {
		sb.WriteString(formatContractSection(contract))
	}

	return sb.String()
}

// BuildTaskPrompt wraps a task as the first user message of a run.
func BuildTaskPrompt(task string) string {
	return fmt.Sprintf(taskPromptTemplate, task)
}

// formatToolBlock renders one tool: name, description, parameter table.
func formatToolBlock(desc Descriptor) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n### %s\n%s\nParameters:\n", desc.Name, desc.Description)

	if len(desc.Params) == 0 {
		sb.WriteString("  (no parameters)\n")
		return sb.String()
	}

	names := make([]string, 0, len(desc.Params))
	for name := range desc.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := desc.Params[name]
		req := "optional"
		if p.Required {
			req = "required"
		}
		fmt.Fprintf(&sb, "  - %s (%s, %s): %s\n", name, p.Type, req, p.Description)
	}
	return sb.String()
}

// formatContractSection renders the structured-output schema and a worked
// example of a terminal call satisfying it.
func formatContractSection(contract *OutputContract) string {
	var sb strings.Builder
	sb.WriteString("\n## Structured Output Schema\n")
	fmt.Fprintf(&sb, "Your final answer MUST be a JSON object that strictly follows this %s schema.\n", contract.Name())
	sb.WriteString("When calling `final_answer`, set `answer` to a JSON encoding of this object.\n\n")
	sb.WriteString("```json\n")
	sb.WriteString(contract.SchemaJSON())
	sb.WriteString("\n```\n\n")
	sb.WriteString("Example terminal call:\n")
	fmt.Fprintf(&sb, "{\"action\": {\"name\": \"final_answer\", \"arguments\": {\"answer\": %q}}}\n", contract.Example())
	sb.WriteString("Do NOT include any text outside the JSON object in the `answer` value.\n")
	return sb.String()
}

// StepSchemaJSON is the schema hint sent with every model call so backends
// with native structured output can enforce the step shape.
const StepSchemaJSON = `{
  "type": "object",
  "properties": {
    "thought": {"type": "string", "description": "Internal reasoning before acting. Not shown to the user."},
    "action": {
      "type": "object",
      "properties": {
        "name": {"type": "string", "description": "Name of the tool to call."},
        "arguments": {"type": "object", "description": "Arguments to pass to the tool."}
      },
      "required": ["name"]
    }
  },
  "required": ["action"]
}`
