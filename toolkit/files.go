package toolkit

import (
	"context"
	"fmt"
	"strings"

	"github.com/anpc849/kagentic/agent"
)

// ReadFileTool reads a file and returns line-numbered content.
type ReadFileTool struct {
	env Environment
}

func NewReadFileTool(env Environment) *ReadFileTool {
	return &ReadFileTool{env: env}
}

func (t *ReadFileTool) Descriptor() agent.Descriptor {
	return agent.Descriptor{
		Name:        "read_file",
		Description: "Read a file from the filesystem. Returns line-numbered content.",
		Params: map[string]agent.ParamSpec{
			"file_path": {
				Type:        "string",
				Description: "Path to the file to read.",
				Required:    true,
			},
			"offset": {
				Type:        "integer",
				Description: "1-based line number to start reading from.",
			},
			"limit": {
				Type:        "integer",
				Description: "Maximum number of lines to read. Default: 2000.",
			},
		},
		OutputType: "string",
	}
}

func (t *ReadFileTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	filePath, ok := agent.StringArg(args, "file_path")
	if !ok || filePath == "" {
		return "", fmt.Errorf("file_path is required")
	}
	offset, _ := agent.IntArg(args, "offset")
	limit, _ := agent.IntArg(args, "limit")
	if limit == 0 {
		limit = 2000
	}
	return t.env.ReadFile(filePath, offset, limit)
}

// WriteFileTool writes full file content, creating parent directories as
// needed.
type WriteFileTool struct {
	env Environment
}

func NewWriteFileTool(env Environment) *WriteFileTool {
	return &WriteFileTool{env: env}
}

func (t *WriteFileTool) Descriptor() agent.Descriptor {
	return agent.Descriptor{
		Name:        "write_file",
		Description: "Write content to a file. Creates the file and parent directories if needed.",
		Params: map[string]agent.ParamSpec{
			"file_path": {
				Type:        "string",
				Description: "Path to write to.",
				Required:    true,
			},
			"content": {
				Type:        "string",
				Description: "The full file content to write.",
				Required:    true,
			},
		},
		OutputType: "string",
	}
}

func (t *WriteFileTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	filePath, ok := agent.StringArg(args, "file_path")
	if !ok || filePath == "" {
		return "", fmt.Errorf("file_path is required")
	}
	content, ok := agent.StringArg(args, "content")
	if !ok {
		return "", fmt.Errorf("content is required")
	}
	if err := t.env.WriteFile(filePath, content); err != nil {
		return "", err
	}
	return fmt.Sprintf("Successfully wrote %d bytes to %s", len(content), filePath), nil
}

// EditFileTool replaces an exact string occurrence in a file. The old text
// must be unique unless replace_all is set.
type EditFileTool struct {
	env Environment
}

func NewEditFileTool(env Environment) *EditFileTool {
	return &EditFileTool{env: env}
}

func (t *EditFileTool) Descriptor() agent.Descriptor {
	return agent.Descriptor{
		Name:        "edit_file",
		Description: "Replace an exact string occurrence in a file. The old_string must be unique in the file unless replace_all is true.",
		Params: map[string]agent.ParamSpec{
			"file_path": {
				Type:        "string",
				Description: "Path to the file to edit.",
				Required:    true,
			},
			"old_string": {
				Type:        "string",
				Description: "Exact text to find in the file.",
				Required:    true,
			},
			"new_string": {
				Type:        "string",
				Description: "Replacement text.",
				Required:    true,
			},
			"replace_all": {
				Type:        "boolean",
				Description: "Replace all occurrences. Default: false.",
			},
		},
		OutputType: "string",
	}
}

func (t *EditFileTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	filePath, ok := agent.StringArg(args, "file_path")
	if !ok || filePath == "" {
		return "", fmt.Errorf("file_path is required")
	}
	oldString, ok := agent.StringArg(args, "old_string")
	if !ok {
		return "", fmt.Errorf("old_string is required")
	}
	newString, _ := agent.StringArg(args, "new_string")
	replaceAll, _ := agent.BoolArg(args, "replace_all")

	content, err := t.env.ReadRaw(filePath)
	if err != nil {
		return "", fmt.Errorf("file not found: %s", filePath)
	}

	count := strings.Count(content, oldString)
	if count == 0 {
		return "", fmt.Errorf("old_string not found in %s", filePath)
	}
	if count > 1 && !replaceAll {
		return "", fmt.Errorf("old_string found %d times in %s. Provide more context to make it unique, or set replace_all=true", count, filePath)
	}

	var newContent string
	replacements := 1
	if replaceAll {
		newContent = strings.ReplaceAll(content, oldString, newString)
		replacements = count
	} else {
		newContent = strings.Replace(content, oldString, newString, 1)
	}

	if err := t.env.WriteFile(filePath, newContent); err != nil {
		return "", err
	}
	return fmt.Sprintf("Successfully replaced %d occurrence(s) in %s", replacements, filePath), nil
}
