package toolkit

import (
	"context"
	"fmt"
	"strings"

	"github.com/anpc849/kagentic/agent"
)

// GrepTool searches file contents with regex patterns.
type GrepTool struct {
	env Environment
}

func NewGrepTool(env Environment) *GrepTool {
	return &GrepTool{env: env}
}

func (t *GrepTool) Descriptor() agent.Descriptor {
	return agent.Descriptor{
		Name:        "grep",
		Description: "Search file contents using regex patterns. Returns matching lines with file paths and line numbers.",
		Params: map[string]agent.ParamSpec{
			"pattern": {
				Type:        "string",
				Description: "Regex pattern to search for.",
				Required:    true,
			},
			"path": {
				Type:        "string",
				Description: "Directory or file to search. Default: working directory.",
			},
			"glob_filter": {
				Type:        "string",
				Description: "File pattern filter (e.g., \"*.go\").",
			},
			"case_insensitive": {
				Type:        "boolean",
				Description: "Case insensitive search. Default: false.",
			},
			"max_results": {
				Type:        "integer",
				Description: "Maximum number of results. Default: 100.",
			},
		},
		OutputType: "string",
	}
}

func (t *GrepTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	pattern, ok := agent.StringArg(args, "pattern")
	if !ok || pattern == "" {
		return "", fmt.Errorf("pattern is required")
	}
	path, _ := agent.StringArg(args, "path")
	globFilter, _ := agent.StringArg(args, "glob_filter")
	caseInsensitive, _ := agent.BoolArg(args, "case_insensitive")
	maxResults, _ := agent.IntArg(args, "max_results")
	if maxResults <= 0 {
		maxResults = 100
	}

	return t.env.Grep(ctx, pattern, path, GrepOptions{
		GlobFilter:      globFilter,
		CaseInsensitive: caseInsensitive,
		MaxResults:      maxResults,
	})
}

// GlobTool finds files matching a glob pattern.
type GlobTool struct {
	env Environment
}

func NewGlobTool(env Environment) *GlobTool {
	return &GlobTool{env: env}
}

func (t *GlobTool) Descriptor() agent.Descriptor {
	return agent.Descriptor{
		Name:        "glob",
		Description: "Find files matching a glob pattern. Returns matching file paths.",
		Params: map[string]agent.ParamSpec{
			"pattern": {
				Type:        "string",
				Description: "Glob pattern (e.g., \"*.go\").",
				Required:    true,
			},
			"path": {
				Type:        "string",
				Description: "Base directory. Default: working directory.",
			},
		},
		OutputType: "string",
	}
}

func (t *GlobTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	pattern, ok := agent.StringArg(args, "pattern")
	if !ok || pattern == "" {
		return "", fmt.Errorf("pattern is required")
	}
	path, _ := agent.StringArg(args, "path")

	matches, err := t.env.Glob(pattern, path)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "No files matched the pattern.", nil
	}
	return strings.Join(matches, "\n"), nil
}

// CoreTools returns the standard tool set backed by env: shell, file
// read/write/edit, grep, and glob.
func CoreTools(env Environment) []agent.Tool {
	return []agent.Tool{
		NewShellTool(env, 0, 0),
		NewReadFileTool(env),
		NewWriteFileTool(env),
		NewEditFileTool(env),
		NewGrepTool(env),
		NewGlobTool(env),
	}
}
