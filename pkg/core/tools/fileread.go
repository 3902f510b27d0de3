package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/halcyon-ai/halcyon/pkg/core"
	"github.com/halcyon-ai/halcyon/pkg/core/types"
)

// FileRead reads files confined to a base directory. Any resolved path
// escaping the base directory is rejected before the file is opened.
type FileRead struct {
	baseDir string
}

// NewFileRead creates the sandboxed file reader. baseDir defaults to
// "./data".
func NewFileRead(baseDir string) *FileRead {
	if baseDir == "" {
		baseDir = "./data"
	}
	return &FileRead{baseDir: baseDir}
}

func (f *FileRead) Descriptor() types.ToolDescriptor {
	return types.ToolDescriptor{
		Name:        "file_read",
		Description: "Read contents of a file",
		InputSchema: &types.JSONSchema{
			Type: "object",
			Properties: map[string]types.JSONSchema{
				"file_path": {Type: "string", Description: "Path to the file relative to the base directory"},
			},
			Required: []string{"file_path"},
		},
	}
}

func (f *FileRead) Execute(ctx context.Context, args map[string]any) (any, error) {
	rel, _ := args["file_path"].(string)
	if rel == "" {
		return nil, core.NewToolExecutionError("file_path is required")
	}

	base, err := filepath.Abs(f.baseDir)
	if err != nil {
		return nil, core.NewToolExecutionErrorf("resolve base directory: %v", err)
	}
	full, err := filepath.Abs(filepath.Join(base, rel))
	if err != nil {
		return nil, core.NewToolExecutionErrorf("resolve path: %v", err)
	}
	if full != base && !strings.HasPrefix(full, base+string(os.PathSeparator)) {
		return nil, core.NewToolExecutionError("invalid file path")
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return nil, core.NewToolExecutionErrorf("read file: %v", err)
	}

	return map[string]any{
		"file_path": rel,
		"content":   string(content),
		"size":      len(content),
	}, nil
}
