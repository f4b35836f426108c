package executor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codectx/fastcontext/internal/backend"
	"github.com/codectx/fastcontext/pkg/types"
)

// RegisterStandardTools binds the read-only workspace toolset against the
// given root and search backend. Paths in tool arguments are interpreted
// relative to root and may not escape it.
func RegisterStandardTools(e *Executor, root string, b backend.SearchBackend) {
	e.Register(types.ToolGrepSearch, grepTool(root, b))
	e.Register(types.ToolGlobSearch, globTool(root, b))
	e.Register(types.ToolReadFile, readFileTool(root))
	e.Register(types.ToolListDirectory, listDirectoryTool(root))
}

func grepTool(root string, b backend.SearchBackend) ToolFunc {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		pattern, err := stringArg(args, "pattern")
		if err != nil {
			return nil, err
		}
		maxResults := intArg(args, "max_results", 0)

		matches, err := b.Grep(ctx, root, pattern, maxResults)
		if err != nil {
			return nil, fmt.Errorf("grep %q: %w", pattern, err)
		}
		return matches, nil
	}
}

func globTool(root string, b backend.SearchBackend) ToolFunc {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		pattern, err := stringArg(args, "pattern")
		if err != nil {
			return nil, err
		}

		paths, err := b.Glob(ctx, root, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		return paths, nil
	}
}

func readFileTool(root string) ToolFunc {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		rel, err := stringArg(args, "path")
		if err != nil {
			return nil, err
		}
		full, err := resolvePath(root, rel)
		if err != nil {
			return nil, err
		}

		startLine := intArg(args, "start_line", 0)
		endLine := intArg(args, "end_line", 0)

		f, err := os.Open(full)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rel, err)
		}
		defer func() { _ = f.Close() }()

		var sb strings.Builder
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)

		lineNo := 0
		first, last := 0, 0
		for scanner.Scan() {
			lineNo++
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if startLine > 0 && lineNo < startLine {
				continue
			}
			if endLine > 0 && lineNo > endLine {
				break
			}
			if first == 0 {
				first = lineNo
			}
			last = lineNo
			sb.WriteString(scanner.Text())
			sb.WriteByte('\n')
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read %s: %w", rel, err)
		}

		return map[string]interface{}{
			"path":       rel,
			"content":    sb.String(),
			"start_line": first,
			"end_line":   last,
		}, nil
	}
}

func listDirectoryTool(root string) ToolFunc {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		rel := "."
		if raw, ok := args["path"]; ok {
			s, sok := raw.(string)
			if !sok {
				return nil, fmt.Errorf("argument path must be a string")
			}
			if s != "" {
				rel = s
			}
		}
		full, err := resolvePath(root, rel)
		if err != nil {
			return nil, err
		}

		entries, err := os.ReadDir(full)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", rel, err)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		out := make([]map[string]interface{}, 0, len(entries))
		for _, entry := range entries {
			item := map[string]interface{}{
				"name":   entry.Name(),
				"is_dir": entry.IsDir(),
			}
			if info, err := entry.Info(); err == nil && !entry.IsDir() {
				item["size"] = info.Size()
			}
			out = append(out, item)
		}
		return out, nil
	}
}

// resolvePath joins rel onto root and rejects traversal outside the
// workspace.
func resolvePath(root, rel string) (string, error) {
	if rel == "" {
		return "", types.ErrEmptyPath
	}
	if filepath.IsAbs(rel) || !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", fmt.Errorf("path %q escapes the workspace", rel)
	}
	return filepath.Join(root, filepath.FromSlash(rel)), nil
}

func stringArg(args map[string]interface{}, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", types.ErrMissingArg, key)
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("argument %s must be a non-empty string", key)
	}
	return s, nil
}

// intArg accepts both native ints and the float64 that JSON decoding
// produces.
func intArg(args map[string]interface{}, key string, fallback int) int {
	raw, ok := args[key]
	if !ok {
		return fallback
	}
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}
