package backend

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/codectx/fastcontext/pkg/types"
)

// rgBinary is the executable probed for; overridable in tests
var rgBinary = "rg"

// Ripgrep shells out to an installed rg binary. Availability is probed once
// and memoized. Per the backend contract, a utility failure never surfaces
// as an error: the caller sees the same empty result shape the native
// backend would produce.
type Ripgrep struct {
	probeOnce sync.Once
	available bool
	path      string
}

// NewRipgrep creates the ripgrep backend. The binary is not probed until
// the first IsAvailable call.
func NewRipgrep() *Ripgrep {
	return &Ripgrep{}
}

// Name implements SearchBackend
func (r *Ripgrep) Name() string { return NameRipgrep }

// IsAvailable implements SearchBackend. The PATH probe runs once; the
// result holds for the backend's lifetime.
func (r *Ripgrep) IsAvailable() bool {
	r.probeOnce.Do(func() {
		path, err := exec.LookPath(rgBinary)
		if err == nil {
			r.available = true
			r.path = path
		}
	})
	return r.available
}

// Grep implements SearchBackend
func (r *Ripgrep) Grep(ctx context.Context, root, pattern string, maxResults int) ([]types.GrepMatch, error) {
	if !r.IsAvailable() {
		return []types.GrepMatch{}, nil
	}

	args := []string{
		"--line-number",
		"--no-heading",
		"--color", "never",
		"--sort", "path",
	}
	if maxResults > 0 {
		args = append(args, "--max-count", strconv.Itoa(maxResults))
	}
	args = append(args, "--regexp", pattern, ".")

	out, ok := r.run(ctx, root, args)
	if !ok {
		return []types.GrepMatch{}, nil
	}

	matches := make([]types.GrepMatch, 0)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 64*1024), maxScanLine)
	for scanner.Scan() {
		m, ok := parseVimgrepLine(scanner.Text())
		if !ok {
			continue
		}
		matches = append(matches, m)
		if maxResults > 0 && len(matches) >= maxResults {
			break
		}
	}
	return matches, nil
}

// Glob implements SearchBackend
func (r *Ripgrep) Glob(ctx context.Context, root, pattern string) ([]string, error) {
	if !r.IsAvailable() {
		return []string{}, nil
	}

	// rg matches -g globs against each path component, so a bare "*.go"
	// already applies recursively.
	args := []string{"--files", "--sort", "path", "--glob", pattern, "."}

	out, ok := r.run(ctx, root, args)
	if !ok {
		return []string{}, nil
	}

	paths := make([]string, 0)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		paths = append(paths, normalizeRgPath(line))
	}
	return paths, nil
}

// run executes rg under root and returns its stdout. ok is false on any
// failure other than "no matches" (rg exit code 1).
func (r *Ripgrep) run(ctx context.Context, root string, args []string) ([]byte, bool) {
	cmd := exec.CommandContext(ctx, r.path, args...)
	cmd.Dir = root

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = nil

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			// Exit code 1 means no matches, not failure.
			return stdout.Bytes(), true
		}
		return nil, false
	}
	return stdout.Bytes(), true
}

// parseVimgrepLine parses "path:line:text" output. Windows drive letters do
// not appear because rg runs with the workspace as its working directory.
func parseVimgrepLine(line string) (types.GrepMatch, bool) {
	first := strings.Index(line, ":")
	if first <= 0 {
		return types.GrepMatch{}, false
	}
	second := strings.Index(line[first+1:], ":")
	if second < 0 {
		return types.GrepMatch{}, false
	}
	second += first + 1

	lineNo, err := strconv.Atoi(line[first+1 : second])
	if err != nil || lineNo < 1 {
		return types.GrepMatch{}, false
	}

	return types.GrepMatch{
		Path:    normalizeRgPath(line[:first]),
		Line:    lineNo,
		Snippet: line[second+1:],
	}, true
}

func normalizeRgPath(p string) string {
	p = strings.TrimPrefix(p, "./")
	return strings.ReplaceAll(p, "\\", "/")
}
