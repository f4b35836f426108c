package backend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
)

// Decision records why a backend was chosen, for status introspection
type Decision struct {
	Backend      string `json:"backend"`
	FileEstimate int    `json:"file_estimate"` // Capped at the probe ceiling
	Capped       bool   `json:"capped"`        // True when the walk hit the ceiling
	Reason       string `json:"reason"`
}

// Selector picks a backend for one workspace. The choice is made once, on
// first use, from a capped file-count probe: below the native threshold the
// in-process scanner's lower fixed overhead wins; above it ripgrep is
// preferred when installed. Independent selectors never share state, so
// engines in the same process cannot cross-contaminate.
type Selector struct {
	root            string
	native          SearchBackend
	ripgrep         SearchBackend
	probeCap        int
	nativeThreshold int
	ignoreDirs      map[string]struct{}

	once     sync.Once
	decision Decision
	chosen   SearchBackend
}

// NewSelector creates a selector for root. native must be non-nil; ripgrep
// may be nil when the external variant is not wired at all.
func NewSelector(root string, native, ripgrep SearchBackend, probeCap, nativeThreshold int, ignoreDirs map[string]struct{}) *Selector {
	return &Selector{
		root:            root,
		native:          native,
		ripgrep:         ripgrep,
		probeCap:        probeCap,
		nativeThreshold: nativeThreshold,
		ignoreDirs:      ignoreDirs,
	}
}

// Backend returns the selected backend, probing on first call only
func (s *Selector) Backend(ctx context.Context) SearchBackend {
	s.once.Do(func() { s.choose(ctx) })
	return s.chosen
}

// Decision returns the memoized selection rationale; it forces the probe if
// no query ran yet.
func (s *Selector) Decision(ctx context.Context) Decision {
	s.once.Do(func() { s.choose(ctx) })
	return s.decision
}

func (s *Selector) choose(ctx context.Context) {
	estimate, capped := s.countFiles(ctx)

	switch {
	case !capped && estimate < s.nativeThreshold:
		s.chosen = s.native
		s.decision = Decision{
			Backend:      s.native.Name(),
			FileEstimate: estimate,
			Reason:       fmt.Sprintf("small tree (%d files < %d)", estimate, s.nativeThreshold),
		}
	case s.ripgrep != nil && s.ripgrep.IsAvailable():
		s.chosen = s.ripgrep
		s.decision = Decision{
			Backend:      s.ripgrep.Name(),
			FileEstimate: estimate,
			Capped:       capped,
			Reason:       "large tree and external tool available",
		}
	default:
		s.chosen = s.native
		s.decision = Decision{
			Backend:      s.native.Name(),
			FileEstimate: estimate,
			Capped:       capped,
			Reason:       "large tree but external tool unavailable",
		}
	}
}

// errProbeDone stops the walk once the ceiling is reached
var errProbeDone = errors.New("probe ceiling reached")

// countFiles walks the tree until either the true count or the probe cap is
// reached, skipping ignored directories. The cap keeps selection cheap on
// huge trees: once the count is at the ceiling the exact number no longer
// changes the decision.
func (s *Selector) countFiles(ctx context.Context) (count int, capped bool) {
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.root {
				if _, ignored := s.ignoreDirs[d.Name()]; ignored {
					return fs.SkipDir
				}
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		count++
		if count >= s.probeCap {
			return errProbeDone
		}
		return nil
	})
	return count, errors.Is(err, errProbeDone)
}
