package types

import (
	"fmt"
	"sort"
	"strings"
)

// FileMatch aggregates the line ranges matched within a single file.
// Ranges are kept sorted by start line and non-overlapping; inserting a
// range folds it with any existing overlapping ranges first.
type FileMatch struct {
	Path       string      `json:"path"`
	Ranges     []LineRange `json:"ranges"`
	Relevance  float64     `json:"relevance"`
	MatchCount int         `json:"match_count"`
}

// NewFileMatch creates an empty FileMatch for the given path
func NewFileMatch(path string) *FileMatch {
	return &FileMatch{Path: path}
}

// AddRange inserts a range, folding it with every existing overlapping range
// so the range list stays sorted and non-overlapping. Each call counts as
// one match regardless of folding.
func (fm *FileMatch) AddRange(r LineRange) {
	kept := fm.Ranges[:0]
	for _, existing := range fm.Ranges {
		if r.Overlaps(existing) {
			merged, err := r.Merge(existing)
			if err == nil {
				r = merged
				continue
			}
		}
		kept = append(kept, existing)
	}
	fm.Ranges = append(kept, r)

	sort.Slice(fm.Ranges, func(i, j int) bool {
		return fm.Ranges[i].Start < fm.Ranges[j].Start
	})

	fm.MatchCount++
	if r.Relevance > fm.Relevance {
		fm.Relevance = r.Relevance
	}
}

// TotalLines returns the number of lines covered across all ranges
func (fm *FileMatch) TotalLines() int {
	total := 0
	for _, r := range fm.Ranges {
		total += r.Lines()
	}
	return total
}

// Clone returns a deep copy of the match
func (fm *FileMatch) Clone() *FileMatch {
	cp := &FileMatch{
		Path:       fm.Path,
		Relevance:  fm.Relevance,
		MatchCount: fm.MatchCount,
		Ranges:     make([]LineRange, len(fm.Ranges)),
	}
	copy(cp.Ranges, fm.Ranges)
	return cp
}

// FastContextResult is the aggregate returned by every search entry point.
// Files are unique by path and the result is mutated only through
// AddFileMatch; once returned to a caller the engine retains no reference.
type FastContextResult struct {
	Query          string       `json:"query"`
	Files          []*FileMatch `json:"files"`
	SearchTimeMs   int64        `json:"search_time_ms"`
	TurnsUsed      int          `json:"turns_used"`
	TotalToolCalls int          `json:"total_tool_calls"`
	FromCache      bool         `json:"from_cache"`
}

// NewFastContextResult creates an empty result for a query
func NewFastContextResult(query string) *FastContextResult {
	return &FastContextResult{Query: query, Files: []*FileMatch{}}
}

// AddFileMatch inserts a match. If the path is already present, the ranges
// are merged into the existing entry, match counts are summed, and the
// relevance is raised to the max of the two.
func (res *FastContextResult) AddFileMatch(fm *FileMatch) {
	for _, existing := range res.Files {
		if existing.Path != fm.Path {
			continue
		}
		added := 0
		for _, r := range fm.Ranges {
			existing.AddRange(r)
			added++
		}
		// AddRange counted one match per range; adjust to the true sum.
		existing.MatchCount += fm.MatchCount - added
		if fm.Relevance > existing.Relevance {
			existing.Relevance = fm.Relevance
		}
		return
	}
	res.Files = append(res.Files, fm)
}

// SortByRelevance orders files by relevance descending, path ascending for
// equal scores so ordering stays deterministic.
func (res *FastContextResult) SortByRelevance() {
	sort.SliceStable(res.Files, func(i, j int) bool {
		if res.Files[i].Relevance != res.Files[j].Relevance {
			return res.Files[i].Relevance > res.Files[j].Relevance
		}
		return res.Files[i].Path < res.Files[j].Path
	})
}

// TotalFiles returns the number of distinct files in the result
func (res *FastContextResult) TotalFiles() int {
	return len(res.Files)
}

// TotalMatches returns the sum of match counts across all files
func (res *FastContextResult) TotalMatches() int {
	total := 0
	for _, fm := range res.Files {
		total += fm.MatchCount
	}
	return total
}

// Clone returns a deep copy of the result
func (res *FastContextResult) Clone() *FastContextResult {
	cp := &FastContextResult{
		Query:          res.Query,
		SearchTimeMs:   res.SearchTimeMs,
		TurnsUsed:      res.TurnsUsed,
		TotalToolCalls: res.TotalToolCalls,
		FromCache:      res.FromCache,
		Files:          make([]*FileMatch, len(res.Files)),
	}
	for i, fm := range res.Files {
		cp.Files[i] = fm.Clone()
	}
	return cp
}

// ToDict converts the result into a generic map for JSON rendering
func (res *FastContextResult) ToDict() map[string]interface{} {
	files := make([]map[string]interface{}, len(res.Files))
	for i, fm := range res.Files {
		ranges := make([]map[string]interface{}, len(fm.Ranges))
		for j, r := range fm.Ranges {
			ranges[j] = map[string]interface{}{
				"start":     r.Start,
				"end":       r.End,
				"relevance": r.Relevance,
			}
		}
		files[i] = map[string]interface{}{
			"path":        fm.Path,
			"ranges":      ranges,
			"relevance":   fm.Relevance,
			"match_count": fm.MatchCount,
		}
	}
	return map[string]interface{}{
		"query":            res.Query,
		"files":            files,
		"total_files":      res.TotalFiles(),
		"total_matches":    res.TotalMatches(),
		"search_time_ms":   res.SearchTimeMs,
		"turns_used":       res.TurnsUsed,
		"total_tool_calls": res.TotalToolCalls,
		"from_cache":       res.FromCache,
	}
}

// ToContextString renders up to maxFiles entries into a single context block
// suitable for handing to a model. When includeContent is true, cached range
// content is inlined. A trailing line reports how many files were truncated.
func (res *FastContextResult) ToContextString(maxFiles int, includeContent bool) string {
	if maxFiles <= 0 || maxFiles > len(res.Files) {
		maxFiles = len(res.Files)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search results for %q (%d files, %d matches):\n",
		res.Query, res.TotalFiles(), res.TotalMatches())

	for _, fm := range res.Files[:maxFiles] {
		fmt.Fprintf(&b, "\n%s (relevance %.2f, %d matches)\n", fm.Path, fm.Relevance, fm.MatchCount)
		for _, r := range fm.Ranges {
			fmt.Fprintf(&b, "  lines %d-%d\n", r.Start, r.End)
			if includeContent && r.Content != "" {
				for _, line := range strings.Split(r.Content, "\n") {
					fmt.Fprintf(&b, "    %s\n", line)
				}
			}
		}
	}

	if truncated := len(res.Files) - maxFiles; truncated > 0 {
		fmt.Fprintf(&b, "\n... %d more files truncated\n", truncated)
	}

	return b.String()
}
