package types

// LineRange represents a span of lines in a file. Start and End are 1-indexed
// and inclusive. Content is an optional cached copy of the spanned lines;
// it is discarded on merge because it no longer matches the widened span.
type LineRange struct {
	Start     int     `json:"start"`
	End       int     `json:"end"`
	Content   string  `json:"content,omitempty"`
	Relevance float64 `json:"relevance"`
}

// Validate checks the range invariants
func (r LineRange) Validate() error {
	if r.Start < 1 || r.End < r.Start {
		return ErrInvalidRange
	}
	if r.Relevance < 0 || r.Relevance > 1 {
		return ErrInvalidRelevanceScore
	}
	return nil
}

// Overlaps reports whether the two ranges share at least one line.
// Adjacent ranges (a.End+1 == b.Start) do not overlap.
func (r LineRange) Overlaps(other LineRange) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// Merge combines two overlapping ranges into their bounding union. The
// merged relevance is the max of the two; cached content is dropped since
// it no longer matches the new span. Merging non-overlapping ranges fails.
func (r LineRange) Merge(other LineRange) (LineRange, error) {
	if !r.Overlaps(other) {
		return LineRange{}, ErrNonOverlapping
	}

	merged := LineRange{
		Start:     minInt(r.Start, other.Start),
		End:       maxInt(r.End, other.End),
		Relevance: maxFloat(r.Relevance, other.Relevance),
	}
	return merged, nil
}

// Lines returns the number of lines covered by the range
func (r LineRange) Lines() int {
	return r.End - r.Start + 1
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
