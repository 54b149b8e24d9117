package rewrite

import (
	"fmt"
	"sort"

	"graft/internal/source"
)

// Edit replaces one span of the original text. Insertions use an empty span.
type Edit struct {
	Span    source.Span
	NewText string
}

// applyEdits splices a set of non-overlapping edits into src. Edits are
// sorted descending by start so earlier offsets stay valid while splicing.
func applyEdits(src string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return src, nil
	}
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start == sorted[j].Span.Start {
			return sorted[i].Span.End > sorted[j].Span.End
		}
		return sorted[i].Span.Start > sorted[j].Span.Start
	})

	for i := 1; i < len(sorted); i++ {
		// sorted[i] starts at or before sorted[i-1]; they conflict when
		// sorted[i] reaches into it.
		if sorted[i].Span.End > sorted[i-1].Span.Start && !sorted[i].Span.Empty() && !sorted[i-1].Span.Empty() {
			return "", fmt.Errorf("conflicting edits at %s and %s", sorted[i].Span, sorted[i-1].Span)
		}
	}

	out := []byte(src)
	for _, e := range sorted {
		start, end := int(e.Span.Start), int(e.Span.End)
		if start < 0 || end < start || end > len(out) {
			return "", fmt.Errorf("edit span %s out of range", e.Span)
		}
		suffix := append([]byte(nil), out[end:]...)
		out = append(append(out[:start], []byte(e.NewText)...), suffix...)
	}
	return string(out), nil
}
