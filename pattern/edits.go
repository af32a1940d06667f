package pattern

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrOverlappingEdits is returned when two edits touch the same bytes.
var ErrOverlappingEdits = errors.New("overlapping edits")

// Edit replaces text[Start:End] with Replacement. Offsets refer to the
// unedited text; End is exclusive.
type Edit struct {
	Start       int
	End         int
	Replacement string
}

// ApplyEdits applies non-overlapping edits to text and returns a new string.
// Offsets all refer to the input, so edits may be given in any order.
func ApplyEdits(text string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return text, nil
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End < sorted[j].End
		}
		return sorted[i].Start < sorted[j].Start
	})

	for i, e := range sorted {
		if e.Start < 0 || e.End < e.Start {
			return "", fmt.Errorf("invalid edit[%d]: range [%d,%d)", i, e.Start, e.End)
		}
		if e.End > len(text) {
			return "", fmt.Errorf("invalid edit[%d]: range out of bounds", i)
		}
		if i > 0 && e.Start < sorted[i-1].End {
			return "", fmt.Errorf("edit[%d] at %d: %w", i, e.Start, ErrOverlappingEdits)
		}
	}

	var b strings.Builder
	grow := len(text)
	for _, e := range sorted {
		grow += len(e.Replacement) - (e.End - e.Start)
	}
	b.Grow(grow)

	last := 0
	for _, e := range sorted {
		b.WriteString(text[last:e.Start])
		b.WriteString(e.Replacement)
		last = e.End
	}
	b.WriteString(text[last:])
	return b.String(), nil
}
