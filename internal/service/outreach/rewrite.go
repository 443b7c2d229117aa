package outreach

import "sort"

// Edit replaces the rune range [Start, End) of a body with Text.
type Edit struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Rewrite applies rich-text edits to body verbatim. Offsets refer to the
// original body; edits are applied last to first so earlier offsets stay
// valid, and out-of-range offsets are clamped. Merge tokens in Text are not
// expanded here.
func Rewrite(body string, edits ...Edit) string {
	if len(edits) == 0 {
		return body
	}
	ordered := make([]Edit, len(edits))
	copy(ordered, edits)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start > ordered[j].Start })

	runes := []rune(body)
	for _, e := range ordered {
		start := clamp(e.Start, 0, len(runes))
		end := clamp(e.End, start, len(runes))
		next := make([]rune, 0, len(runes)-(end-start)+len(e.Text))
		next = append(next, runes[:start]...)
		next = append(next, []rune(e.Text)...)
		next = append(next, runes[end:]...)
		runes = next
	}
	return string(runes)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
