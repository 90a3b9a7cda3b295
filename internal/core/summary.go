package core

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Summary aggregates the whole goal list, regardless of any active filter.
type Summary struct {
	TotalGoals int
	TotalSaved float64
	Completed  int
}

// Summarize computes totals over goals.
func Summarize(goals []Goal) Summary {
	s := Summary{TotalGoals: len(goals)}
	for _, g := range goals {
		s.TotalSaved += g.CurrentAmount
		if g.IsComplete() {
			s.Completed++
		}
	}
	return s
}

// Progress is min(100, round(current/target*100)), or 0 for a zero target.
func Progress(g Goal) int {
	if g.TargetAmount <= 0 {
		return 0
	}
	pct := math.Floor(g.CurrentAmount/g.TargetAmount*100 + 0.5)
	switch {
	case pct > 100:
		return 100
	case pct < 0:
		return 0
	}
	return int(pct)
}

// FilterAndSort returns a new slice holding the goals in category (or all of
// them for FilterAll), ordered by key. Unknown keys sort newest first.
func FilterAndSort(goals []Goal, category string, key SortKey) []Goal {
	out := make([]Goal, 0, len(goals))
	for _, g := range goals {
		if category == "" || category == FilterAll || g.Category == category {
			out = append(out, g)
		}
	}

	switch key {
	case SortProgressDesc:
		sort.SliceStable(out, func(i, j int) bool { return Progress(out[i]) > Progress(out[j]) })
	case SortTargetDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].TargetAmount > out[j].TargetAmount })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Created().After(out[j].Created()) })
	}
	return out
}

// FormatDate renders a goal timestamp with layout in loc. Unparseable
// timestamps render as an empty string.
func FormatDate(createdAt, layout string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return ""
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(layout)
}

// IsHexColor reports whether s is a #rrggbb colour.
func IsHexColor(s string) bool {
	return hexColor.MatchString(s)
}

// IsImageData reports whether s is an inline data:image reference.
func IsImageData(s string) bool {
	return strings.HasPrefix(s, "data:image/")
}

// IsLightColor reports whether text drawn on hex should be dark, using the
// perceived brightness (299R + 587G + 114B) / 1000 > 150.
func IsLightColor(hex string) bool {
	if !IsHexColor(hex) {
		return false
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return false
	}
	r, g, b := c.RGB255()
	brightness := float64(int(r)*299+int(g)*587+int(b)*114) / 1000
	return brightness > 150
}
