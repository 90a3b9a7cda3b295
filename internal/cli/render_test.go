package cli

import (
	"strings"
	"testing"
	"time"

	"savings/internal/core"
	"savings/internal/render"
)

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		percent    int
		wantFilled int
	}{
		{0, 0},
		{50, 12},
		{100, 24},
		{130, 24},
		{-10, 0},
	}
	for _, tt := range tests {
		bar := RenderProgressBar(tt.percent, 24)
		if got := strings.Count(bar, "█"); got != tt.wantFilled {
			t.Errorf("RenderProgressBar(%d) filled = %d, want %d", tt.percent, got, tt.wantFilled)
		}
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != 24 {
			t.Errorf("RenderProgressBar(%d) width = %d, want 24", tt.percent, got)
		}
	}
}

func TestRenderView(t *testing.T) {
	now := time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC)
	goals := []core.Goal{
		{
			ID: 1, Name: "Vacation", TargetAmount: 3000, CurrentAmount: 1500,
			Category: "travel", Notes: "Beach", CreatedAt: "2024-03-15T10:00:00.000Z",
		},
		{
			ID: 2, Name: "Laptop", TargetAmount: 1200, CurrentAmount: 1200,
			Category: "electronics", CreatedAt: "2024-03-16T10:00:00.000Z", Background: "#28a745",
		},
	}
	opts := render.DefaultOptions()
	opts.Location = time.UTC
	view := render.Render(render.Input{Goals: goals}, opts)

	out := RenderView(view, now)
	for _, want := range []string{
		"Goals 2",
		"Completed 1",
		"Vacation",
		"Travel",
		"$1,500.00 / $3,000.00  50%",
		"Beach",
		"Laptop",
		"(2 days ago)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// Newest first.
	if strings.Index(out, "Laptop") > strings.Index(out, "Vacation") {
		t.Errorf("cards not sorted newest first:\n%s", out)
	}
}

func TestRenderViewEmpty(t *testing.T) {
	view := render.Render(render.Input{}, render.DefaultOptions())
	out := RenderView(view, time.Now())
	if !strings.Contains(out, "No savings goals yet.") {
		t.Errorf("empty view missing message:\n%s", out)
	}
}

func TestCreatedFallsBackOnBadTimestamp(t *testing.T) {
	c := render.Card{CreatedAt: "yesterday", Created: "Invalid Date"}
	if got := created(c, time.Now()); got != "Invalid Date" {
		t.Errorf("created() = %q", got)
	}
}
