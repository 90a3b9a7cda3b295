package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"savings/internal/core"
	"savings/internal/render"
)

// Theme colors
var (
	ColorBorder    = lipgloss.Color("#3A3F46")
	ColorTextMuted = lipgloss.Color("#6C757D")
	ColorText      = lipgloss.Color("#E9ECEF")
	ColorAccent    = lipgloss.Color("#007BFF")
	ColorGreen     = lipgloss.Color("#28A745")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	nameStyle = lipgloss.NewStyle().
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	fillStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)
)

const (
	cardWidth = 44
	barWidth  = 24
)

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(cardWidth).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderStats renders the three summary figures on one line.
func RenderStats(s render.Stats) string {
	cell := func(label, value string) string {
		return labelStyle.Render(label) + " " + value
	}
	return strings.Join([]string{
		cell("Goals", fmt.Sprint(s.TotalGoals)),
		cell("Saved", s.TotalSaved),
		cell("Completed", fmt.Sprint(s.Completed)),
	}, mutedStyle.Render("  │  "))
}

// RenderProgressBar renders a text progress bar for a 0..100 percentage.
func RenderProgressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return fillStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
}

// RenderCard renders one goal card. Colour backgrounds tint the border;
// image backgrounds are flagged since a terminal cannot show them.
func RenderCard(c render.Card, now time.Time) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(cardWidth).
		Padding(0, 1)
	if c.Background.Kind == render.BackgroundColor {
		border = border.BorderForeground(lipgloss.Color(c.Background.Value))
	}

	var b strings.Builder
	b.WriteString(nameStyle.Render(c.Name))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(c.CategoryLabel))
	if c.Background.Kind == render.BackgroundImage {
		b.WriteString(mutedStyle.Render("  [image]"))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s / %s  %d%%", c.Current, c.Target, c.Progress)
	if c.Complete {
		b.WriteString(fillStyle.Render("  ✓"))
	}
	b.WriteString("\n")
	b.WriteString(RenderProgressBar(c.Progress, barWidth))
	b.WriteString("\n")

	if c.Notes != "" {
		b.WriteString(c.Notes)
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("Created " + created(c, now)))

	return border.Render(b.String())
}

// created prints the creation date with a relative age when the stored
// timestamp parses.
func created(c render.Card, now time.Time) string {
	t, err := time.Parse(core.TimestampLayout, c.CreatedAt)
	if err != nil {
		return c.Created
	}
	return fmt.Sprintf("%s (%s)", c.Created, humanize.RelTime(t, now, "ago", "from now"))
}

// RenderView renders the stats line followed by every visible card.
func RenderView(v render.View, now time.Time) string {
	var b strings.Builder
	b.WriteString(RenderStats(v.Stats))
	b.WriteString("\n\n")

	if v.Empty {
		b.WriteString(mutedStyle.Render("  No savings goals yet."))
		b.WriteString("\n")
		return b.String()
	}
	for _, c := range v.Cards {
		b.WriteString(RenderCard(c, now))
		b.WriteString("\n")
	}
	return b.String()
}
