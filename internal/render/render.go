// Package render derives a display-agnostic view of the goal list. Render
// is pure: the same input always yields the same View, and neither the HTML
// templates nor the terminal printer compute anything beyond what is here.
package render

import (
	"time"

	"savings/internal/core"
)

// BackgroundKind says how a card background should be drawn.
type BackgroundKind string

const (
	BackgroundNone  BackgroundKind = ""
	BackgroundColor BackgroundKind = "color"
	BackgroundImage BackgroundKind = "image"
)

// Input is the slice of application state rendering depends on.
type Input struct {
	Goals          []core.Goal
	FilterCategory string
	SortBy         core.SortKey
	Theme          core.Theme
	OpenMenuID     int
}

// Options controls locale-ish formatting.
type Options struct {
	Currency   string
	DateLayout string
	Location   *time.Location
	Catalog    core.Catalog
}

// DefaultOptions formats in USD with US-style dates in local time.
func DefaultOptions() Options {
	return Options{
		Currency:   core.DefaultCurrency,
		DateLayout: "1/2/2006",
		Location:   time.Local,
		Catalog:    core.DefaultCatalog(),
	}
}

type Background struct {
	Kind  BackgroundKind
	Value string
	// Light is set for colour backgrounds bright enough to need dark text.
	Light bool
}

type Card struct {
	ID            int
	Name          string
	Notes         string
	Category      string
	CategoryLabel string
	MenuOpen      bool
	Progress      int
	Complete      bool
	Current       string
	Target        string
	CurrentValue  float64
	TargetValue   float64
	CreatedAt     string
	Created       string
	Background    Background
}

type Stats struct {
	TotalGoals int
	TotalSaved string
	Completed  int
}

type View struct {
	Theme          core.Theme
	FilterCategory string
	SortBy         core.SortKey
	Empty          bool
	Cards          []Card
	Stats          Stats
}

// Render filters and sorts the goals and derives one card per visible goal.
// Stats always cover the full list.
func Render(in Input, opts Options) View {
	if opts.DateLayout == "" {
		opts.DateLayout = DefaultOptions().DateLayout
	}

	filter := in.FilterCategory
	if filter == "" {
		filter = core.FilterAll
	}
	sortBy := in.SortBy
	if sortBy == "" {
		sortBy = core.SortDateDesc
	}
	theme := in.Theme
	if !theme.IsValid() {
		theme = core.ThemeLight
	}

	visible := core.FilterAndSort(in.Goals, filter, sortBy)
	cards := make([]Card, 0, len(visible))
	for _, g := range visible {
		cards = append(cards, card(g, in.OpenMenuID, opts))
	}

	summary := core.Summarize(in.Goals)

	return View{
		Theme:          theme,
		FilterCategory: filter,
		SortBy:         sortBy,
		Empty:          len(cards) == 0,
		Cards:          cards,
		Stats: Stats{
			TotalGoals: summary.TotalGoals,
			TotalSaved: core.FormatCurrency(summary.TotalSaved, opts.Currency),
			Completed:  summary.Completed,
		},
	}
}

func card(g core.Goal, openMenuID int, opts Options) Card {
	progress := core.Progress(g)
	return Card{
		ID:            g.ID,
		Name:          g.Name,
		Notes:         g.Notes,
		Category:      g.Category,
		CategoryLabel: opts.Catalog.Label(g.Category),
		MenuOpen:      openMenuID != 0 && g.ID == openMenuID,
		Progress:      progress,
		Complete:      progress >= 100,
		Current:       core.FormatCurrency(g.CurrentAmount, opts.Currency),
		Target:        core.FormatCurrency(g.TargetAmount, opts.Currency),
		CurrentValue:  g.CurrentAmount,
		TargetValue:   g.TargetAmount,
		CreatedAt:     g.CreatedAt,
		Created:       core.FormatDate(g.CreatedAt, opts.DateLayout, opts.Location),
		Background:    background(g.Background),
	}
}

func background(value string) Background {
	switch {
	case core.IsHexColor(value):
		return Background{Kind: BackgroundColor, Value: value, Light: core.IsLightColor(value)}
	case core.IsImageData(value):
		return Background{Kind: BackgroundImage, Value: value}
	default:
		return Background{}
	}
}
