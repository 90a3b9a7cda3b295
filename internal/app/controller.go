// Package app owns the savings state and the handlers that change it.
//
// Every mutating handler follows the same sequence under one lock:
// mutate, persist, re-render, close the open modal, return a toast.
// Persistence failures are logged and never undo the in-memory change.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"savings/internal/core"
	"savings/internal/log"
	"savings/internal/render"
	"savings/internal/storage"
)

// Options configures a Controller. Zero values fall back to defaults.
type Options struct {
	Catalog       core.Catalog
	UndoWindow    time.Duration
	MaxImageBytes int64
	Render        render.Options
	Logger        *log.Logger

	// Clock and AfterFunc are replaced in tests.
	Clock     func() time.Time
	AfterFunc func(d time.Duration, f func())
}

const (
	defaultUndoWindow    = 7 * time.Second
	defaultMaxImageBytes = 2 * 1024 * 1024
)

type Controller struct {
	mu      sync.Mutex
	state   State
	deleted *undoBuffer
	view    render.View

	store  Persister
	opts   Options
	logger *log.Logger
	events *log.StructuredLogger
}

func New(store Persister, opts Options) *Controller {
	if len(opts.Catalog.Categories) == 0 {
		opts.Catalog = core.DefaultCatalog()
	}
	if len(opts.Catalog.Swatches) == 0 {
		opts.Catalog.Swatches = core.DefaultCatalog().Swatches
	}
	if opts.UndoWindow <= 0 {
		opts.UndoWindow = defaultUndoWindow
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = defaultMaxImageBytes
	}
	if opts.Render.DateLayout == "" {
		opts.Render = render.DefaultOptions()
	}
	opts.Render.Catalog = opts.Catalog
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}

	c := &Controller{
		state:   defaultState(),
		deleted: newUndoBuffer(opts.UndoWindow),
		store:   store,
		opts:    opts,
		logger:  opts.Logger.WithComponent(log.ComponentGoals),
		events:  log.NewStructuredLogger(opts.Logger),
	}
	c.rerender()
	return c
}

// Load replaces the state with the persisted snapshot. A missing snapshot
// keeps the defaults; an unreadable one is logged and resets to an empty
// list. Load never fails.
func (c *Controller) Load(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := defaultState()
	snap, err := c.store.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.logger.InfoContext(ctx, "No saved goals, starting empty")
	case errors.Is(err, storage.ErrMalformed):
		c.events.LogError(ctx, "Saved goals are corrupt, starting empty", err, log.ComponentStorage, log.OpLoad, nil)
	case err != nil:
		c.events.LogError(ctx, "Failed to load saved goals, starting empty", err, log.ComponentStorage, log.OpLoad, nil)
	default:
		st = fromSnapshot(snap, c.opts.Catalog)
		c.logger.InfoContext(ctx, "Loaded saved goals", "goals", len(st.Goals), "next_id", st.NextID)
	}

	c.state = st
	c.deleted = newUndoBuffer(c.opts.UndoWindow)
	c.rerender()
}

// fromSnapshot applies per-field defaults and keeps NextID ahead of every
// stored id.
func fromSnapshot(snap storage.Snapshot, catalog core.Catalog) State {
	st := defaultState()
	if snap.Savings != nil {
		st.Goals = snap.Savings
	}
	if snap.NextID > 0 {
		st.NextID = snap.NextID
	}
	for _, g := range st.Goals {
		if g.ID >= st.NextID {
			st.NextID = g.ID + 1
		}
	}
	if snap.FilterCategory == core.FilterAll || catalog.HasCategory(snap.FilterCategory) {
		st.FilterCategory = snap.FilterCategory
	}
	if key := core.SortKey(snap.SortBy); key.IsValid() {
		st.SortBy = key
	}
	if theme := core.Theme(snap.Theme); theme.IsValid() {
		st.Theme = theme
	}
	return st
}

// Page returns a consistent copy of everything needed to draw the app.
func (c *Controller) Page() Page {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.state.clone()
	p := Page{
		View:          c.view,
		UI:            st.UI,
		Catalog:       c.opts.Catalog,
		UndoAvailable: c.deleted.available(c.now()),
	}
	if a := st.UI.Action; a != nil && a.Type != ActionCreate {
		if i := st.indexOf(a.ID); i >= 0 {
			g := st.Goals[i]
			p.Target = &g
		}
	}
	return p
}

// View returns the most recent render.
func (c *Controller) View() render.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Preview renders the goals with a different filter and sort without
// touching the stored preferences. Empty arguments keep the current ones.
func (c *Controller) Preview(category, sortBy string) (render.View, error) {
	if category != "" && category != core.FilterAll && !c.opts.Catalog.HasCategory(category) {
		return render.View{}, core.Invalid("Unknown category", fmt.Errorf("%w: %q", core.ErrUnknownCat, category))
	}
	if sortBy != "" && !core.SortKey(sortBy).IsValid() {
		return render.View{}, core.Invalid("Unknown sort order", fmt.Errorf("sort key %q", sortBy))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	in := render.Input{
		Goals:          c.state.Goals,
		FilterCategory: c.state.FilterCategory,
		SortBy:         c.state.SortBy,
		Theme:          c.state.Theme,
	}
	if category != "" {
		in.FilterCategory = category
	}
	if sortBy != "" {
		in.SortBy = core.SortKey(sortBy)
	}
	return render.Render(in, c.opts.Render), nil
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Catalog returns the configured categories and swatches.
func (c *Controller) Catalog() core.Catalog { return c.opts.Catalog }

func (c *Controller) now() time.Time { return c.opts.Clock() }

// persist writes the snapshot; failures are logged only. Caller holds mu.
func (c *Controller) persist(ctx context.Context) {
	if err := c.store.Save(ctx, c.state.snapshot()); err != nil {
		c.events.LogError(ctx, "Failed to save goals", err, log.ComponentStorage, log.OpSave,
			log.LogFields{"goals": len(c.state.Goals)})
	}
}

// rerender rebuilds the cached view from state. Caller holds mu.
func (c *Controller) rerender() {
	c.view = render.Render(render.Input{
		Goals:          c.state.Goals,
		FilterCategory: c.state.FilterCategory,
		SortBy:         c.state.SortBy,
		Theme:          c.state.Theme,
		OpenMenuID:     c.state.UI.OpenMenuID,
	}, c.opts.Render)
}

// closeModals clears the in-flight action and discards scratch state.
// Caller holds mu.
func (c *Controller) closeModals() {
	c.state.UI.Action = nil
	c.state.UI.Scratch = Scratch{Tab: TabColor}
}

// commit runs the shared tail of every mutating handler. Caller holds mu.
func (c *Controller) commit(ctx context.Context, toast Toast) Toast {
	c.persist(ctx)
	c.rerender()
	c.closeModals()
	return toast
}

// actionFor returns the in-flight action if its type is one of types.
// Caller holds mu.
func (c *Controller) actionFor(types ...ActionType) (Action, error) {
	a := c.state.UI.Action
	if a == nil {
		return Action{}, ErrNoAction
	}
	for _, t := range types {
		if a.Type == t {
			return *a, nil
		}
	}
	return Action{}, ErrNoAction
}
