package app

import (
	"context"
	"errors"

	"savings/internal/core"
	"savings/internal/render"
	"savings/internal/storage"
)

// ActionType names the modal flow currently in progress.
type ActionType string

const (
	ActionCreate              ActionType = "create"
	ActionEdit                ActionType = "edit"
	ActionDelete              ActionType = "delete"
	ActionAddMoney            ActionType = "addMoney"
	ActionCustomizeBackground ActionType = "customizeBackground"
)

// Tab is the active pane of the background customizer.
type Tab string

const (
	TabColor Tab = "color"
	TabImage Tab = "image"
)

var (
	ErrNoAction      = errors.New("no matching action in progress")
	ErrGoalNotFound  = errors.New("goal not found")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrImageRead     = errors.New("failed to read image")
)

// Action is the in-flight modal flow and the goal it targets (0 for create).
type Action struct {
	Type ActionType
	ID   int
}

// Scratch holds the background customizer's unsaved selection.
type Scratch struct {
	SelectedColor string
	SelectedImage string
	Tab           Tab
}

// UI is transient state that is never persisted.
type UI struct {
	OpenMenuID int
	Action     *Action
	Scratch    Scratch
}

// State is the whole application state.
type State struct {
	Goals          []core.Goal
	NextID         int
	FilterCategory string
	SortBy         core.SortKey
	Theme          core.Theme
	UI             UI
}

// Toast is the confirmation shown after a successful mutation.
type Toast struct {
	Message string
	Undo    bool
}

// Page is everything an output layer needs to draw the application.
type Page struct {
	View          render.View
	UI            UI
	Target        *core.Goal
	Catalog       core.Catalog
	UndoAvailable bool
}

// Persister loads and saves the durable snapshot.
type Persister interface {
	Load(ctx context.Context) (storage.Snapshot, error)
	Save(ctx context.Context, snap storage.Snapshot) error
}

func defaultState() State {
	return State{
		Goals:          []core.Goal{},
		NextID:         1,
		FilterCategory: core.FilterAll,
		SortBy:         core.SortDateDesc,
		Theme:          core.ThemeLight,
		UI:             UI{Scratch: Scratch{Tab: TabColor}},
	}
}

func (s State) snapshot() storage.Snapshot {
	return storage.Snapshot{
		Savings:        s.Goals,
		NextID:         s.NextID,
		FilterCategory: s.FilterCategory,
		SortBy:         string(s.SortBy),
		Theme:          string(s.Theme),
	}
}

// clone deep-copies the parts of State callers could otherwise mutate.
func (s State) clone() State {
	out := s
	out.Goals = make([]core.Goal, len(s.Goals))
	copy(out.Goals, s.Goals)
	if s.UI.Action != nil {
		a := *s.UI.Action
		out.UI.Action = &a
	}
	return out
}

func (s State) indexOf(id int) int {
	for i, g := range s.Goals {
		if g.ID == id {
			return i
		}
	}
	return -1
}
