package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"savings/internal/core"
	"savings/internal/log"
	"savings/internal/render"
	"savings/internal/storage"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// timers records scheduled callbacks so tests can fire them on demand.
type timers struct {
	mu    sync.Mutex
	funcs []func()
	delay []time.Duration
}

func (tr *timers) AfterFunc(d time.Duration, f func()) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.funcs = append(tr.funcs, f)
	tr.delay = append(tr.delay, d)
}

func (tr *timers) FireAll() {
	tr.mu.Lock()
	fs := tr.funcs
	tr.funcs = nil
	tr.mu.Unlock()
	for _, f := range fs {
		f()
	}
}

// countingStore wraps a StateStore and counts saves, optionally failing.
type countingStore struct {
	*storage.StateStore
	saves   int
	failErr error
}

func (s *countingStore) Save(ctx context.Context, snap storage.Snapshot) error {
	s.saves++
	if s.failErr != nil {
		return s.failErr
	}
	return s.StateStore.Save(ctx, snap)
}

type harness struct {
	ctrl   *Controller
	store  *countingStore
	blobs  *storage.MemoryStore
	clock  *fakeClock
	timers *timers
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	blobs := storage.NewMemoryStore()
	store := &countingStore{StateStore: storage.NewStateStore(blobs, "")}
	clock := &fakeClock{now: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}
	tr := &timers{}

	ro := render.DefaultOptions()
	ro.Location = time.UTC

	ctrl := New(store, Options{
		Render:    ro,
		Logger:    log.Discard(),
		Clock:     clock.Now,
		AfterFunc: tr.AfterFunc,
	})
	ctrl.Load(context.Background())
	return &harness{ctrl: ctrl, store: store, blobs: blobs, clock: clock, timers: tr}
}

func (h *harness) create(t *testing.T, in core.GoalInput) core.Goal {
	t.Helper()
	h.ctrl.OpenCreate()
	if _, err := h.ctrl.SaveGoal(context.Background(), in); err != nil {
		t.Fatalf("SaveGoal(%+v) error = %v", in, err)
	}
	goals := h.ctrl.State().Goals
	return goals[len(goals)-1]
}

func TestCreateGoal(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.ctrl.OpenCreate()
	toast, err := h.ctrl.SaveGoal(ctx, core.GoalInput{
		Name: "Vacation", Target: "3000", Current: "1500", Category: "travel",
	})
	if err != nil {
		t.Fatalf("SaveGoal() error = %v", err)
	}
	if toast.Message != "Goal saved successfully!" || toast.Undo {
		t.Errorf("toast = %+v", toast)
	}

	st := h.ctrl.State()
	if len(st.Goals) != 1 || st.NextID != 2 {
		t.Fatalf("goals = %d, nextID = %d", len(st.Goals), st.NextID)
	}
	g := st.Goals[0]
	if g.ID != 1 || g.Name != "Vacation" || g.TargetAmount != 3000 || g.CurrentAmount != 1500 {
		t.Errorf("goal = %+v", g)
	}
	if g.CreatedAt != "2024-03-15T10:00:00.000Z" {
		t.Errorf("CreatedAt = %q", g.CreatedAt)
	}
	if st.UI.Action != nil {
		t.Error("modal still open after save")
	}

	v := h.ctrl.View()
	if len(v.Cards) != 1 {
		t.Fatalf("cards = %d", len(v.Cards))
	}
	c := v.Cards[0]
	if c.Progress != 50 || c.Current != "$1,500.00" || c.Target != "$3,000.00" || c.CategoryLabel != "Travel" {
		t.Errorf("card = %+v", c)
	}
	if v.Stats.TotalGoals != 1 || v.Stats.TotalSaved != "$1,500.00" || v.Stats.Completed != 0 {
		t.Errorf("stats = %+v", v.Stats)
	}

	snap, err := h.store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Savings) != 1 || snap.NextID != 2 {
		t.Errorf("persisted = %+v", snap)
	}
}

func TestCreateGoalClampsCurrent(t *testing.T) {
	h := newHarness(t)
	g := h.create(t, core.GoalInput{Name: "Car", Target: "100", Current: "250"})
	if g.CurrentAmount != 100 {
		t.Errorf("CurrentAmount = %v, want 100", g.CurrentAmount)
	}
	if !h.ctrl.View().Cards[0].Complete {
		t.Error("card should be complete")
	}
	if h.ctrl.View().Stats.Completed != 1 {
		t.Errorf("completed = %d", h.ctrl.View().Stats.Completed)
	}
}

func TestCreateGoalRejected(t *testing.T) {
	tests := []struct {
		name string
		in   core.GoalInput
		msg  string
	}{
		{"zero target", core.GoalInput{Name: "X", Target: "0"}, "Target must be greater than 0"},
		{"blank name", core.GoalInput{Name: "  ", Target: "10"}, "Please enter a goal name"},
		{"unknown category", core.GoalInput{Name: "X", Target: "10", Category: "yachts"}, "Please choose a category"},
		{"overflowing target", core.GoalInput{Name: "Big", Target: "1e400", Category: "travel"}, "Target must be greater than 0"},
		{"target above max", core.GoalInput{Name: "Big", Target: "1e20", Current: "1e20"}, "Target must be greater than 0"},
		{"NaN target", core.GoalInput{Name: "X", Target: "NaN"}, "Target must be greater than 0"},
		{"infinite target", core.GoalInput{Name: "X", Target: "Infinity"}, "Target must be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.ctrl.OpenCreate()
			_, err := h.ctrl.SaveGoal(context.Background(), tt.in)

			var verr *core.ValidationError
			if !errors.As(err, &verr) || verr.Message != tt.msg {
				t.Fatalf("error = %v, want %q", err, tt.msg)
			}
			if h.store.saves != 0 {
				t.Errorf("saves = %d, want 0", h.store.saves)
			}
			st := h.ctrl.State()
			if len(st.Goals) != 0 {
				t.Errorf("goals = %d", len(st.Goals))
			}
			if st.UI.Action == nil {
				t.Error("modal should stay open on validation failure")
			}

			// The controller keeps working after the rejection.
			if _, err := h.ctrl.SaveGoal(context.Background(), core.GoalInput{Name: "Ok", Target: "10"}); err != nil {
				t.Fatalf("follow-up save: %v", err)
			}
			if got := h.ctrl.View().Stats.TotalGoals; got != 1 {
				t.Errorf("TotalGoals = %d, want 1", got)
			}
		})
	}
}

func TestSaveGoalWithoutModal(t *testing.T) {
	h := newHarness(t)
	_, err := h.ctrl.SaveGoal(context.Background(), core.GoalInput{Name: "X", Target: "1"})
	if !errors.Is(err, ErrNoAction) {
		t.Errorf("error = %v, want ErrNoAction", err)
	}
}

func TestEditGoalKeepsCreatedAndBackground(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.create(t, core.GoalInput{Name: "Laptop", Target: "1200", Category: "electronics"})

	if err := h.ctrl.OpenBackground(g.ID); err != nil {
		t.Fatal(err)
	}
	if err := h.ctrl.SelectColor("#ff6b6b"); err != nil {
		t.Fatal(err)
	}
	if _, err := h.ctrl.SaveBackground(ctx); err != nil {
		t.Fatal(err)
	}

	h.clock.Advance(time.Hour)
	if err := h.ctrl.OpenEdit(g.ID); err != nil {
		t.Fatal(err)
	}
	if p := h.ctrl.Page(); p.Target == nil || p.Target.ID != g.ID {
		t.Fatalf("page target = %+v", p.Target)
	}
	if _, err := h.ctrl.SaveGoal(ctx, core.GoalInput{Name: "Gaming laptop", Target: "1500", Current: "300", Category: "electronics"}); err != nil {
		t.Fatal(err)
	}

	st := h.ctrl.State()
	if len(st.Goals) != 1 || st.NextID != 2 {
		t.Fatalf("goals = %d, nextID = %d", len(st.Goals), st.NextID)
	}
	got := st.Goals[0]
	if got.Name != "Gaming laptop" || got.TargetAmount != 1500 || got.CurrentAmount != 300 {
		t.Errorf("goal = %+v", got)
	}
	if got.CreatedAt != g.CreatedAt {
		t.Errorf("CreatedAt changed: %q -> %q", g.CreatedAt, got.CreatedAt)
	}
	if got.Background != "#ff6b6b" {
		t.Errorf("Background = %q", got.Background)
	}
}

func TestOpenUnknownGoal(t *testing.T) {
	h := newHarness(t)
	for name, open := range map[string]func(int) error{
		"edit":       h.ctrl.OpenEdit,
		"delete":     h.ctrl.OpenDelete,
		"deposit":    h.ctrl.OpenDeposit,
		"background": h.ctrl.OpenBackground,
		"menu":       h.ctrl.ToggleMenu,
	} {
		if err := open(42); !errors.Is(err, ErrGoalNotFound) {
			t.Errorf("%s: error = %v, want ErrGoalNotFound", name, err)
		}
	}
}

func TestDeleteAndUndo(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.create(t, core.GoalInput{Name: "A", Target: "10"})
	b := h.create(t, core.GoalInput{Name: "B", Target: "10"})

	if err := h.ctrl.OpenDelete(a.ID); err != nil {
		t.Fatal(err)
	}
	toast, err := h.ctrl.DeleteGoal(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if toast.Message != "Goal deleted" || !toast.Undo {
		t.Errorf("toast = %+v", toast)
	}
	if len(h.timers.delay) != 1 || h.timers.delay[0] != defaultUndoWindow {
		t.Errorf("scheduled = %v", h.timers.delay)
	}
	if !h.ctrl.Page().UndoAvailable {
		t.Error("undo should be available")
	}

	h.clock.Advance(3 * time.Second)
	toast, err = h.ctrl.Undo(ctx)
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if toast.Message != "Goal restored" {
		t.Errorf("toast = %+v", toast)
	}

	st := h.ctrl.State()
	if len(st.Goals) != 2 || st.Goals[0].ID != b.ID || st.Goals[1].ID != a.ID {
		t.Errorf("goals after undo = %+v", st.Goals)
	}
	if st.Goals[1] != a {
		t.Errorf("restored goal = %+v, want %+v", st.Goals[1], a)
	}

	if _, err := h.ctrl.Undo(ctx); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("second Undo() error = %v", err)
	}
}

func TestUndoAfterWindow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.create(t, core.GoalInput{Name: "A", Target: "10"})

	if err := h.ctrl.OpenDelete(g.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := h.ctrl.DeleteGoal(ctx); err != nil {
		t.Fatal(err)
	}
	saves := h.store.saves

	h.clock.Advance(defaultUndoWindow)
	if h.ctrl.Page().UndoAvailable {
		t.Error("undo should have expired")
	}
	if _, err := h.ctrl.Undo(ctx); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo() error = %v, want ErrNothingToUndo", err)
	}
	if h.store.saves != saves {
		t.Error("expired undo should not persist")
	}

	h.timers.FireAll()
	h.ctrl.mu.Lock()
	n := h.ctrl.deleted.size()
	h.ctrl.mu.Unlock()
	if n != 0 {
		t.Errorf("buffer size after prune = %d", n)
	}
}

func TestDeleteClosesMenu(t *testing.T) {
	h := newHarness(t)
	g := h.create(t, core.GoalInput{Name: "A", Target: "10"})

	if err := h.ctrl.ToggleMenu(g.ID); err != nil {
		t.Fatal(err)
	}
	if !h.ctrl.View().Cards[0].MenuOpen {
		t.Fatal("menu should be open")
	}
	if err := h.ctrl.OpenDelete(g.ID); err != nil {
		t.Fatal(err)
	}
	if h.ctrl.State().UI.OpenMenuID != 0 {
		t.Error("opening a modal should close the menu")
	}
	if _, err := h.ctrl.DeleteGoal(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !h.ctrl.View().Empty {
		t.Error("view should be empty")
	}
}

func TestToggleMenu(t *testing.T) {
	h := newHarness(t)
	a := h.create(t, core.GoalInput{Name: "A", Target: "10"})
	b := h.create(t, core.GoalInput{Name: "B", Target: "10"})

	_ = h.ctrl.ToggleMenu(a.ID)
	_ = h.ctrl.ToggleMenu(b.ID)
	if got := h.ctrl.State().UI.OpenMenuID; got != b.ID {
		t.Errorf("OpenMenuID = %d, want %d", got, b.ID)
	}
	_ = h.ctrl.ToggleMenu(b.ID)
	if got := h.ctrl.State().UI.OpenMenuID; got != 0 {
		t.Errorf("OpenMenuID = %d, want 0", got)
	}
	_ = h.ctrl.ToggleMenu(a.ID)
	h.ctrl.CloseMenu()
	if got := h.ctrl.State().UI.OpenMenuID; got != 0 {
		t.Errorf("OpenMenuID after close = %d", got)
	}
}

func TestDeposit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.create(t, core.GoalInput{Name: "Vacation", Target: "3000", Current: "1500"})

	if err := h.ctrl.OpenDeposit(g.ID); err != nil {
		t.Fatal(err)
	}
	toast, err := h.ctrl.Deposit(ctx, "200")
	if err != nil {
		t.Fatal(err)
	}
	if toast.Message != "Added $200.00 to Vacation" {
		t.Errorf("toast = %q", toast.Message)
	}
	if got := h.ctrl.State().Goals[0].CurrentAmount; got != 1700 {
		t.Errorf("CurrentAmount = %v", got)
	}

	_ = h.ctrl.OpenDeposit(g.ID)
	if _, err := h.ctrl.Deposit(ctx, "5000"); err != nil {
		t.Fatal(err)
	}
	if got := h.ctrl.View().Cards[0]; got.CurrentValue != 3000 || got.Progress != 100 {
		t.Errorf("card = %+v", got)
	}
}

func TestDepositRejected(t *testing.T) {
	h := newHarness(t)
	g := h.create(t, core.GoalInput{Name: "A", Target: "100"})
	saves := h.store.saves

	for _, raw := range []string{"", "0", "-5", "abc", "1e20", "1e400", "NaN", "Infinity"} {
		_ = h.ctrl.OpenDeposit(g.ID)
		_, err := h.ctrl.Deposit(context.Background(), raw)
		var verr *core.ValidationError
		if !errors.As(err, &verr) || verr.Message != "Please enter a valid amount" {
			t.Errorf("Deposit(%q) error = %v", raw, err)
		}
	}
	if h.store.saves != saves {
		t.Error("rejected deposits should not persist")
	}
	if got := h.ctrl.View().Cards[0].Current; got != "$0.00" {
		t.Errorf("Current = %q, want $0.00", got)
	}
}

func TestBackgroundFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.create(t, core.GoalInput{Name: "A", Target: "100"})

	if err := h.ctrl.SelectColor("#ffffff"); !errors.Is(err, ErrNoAction) {
		t.Errorf("SelectColor without modal: %v", err)
	}

	_ = h.ctrl.OpenBackground(g.ID)
	if err := h.ctrl.SelectColor("red"); err == nil {
		t.Error("expected invalid colour error")
	}
	if err := h.ctrl.SelectColor("#ffffff"); err != nil {
		t.Fatal(err)
	}
	if _, err := h.ctrl.SaveBackground(ctx); err != nil {
		t.Fatal(err)
	}
	bg := h.ctrl.View().Cards[0].Background
	if bg.Kind != render.BackgroundColor || !bg.Light {
		t.Errorf("background = %+v", bg)
	}

	// Reopening seeds the scratch selection from the saved colour.
	_ = h.ctrl.OpenBackground(g.ID)
	if sc := h.ctrl.State().UI.Scratch; sc.SelectedColor != "#ffffff" || sc.Tab != TabColor {
		t.Errorf("scratch = %+v", sc)
	}
	if err := h.ctrl.RemoveImage(); err != nil {
		t.Fatal(err)
	}
	if _, err := h.ctrl.SaveBackground(ctx); err != nil {
		t.Fatal(err)
	}
	if got := h.ctrl.State().Goals[0].Background; got != "" {
		t.Errorf("Background = %q, want empty", got)
	}
}

func TestCloseAllDiscardsScratch(t *testing.T) {
	h := newHarness(t)
	g := h.create(t, core.GoalInput{Name: "A", Target: "100"})

	_ = h.ctrl.OpenBackground(g.ID)
	_ = h.ctrl.SelectColor("#123456")
	_ = h.ctrl.SwitchTab("image")
	h.ctrl.CloseAll()

	st := h.ctrl.State()
	if st.UI.Action != nil {
		t.Error("action should be cleared")
	}
	if st.UI.Scratch != (Scratch{Tab: TabColor}) {
		t.Errorf("scratch = %+v", st.UI.Scratch)
	}
	if st.Goals[0].Background != "" {
		t.Error("closing must not apply the selection")
	}
}

func TestIngestImage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g := h.create(t, core.GoalInput{Name: "A", Target: "100"})
	_ = h.ctrl.OpenBackground(g.ID)
	_ = h.ctrl.SelectColor("#123456")

	body := []byte("\x89PNG fake")
	err := h.ctrl.IngestImage(ctx, ImageUpload{
		Filename: "a.png", ContentType: "image/png", Size: int64(len(body)), Body: bytes.NewReader(body),
	})
	if err != nil {
		t.Fatalf("IngestImage() error = %v", err)
	}

	sc := h.ctrl.State().UI.Scratch
	if !strings.HasPrefix(sc.SelectedImage, "data:image/png;base64,") {
		t.Errorf("SelectedImage = %q", sc.SelectedImage)
	}
	if sc.SelectedColor != "" || sc.Tab != TabImage {
		t.Errorf("scratch = %+v", sc)
	}

	if _, err := h.ctrl.SaveBackground(ctx); err != nil {
		t.Fatal(err)
	}
	if bg := h.ctrl.View().Cards[0].Background; bg.Kind != render.BackgroundImage {
		t.Errorf("background = %+v", bg)
	}
}

func TestIngestImageRejected(t *testing.T) {
	big := int64(3 << 20)
	tests := []struct {
		name string
		up   ImageUpload
		msg  string
	}{
		{
			"not an image",
			ImageUpload{ContentType: "application/pdf", Size: 10, Body: strings.NewReader("%PDF")},
			"Please select an image file (JPG, PNG, etc.)",
		},
		{
			"declared too large",
			ImageUpload{ContentType: "image/jpeg", Size: big, Body: bytes.NewReader(make([]byte, big))},
			"Image must be less than 2MB",
		},
		{
			"body larger than declared",
			ImageUpload{ContentType: "image/jpeg", Size: 1, Body: bytes.NewReader(make([]byte, big))},
			"Image must be less than 2MB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			g := h.create(t, core.GoalInput{Name: "A", Target: "100"})
			_ = h.ctrl.OpenBackground(g.ID)
			_ = h.ctrl.SelectColor("#123456")
			before := h.ctrl.State().UI.Scratch

			err := h.ctrl.IngestImage(context.Background(), tt.up)
			var verr *core.ValidationError
			if !errors.As(err, &verr) || verr.Message != tt.msg {
				t.Fatalf("error = %v, want %q", err, tt.msg)
			}
			if got := h.ctrl.State().UI.Scratch; got != before {
				t.Errorf("scratch changed: %+v -> %+v", before, got)
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestIngestImageReadError(t *testing.T) {
	h := newHarness(t)
	g := h.create(t, core.GoalInput{Name: "A", Target: "100"})
	_ = h.ctrl.OpenBackground(g.ID)

	err := h.ctrl.IngestImage(context.Background(), ImageUpload{ContentType: "image/gif", Size: 5, Body: failingReader{}})
	if !errors.Is(err, ErrImageRead) {
		t.Errorf("error = %v, want ErrImageRead", err)
	}
}

func TestFilterSortTheme(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.create(t, core.GoalInput{Name: "Trip", Target: "100", Current: "10", Category: "travel"})
	h.clock.Advance(time.Minute)
	h.create(t, core.GoalInput{Name: "House", Target: "900", Current: "800", Category: "home"})

	if err := h.ctrl.SetFilter(ctx, "travel"); err != nil {
		t.Fatal(err)
	}
	v := h.ctrl.View()
	if len(v.Cards) != 1 || v.Cards[0].Name != "Trip" {
		t.Errorf("filtered cards = %+v", v.Cards)
	}
	if v.Stats.TotalGoals != 2 {
		t.Errorf("stats should cover all goals: %+v", v.Stats)
	}
	if err := h.ctrl.SetFilter(ctx, "boats"); err == nil {
		t.Error("expected unknown category error")
	}

	_ = h.ctrl.SetFilter(ctx, core.FilterAll)
	if got := h.ctrl.View().Cards[0].Name; got != "House" {
		t.Errorf("date-desc first = %q", got)
	}
	if err := h.ctrl.SetSort(ctx, "progress-desc"); err != nil {
		t.Fatal(err)
	}
	if got := h.ctrl.View().Cards[0].Name; got != "House" {
		t.Errorf("progress-desc first = %q", got)
	}
	if err := h.ctrl.SetSort(ctx, "name"); err == nil {
		t.Error("expected invalid sort error")
	}

	if th := h.ctrl.ToggleTheme(ctx); th != core.ThemeDark {
		t.Errorf("theme = %q", th)
	}

	snap, _ := h.store.Load(ctx)
	if snap.FilterCategory != core.FilterAll || snap.SortBy != "progress-desc" || snap.Theme != "dark" {
		t.Errorf("persisted prefs = %+v", snap)
	}
}

func TestPersistFailureKeepsState(t *testing.T) {
	h := newHarness(t)
	h.store.failErr = errors.New("quota exceeded")

	h.ctrl.OpenCreate()
	toast, err := h.ctrl.SaveGoal(context.Background(), core.GoalInput{Name: "A", Target: "10"})
	if err != nil {
		t.Fatalf("SaveGoal() error = %v", err)
	}
	if toast.Message == "" {
		t.Error("toast should still be returned")
	}
	if len(h.ctrl.State().Goals) != 1 {
		t.Error("in-memory change should survive a failed save")
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("restores snapshot", func(t *testing.T) {
		h := newHarness(t)
		raw := `{"savings":[{"id":4,"name":"Bike","targetAmount":500,"currentAmount":100,"category":"other","notes":"","createdAt":"2024-01-02T03:04:05.000Z"}],"nextId":2,"filterCategory":"other","sortBy":"target-desc","theme":"dark"}`
		if err := h.blobs.Write(ctx, storage.DefaultKey, []byte(raw)); err != nil {
			t.Fatal(err)
		}
		h.ctrl.Load(ctx)

		st := h.ctrl.State()
		if len(st.Goals) != 1 || st.Goals[0].Name != "Bike" {
			t.Fatalf("goals = %+v", st.Goals)
		}
		if st.NextID != 5 {
			t.Errorf("NextID = %d, want 5", st.NextID)
		}
		if st.FilterCategory != "other" || st.SortBy != core.SortTargetDesc || st.Theme != core.ThemeDark {
			t.Errorf("prefs = %q %q %q", st.FilterCategory, st.SortBy, st.Theme)
		}
		if h.ctrl.View().Cards[0].Created != "1/2/2024" {
			t.Errorf("Created = %q", h.ctrl.View().Cards[0].Created)
		}
	})

	t.Run("malformed falls back to empty", func(t *testing.T) {
		h := newHarness(t)
		_ = h.blobs.Write(ctx, storage.DefaultKey, []byte("{not json"))
		h.ctrl.Load(ctx)

		st := h.ctrl.State()
		if len(st.Goals) != 0 || st.NextID != 1 || st.Theme != core.ThemeLight {
			t.Errorf("state = %+v", st)
		}
		if !h.ctrl.View().Empty {
			t.Error("view should be empty")
		}
	})

	t.Run("invalid prefs use defaults", func(t *testing.T) {
		h := newHarness(t)
		_ = h.blobs.Write(ctx, storage.DefaultKey, []byte(`{"filterCategory":"gone","sortBy":"x","theme":"blue"}`))
		h.ctrl.Load(ctx)

		st := h.ctrl.State()
		if st.FilterCategory != core.FilterAll || st.SortBy != core.SortDateDesc || st.Theme != core.ThemeLight {
			t.Errorf("prefs = %q %q %q", st.FilterCategory, st.SortBy, st.Theme)
		}
		if st.Goals == nil {
			t.Error("goals should be an empty slice, not nil")
		}
	})
}

func TestPreviewDoesNotPersist(t *testing.T) {
	h := newHarness(t)
	h.create(t, core.GoalInput{Name: "Trip", Target: "100", Current: "10", Category: "travel"})
	h.clock.Advance(time.Minute)
	h.create(t, core.GoalInput{Name: "House", Target: "900", Current: "800", Category: "home"})
	saves := h.store.saves

	v, err := h.ctrl.Preview("travel", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Cards) != 1 || v.Cards[0].Name != "Trip" {
		t.Errorf("preview cards = %+v", v.Cards)
	}
	if v.FilterCategory != "travel" || v.SortBy != core.SortDateDesc {
		t.Errorf("preview filter/sort = %q/%q", v.FilterCategory, v.SortBy)
	}

	if _, err := h.ctrl.Preview("boats", ""); err == nil {
		t.Error("expected unknown category error")
	}
	if _, err := h.ctrl.Preview("", "name"); err == nil {
		t.Error("expected invalid sort error")
	}

	if h.store.saves != saves {
		t.Errorf("preview saved state: %d -> %d", saves, h.store.saves)
	}
	if got := h.ctrl.View().FilterCategory; got != core.FilterAll {
		t.Errorf("stored filter changed to %q", got)
	}
}

func TestSizeLabel(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{2 << 20, "2MB"},
		{1 << 20, "1MB"},
		{512 << 10, "512KB"},
		{1024, "1KB"},
		{1500, "1.5 KiB"},
	}
	for _, tt := range tests {
		if got := SizeLabel(tt.n); got != tt.want {
			t.Errorf("SizeLabel(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
