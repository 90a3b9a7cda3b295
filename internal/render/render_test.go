package render

import (
	"reflect"
	"testing"
	"time"

	"savings/internal/core"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Location = time.UTC
	return opts
}

func goals() []core.Goal {
	return []core.Goal{
		{ID: 1, Name: "Vacation", Category: "travel", TargetAmount: 1000, CurrentAmount: 300, Notes: "<script>x</script>", CreatedAt: "2026-01-05T10:00:00.000Z", Background: "#ffffff"},
		{ID: 2, Name: "Laptop", Category: "electronics", TargetAmount: 1500, CurrentAmount: 1500, CreatedAt: "2026-02-05T10:00:00.000Z", Background: "data:image/png;base64,iVBORw0KGgo="},
		{ID: 3, Name: "Car", Category: "car", TargetAmount: 0, CurrentAmount: 0, CreatedAt: "2026-03-05T10:00:00.000Z", Background: "#343a40"},
	}
}

func TestRenderCards(t *testing.T) {
	v := Render(Input{Goals: goals(), OpenMenuID: 2}, testOptions())

	if v.Empty || len(v.Cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(v.Cards))
	}
	if v.FilterCategory != core.FilterAll || v.SortBy != core.SortDateDesc || v.Theme != core.ThemeLight {
		t.Fatalf("defaults not applied: %+v", v)
	}
	if v.Cards[0].ID != 3 || v.Cards[2].ID != 1 {
		t.Fatalf("expected newest first, got %d..%d", v.Cards[0].ID, v.Cards[2].ID)
	}

	vac := v.Cards[2]
	if vac.Progress != 30 || vac.Current != "$300.00" || vac.Target != "$1,000.00" {
		t.Fatalf("unexpected amounts: %+v", vac)
	}
	if vac.Created != "1/5/2026" || vac.CategoryLabel != "Travel" {
		t.Fatalf("unexpected date/label: %q %q", vac.Created, vac.CategoryLabel)
	}
	if vac.Notes != "<script>x</script>" {
		t.Fatalf("render must not alter notes; escaping belongs to the output layer")
	}
	if vac.Background != (Background{Kind: BackgroundColor, Value: "#ffffff", Light: true}) {
		t.Fatalf("unexpected background: %+v", vac.Background)
	}

	laptop := v.Cards[1]
	if !laptop.MenuOpen || !laptop.Complete || laptop.Background.Kind != BackgroundImage {
		t.Fatalf("unexpected laptop card: %+v", laptop)
	}

	car := v.Cards[0]
	if car.Progress != 0 || car.Background.Light || car.MenuOpen {
		t.Fatalf("unexpected car card: %+v", car)
	}
}

func TestRenderStatsCoverAllGoals(t *testing.T) {
	v := Render(Input{Goals: goals(), FilterCategory: "travel"}, testOptions())
	if len(v.Cards) != 1 || v.Cards[0].ID != 1 {
		t.Fatalf("filter not applied: %+v", v.Cards)
	}
	want := Stats{TotalGoals: 3, TotalSaved: "$1,800.00", Completed: 1}
	if v.Stats != want {
		t.Fatalf("stats = %+v, want %+v", v.Stats, want)
	}
}

func TestRenderEmpty(t *testing.T) {
	v := Render(Input{Goals: goals(), FilterCategory: "home"}, testOptions())
	if !v.Empty || len(v.Cards) != 0 {
		t.Fatalf("expected empty view, got %+v", v.Cards)
	}
	v = Render(Input{}, testOptions())
	if !v.Empty || v.Stats.TotalSaved != "$0.00" {
		t.Fatalf("unexpected empty view: %+v", v)
	}
}

func TestRenderIsPure(t *testing.T) {
	in := Input{Goals: goals(), SortBy: core.SortProgressDesc, Theme: core.ThemeDark}
	a := Render(in, testOptions())
	b := Render(in, testOptions())
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("render not deterministic")
	}
	if in.Goals[0].ID != 1 {
		t.Fatalf("render reordered its input")
	}
	if a.Theme != core.ThemeDark || a.Cards[0].ID != 2 {
		t.Fatalf("unexpected ordering/theme: %v %d", a.Theme, a.Cards[0].ID)
	}
}

func TestBackgroundUnknown(t *testing.T) {
	for _, v := range []string{"", "#abc", "url(javascript:alert(1))", "https://example.com/a.png"} {
		if got := background(v); got.Kind != BackgroundNone {
			t.Fatalf("background(%q) = %+v", v, got)
		}
	}
}
