package layout

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/alfredjeanlab/dashka/internal/model"
	"github.com/alfredjeanlab/dashka/internal/persist"
	"github.com/alfredjeanlab/dashka/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *store.MemoryStore) {
	t.Helper()
	ms := store.NewMemoryStore()
	m := NewManager(persist.New(ms, nil))
	m.Initialize(context.Background())
	return m, ms
}

func analytics(id string) model.WidgetConfig {
	return model.WidgetConfig{ID: id, Kind: model.KindAnalytics, Type: model.AnalyticsStats, SiteID: "abc", Title: "Stats — abc"}
}

func backlogWidget(id string) model.WidgetConfig {
	return model.WidgetConfig{ID: id, Kind: model.KindBacklog, Title: model.BacklogTitle}
}

func mustDefaults(t *testing.T, w model.WidgetConfig) map[model.Breakpoint]model.Placement {
	t.Helper()
	d, err := DefaultPlacements(w)
	if err != nil {
		t.Fatalf("DefaultPlacements(%s): %v", w, err)
	}
	return d
}

func TestDefaultLayouts_SatisfyCheck(t *testing.T) {
	if err := Check(DefaultLayouts(), nil); err != nil {
		t.Fatalf("default layout fails Check: %v", err)
	}
}

func TestDefaultLayouts_SideBySideThenStacked(t *testing.T) {
	l := DefaultLayouts()
	for _, bp := range []model.Breakpoint{model.BreakpointLG, model.BreakpointMD} {
		repos, _ := l.Find(bp, model.PanelRepos)
		wg, _ := l.Find(bp, model.PanelWireGuard)
		if wg.Y != repos.Y || wg.X != repos.X+repos.W {
			t.Errorf("%s: wireguard %+v not beside repos %+v", bp, wg, repos)
		}
	}
	for _, bp := range []model.Breakpoint{model.BreakpointSM, model.BreakpointXS, model.BreakpointXXS} {
		repos, _ := l.Find(bp, model.PanelRepos)
		wg, _ := l.Find(bp, model.PanelWireGuard)
		if wg.X != 0 || wg.Y != repos.Y+repos.H {
			t.Errorf("%s: wireguard %+v not below repos %+v", bp, wg, repos)
		}
	}
}

func TestDefaultPlacements_PerKind(t *testing.T) {
	for _, tc := range []struct {
		widget model.WidgetConfig
		bp     model.Breakpoint
		want   model.Placement
	}{
		{analytics("a"), model.BreakpointLG, model.Placement{ID: "a", Y: model.AutoPackY, W: 16, H: 4, MinW: 6, MinH: 2}},
		{analytics("a"), model.BreakpointXXS, model.Placement{ID: "a", Y: model.AutoPackY, W: 6, H: 4, MinW: 2, MinH: 2}},
		{backlogWidget("b"), model.BreakpointLG, model.Placement{ID: "b", Y: model.AutoPackY, W: 14, H: 6, MinW: 6, MinH: 3}},
		{backlogWidget("b"), model.BreakpointXS, model.Placement{ID: "b", Y: model.AutoPackY, W: 12, H: 6, MinW: 4, MinH: 3}},
	} {
		got := mustDefaults(t, tc.widget)[tc.bp]
		if got != tc.want {
			t.Errorf("%s on %s = %+v, want %+v", tc.widget.Kind, tc.bp, got, tc.want)
		}
	}
}

func TestDefaultPlacements_FitEveryBreakpoint(t *testing.T) {
	for _, w := range []model.WidgetConfig{analytics("a"), backlogWidget("b")} {
		d := mustDefaults(t, w)
		if len(d) != len(model.Breakpoints()) {
			t.Errorf("%s: %d breakpoints, want %d", w.Kind, len(d), len(model.Breakpoints()))
		}
		for bp, p := range d {
			if err := model.ValidatePlacement(bp, p); err != nil {
				t.Errorf("%s on %s: %v", w.Kind, bp, err)
			}
		}
	}
}

func TestDefaultPlacements_UnknownKind(t *testing.T) {
	if _, err := DefaultPlacements(model.WidgetConfig{ID: "x", Kind: "weather"}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestInitialize_AbsentOrCorrupt(t *testing.T) {
	for _, tc := range []struct {
		name  string
		value string
	}{
		{"Absent", ""},
		{"Malformed", `{"lg": [`},
		{"WrongShape", `["lg"]`},
		{"Null", `null`},
		{"Empty", `{}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			ms := store.NewMemoryStore()
			if tc.value != "" {
				_ = ms.Set(ctx, persist.KeyLayouts, []byte(tc.value))
			}
			got := NewManager(persist.New(ms, nil)).Initialize(ctx)
			if !got.Equal(DefaultLayouts()) {
				t.Errorf("Initialize = %v, want DefaultLayouts", got)
			}
		})
	}
}

func TestAddWidget_AutoPackOnEveryBreakpoint(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	w := analytics("analytics-1")

	l, err := m.AddWidget(ctx, w.ID, mustDefaults(t, w))
	if err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	for _, bp := range model.Breakpoints() {
		p, ok := l.Find(bp, w.ID)
		if !ok {
			t.Errorf("%s: no placement for %s", bp, w.ID)
			continue
		}
		if !p.AutoPacked() {
			t.Errorf("%s: y = %d, want AutoPackY", bp, p.Y)
		}
	}
}

func TestAddWidget_Idempotent(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	w := backlogWidget("backlog-1")
	d := mustDefaults(t, w)

	first, _ := m.AddWidget(ctx, w.ID, d)
	second, err := m.AddWidget(ctx, w.ID, d)
	if err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	if !first.Equal(second) {
		t.Errorf("re-add changed the layout:\n%v\n%v", first, second)
	}
	for _, bp := range model.Breakpoints() {
		n := 0
		for _, id := range second.IDs(bp) {
			if id == w.ID {
				n++
			}
		}
		if n != 1 {
			t.Errorf("%s: %d placements for %s, want 1", bp, n, w.ID)
		}
	}
}

func TestAddWidget_KeepsMovedPlacement(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	w := analytics("analytics-1")
	l, _ := m.AddWidget(ctx, w.ID, mustDefaults(t, w))

	for i, p := range l[model.BreakpointLG] {
		if p.ID == w.ID {
			l[model.BreakpointLG][i].Y = 12
		}
	}
	if _, err := m.ApplyEngineUpdate(ctx, l); err != nil {
		t.Fatalf("ApplyEngineUpdate: %v", err)
	}
	after, _ := m.AddWidget(ctx, w.ID, mustDefaults(t, w))
	if p, _ := after.Find(model.BreakpointLG, w.ID); p.Y != 12 {
		t.Errorf("re-add reset the moved placement: %+v", p)
	}
}

func TestRemoveWidget_NeverAddedIsNoOp(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	before := m.Layouts()
	after, err := m.RemoveWidget(ctx, "analytics-404")
	if err != nil {
		t.Fatalf("RemoveWidget: %v", err)
	}
	if !before.Equal(after) {
		t.Errorf("layout changed:\n%v\n%v", before, after)
	}
}

func TestRemoveWidget_LeavesOthersUntouched(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	a, b := analytics("analytics-1"), backlogWidget("backlog-2")
	m.AddWidget(ctx, a.ID, mustDefaults(t, a))
	before, _ := m.AddWidget(ctx, b.ID, mustDefaults(t, b))

	after, err := m.RemoveWidget(ctx, a.ID)
	if err != nil {
		t.Fatalf("RemoveWidget: %v", err)
	}
	for _, bp := range model.Breakpoints() {
		if _, ok := after.Find(bp, a.ID); ok {
			t.Errorf("%s: %s still placed", bp, a.ID)
		}
		want, _ := before.Find(bp, b.ID)
		if got, ok := after.Find(bp, b.ID); !ok || got != want {
			t.Errorf("%s: %s = %+v, want %+v", bp, b.ID, got, want)
		}
	}
}

func TestManager_PersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, ms := newTestManager(t)
	w := analytics("analytics-1")
	want, _ := m.AddWidget(ctx, w.ID, mustDefaults(t, w))

	got := NewManager(persist.New(ms, nil)).Initialize(ctx)
	if !got.Equal(want) {
		t.Errorf("reloaded layout differs:\n got %v\nwant %v", got, want)
	}
}

// failingSetStore fails every write.
type failingSetStore struct {
	*store.MemoryStore
}

func (f failingSetStore) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("quota exceeded")
}

func TestManager_WriteFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	m := NewManager(persist.New(failingSetStore{store.NewMemoryStore()}, nil))
	m.Initialize(ctx)
	w := analytics("analytics-1")

	l, err := m.AddWidget(ctx, w.ID, mustDefaults(t, w))
	if err == nil {
		t.Fatal("expected write error")
	}
	if !l.Equal(DefaultLayouts()) || !m.Layouts().Equal(DefaultLayouts()) {
		t.Error("in-memory layout changed despite the failed write")
	}
}

func TestManager_BindAdopt(t *testing.T) {
	ctx := context.Background()
	m, ms := newTestManager(t)
	w := analytics("analytics-1")

	tx := m.Bind(persist.New(ms, nil))
	if _, err := tx.AddWidget(ctx, w.ID, mustDefaults(t, w)); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	if _, ok := m.Layouts().Find(model.BreakpointLG, w.ID); ok {
		t.Fatal("bound copy leaked into the parent before Adopt")
	}
	m.Adopt(tx)
	if _, ok := m.Layouts().Find(model.BreakpointLG, w.ID); !ok {
		t.Fatal("Adopt did not take the bound copy's layout")
	}
}

func TestManager_Reset(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	l := m.Layouts()
	l[model.BreakpointLG][0].X = 30
	m.ApplyEngineUpdate(ctx, l)

	w := backlogWidget("backlog-1")
	got, err := m.Reset(ctx, []model.WidgetConfig{w})
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := Check(got, []string{w.ID}); err != nil {
		t.Fatalf("reset layout fails Check: %v", err)
	}
	if p, _ := got.Find(model.BreakpointLG, model.PanelRepos); p.X != 0 {
		t.Errorf("repos not back at its default: %+v", p)
	}
}

func TestCheck_ReportsEveryBreach(t *testing.T) {
	l := DefaultLayouts()
	l[model.BreakpointLG] = append(l[model.BreakpointLG], l[model.BreakpointLG][0])
	l[model.BreakpointMD] = l[model.BreakpointMD][:1]
	l[model.BreakpointSM] = append(l[model.BreakpointSM], model.Placement{ID: "ghost", W: 1, H: 1})
	l[model.BreakpointXXS][0].W = 7
	delete(l, model.BreakpointXS)

	err := Check(l, nil)
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Check = %v, want *ValidationError", err)
	}
	for _, want := range []string{
		`duplicate placement for "repos"`,
		`no placement for "wireguard"`,
		`placement for unknown widget "ghost"`,
		"breakpoint is missing",
		"exceeds 6 columns",
	} {
		found := false
		for _, fe := range ve.Errors {
			if strings.Contains(fe.Message, want) {
				found = true
			}
		}
		if !found {
			t.Errorf("Check did not report %q; got %v", want, ve)
		}
	}
}

func TestReconcile_ValidLayoutUnchanged(t *testing.T) {
	w := analytics("analytics-1")
	l := WithWidget(DefaultLayouts(), w.ID, mustDefaults(t, w))
	got, changed := Reconcile(l, []model.WidgetConfig{w})
	if changed {
		t.Fatalf("Reconcile changed a valid layout: %v", got)
	}
}

func TestReconcile_Heals(t *testing.T) {
	keep, missing := analytics("analytics-1"), backlogWidget("backlog-2")
	l := WithWidget(DefaultLayouts(), keep.ID, mustDefaults(t, keep))
	l[model.BreakpointLG] = append(l[model.BreakpointLG], model.Placement{ID: "orphan", W: 2, H: 2})
	l[model.BreakpointMD] = append(l[model.BreakpointMD], l[model.BreakpointMD][0])
	l[model.BreakpointSM] = l[model.BreakpointSM][1:]
	delete(l, model.BreakpointXXS)
	l["xl"] = []model.Placement{{ID: model.PanelRepos, W: 1, H: 1}}

	widgets := []model.WidgetConfig{keep, missing}
	got, changed := Reconcile(l, widgets)
	if !changed {
		t.Fatal("Reconcile reported no change")
	}
	if err := Check(got, []string{keep.ID, missing.ID}); err != nil {
		t.Fatalf("reconciled layout fails Check: %v", err)
	}
	if p, _ := got.Find(model.BreakpointSM, model.PanelRepos); p != builtinDefaults[model.BreakpointSM][0] {
		t.Errorf("missing built-in not restored to its default: %+v", p)
	}
	if p, _ := got.Find(model.BreakpointLG, missing.ID); !p.AutoPacked() {
		t.Errorf("missing widget not auto-packed: %+v", p)
	}
}

func TestInvariant_RandomAddRemove(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	rng := rand.New(rand.NewSource(42))
	registered := map[string]bool{}

	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("w-%d", rng.Intn(8))
		var err error
		if rng.Intn(2) == 0 {
			w := analytics(id)
			if rng.Intn(2) == 0 {
				w = backlogWidget(id)
			}
			_, err = m.AddWidget(ctx, id, mustDefaults(t, w))
			registered[id] = true
		} else {
			_, err = m.RemoveWidget(ctx, id)
			delete(registered, id)
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}

		ids := make([]string, 0, len(registered))
		for id := range registered {
			ids = append(ids, id)
		}
		if err := Check(m.Layouts(), ids); err != nil {
			t.Fatalf("step %d: invariant broken: %v", i, err)
		}
	}
}
