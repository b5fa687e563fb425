package main

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

// fakeSurface records every control-surface call. Shared by the router,
// ticker and bridge tests.
type fakeSurface struct {
	mu      sync.Mutex
	calls   []string
	itemIDs map[string]int      // "scene/source" → scene item id
	filters map[string][]string // source → filter names
	inputs  []string
	scenes  []string
	current string

	// last applied values, merged per item id
	posX  map[int]float64
	scale map[int]float64
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		itemIDs: make(map[string]int),
		filters: make(map[string][]string),
		posX:    make(map[int]float64),
		scale:   make(map[int]float64),
	}
}

func (f *fakeSurface) record(format string, args ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeSurface) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSurface) callsMatching(prefix string) []string {
	var out []string
	for _, c := range f.callLog() {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeSurface) SceneList() ([]string, error) {
	f.record("SceneList")
	return f.scenes, nil
}

func (f *fakeSurface) CurrentScene() (string, error) {
	f.record("CurrentScene")
	return f.current, nil
}

func (f *fakeSurface) SetCurrentScene(scene string) error {
	f.record("SetCurrentScene %s", scene)
	f.mu.Lock()
	f.current = scene
	f.mu.Unlock()
	return nil
}

func (f *fakeSurface) SceneItemID(scene, source string) (int, error) {
	id, ok := f.itemIDs[scene+"/"+source]
	if !ok {
		return 0, fmt.Errorf("no source %q in scene %q", source, scene)
	}
	return id, nil
}

func (f *fakeSurface) SetSceneItemEnabled(scene string, itemID int, enabled bool) error {
	f.record("SetSceneItemEnabled %d %v", itemID, enabled)
	return nil
}

func (f *fakeSurface) SetSceneItemTransform(scene string, itemID int, t Transform) error {
	f.mu.Lock()
	if t.PositionX != nil {
		f.posX[itemID] = *t.PositionX
	}
	if t.ScaleX != nil {
		f.scale[itemID] = *t.ScaleX
	}
	f.mu.Unlock()
	f.record("SetSceneItemTransform %d", itemID)
	return nil
}

func (f *fakeSurface) SetText(source, text string) error {
	f.record("SetText %s %s", source, text)
	return nil
}

func (f *fakeSurface) SetImageFile(source, path string) error {
	f.record("SetImageFile %s %s", source, path)
	return nil
}

func (f *fakeSurface) InputList() ([]string, error) {
	f.record("InputList")
	return f.inputs, nil
}

func (f *fakeSurface) FilterList(source string) ([]string, error) {
	f.record("FilterList %s", source)
	return f.filters[source], nil
}

func (f *fakeSurface) SetFilterEnabled(source, filter string, enabled bool) error {
	f.record("SetFilterEnabled %s %s %v", source, filter, enabled)
	return nil
}

func (f *fakeSurface) TriggerMediaAction(source, action string) error {
	f.record("TriggerMediaAction %s %s", source, action)
	return nil
}

func (f *fakeSurface) Close() error { return nil }

func TestRouteNoActionConfigured(t *testing.T) {
	surface := newFakeSurface()
	router := NewRouter(map[string]ActionConfig{}, surface)

	router.Route(Event{Type: EventChat, Text: "hello"})

	if calls := surface.callLog(); len(calls) != 0 {
		t.Fatalf("expected zero control-surface calls, got %v", calls)
	}
}

func TestRouteSceneSwitch(t *testing.T) {
	surface := newFakeSurface()
	router := NewRouter(map[string]ActionConfig{
		"goal_completed": {Type: "scene_switch", SceneName: "GoalCompleted"},
	}, surface)

	router.Route(Event{Type: EventGoalCompleted, Text: "Alice completed their goal!"})

	calls := surface.callLog()
	if len(calls) != 1 || calls[0] != "SetCurrentScene GoalCompleted" {
		t.Fatalf("unexpected calls: %v", calls)
	}
}

func TestRouteTextUpdateTemplate(t *testing.T) {
	surface := newFakeSurface()
	router := NewRouter(map[string]ActionConfig{
		"item_received": {Type: "text_update", SourceName: "LastItem", TextTemplate: "{receiving_player} got {item_name}"},
	}, surface)

	router.Route(Event{
		Type: EventItemReceived,
		Text: "Alice received Bow from Bob",
		Fields: map[string]string{
			"receiving_player": "Alice",
			"item_name":        "Bow",
		},
	})

	calls := surface.callLog()
	if len(calls) != 1 || calls[0] != "SetText LastItem Alice got Bow" {
		t.Fatalf("unexpected calls: %v", calls)
	}
}

func TestRouteTextUpdateMissingFieldFallsBack(t *testing.T) {
	surface := newFakeSurface()
	router := NewRouter(map[string]ActionConfig{
		"hint": {Type: "text_update", SourceName: "LastHint", TextTemplate: "{player_name}: {hint_text}"},
	}, surface)

	router.Route(Event{
		Type:   EventHint,
		Text:   "Hint: the Bow is at the Shop",
		Fields: map[string]string{"hint_text": "the Bow is at the Shop"},
	})

	calls := surface.callLog()
	if len(calls) != 1 || calls[0] != "SetText LastHint Hint: the Bow is at the Shop" {
		t.Fatalf("expected fallback to event text, got %v", calls)
	}
}

func TestRouteSourceVisibilityMissingSource(t *testing.T) {
	surface := newFakeSurface()
	router := NewRouter(map[string]ActionConfig{
		"player_joined": {Type: "source_visibility", SceneName: "Main", SourceName: "Nope"},
	}, surface)

	router.Route(Event{Type: EventPlayerJoined, Text: "Alice joined the game"})

	if calls := surface.callsMatching("SetSceneItemEnabled"); len(calls) != 0 {
		t.Fatalf("expected no visibility calls for a missing source, got %v", calls)
	}
}

func TestRouteSourceVisibility(t *testing.T) {
	surface := newFakeSurface()
	surface.itemIDs["Main/Alert"] = 7
	hidden := false
	router := NewRouter(map[string]ActionConfig{
		"player_left": {Type: "source_visibility", SceneName: "Main", SourceName: "Alert", Visible: &hidden},
	}, surface)

	router.Route(Event{Type: EventPlayerLeft, Text: "Alice left the game"})

	calls := surface.callsMatching("SetSceneItemEnabled")
	if len(calls) != 1 || calls[0] != "SetSceneItemEnabled 7 false" {
		t.Fatalf("unexpected calls: %v", calls)
	}
}

func TestRouteFilterToggleMissingFilter(t *testing.T) {
	surface := newFakeSurface()
	surface.filters["Webcam"] = []string{"Blur"}
	router := NewRouter(map[string]ActionConfig{
		"chat": {Type: "filter_toggle", SourceName: "Webcam", FilterName: "Shake"},
	}, surface)

	router.Route(Event{Type: EventChat, Text: "Alice: hi"})

	if calls := surface.callsMatching("SetFilterEnabled"); len(calls) != 0 {
		t.Fatalf("expected missing filter to be skipped, got %v", calls)
	}
}

func TestRouteMediaRestart(t *testing.T) {
	surface := newFakeSurface()
	surface.inputs = []string{"Fanfare"}
	router := NewRouter(map[string]ActionConfig{
		"goal_completed": {Type: "media_restart", SourceName: "Fanfare"},
	}, surface)

	router.Route(Event{Type: EventGoalCompleted, Text: "Alice completed their goal!"})

	calls := surface.callsMatching("TriggerMediaAction")
	if len(calls) != 1 || calls[0] != "TriggerMediaAction Fanfare "+mediaActionRestart {
		t.Fatalf("unexpected calls: %v", calls)
	}
}

func TestRenderTemplate(t *testing.T) {
	event := Event{
		Type:   EventItemReceived,
		Text:   "Alice received Bow from Bob",
		Fields: map[string]string{"item_name": "Bow"},
	}

	tests := []struct {
		template string
		want     string
	}{
		{"", "Alice received Bow from Bob"},
		{"{text}", "Alice received Bow from Bob"},
		{"[{type}] {item_name}", "[item_received] Bow"},
		{"{item_name} for {receiving_player}", "Alice received Bow from Bob"},
	}
	for _, tt := range tests {
		if got := renderTemplate(tt.template, event); got != tt.want {
			t.Errorf("renderTemplate(%q) = %q, want %q", tt.template, got, tt.want)
		}
	}
}
