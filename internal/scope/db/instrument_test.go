package db

import (
	"context"
	"testing"
)

func TestInstrumentReportsMutations(t *testing.T) {
	ctx := context.Background()
	var events []Event
	store := Instrument(NewMemStore(), func(_ context.Context, ev Event) {
		events = append(events, ev)
	})

	_ = store.Set(ctx, "sphinx_highlight_phrases", `["x"]`, 0)
	_, _, _ = store.Get(ctx, "sphinx_highlight_phrases")
	_ = store.Delete(ctx, "sphinx_highlight_phrases", "sphinx_highlight_terms")

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Op != OpSet || events[0].Keys[0] != "sphinx_highlight_phrases" || events[0].Value != `["x"]` {
		t.Errorf("unexpected set event %+v", events[0])
	}
	if events[1].Op != OpDelete || len(events[1].Keys) != 2 {
		t.Errorf("unexpected delete event %+v", events[1])
	}
}

func TestInstrumentNilHook(t *testing.T) {
	mem := NewMemStore()
	if Instrument(mem, nil) != Store(mem) {
		t.Error("nil hook should return the store unchanged")
	}
}
