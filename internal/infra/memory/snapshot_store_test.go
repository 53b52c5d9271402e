package memory

import (
	"context"
	"testing"
)

func TestSnapshotStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()

	data, err := store.Load(ctx)
	if err != nil || data != nil {
		t.Fatalf("expected empty store, got %q, %v", data, err)
	}

	payload := []byte(`[{"id":"s1"}]`)
	if err := store.Save(ctx, payload); err != nil {
		t.Fatalf("save: %v", err)
	}
	payload[0] = 'x'

	data, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != `[{"id":"s1"}]` {
		t.Fatalf("expected stored copy, got %q", data)
	}
}
