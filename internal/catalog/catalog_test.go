package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "catalog.db"), false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return s
}

func doc(id, hash string, at time.Time) *Document {
	return &Document{
		DocID:       id,
		Title:       "title-" + id,
		Path:        "/pdfs/" + id + ".pdf",
		ContentHash: hash,
		Pages:       3,
		Chunks:      9,
		IngestedAt:  at,
	}
}

func TestGet_UnknownReturnsNil(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown doc, got %+v", got)
	}
}

func TestUpsert_InsertThenUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := s.Upsert(ctx, doc("abc", "hash1", now)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := s.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.ContentHash != "hash1" {
		t.Fatalf("unexpected record: %+v", got)
	}

	if err := s.Upsert(ctx, doc("abc", "hash2", now.Add(time.Hour))); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = s.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.ContentHash != "hash2" {
		t.Errorf("expected updated hash, got %s", got.ContentHash)
	}

	docs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("upsert must not duplicate rows, got %d", len(docs))
	}
}

func TestList_IngestionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	for i, id := range []string{"ccc", "aaa", "bbb"} {
		if err := s.Upsert(ctx, doc(id, "h", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}

	docs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 docs, got %d", len(docs))
	}
	want := []string{"ccc", "aaa", "bbb"}
	for i, d := range docs {
		if d.DocID != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], d.DocID)
		}
	}
}
