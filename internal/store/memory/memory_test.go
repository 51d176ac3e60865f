package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/ametov/course-rag-backend/internal/entity"
	"github.com/ametov/course-rag-backend/internal/store"
)

func TestNearestCatalogEntry_OrdersByCosineDistance(t *testing.T) {
	b := NewBackend()
	ctx := context.Background()

	entries := []store.CatalogEntry{
		{Title: "A", Embedding: []float32{1, 0}},
		{Title: "B", Embedding: []float32{0, 1}},
		{Title: "C", Embedding: []float32{0.9, 0.1}},
	}
	for _, e := range entries {
		if err := b.UpsertCatalogEntry(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	nearest, distance, err := b.NearestCatalogEntry(ctx, []float32{1, 0})
	if err != nil {
		t.Fatalf("nearest failed: %v", err)
	}
	if nearest.Title != "A" {
		t.Errorf("expected A, got %s", nearest.Title)
	}
	if distance > 1e-9 {
		t.Errorf("expected zero distance for identical vector, got %g", distance)
	}
}

func TestNearestCatalogEntry_EmptyCatalog(t *testing.T) {
	b := NewBackend()

	_, _, err := b.NearestCatalogEntry(context.Background(), []float32{1, 0})
	if !errors.Is(err, entity.ErrCourseNotFound) {
		t.Errorf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestCatalogEntry_Unknown(t *testing.T) {
	b := NewBackend()

	_, err := b.CatalogEntry(context.Background(), "missing")
	if !errors.Is(err, entity.ErrCourseNotFound) {
		t.Errorf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestCatalogTitles_Sorted(t *testing.T) {
	b := NewBackend()
	ctx := context.Background()

	for _, title := range []string{"Zeta", "Alpha", "Mid"} {
		if err := b.UpsertCatalogEntry(ctx, store.CatalogEntry{Title: title}); err != nil {
			t.Fatal(err)
		}
	}

	titles, err := b.CatalogTitles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Alpha", "Mid", "Zeta"}
	for i, title := range want {
		if titles[i] != title {
			t.Errorf("titles[%d] = %q, want %q", i, titles[i], title)
		}
	}
}

func TestUpsertChunks_ReplacesByID(t *testing.T) {
	b := NewBackend()
	ctx := context.Background()

	record := store.ChunkRecord{ID: "c::l1::c0", Content: "old", Embedding: []float32{1, 0}}
	if err := b.UpsertChunks(ctx, []store.ChunkRecord{record}); err != nil {
		t.Fatal(err)
	}
	record.Content = "new"
	if err := b.UpsertChunks(ctx, []store.ChunkRecord{record}); err != nil {
		t.Fatal(err)
	}

	hits, err := b.QueryChunks(ctx, []float32{1, 0}, "", nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 chunk after upsert, got %d", len(hits))
	}
	if hits[0].Record.Content != "new" {
		t.Errorf("upsert must replace content, got %q", hits[0].Record.Content)
	}
}

func TestQueryChunks_FiltersAndLimit(t *testing.T) {
	b := NewBackend()
	ctx := context.Background()

	records := []store.ChunkRecord{
		{ID: "a::l1::c0", CourseTitle: "A", LessonNumber: 1, Embedding: []float32{1, 0}},
		{ID: "a::l2::c0", CourseTitle: "A", LessonNumber: 2, Embedding: []float32{0.9, 0.1}},
		{ID: "b::l1::c0", CourseTitle: "B", LessonNumber: 1, Embedding: []float32{0, 1}},
	}
	if err := b.UpsertChunks(ctx, records); err != nil {
		t.Fatal(err)
	}

	hits, err := b.QueryChunks(ctx, []float32{1, 0}, "A", nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits for course A, got %d", len(hits))
	}
	if hits[0].Record.ID != "a::l1::c0" {
		t.Errorf("hits must be ordered by distance, got %s first", hits[0].Record.ID)
	}

	lesson := 1
	hits, err = b.QueryChunks(ctx, []float32{1, 0}, "A", &lesson, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Record.LessonNumber != 1 {
		t.Errorf("lesson filter failed: %+v", hits)
	}

	hits, err = b.QueryChunks(ctx, []float32{1, 0}, "", nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("limit must cap hits, got %d", len(hits))
	}
}

func TestChunkIDFormat(t *testing.T) {
	id := store.ChunkID("Intro to Go", 3, 7)
	if id != "Intro to Go::l3::c7" {
		t.Errorf("unexpected chunk id: %s", id)
	}
}
