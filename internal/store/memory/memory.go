// Package memory is a brute-force in-process similarity-search backend.
// Cosine distance, linear scan. Good enough for a course corpus that
// fits in memory; the postgres backend covers everything larger.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/ametov/course-rag-backend/internal/entity"
	"github.com/ametov/course-rag-backend/internal/store"
)

// Backend keeps both collections in memory guarded by a single RWMutex:
// ingestion writes take the exclusive lock, query reads the shared one.
type Backend struct {
	mu      sync.RWMutex
	catalog map[string]store.CatalogEntry
	chunks  []store.ChunkRecord
	byID    map[string]int
}

var _ store.Backend = (*Backend)(nil)

func NewBackend() *Backend {
	return &Backend{
		catalog: make(map[string]store.CatalogEntry),
		byID:    make(map[string]int),
	}
}

func (b *Backend) UpsertCatalogEntry(_ context.Context, e store.CatalogEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.catalog[e.Title] = e
	return nil
}

func (b *Backend) CatalogTitles(_ context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	titles := make([]string, 0, len(b.catalog))
	for title := range b.catalog {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles, nil
}

func (b *Backend) CatalogEntry(_ context.Context, title string) (*store.CatalogEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	entry, ok := b.catalog[title]
	if !ok {
		return nil, entity.ErrCourseNotFound
	}
	return &entry, nil
}

func (b *Backend) CatalogEntries(_ context.Context) ([]store.CatalogEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	entries := make([]store.CatalogEntry, 0, len(b.catalog))
	for _, entry := range b.catalog {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Title < entries[j].Title })
	return entries, nil
}

func (b *Backend) NearestCatalogEntry(_ context.Context, embedding []float32) (*store.CatalogEntry, float64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var best *store.CatalogEntry
	bestDistance := math.Inf(1)
	for _, entry := range b.catalog {
		d := cosineDistance(entry.Embedding, embedding)
		if d < bestDistance {
			e := entry
			best = &e
			bestDistance = d
		}
	}
	if best == nil {
		return nil, 0, entity.ErrCourseNotFound
	}
	return best, bestDistance, nil
}

func (b *Backend) UpsertChunks(_ context.Context, records []store.ChunkRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, record := range records {
		if idx, ok := b.byID[record.ID]; ok {
			b.chunks[idx] = record
			continue
		}
		b.byID[record.ID] = len(b.chunks)
		b.chunks = append(b.chunks, record)
	}
	return nil
}

func (b *Backend) QueryChunks(_ context.Context, embedding []float32, courseTitle string, lessonNumber *int, limit int) ([]store.Hit, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var hits []store.Hit
	for _, record := range b.chunks {
		if courseTitle != "" && record.CourseTitle != courseTitle {
			continue
		}
		if lessonNumber != nil && record.LessonNumber != *lessonNumber {
			continue
		}
		hits = append(hits, store.Hit{
			Record:   record,
			Distance: cosineDistance(record.Embedding, embedding),
		})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// cosineDistance is 1 - cosine similarity, so closer means smaller.
func cosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
