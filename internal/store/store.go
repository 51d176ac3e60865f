// Package store maintains the two similarity-search collections of the
// system: a course catalog used for fuzzy course-name resolution and a
// content collection of chunks used for semantic retrieval.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ametov/course-rag-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Embedder converts text into vector representations.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// CatalogEntry is one course-level row of the catalog collection.
// Lesson texts are not stored here, only their metadata.
type CatalogEntry struct {
	Title      string
	Instructor string
	Link       string
	Lessons    []entity.Lesson
	Embedding  []float32
}

// ChunkRecord is one row of the content collection. The ID is derived
// from (course title, lesson number, chunk index) so re-insertion of
// the same chunk upserts in place.
type ChunkRecord struct {
	ID           string
	Content      string
	CourseTitle  string
	LessonNumber int
	ChunkIndex   int
	Embedding    []float32
}

// Hit is a content row matched by a similarity query.
type Hit struct {
	Record   ChunkRecord
	Distance float64
}

// Backend is a similarity-search service holding both collections.
// Implementations must tolerate concurrent reads; ingestion happens in
// an exclusive startup phase.
type Backend interface {
	UpsertCatalogEntry(ctx context.Context, e CatalogEntry) error
	CatalogTitles(ctx context.Context) ([]string, error)
	CatalogEntry(ctx context.Context, title string) (*CatalogEntry, error)
	CatalogEntries(ctx context.Context) ([]CatalogEntry, error)
	NearestCatalogEntry(ctx context.Context, embedding []float32) (*CatalogEntry, float64, error)
	UpsertChunks(ctx context.Context, records []ChunkRecord) error
	QueryChunks(ctx context.Context, embedding []float32, courseTitle string, lessonNumber *int, limit int) ([]Hit, error)
}

// ChunkID derives the stable content-collection key of a chunk.
func ChunkID(courseTitle string, lessonNumber, chunkIndex int) string {
	return fmt.Sprintf("%s::l%d::c%d", courseTitle, lessonNumber, chunkIndex)
}

// Options tune retrieval behavior.
type Options struct {
	// MaxResults caps content query hits when the caller passes no limit.
	MaxResults int
	// ResolveMaxDistance rejects course-name resolutions farther than
	// this distance. Zero accepts the nearest catalog entry
	// unconditionally.
	ResolveMaxDistance float64
}

// VectorStore is the retrieval index over both collections.
type VectorStore struct {
	backend  Backend
	embedder Embedder
	opts     Options
	logger   *zap.Logger
}

func NewVectorStore(backend Backend, embedder Embedder, opts Options, logger *zap.Logger) *VectorStore {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}
	return &VectorStore{
		backend:  backend,
		embedder: embedder,
		opts:     opts,
		logger:   logger,
	}
}

// AddCourseCatalog inserts one catalog row for the course. It is a
// no-op when the title is already cataloged.
func (s *VectorStore) AddCourseCatalog(ctx context.Context, course *entity.Course) error {
	if _, err := s.backend.CatalogEntry(ctx, course.Title); err == nil {
		ctxzap.Debug(ctx, "course already in catalog", zap.String("course", course.Title))
		return nil
	} else if !errors.Is(err, entity.ErrCourseNotFound) {
		return fmt.Errorf("check catalog for %q: %w", course.Title, err)
	}

	text := course.Title
	if course.Instructor != "" {
		text += " " + course.Instructor
	}
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed course %q: %w", course.Title, err)
	}

	lessons := make([]entity.Lesson, len(course.Lessons))
	for i, l := range course.Lessons {
		l.Text = ""
		lessons[i] = l
	}

	return s.backend.UpsertCatalogEntry(ctx, CatalogEntry{
		Title:      course.Title,
		Instructor: course.Instructor,
		Link:       course.Link,
		Lessons:    lessons,
		Embedding:  embedding,
	})
}

// AddChunks bulk-inserts chunk rows. Duplicate protection is the
// caller's job (re-ingestion is prevented at the catalog level).
func (s *VectorStore) AddChunks(ctx context.Context, chunks []entity.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(embeddings))
	}

	records := make([]ChunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = ChunkRecord{
			ID:           ChunkID(c.CourseTitle, c.LessonNumber, c.Index),
			Content:      c.Content,
			CourseTitle:  c.CourseTitle,
			LessonNumber: c.LessonNumber,
			ChunkIndex:   c.Index,
			Embedding:    embeddings[i],
		}
	}

	return s.backend.UpsertChunks(ctx, records)
}

// ResolveCourseName resolves a fuzzy course name to the exact catalog
// title via nearest-neighbor search. Returns entity.ErrCourseNotFound
// when the catalog is empty or the match is rejected by the configured
// distance threshold.
func (s *VectorStore) ResolveCourseName(ctx context.Context, name string) (string, error) {
	embedding, err := s.embedder.Embed(ctx, name)
	if err != nil {
		return "", fmt.Errorf("embed course name %q: %w", name, err)
	}

	nearest, distance, err := s.backend.NearestCatalogEntry(ctx, embedding)
	if err != nil {
		return "", err
	}

	if s.opts.ResolveMaxDistance > 0 && distance > s.opts.ResolveMaxDistance {
		ctxzap.Debug(ctx, "nearest course rejected by distance threshold",
			zap.String("name", name),
			zap.String("nearest", nearest.Title),
			zap.Float64("distance", distance),
		)
		return "", entity.ErrCourseNotFound
	}

	return nearest.Title, nil
}

// Search runs a similarity query over the content collection with
// optional course and lesson filters. Service faults are absorbed into
// SearchResults.Err so the caller always has something to render.
func (s *VectorStore) Search(ctx context.Context, query, courseName string, lessonNumber *int, limit int) entity.SearchResults {
	if limit <= 0 {
		limit = s.opts.MaxResults
	}

	courseTitle := ""
	if courseName != "" {
		resolved, err := s.ResolveCourseName(ctx, courseName)
		if err != nil {
			if errors.Is(err, entity.ErrCourseNotFound) {
				return entity.SearchResults{Err: fmt.Sprintf("No course found matching '%s'", courseName)}
			}
			ctxzap.Error(ctx, "course name resolution failed", zap.String("name", courseName), zap.Error(err))
			return entity.SearchResults{Err: fmt.Sprintf("Search error: %v", err)}
		}
		courseTitle = resolved
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		ctxzap.Error(ctx, "query embedding failed", zap.Error(err))
		return entity.SearchResults{Err: fmt.Sprintf("Search error: %v", err)}
	}

	hits, err := s.backend.QueryChunks(ctx, embedding, courseTitle, lessonNumber, limit)
	if err != nil {
		ctxzap.Error(ctx, "content query failed", zap.Error(err))
		return entity.SearchResults{Err: fmt.Sprintf("Search error: %v", err)}
	}

	results := entity.SearchResults{}
	for _, hit := range hits {
		results.Hits = append(results.Hits, entity.SearchHit{
			Content:      hit.Record.Content,
			CourseTitle:  hit.Record.CourseTitle,
			LessonNumber: hit.Record.LessonNumber,
			Distance:     hit.Distance,
		})
	}
	return results
}

// ExistingCourseTitles lists every cataloged course title.
func (s *VectorStore) ExistingCourseTitles(ctx context.Context) ([]string, error) {
	return s.backend.CatalogTitles(ctx)
}

// CatalogEntryByTitle returns the catalog row of an exact title.
func (s *VectorStore) CatalogEntryByTitle(ctx context.Context, title string) (*CatalogEntry, error) {
	return s.backend.CatalogEntry(ctx, title)
}

// AllCatalogEntries returns every catalog row.
func (s *VectorStore) AllCatalogEntries(ctx context.Context) ([]CatalogEntry, error) {
	return s.backend.CatalogEntries(ctx)
}

// GetCourseLink returns the course-level link, or "" when unknown.
func (s *VectorStore) GetCourseLink(ctx context.Context, title string) string {
	entry, err := s.backend.CatalogEntry(ctx, title)
	if err != nil {
		return ""
	}
	return entry.Link
}

// GetLessonLink returns the link of one lesson, or "" when unknown.
func (s *VectorStore) GetLessonLink(ctx context.Context, title string, lessonNumber int) string {
	entry, err := s.backend.CatalogEntry(ctx, title)
	if err != nil {
		return ""
	}
	for _, lesson := range entry.Lessons {
		if lesson.Number == lessonNumber {
			return lesson.Link
		}
	}
	return ""
}
