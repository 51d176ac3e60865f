package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ametov/course-rag-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// CourseStore is the slice of the vector store the processor writes to.
type CourseStore interface {
	ExistingCourseTitles(ctx context.Context) ([]string, error)
	AddCourseCatalog(ctx context.Context, course *entity.Course) error
	AddChunks(ctx context.Context, chunks []entity.Chunk) error
}

// Processor ingests course documents: parse, chunk, index.
type Processor struct {
	store   CourseStore
	chunker *Chunker
	logger  *zap.Logger
}

func NewProcessor(store CourseStore, chunker *Chunker, logger *zap.Logger) *Processor {
	return &Processor{
		store:   store,
		chunker: chunker,
		logger:  logger,
	}
}

// ProcessDocument parses one document and derives its chunks.
func (p *Processor) ProcessDocument(raw string) (*entity.Course, []entity.Chunk, error) {
	course, err := ParseDocument(raw)
	if err != nil {
		return nil, nil, err
	}
	return course, p.BuildChunks(course), nil
}

// BuildChunks chunks every lesson of a course. The first chunk of each
// lesson carries the lesson number and title so it stays identifiable
// when retrieved on its own.
func (p *Processor) BuildChunks(course *entity.Course) []entity.Chunk {
	var chunks []entity.Chunk
	for _, lesson := range course.Lessons {
		pieces := p.chunker.Chunk(lesson.Text)
		for idx, piece := range pieces {
			if idx == 0 {
				piece = fmt.Sprintf("Lesson %d - %s: %s", lesson.Number, lesson.Title, piece)
			}
			chunks = append(chunks, entity.Chunk{
				Content:      piece,
				CourseTitle:  course.Title,
				LessonNumber: lesson.Number,
				Index:        idx,
			})
		}
	}
	return chunks
}

// IngestFolder ingests every .txt document under dir. Courses whose
// title is already cataloged are skipped, so re-running over the same
// folder is a no-op. A malformed document is reported and skipped
// without aborting the batch.
func (p *Processor) IngestFolder(ctx context.Context, dir string) (coursesAdded, chunksAdded int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read docs folder: %w", err)
	}

	existing, err := p.store.ExistingCourseTitles(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list existing courses: %w", err)
	}
	known := make(map[string]struct{}, len(existing))
	for _, title := range existing {
		known[title] = struct{}{}
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)

		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			ctxzap.Error(ctx, "failed to read course document", zap.String("file", name), zap.Error(readErr))
			continue
		}

		course, chunks, procErr := p.ProcessDocument(string(raw))
		if procErr != nil {
			ctxzap.Error(ctx, "failed to process course document", zap.String("file", name), zap.Error(procErr))
			continue
		}

		if _, ok := known[course.Title]; ok {
			ctxzap.Debug(ctx, "course already indexed, skipping", zap.String("course", course.Title))
			continue
		}

		if addErr := p.store.AddCourseCatalog(ctx, course); addErr != nil {
			ctxzap.Error(ctx, "failed to add course to catalog", zap.String("course", course.Title), zap.Error(addErr))
			continue
		}
		if addErr := p.store.AddChunks(ctx, chunks); addErr != nil {
			ctxzap.Error(ctx, "failed to add course chunks", zap.String("course", course.Title), zap.Error(addErr))
			continue
		}

		known[course.Title] = struct{}{}
		coursesAdded++
		chunksAdded += len(chunks)

		ctxzap.Info(ctx, "course indexed",
			zap.String("course", course.Title),
			zap.Int("lessons", len(course.Lessons)),
			zap.Int("chunks", len(chunks)),
		)
	}

	return coursesAdded, chunksAdded, nil
}
