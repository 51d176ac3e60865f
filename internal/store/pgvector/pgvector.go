// Package pgvector is a similarity-search backend on PostgreSQL with
// the pgvector extension.
package pgvector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ametov/course-rag-backend/internal/entity"
	"github.com/ametov/course-rag-backend/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"
)

// Backend implements store.Backend over a pgx connection pool.
// Concurrent reads are handled by the database; the application only
// writes during the startup ingestion phase.
type Backend struct {
	db *pgxpool.Pool
}

var _ store.Backend = (*Backend)(nil)

func NewBackend(db *pgxpool.Pool) *Backend {
	return &Backend{db: db}
}

func (b *Backend) UpsertCatalogEntry(ctx context.Context, e store.CatalogEntry) error {
	lessons, err := json.Marshal(e.Lessons)
	if err != nil {
		return fmt.Errorf("marshal lessons: %w", err)
	}

	_, err = b.db.Exec(ctx, `
		INSERT INTO course_catalog (title, instructor, link, lessons, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (title) DO UPDATE
		SET instructor = EXCLUDED.instructor,
		    link       = EXCLUDED.link,
		    lessons    = EXCLUDED.lessons,
		    embedding  = EXCLUDED.embedding`,
		e.Title, e.Instructor, e.Link, lessons, pgv.NewVector(e.Embedding),
	)
	if err != nil {
		return fmt.Errorf("upsert catalog entry: %w", err)
	}
	return nil
}

func (b *Backend) CatalogTitles(ctx context.Context) ([]string, error) {
	rows, err := b.db.Query(ctx, `SELECT title FROM course_catalog ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("query catalog titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan catalog title: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

func (b *Backend) CatalogEntry(ctx context.Context, title string) (*store.CatalogEntry, error) {
	row := b.db.QueryRow(ctx, `
		SELECT title, instructor, link, lessons
		FROM course_catalog
		WHERE title = $1`,
		title,
	)
	entry, err := scanCatalogEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrCourseNotFound
		}
		return nil, fmt.Errorf("get catalog entry: %w", err)
	}
	return entry, nil
}

func (b *Backend) CatalogEntries(ctx context.Context) ([]store.CatalogEntry, error) {
	rows, err := b.db.Query(ctx, `
		SELECT title, instructor, link, lessons
		FROM course_catalog
		ORDER BY title`,
	)
	if err != nil {
		return nil, fmt.Errorf("query catalog entries: %w", err)
	}
	defer rows.Close()

	var entries []store.CatalogEntry
	for rows.Next() {
		entry, err := scanCatalogEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

func (b *Backend) NearestCatalogEntry(ctx context.Context, embedding []float32) (*store.CatalogEntry, float64, error) {
	row := b.db.QueryRow(ctx, `
		SELECT title, instructor, link, lessons, embedding <=> $1 AS distance
		FROM course_catalog
		ORDER BY distance
		LIMIT 1`,
		pgv.NewVector(embedding),
	)

	var entry store.CatalogEntry
	var lessons []byte
	var distance float64
	if err := row.Scan(&entry.Title, &entry.Instructor, &entry.Link, &lessons, &distance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, entity.ErrCourseNotFound
		}
		return nil, 0, fmt.Errorf("nearest catalog entry: %w", err)
	}
	if err := json.Unmarshal(lessons, &entry.Lessons); err != nil {
		return nil, 0, fmt.Errorf("unmarshal lessons: %w", err)
	}
	return &entry, distance, nil
}

func (b *Backend) UpsertChunks(ctx context.Context, records []store.ChunkRecord) error {
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO course_chunks (id, content, course_title, lesson_number, chunk_index, embedding)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE
			SET content   = EXCLUDED.content,
			    embedding = EXCLUDED.embedding`,
			r.ID, r.Content, r.CourseTitle, r.LessonNumber, r.ChunkIndex, pgv.NewVector(r.Embedding),
		)
	}

	results := b.db.SendBatch(ctx, batch)
	defer results.Close()
	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert chunk: %w", err)
		}
	}
	return nil
}

func (b *Backend) QueryChunks(ctx context.Context, embedding []float32, courseTitle string, lessonNumber *int, limit int) ([]store.Hit, error) {
	rows, err := b.db.Query(ctx, `
		SELECT id, content, course_title, lesson_number, chunk_index, embedding <=> $1 AS distance
		FROM course_chunks
		WHERE ($2 = '' OR course_title = $2)
		  AND ($3::int IS NULL OR lesson_number = $3)
		ORDER BY distance
		LIMIT $4`,
		pgv.NewVector(embedding), courseTitle, lessonNumber, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var hits []store.Hit
	for rows.Next() {
		var hit store.Hit
		if err := rows.Scan(
			&hit.Record.ID,
			&hit.Record.Content,
			&hit.Record.CourseTitle,
			&hit.Record.LessonNumber,
			&hit.Record.ChunkIndex,
			&hit.Distance,
		); err != nil {
			return nil, fmt.Errorf("scan chunk hit: %w", err)
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func scanCatalogEntry(row pgx.Row) (*store.CatalogEntry, error) {
	var entry store.CatalogEntry
	var lessons []byte
	if err := row.Scan(&entry.Title, &entry.Instructor, &entry.Link, &lessons); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(lessons, &entry.Lessons); err != nil {
		return nil, fmt.Errorf("unmarshal lessons: %w", err)
	}
	return &entry, nil
}
