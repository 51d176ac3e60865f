package tool

import (
	"context"
	"strings"
	"testing"

	"github.com/ametov/course-rag-backend/internal/entity"
	"github.com/ametov/course-rag-backend/internal/store"
)

// fakeCatalogStore implements CatalogStore over a fixed entry set.
type fakeCatalogStore struct {
	entries map[string]store.CatalogEntry
	resolve map[string]string
}

func (f *fakeCatalogStore) ResolveCourseName(_ context.Context, name string) (string, error) {
	if title, ok := f.resolve[name]; ok {
		return title, nil
	}
	return "", entity.ErrCourseNotFound
}

func (f *fakeCatalogStore) CatalogEntryByTitle(_ context.Context, title string) (*store.CatalogEntry, error) {
	entry, ok := f.entries[title]
	if !ok {
		return nil, entity.ErrCourseNotFound
	}
	return &entry, nil
}

func (f *fakeCatalogStore) AllCatalogEntries(_ context.Context) ([]store.CatalogEntry, error) {
	var entries []store.CatalogEntry
	for _, entry := range f.entries {
		entries = append(entries, entry)
	}
	return entries, nil
}

func TestCourseOutlineTool_Outline(t *testing.T) {
	tool := NewCourseOutlineTool(&fakeCatalogStore{
		resolve: map[string]string{"MCP": "MCP Server Development"},
		entries: map[string]store.CatalogEntry{
			"MCP Server Development": {
				Title: "MCP Server Development",
				Link:  "https://example.com/mcp",
				Lessons: []entity.Lesson{
					{Number: 2, Title: "Tools"},
					{Number: 1, Title: "Introduction"},
				},
			},
		},
	})

	out, err := tool.Execute(context.Background(), map[string]any{"course_name": "MCP"})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	want := "Course: MCP Server Development\n" +
		"Link: https://example.com/mcp\n\n" +
		"Lessons:\n" +
		"1. Introduction\n" +
		"2. Tools"
	if out != want {
		t.Errorf("unexpected outline:\n got %q\nwant %q", out, want)
	}
}

func TestCourseOutlineTool_UnresolvableName(t *testing.T) {
	tool := NewCourseOutlineTool(&fakeCatalogStore{})

	out, err := tool.Execute(context.Background(), map[string]any{"course_name": "Rust"})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if out != "No course found matching 'Rust'." {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestCourseOutlineTool_ListCourses(t *testing.T) {
	tool := NewCourseOutlineTool(&fakeCatalogStore{
		entries: map[string]store.CatalogEntry{
			"Course A": {Title: "Course A", Lessons: []entity.Lesson{{Number: 1}}},
		},
	})

	out, err := tool.Execute(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !strings.HasPrefix(out, "Available courses:") {
		t.Errorf("unexpected listing: %q", out)
	}
	if !strings.Contains(out, "- Course A (1 lessons)") {
		t.Errorf("listing missing course line: %q", out)
	}
}

func TestCourseOutlineTool_EmptyCatalog(t *testing.T) {
	tool := NewCourseOutlineTool(&fakeCatalogStore{})

	out, err := tool.Execute(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if out != "No courses found in the catalog." {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestCourseOutlineTool_NoLessonInfo(t *testing.T) {
	tool := NewCourseOutlineTool(&fakeCatalogStore{
		resolve: map[string]string{"A": "Course A"},
		entries: map[string]store.CatalogEntry{
			"Course A": {Title: "Course A"},
		},
	})

	out, err := tool.Execute(context.Background(), map[string]any{"course_name": "A"})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !strings.Contains(out, "No lesson information available.") {
		t.Errorf("unexpected output: %q", out)
	}
}
