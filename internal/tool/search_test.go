package tool

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ametov/course-rag-backend/internal/entity"
)

// fakeSearchStore implements SearchStore with canned results.
type fakeSearchStore struct {
	results     entity.SearchResults
	courseLinks map[string]string
	lessonLinks map[string]string

	lastQuery  string
	lastCourse string
	lastLesson *int
}

func (f *fakeSearchStore) Search(_ context.Context, query, courseName string, lessonNumber *int, _ int) entity.SearchResults {
	f.lastQuery = query
	f.lastCourse = courseName
	f.lastLesson = lessonNumber
	return f.results
}

func (f *fakeSearchStore) GetCourseLink(_ context.Context, title string) string {
	return f.courseLinks[title]
}

func (f *fakeSearchStore) GetLessonLink(_ context.Context, title string, lessonNumber int) string {
	return f.lessonLinks[lessonKey(title, lessonNumber)]
}

func lessonKey(title string, lesson int) string {
	return fmt.Sprintf("%s#%d", title, lesson)
}

func TestCourseSearchTool_RequiresQuery(t *testing.T) {
	tool := NewCourseSearchTool(&fakeSearchStore{})

	_, err := tool.Execute(context.Background(), map[string]any{})
	if err == nil {
		t.Error("expected error for missing query")
	}
}

func TestCourseSearchTool_PassesFilters(t *testing.T) {
	store := &fakeSearchStore{}
	tool := NewCourseSearchTool(store)

	// lesson_number arrives as float64 from JSON decoding
	_, err := tool.Execute(context.Background(), map[string]any{
		"query":         "what is retrieval",
		"course_name":   "MCP",
		"lesson_number": float64(3),
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if store.lastQuery != "what is retrieval" || store.lastCourse != "MCP" {
		t.Errorf("filters not forwarded: query=%q course=%q", store.lastQuery, store.lastCourse)
	}
	if store.lastLesson == nil || *store.lastLesson != 3 {
		t.Errorf("lesson filter not forwarded: %v", store.lastLesson)
	}
}

func TestCourseSearchTool_FormatsResultsAndTracksSources(t *testing.T) {
	store := &fakeSearchStore{
		results: entity.SearchResults{
			Hits: []entity.SearchHit{
				{Content: "chunk one", CourseTitle: "Course A", LessonNumber: 1},
				{Content: "chunk two", CourseTitle: "Course A", LessonNumber: 2},
			},
		},
		courseLinks: map[string]string{"Course A": "https://example.com/a"},
		lessonLinks: map[string]string{lessonKey("Course A", 1): "https://example.com/a/1"},
	}
	tool := NewCourseSearchTool(store)

	out, err := tool.Execute(context.Background(), map[string]any{"query": "anything"})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	blocks := strings.Split(out, "\n\n")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 result blocks, got %d", len(blocks))
	}
	if !strings.HasPrefix(blocks[0], "[Course A - Lesson 1]\n") {
		t.Errorf("unexpected block header: %q", blocks[0])
	}

	sources := tool.LastSources()
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].URL != "https://example.com/a/1" {
		t.Errorf("lesson link must win, got %q", sources[0].URL)
	}
	if sources[1].URL != "https://example.com/a" {
		t.Errorf("missing lesson link must fall back to course link, got %q", sources[1].URL)
	}
	if sources[0].Text != "Course A - Lesson 1" {
		t.Errorf("unexpected source text: %q", sources[0].Text)
	}

	tool.ResetSources()
	if len(tool.LastSources()) != 0 {
		t.Error("sources must be cleared after reset")
	}
}

func TestCourseSearchTool_EmptyResultsMessage(t *testing.T) {
	tool := NewCourseSearchTool(&fakeSearchStore{})

	lesson := 2
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"no filters", map[string]any{"query": "x"}, "No relevant content found."},
		{"course filter", map[string]any{"query": "x", "course_name": "MCP"}, "No relevant content found in course 'MCP'."},
		{"both filters", map[string]any{"query": "x", "course_name": "MCP", "lesson_number": float64(lesson)}, "No relevant content found in course 'MCP' in lesson 2."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tool.Execute(context.Background(), tt.args)
			if err != nil {
				t.Fatalf("execute failed: %v", err)
			}
			if out != tt.want {
				t.Errorf("got %q, want %q", out, tt.want)
			}
		})
	}
}

func TestCourseSearchTool_SearchErrorReturnedAsText(t *testing.T) {
	store := &fakeSearchStore{
		results: entity.SearchResults{Err: "No course found matching 'Rust'"},
	}
	tool := NewCourseSearchTool(store)

	out, err := tool.Execute(context.Background(), map[string]any{"query": "x", "course_name": "Rust"})
	if err != nil {
		t.Fatalf("store-level faults must not become tool errors: %v", err)
	}
	if out != "No course found matching 'Rust'" {
		t.Errorf("unexpected output: %q", out)
	}
}
