package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ametov/course-rag-backend/internal/entity"
)

// SearchStore is the slice of the vector store the search tool reads.
type SearchStore interface {
	Search(ctx context.Context, query, courseName string, lessonNumber *int, limit int) entity.SearchResults
	GetCourseLink(ctx context.Context, title string) string
	GetLessonLink(ctx context.Context, title string, lessonNumber int) string
}

const searchToolSchema = `{
	"type": "object",
	"properties": {
		"query": {
			"type": "string",
			"description": "What to search for in the course content"
		},
		"course_name": {
			"type": "string",
			"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')"
		},
		"lesson_number": {
			"type": "integer",
			"description": "Specific lesson number to search within (e.g. 1, 2, 3)"
		}
	},
	"required": ["query"]
}`

// CourseSearchTool searches course content with fuzzy course-name
// matching and optional lesson filtering. It keeps the sources of its
// most recent call for citation display, overwritten on every call.
type CourseSearchTool struct {
	store SearchStore

	mu          sync.Mutex
	lastSources []entity.Source
}

func NewCourseSearchTool(store SearchStore) *CourseSearchTool {
	return &CourseSearchTool{store: store}
}

func (t *CourseSearchTool) Definition() entity.ToolDefinition {
	return entity.ToolDefinition{
		Name:        "search_course_content",
		Description: "Search course materials with smart course name matching and lesson filtering",
		InputSchema: json.RawMessage(searchToolSchema),
	}
}

func (t *CourseSearchTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return "", fmt.Errorf("search tool requires a 'query' argument")
	}
	courseName, _ := args["course_name"].(string)
	lessonNumber := intArg(args, "lesson_number")

	results := t.store.Search(ctx, query, courseName, lessonNumber, 0)

	if results.Err != "" {
		return results.Err, nil
	}

	if results.IsEmpty() {
		var filterInfo strings.Builder
		if courseName != "" {
			fmt.Fprintf(&filterInfo, " in course '%s'", courseName)
		}
		if lessonNumber != nil {
			fmt.Fprintf(&filterInfo, " in lesson %d", *lessonNumber)
		}
		return fmt.Sprintf("No relevant content found%s.", filterInfo.String()), nil
	}

	return t.formatResults(ctx, results), nil
}

// formatResults renders hits as labeled context blocks and records the
// source list for the UI.
func (t *CourseSearchTool) formatResults(ctx context.Context, results entity.SearchResults) string {
	var blocks []string
	var sources []entity.Source

	for _, hit := range results.Hits {
		header := fmt.Sprintf("[%s - Lesson %d]", hit.CourseTitle, hit.LessonNumber)
		blocks = append(blocks, header+"\n"+hit.Content)

		url := t.store.GetLessonLink(ctx, hit.CourseTitle, hit.LessonNumber)
		if url == "" {
			url = t.store.GetCourseLink(ctx, hit.CourseTitle)
		}
		sources = append(sources, entity.Source{
			Text: fmt.Sprintf("%s - Lesson %d", hit.CourseTitle, hit.LessonNumber),
			URL:  url,
		})
	}

	t.mu.Lock()
	t.lastSources = sources
	t.mu.Unlock()

	return strings.Join(blocks, "\n\n")
}

func (t *CourseSearchTool) LastSources() []entity.Source {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSources
}

func (t *CourseSearchTool) ResetSources() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSources = nil
}

// intArg extracts an optional integer argument; JSON numbers arrive as
// float64.
func intArg(args map[string]any, key string) *int {
	switch v := args[key].(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		n := v
		return &n
	case json.Number:
		if i, err := v.Int64(); err == nil {
			n := int(i)
			return &n
		}
	}
	return nil
}
