package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ametov/course-rag-backend/internal/entity"
	"github.com/ametov/course-rag-backend/internal/store"
)

// CatalogStore is the slice of the vector store the outline tool reads.
type CatalogStore interface {
	ResolveCourseName(ctx context.Context, name string) (string, error)
	CatalogEntryByTitle(ctx context.Context, title string) (*store.CatalogEntry, error)
	AllCatalogEntries(ctx context.Context) ([]store.CatalogEntry, error)
}

const outlineToolSchema = `{
	"type": "object",
	"properties": {
		"course_name": {
			"type": "string",
			"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction'). If omitted, lists all available courses."
		}
	}
}`

// CourseOutlineTool returns a course's structure: title, link and the
// complete lesson list. Without a course name it lists the catalog.
type CourseOutlineTool struct {
	store CatalogStore
}

func NewCourseOutlineTool(store CatalogStore) *CourseOutlineTool {
	return &CourseOutlineTool{store: store}
}

func (t *CourseOutlineTool) Definition() entity.ToolDefinition {
	return entity.ToolDefinition{
		Name:        "get_course_outline",
		Description: "Get course structure including title, link, and complete lesson list. Use for questions about course curriculum or what a course covers.",
		InputSchema: json.RawMessage(outlineToolSchema),
	}
}

func (t *CourseOutlineTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	courseName, _ := args["course_name"].(string)

	if courseName == "" {
		return t.listCourses(ctx)
	}

	title, err := t.store.ResolveCourseName(ctx, courseName)
	if err != nil {
		if errors.Is(err, entity.ErrCourseNotFound) {
			return fmt.Sprintf("No course found matching '%s'.", courseName), nil
		}
		return "", fmt.Errorf("resolve course name: %w", err)
	}

	entry, err := t.store.CatalogEntryByTitle(ctx, title)
	if err != nil {
		return "", fmt.Errorf("get course outline: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", entry.Title)
	if entry.Link != "" {
		fmt.Fprintf(&b, "Link: %s\n", entry.Link)
	}

	if len(entry.Lessons) == 0 {
		b.WriteString("\nNo lesson information available.")
		return b.String(), nil
	}

	lessons := make([]entity.Lesson, len(entry.Lessons))
	copy(lessons, entry.Lessons)
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].Number < lessons[j].Number })

	b.WriteString("\nLessons:\n")
	for _, lesson := range lessons {
		fmt.Fprintf(&b, "%d. %s\n", lesson.Number, lesson.Title)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (t *CourseOutlineTool) listCourses(ctx context.Context) (string, error) {
	entries, err := t.store.AllCatalogEntries(ctx)
	if err != nil {
		return "", fmt.Errorf("list courses: %w", err)
	}
	if len(entries) == 0 {
		return "No courses found in the catalog.", nil
	}

	lines := []string{"Available courses:"}
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("- %s (%d lessons)", entry.Title, len(entry.Lessons)))
	}
	return strings.Join(lines, "\n"), nil
}
