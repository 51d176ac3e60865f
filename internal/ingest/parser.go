// Package ingest turns raw course documents into catalog entries and
// searchable chunks.
package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ametov/course-rag-backend/internal/entity"
)

// Document header labels. Only the title is mandatory.
const (
	labelTitle      = "Course Title:"
	labelLink       = "Course Link:"
	labelInstructor = "Course Instructor:"
	labelLessonLink = "Lesson Link:"
)

var lessonMarker = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

// ParseDocument parses a plain-text course document: a fixed header
// followed by "Lesson N: <title>" sections, each optionally followed by
// a "Lesson Link:" line. Text before the first lesson marker that is
// not a header line is discarded. A missing course title rejects the
// whole document.
func ParseDocument(raw string) (*entity.Course, error) {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	course := &entity.Course{}
	var current *entity.Lesson
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.TrimSpace(strings.Join(body, "\n"))
		course.Lessons = append(course.Lessons, *current)
		current = nil
		body = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if m := lessonMarker.FindStringSubmatch(trimmed); m != nil {
			flush()
			number, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, fmt.Errorf("parse lesson number %q: %w", m[1], err)
			}
			current = &entity.Lesson{Number: number, Title: strings.TrimSpace(m[2])}
			continue
		}

		if current == nil {
			// Header region: pick up known labels, drop everything else.
			switch {
			case strings.HasPrefix(trimmed, labelTitle):
				course.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, labelTitle))
			case strings.HasPrefix(trimmed, labelLink):
				course.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, labelLink))
			case strings.HasPrefix(trimmed, labelInstructor):
				course.Instructor = strings.TrimSpace(strings.TrimPrefix(trimmed, labelInstructor))
			}
			continue
		}

		if strings.HasPrefix(trimmed, labelLessonLink) && current.Link == "" && len(body) == 0 {
			current.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, labelLessonLink))
			continue
		}

		body = append(body, line)
	}
	flush()

	if course.Title == "" {
		return nil, fmt.Errorf("%w: %w", entity.ErrDocumentMalformed, entity.ErrMissingTitle)
	}

	return course, nil
}
