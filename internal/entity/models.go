package entity

// Course is one ingested document, identified by its title.
type Course struct {
	Title      string   `json:"title"`
	Instructor string   `json:"instructor,omitempty"`
	Link       string   `json:"link,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// Lesson is a titled subsection of a course with its own text body.
// Numbers are unique within a course but not necessarily contiguous.
type Lesson struct {
	Number int    `json:"lesson_number"`
	Title  string `json:"lesson_title"`
	Link   string `json:"lesson_link,omitempty"`
	Text   string `json:"-"`
}

// Chunk is a bounded, overlapping slice of a lesson's text - the unit
// of retrieval. CourseTitle and LessonNumber are denormalized for
// filtering and citation, not ownership pointers.
type Chunk struct {
	Content      string
	CourseTitle  string
	LessonNumber int
	Index        int
}

// SearchHit is one matching chunk with its similarity distance
// (smaller is more relevant).
type SearchHit struct {
	Content      string
	CourseTitle  string
	LessonNumber int
	Distance     float64
}

// SearchResults is the query-time outcome of a content search.
// A service fault is carried in Err as a human-readable message and
// leaves Hits empty; "no results" is an empty Hits with an empty Err.
type SearchResults struct {
	Hits []SearchHit
	Err  string
}

// IsEmpty reports whether the search produced no hits.
func (r SearchResults) IsEmpty() bool {
	return len(r.Hits) == 0
}

// Source is a citation shown to the user alongside the answer.
type Source struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}
