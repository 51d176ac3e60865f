package entity

import "errors"

// Domain errors
var (
	// Ingestion errors
	ErrDocumentMalformed = errors.New("document is malformed")
	ErrMissingTitle      = errors.New("document has no course title")

	// Catalog errors
	ErrCourseNotFound = errors.New("course not found")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// LLM service errors. These are fatal to the current query and
	// surface at the request boundary with their cause category.
	ErrLLMAuth        = errors.New("llm service authentication failed")
	ErrLLMTimeout     = errors.New("llm service request timed out")
	ErrLLMUnavailable = errors.New("llm service unavailable")
)
