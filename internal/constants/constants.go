// Package constants provides shared constants used across the codebase.
package constants

import "time"

// Server constants
const (
	// RequestTimeout bounds a single API request, including catalog
	// building and enrichment calls
	RequestTimeout = 60 * time.Second

	// ShutdownTimeout is how long the server waits for in-flight requests
	ShutdownTimeout = 10 * time.Second
)

// Similarity constants
const (
	// DefaultSimilarBreeds is the default number of coat neighbors returned
	DefaultSimilarBreeds = 5

	// MaxSimilarBreeds caps the k parameter of similarity queries
	MaxSimilarBreeds = 25
)
