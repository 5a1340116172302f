// Package constants provides shared constants used across the codebase.
package constants

// Handler constants
const (
	// MaxUploadSize is the maximum photo upload size in bytes (20MB)
	MaxUploadSize = 20 << 20

	// UploadField is the multipart field carrying the photo
	UploadField = "image"

	// DefaultSuggestions is the default number of suggestions returned
	DefaultSuggestions = 3

	// MaxSuggestions caps the count parameter of suggestion requests
	MaxSuggestions = 12

	// DefaultBreedImages is the default number of breed images returned
	DefaultBreedImages = 3

	// MaxBreedImages caps the count parameter of image requests
	MaxBreedImages = 20
)
