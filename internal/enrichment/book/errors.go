package book

import "errors"

var (
	// ErrInvalidISBN is returned when the provided ISBN is invalid.
	ErrInvalidISBN = errors.New("invalid ISBN")

	// ErrAPIUnavailable is returned when the external API is unavailable.
	ErrAPIUnavailable = errors.New("API unavailable")
)
