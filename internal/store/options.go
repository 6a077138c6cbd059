package store

import "github.com/serroba/shortn/internal/shortener"

// Options configures ID assignment for a store backend.
type Options struct {
	// NewID generates candidate IDs for Put.
	NewID shortener.IDGenerator
	// IDLength is the fixed width of the id column.
	IDLength int
	// IDRetries is how many times Put regenerates an ID that collides with an existing one.
	// Zero makes a collision a hard write failure.
	IDRetries int
}

func (o Options) idLength() int {
	if o.IDLength <= 0 {
		return shortener.IDLength
	}

	return o.IDLength
}
