package shortener

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

// IDGenerator returns a new random identifier on every call.
type IDGenerator func() string

// NewIDGenerator returns a generator of length-character IDs drawn from the 64-symbol
// URL-safe alphabet A-Za-z0-9_- . The generator is safe for concurrent use.
func NewIDGenerator(length int) (IDGenerator, error) {
	gen, err := nanoid.Standard(length)
	if err != nil {
		return nil, fmt.Errorf("create id generator: %w", err)
	}

	return IDGenerator(gen), nil
}
