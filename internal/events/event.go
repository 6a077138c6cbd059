package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicLinkAssigned carries LinkAssigned events.
const TopicLinkAssigned = "link.assigned"

// LinkAssigned is emitted after a URL receives a new short identifier.
// Any identifier the URL held before stops resolving at AssignedAt.
type LinkAssigned struct {
	EventID    string    `json:"eventId"`
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	ShortURL   string    `json:"shortUrl"`
	AssignedAt time.Time `json:"assignedAt"`
}

// NewLinkAssigned builds a LinkAssigned event stamped with a fresh event id.
func NewLinkAssigned(id, url, shortURL string, assignedAt time.Time) *LinkAssigned {
	return &LinkAssigned{
		EventID:    uuid.NewString(),
		ID:         id,
		URL:        url,
		ShortURL:   shortURL,
		AssignedAt: assignedAt,
	}
}
