package shortener

import (
	"context"
	"errors"
)

// Store persists the id -> url mapping. Both id and url are unique.
//
// Put generates a fresh ID and either inserts (id, url) or, when url is already
// stored, replaces that row's ID in the same atomic write. The returned ID is the
// one committed by this call.
type Store interface {
	EnsureSchema(ctx context.Context) error
	Put(ctx context.Context, url string) (ID, error)
	Get(ctx context.Context, id ID) (string, error)
	Ping(ctx context.Context) error
}

// UpsertFunc writes (id, url) atomically, replacing the ID of an existing row for url.
// It returns ErrIDCollision (possibly wrapped) when id already names a different url.
type UpsertFunc func(ctx context.Context, id ID, url string) (ID, error)

// Assign runs upsert with a freshly generated ID. An ID collision is retried with a new
// ID up to retries times; any other failure is returned at once as KindWriteFailure.
func Assign(ctx context.Context, op string, gen IDGenerator, retries int, url string, upsert UpsertFunc) (ID, error) {
	for attempt := 0; ; attempt++ {
		id, err := upsert(ctx, ID(gen()), url)
		if err == nil {
			return id, nil
		}

		if !errors.Is(err, ErrIDCollision) || attempt >= retries {
			return "", E(op, KindWriteFailure, err)
		}
	}
}
