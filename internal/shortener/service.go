package shortener

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// Service shortens URLs and resolves IDs on top of a Store. It holds no mutable state.
type Service struct {
	store   Store
	baseURL string
	logger  *zap.Logger
}

// NewService creates a service that builds short links under baseURL.
func NewService(store Store, baseURL string, logger *zap.Logger) *Service {
	return &Service{
		store:   store,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// Shorten stores url verbatim and returns its newly assigned short link.
func (s *Service) Shorten(ctx context.Context, url string) (*ShortLink, error) {
	const op = "shortener.Service.Shorten"

	if url == "" {
		return nil, E(op, KindShortenFailed, E(op, KindInvalid, errors.New("url is empty")))
	}

	id, err := s.store.Put(ctx, url)
	if err != nil {
		s.logger.Error("failed to store url",
			zap.String("url", url),
			zap.Stringer("kind", KindOf(err)),
			zap.Error(err),
		)

		return nil, E(op, KindShortenFailed, err)
	}

	link := &ShortLink{
		ID:       id,
		URL:      url,
		ShortURL: s.baseURL + "/" + string(id),
	}

	s.logger.Info("shortened url",
		zap.String("url", url),
		zap.String("shortUrl", link.ShortURL),
	)

	return link, nil
}

// Resolve returns the URL named by id. Every failure, including an unknown id,
// is reported as KindResolveFailed.
func (s *Service) Resolve(ctx context.Context, id ID) (string, error) {
	const op = "shortener.Service.Resolve"

	url, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Debug("unknown id", zap.String("id", string(id)))
		} else {
			s.logger.Error("failed to resolve id",
				zap.String("id", string(id)),
				zap.Stringer("kind", KindOf(err)),
				zap.Error(err),
			)
		}

		return "", E(op, KindResolveFailed, err)
	}

	s.logger.Debug("resolved id", zap.String("id", string(id)), zap.String("url", url))

	return url, nil
}
