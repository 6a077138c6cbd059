package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortn/internal/events"
	"github.com/serroba/shortn/internal/messaging"
	"github.com/serroba/shortn/internal/shortener"
	"go.uber.org/zap"
	"golang.org/x/net/http/httpguts"
)

// Shortener is the link service the handlers delegate to.
type Shortener interface {
	Shorten(ctx context.Context, url string) (*shortener.ShortLink, error)
	Resolve(ctx context.Context, id shortener.ID) (string, error)
}

// URLHandler handles URL shortening operations.
type URLHandler struct {
	links               Shortener
	publishLinkAssigned messaging.Publish[events.LinkAssigned]
	logger              *zap.Logger
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(
	links Shortener,
	publishLinkAssigned messaging.Publish[events.LinkAssigned],
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		links:               links,
		publishLinkAssigned: publishLinkAssigned,
		logger:              logger,
	}
}

func (h *URLHandler) Shorten(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	link, err := h.links.Shorten(ctx, req.Body.URL)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to shorten url")
	}

	event := events.NewLinkAssigned(string(link.ID), link.URL, link.ShortURL, time.Now().UTC())

	if err := h.publishLinkAssigned(ctx, event); err != nil {
		h.logger.Error("failed to publish link event",
			zap.String("id", event.ID),
			zap.Error(err),
		)
	}

	resp := &ShortenResponse{}
	resp.Body.ID = string(link.ID)
	resp.Body.URL = link.ShortURL

	return resp, nil
}

func (h *URLHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	url, err := h.links.Resolve(ctx, shortener.ID(req.ID))
	if err != nil {
		return nil, huma.Error404NotFound("link not found")
	}

	if !httpguts.ValidHeaderFieldValue(url) {
		h.logger.Error("stored url is not a valid Location header",
			zap.String("id", req.ID),
		)

		return nil, huma.Error500InternalServerError("stored url cannot be redirected to")
	}

	return &RedirectResponse{
		Status:   http.StatusFound,
		Location: url,
	}, nil
}
