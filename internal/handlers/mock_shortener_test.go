package handlers_test

import (
	"context"
	"errors"

	"github.com/serroba/shortn/internal/shortener"
)

var errMock = errors.New("mock error")

const testURL = "https://example.com"

// mockShortener is a test double for handlers.Shortener that can be configured to return errors.
type mockShortener struct {
	shortenErr  error
	resolveErr  error
	resolveURL  string
	shortenedTo string
	resolvedID  shortener.ID
}

func (m *mockShortener) Shorten(_ context.Context, url string) (*shortener.ShortLink, error) {
	m.shortenedTo = url

	if m.shortenErr != nil {
		return nil, m.shortenErr
	}

	return &shortener.ShortLink{
		ID:       "mock01",
		URL:      url,
		ShortURL: "http://localhost:8888/mock01",
	}, nil
}

func (m *mockShortener) Resolve(_ context.Context, id shortener.ID) (string, error) {
	m.resolvedID = id

	if m.resolveErr != nil {
		return "", m.resolveErr
	}

	if m.resolveURL != "" {
		return m.resolveURL, nil
	}

	return testURL, nil
}
