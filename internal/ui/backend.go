package ui

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"animestudio/internal/api"
)

// Backend is the subset of the REST client the UI talks to.
// *api.Client satisfies it; tests substitute a fake.
type Backend interface {
	Status(ctx context.Context) (api.StatusSnapshot, error)
	Install(ctx context.Context, scope api.InstallScope) (api.Ack, error)
	ListCharacters(ctx context.Context) ([]api.Character, error)
	CreateCharacter(ctx context.Context, in api.CharacterInput) (api.Character, error)
	UpdateCharacter(ctx context.Context, id string, in api.CharacterInput) (api.Character, error)
	DeleteCharacter(ctx context.Context, id string) error
	CreateScene(ctx context.Context, req api.SceneRequest) (api.Scene, error)
	ImageURL(path string) string
	ProbeImage(ctx context.Context, url string) error
}

var _ Backend = (*api.Client)(nil)

// Services bundles what views need to issue backend calls.
type Services struct {
	Backend        Backend
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

func (s *Services) logger() *slog.Logger {
	if s == nil || s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func (s *Services) requestContext() (context.Context, context.CancelFunc) {
	if s.RequestTimeout > 0 {
		return context.WithTimeout(context.Background(), s.RequestTimeout)
	}
	return context.WithCancel(context.Background())
}

var viewSeq atomic.Int64

// newViewID hands out the Owner tag views stamp on their async results, so a
// reply addressed to a discarded view is never applied to its replacement.
func newViewID() int64 {
	return viewSeq.Add(1)
}
