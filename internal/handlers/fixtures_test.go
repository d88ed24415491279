package handlers_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/laudier3/urlcurt/internal/auth"
	"github.com/laudier3/urlcurt/internal/geo"
	"github.com/laudier3/urlcurt/internal/handlers"
	"github.com/laudier3/urlcurt/internal/messaging"
	"github.com/laudier3/urlcurt/internal/notify"
	"github.com/laudier3/urlcurt/internal/shortener"
	"github.com/laudier3/urlcurt/internal/store"
	"github.com/laudier3/urlcurt/internal/visits"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testBaseURL = "http://sho.rt"

// env wires all handlers against a shared in-memory store.
type env struct {
	store     *store.MemoryStore
	tokens    *auth.TokenService
	notifier  *recordingNotifier
	published *publishedEvents

	auth     *handlers.AuthHandler
	urls     *handlers.URLHandler
	stats    *handlers.StatsHandler
	redirect *handlers.RedirectHandler
}

type recordingNotifier struct {
	mu     sync.Mutex
	sent   []string
	bodies []string
	fail   bool
}

func (n *recordingNotifier) SendSMS(_ context.Context, phone, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.fail {
		return context.DeadlineExceeded
	}

	n.sent = append(n.sent, phone)
	n.bodies = append(n.bodies, body)

	return nil
}

type publishedEvents struct {
	mu     sync.Mutex
	events []notify.UserRegisteredEvent
}

func (p *publishedEvents) publish(event *notify.UserRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, *event)

	return nil
}

// sequentialSlugs yields slug-a, slug-b, ... so tests get predictable slugs.
func sequentialSlugs() shortener.SlugGenerator {
	var n int
	var mu sync.Mutex

	return func() string {
		mu.Lock()
		defer mu.Unlock()

		n++

		return "slug" + string(rune('a'+n-1)) + "0"
	}
}

func newEnv(t *testing.T) *env {
	t.Helper()

	memStore := store.NewMemoryStore()
	logger := zap.NewNop()
	tokens := auth.NewTokenService("test-secret", time.Hour)
	notifier := &recordingNotifier{}
	published := &publishedEvents{}

	allocator := shortener.NewAllocator(memStore, sequentialSlugs(), testBaseURL, shortener.DefaultQuota)
	recorder := visits.NewRecorder(memStore, memStore, geo.Noop{}, logger)

	return &env{
		store:     memStore,
		tokens:    tokens,
		notifier:  notifier,
		published: published,
		auth: handlers.NewAuthHandler(
			memStore.Users(),
			tokens,
			notifier,
			geo.Noop{},
			messaging.Publish[notify.UserRegisteredEvent](published.publish),
			"http://front.example",
			false,
			logger,
		),
		urls:     handlers.NewURLHandler(allocator, memStore, logger),
		stats:    handlers.NewStatsHandler(memStore, memStore),
		redirect: handlers.NewRedirectHandler(recorder),
	}
}

// registerUser creates an account through the handler and returns the user id
// plus a context authenticated as that user.
func (e *env) registerUser(t *testing.T, email, phone string) (int64, context.Context) {
	t.Helper()

	req := &handlers.RegisterRequest{}
	req.Body.Name = "Test User"
	req.Body.Email = email
	req.Body.Password = "secret123"
	req.Body.Phone = phone
	req.Body.Age = 30

	resp, err := e.auth.Register(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Body.Token)

	claims, err := e.tokens.Verify(resp.Body.Token)
	require.NoError(t, err)

	ctx := auth.ContextWithIdentity(context.Background(), auth.Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
	})

	return claims.UserID, ctx
}

// createURL shortens a URL through the handler.
func (e *env) createURL(t *testing.T, ctx context.Context, originalURL, customSlug string) handlers.ShortURLPayload {
	t.Helper()

	req := &handlers.CreateURLRequest{}
	req.Body.OriginalURL = originalURL
	req.Body.CustomSlug = customSlug

	resp, err := e.urls.CreateURL(ctx, req)
	require.NoError(t, err)

	return resp.Body
}
