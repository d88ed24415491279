package handlers_test

import (
	"context"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/laudier3/urlcurt/internal/auth"
	"github.com/laudier3/urlcurt/internal/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusOf(t *testing.T, err error) int {
	t.Helper()

	var statusErr huma.StatusError
	require.ErrorAs(t, err, &statusErr)

	return statusErr.GetStatus()
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("creates account and sets auth cookie", func(t *testing.T) {
		e := newEnv(t)

		req := &handlers.RegisterRequest{}
		req.Body.Name = "Ada"
		req.Body.Email = "ada@example.com"
		req.Body.Password = "secret123"
		req.Body.Phone = "+15550001111"
		req.Body.Age = 36

		resp, err := e.auth.Register(context.Background(), req)

		require.NoError(t, err)
		assert.NotEmpty(t, resp.Body.Token)
		assert.Equal(t, auth.TokenCookie, resp.SetCookie.Name)
		assert.Equal(t, resp.Body.Token, resp.SetCookie.Value)
		assert.True(t, resp.SetCookie.HttpOnly)
		assert.Positive(t, resp.SetCookie.MaxAge)

		claims, err := e.tokens.Verify(resp.Body.Token)
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", claims.Email)
	})

	t.Run("publishes a registration event", func(t *testing.T) {
		e := newEnv(t)

		userID, _ := e.registerUser(t, "eve@example.com", "+15550002222")

		require.Len(t, e.published.events, 1)
		assert.Equal(t, userID, e.published.events[0].UserID)
		assert.Equal(t, "eve@example.com", e.published.events[0].Email)
		assert.Equal(t, "+15550002222", e.published.events[0].Phone)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		e := newEnv(t)
		e.registerUser(t, "dup@example.com", "+15550003333")

		req := &handlers.RegisterRequest{}
		req.Body.Name = "Other"
		req.Body.Email = "dup@example.com"
		req.Body.Password = "secret123"
		req.Body.Phone = "+15550004444"
		req.Body.Age = 22

		_, err := e.auth.Register(context.Background(), req)

		assert.Equal(t, 409, statusOf(t, err))
	})

	t.Run("rejects duplicate phone", func(t *testing.T) {
		e := newEnv(t)
		e.registerUser(t, "one@example.com", "+15550005555")

		req := &handlers.RegisterRequest{}
		req.Body.Name = "Other"
		req.Body.Email = "two@example.com"
		req.Body.Password = "secret123"
		req.Body.Phone = "+15550005555"
		req.Body.Age = 22

		_, err := e.auth.Register(context.Background(), req)

		assert.Equal(t, 409, statusOf(t, err))
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("issues token for valid credentials", func(t *testing.T) {
		e := newEnv(t)
		userID, _ := e.registerUser(t, "ada@example.com", "+15550001111")

		req := &handlers.LoginRequest{}
		req.Body.Email = "ada@example.com"
		req.Body.Password = "secret123"

		resp, err := e.auth.Login(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, auth.TokenCookie, resp.SetCookie.Name)

		claims, err := e.tokens.Verify(resp.Body.Token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		e := newEnv(t)
		e.registerUser(t, "ada@example.com", "+15550001111")

		req := &handlers.LoginRequest{}
		req.Body.Email = "ada@example.com"
		req.Body.Password = "wrong-password"

		_, err := e.auth.Login(context.Background(), req)

		assert.Equal(t, 401, statusOf(t, err))
	})

	t.Run("rejects unknown email with the same error", func(t *testing.T) {
		e := newEnv(t)

		req := &handlers.LoginRequest{}
		req.Body.Email = "ghost@example.com"
		req.Body.Password = "whatever"

		_, err := e.auth.Login(context.Background(), req)

		assert.Equal(t, 401, statusOf(t, err))
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newEnv(t)

	resp, err := e.auth.Logout(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, auth.TokenCookie, resp.SetCookie.Name)
	assert.Empty(t, resp.SetCookie.Value)
	assert.Equal(t, -1, resp.SetCookie.MaxAge)
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("returns the caller's identity", func(t *testing.T) {
		e := newEnv(t)
		userID, ctx := e.registerUser(t, "ada@example.com", "+15550001111")

		resp, err := e.auth.Me(ctx, nil)

		require.NoError(t, err)
		assert.Equal(t, userID, resp.Body.ID)
		assert.Equal(t, "ada@example.com", resp.Body.Email)
	})

	t.Run("rejects unauthenticated calls", func(t *testing.T) {
		e := newEnv(t)

		_, err := e.auth.Me(context.Background(), nil)

		assert.Equal(t, 401, statusOf(t, err))
	})
}

func TestAuthHandler_DeleteMe(t *testing.T) {
	t.Run("removes the account and its urls", func(t *testing.T) {
		e := newEnv(t)
		_, ctx := e.registerUser(t, "ada@example.com", "+15550001111")
		created := e.createURL(t, ctx, "https://example.com/page", "")

		resp, err := e.auth.DeleteMe(ctx, nil)

		require.NoError(t, err)
		assert.Equal(t, -1, resp.SetCookie.MaxAge)

		_, err = e.auth.Me(ctx, nil)
		assert.Equal(t, 404, statusOf(t, err))

		redirectReq := &handlers.RedirectRequest{Slug: created.Slug}
		_, err = e.redirect.Redirect(context.Background(), redirectReq)
		assert.Equal(t, 404, statusOf(t, err))
	})

	t.Run("rejects unauthenticated calls", func(t *testing.T) {
		e := newEnv(t)

		_, err := e.auth.DeleteMe(context.Background(), nil)

		assert.Equal(t, 401, statusOf(t, err))
	})
}

func TestAuthHandler_RecoverPassword(t *testing.T) {
	t.Run("sends a reset link by sms", func(t *testing.T) {
		e := newEnv(t)
		e.registerUser(t, "ada@example.com", "+15550001111")

		req := &handlers.RecoverPasswordRequest{}
		req.Body.Phone = "+15550001111"

		_, err := e.auth.RecoverPassword(context.Background(), req)

		require.NoError(t, err)
		require.Len(t, e.notifier.sent, 1)
		assert.Equal(t, "+15550001111", e.notifier.sent[0])
		assert.Contains(t, e.notifier.bodies[0], "http://front.example/reset-password?token=")
	})

	t.Run("404 for unknown phone", func(t *testing.T) {
		e := newEnv(t)

		req := &handlers.RecoverPasswordRequest{}
		req.Body.Phone = "+15559999999"

		_, err := e.auth.RecoverPassword(context.Background(), req)

		assert.Equal(t, 404, statusOf(t, err))
	})

	t.Run("500 when sms delivery fails", func(t *testing.T) {
		e := newEnv(t)
		e.registerUser(t, "ada@example.com", "+15550001111")
		e.notifier.fail = true

		req := &handlers.RecoverPasswordRequest{}
		req.Body.Phone = "+15550001111"

		_, err := e.auth.RecoverPassword(context.Background(), req)

		assert.Equal(t, 500, statusOf(t, err))
	})
}

func TestAuthHandler_IPInfo(t *testing.T) {
	e := newEnv(t)

	// Noop geo lookup never resolves, so any IP comes back 404.
	ctx := handlers.ContextWithRequestMeta(context.Background(), handlers.RequestMeta{ClientIP: "203.0.113.9"})

	_, err := e.auth.IPInfo(ctx, nil)

	assert.Equal(t, 404, statusOf(t, err))
}
