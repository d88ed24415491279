package auth

import "context"

// MetadataKey marks a huma operation as requiring authentication when set to
// true in its Metadata map.
const MetadataKey = "requiresAuth"

type identityKey struct{}

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID int64
	Email  string
}

// ContextWithIdentity attaches an identity to the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext extracts the identity set by the auth middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)

	return id, ok
}
