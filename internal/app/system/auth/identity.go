package auth

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is the resolved caller of a request. The job board trusts it as
// given; it is produced by LoadIdentity from a bearer token.
type Identity struct {
	UserID primitive.ObjectID
	Role   string // one of the models.Role* constants
	Name   string
}

// IsZero reports whether no caller is present.
func (i Identity) IsZero() bool {
	return i.UserID.IsZero()
}

type ctxKey string

const identityKey ctxKey = "identity"

// CurrentIdentity returns the caller & "found?" flag.
func CurrentIdentity(r *http.Request) (Identity, bool) {
	return FromContext(r.Context())
}

// FromContext returns the identity stored on ctx.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.IsZero() {
		return Identity{}, false
	}
	return id, true
}

// WithIdentity returns a copy of r carrying id.
func WithIdentity(r *http.Request, id Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, id))
}

// WithTestUser injects an identity directly, bypassing token parsing.
// Intended for handler tests.
func WithTestUser(r *http.Request, id Identity) *http.Request {
	return WithIdentity(r, id)
}
