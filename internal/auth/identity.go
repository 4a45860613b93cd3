package auth

import (
	"context"
	"sync"

	"github.com/olegkuprianov/webapp-starter/internal/logger"
	"github.com/olegkuprianov/webapp-starter/internal/models"
)

// UserLoader fetches user records for identity resolution.
type UserLoader interface {
	ByEmail(ctx context.Context, email string) (*models.UserDB, error)
	ByEmailAndToken(ctx context.Context, email, token string) (*models.UserDB, error)
}

// Identity resolves the current user for one request. The load is lazy
// and cached: handlers that never touch the current user never hit the
// database.
type Identity struct {
	Creds  *Credentials
	loader UserLoader

	once sync.Once
	user *models.UserDB
}

// NewIdentity builds an Identity from resolved credentials. Creds may
// be nil (anonymous request).
func NewIdentity(creds *Credentials, loader UserLoader) *Identity {
	return &Identity{Creds: creds, loader: loader}
}

// Current returns the authenticated user, or nil. Header credentials
// must match both the email (case-insensitive) and the API token
// (exact); cookie credentials match by email alone.
func (id *Identity) Current(ctx context.Context) *models.UserDB {
	if id == nil || id.Creds == nil {
		return nil
	}

	id.once.Do(func() {
		var err error
		if id.Creds.FromHeader {
			id.user, err = id.loader.ByEmailAndToken(ctx, models.NormalizeEmail(id.Creds.UserID), id.Creds.Token)
		} else {
			id.user, err = id.loader.ByEmail(ctx, models.NormalizeEmail(id.Creds.UserID))
		}
		if err != nil {
			logger.Log.Errorw("failed to load current user", "error", err)
			id.user = nil
		}
	})
	return id.user
}

// Principals returns the effective principals for the request:
// Everyone, plus Authenticated and the role principal when the
// credentials resolve to a user.
func (id *Identity) Principals(ctx context.Context) []string {
	principals := []string{Everyone}
	if id == nil || id.Creds == nil {
		return principals
	}

	roles := RolesFor(id.Creds.UserID, id.Current(ctx))
	if roles == nil {
		return principals
	}
	return append(append(principals, Authenticated), roles...)
}

type contextKey struct{}

var identityKey = contextKey{}

// NewContext stores an Identity in the context.
func NewContext(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext retrieves the request's Identity, or nil.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

// CurrentUser is a convenience for handlers: the authenticated user for
// the request, or nil.
func CurrentUser(ctx context.Context) *models.UserDB {
	return FromContext(ctx).Current(ctx)
}
