package auth

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidCredentials is returned by IdentityProvider.SignInWithPassword
	// when the email/password pair does not match an active account.
	ErrInvalidCredentials = errors.New("invalid login credentials")

	// ErrProfileNotFound is returned by ProfileStore.ProfileByID when no
	// profile row exists for the identity. It is an expected, valid state
	// (a fresh identity with no profile yet), not a failure.
	ErrProfileNotFound = errors.New("profile not found")
)

// SessionEvent describes a transition reported by an IdentityProvider.
type SessionEvent string

const (
	EventInitialSession SessionEvent = "INITIAL_SESSION"
	EventSignedIn       SessionEvent = "SIGNED_IN"
	EventSignedOut      SessionEvent = "SIGNED_OUT"
	EventTokenRefreshed SessionEvent = "TOKEN_REFRESHED"
)

// Identity is the opaque authenticated-session handle issued by an
// IdentityProvider. The SessionManager holds a transient, non-owning
// reference to the active one.
type Identity struct {
	ID    string
	Email string
}

// Profile is the role metadata record kept by a ProfileStore, keyed by
// Identity ID. Fetched, never written, by the SessionManager.
type Profile struct {
	UserID      string
	Role        string
	DisplayName string
	Avatar      string
}

// SessionView is the union of Identity and Profile fields with a resolved
// role. It is never exposed with an empty Role once materialized.
type SessionView struct {
	ID          string
	Email       string
	DisplayName string
	Avatar      string
	Role        string
}

type (
	// IdentityProvider holds credentials, issues and revokes sessions and
	// emits change notifications.
	IdentityProvider interface {
		// CurrentSession returns the active identity, or nil when signed out.
		CurrentSession(ctx context.Context) (*Identity, error)

		// Subscribe registers a standing callback for session transitions.
		// The returned func unsubscribes it.
		Subscribe(fn func(event SessionEvent, identity *Identity)) (unsubscribe func())

		// SignInWithPassword exchanges credentials for an identity.
		// Credential failures are reported as ErrInvalidCredentials.
		SignInWithPassword(ctx context.Context, email, password string) (Identity, error)

		SignOut(ctx context.Context) error
	}

	// ProfileStore is a queryable table mapping an identity to role metadata.
	ProfileStore interface {
		// ProfileByID returns the profile row for the given identity ID,
		// or ErrProfileNotFound when none exists.
		ProfileByID(ctx context.Context, id string) (Profile, error)
	}
)
