package auth

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/chama/core/user"
)

// ErrAccountDeactivated is returned by sign-in for existing but
// deactivated accounts.
var ErrAccountDeactivated = errors.New("account deactivated")

// UserAuthenticator is the slice of the user service the local provider needs.
type UserAuthenticator interface {
	Authenticate(ctx context.Context, usernameOrEmail, password string) (user.User, error)
}

// LocalProvider is an IdentityProvider backed by the local user accounts:
// password checks against core/user, session state held in process, change
// notifications delivered asynchronously to subscribers.
//
// Subscribing replays the current session (if any) through the notification
// channel, so a subscriber and a direct CurrentSession query may both
// resolve the same identity; SessionManager tolerates that.
type LocalProvider struct {
	users UserAuthenticator

	mu      sync.Mutex
	current *Identity
	subs    map[int]func(SessionEvent, *Identity)
	nextSub int
}

var _ IdentityProvider = (*LocalProvider)(nil)

func NewLocalProvider(users UserAuthenticator) *LocalProvider {
	return &LocalProvider{
		users: users,
		subs:  make(map[int]func(SessionEvent, *Identity)),
	}
}

func (p *LocalProvider) CurrentSession(ctx context.Context) (*Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil, nil
	}
	ident := *p.current
	return &ident, nil
}

func (p *LocalProvider) Subscribe(fn func(event SessionEvent, identity *Identity)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn

	// replay the active session to the new subscriber
	if p.current != nil {
		ident := *p.current
		go fn(EventInitialSession, &ident)
	}

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *LocalProvider) SignInWithPassword(ctx context.Context, email, password string) (Identity, error) {
	usr, err := p.users.Authenticate(ctx, email, password)
	if err != nil {
		switch errors.Cause(err) {
		case user.ErrNotFound, user.ErrInvalidPassword:
			return Identity{}, ErrInvalidCredentials
		case user.ErrAccountDeactivated:
			return Identity{}, ErrAccountDeactivated
		}
		return Identity{}, errors.Wrap(err, "authenticating user")
	}

	ident := Identity{ID: usr.ID, Email: usr.Email}

	p.mu.Lock()
	p.current = &ident
	p.mu.Unlock()

	p.notify(EventSignedIn, &ident)
	return ident, nil
}

func (p *LocalProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()

	p.notify(EventSignedOut, nil)
	return nil
}

func (p *LocalProvider) notify(event SessionEvent, ident *Identity) {
	p.mu.Lock()
	subs := make([]func(SessionEvent, *Identity), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		var identCopy *Identity
		if ident != nil {
			c := *ident
			identCopy = &c
		}
		go fn(event, identCopy)
	}
}
