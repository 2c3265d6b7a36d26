package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/chama/core/user"
)

type fakeAuthenticator struct {
	usr user.User
	err error
}

func (a fakeAuthenticator) Authenticate(ctx context.Context, usernameOrEmail, password string) (user.User, error) {
	if a.err != nil {
		return user.User{}, a.err
	}
	return a.usr, nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []SessionEvent
	idents []*Identity
}

func (r *eventRecorder) record(event SessionEvent, ident *Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.idents = append(r.idents, ident)
}

func (r *eventRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *eventRecorder) last() (SessionEvent, *Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1], r.idents[len(r.idents)-1]
}

func waitForCount(t *testing.T, r *eventRecorder, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r.count() >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("recorded %d events, want %d", r.count(), n)
}

func TestLocalProvider_signInNotifiesSubscribers(t *testing.T) {
	p := NewLocalProvider(fakeAuthenticator{usr: user.User{ID: "u1", Email: "u1@test.cd"}})
	rec := &eventRecorder{}
	p.Subscribe(rec.record)

	ident, err := p.SignInWithPassword(context.Background(), "u1@test.cd", "pwd")
	if err != nil {
		t.Fatalf("SignInWithPassword() error = %v", err)
	}
	if ident.ID != "u1" {
		t.Errorf("ident.ID = %q, want %q", ident.ID, "u1")
	}

	waitForCount(t, rec, 1)
	event, got := rec.last()
	if event != EventSignedIn {
		t.Errorf("event = %v, want %v", event, EventSignedIn)
	}
	if got == nil || got.ID != "u1" {
		t.Errorf("identity = %+v, want u1", got)
	}

	cur, err := p.CurrentSession(context.Background())
	if err != nil {
		t.Fatalf("CurrentSession() error = %v", err)
	}
	if cur == nil || cur.ID != "u1" {
		t.Errorf("CurrentSession() = %+v, want u1", cur)
	}
}

func TestLocalProvider_subscribeReplaysCurrentSession(t *testing.T) {
	p := NewLocalProvider(fakeAuthenticator{usr: user.User{ID: "u1", Email: "u1@test.cd"}})
	if _, err := p.SignInWithPassword(context.Background(), "u1@test.cd", "pwd"); err != nil {
		t.Fatalf("SignInWithPassword() error = %v", err)
	}

	rec := &eventRecorder{}
	p.Subscribe(rec.record)

	waitForCount(t, rec, 1)
	event, ident := rec.last()
	if event != EventInitialSession {
		t.Errorf("event = %v, want %v", event, EventInitialSession)
	}
	if ident == nil || ident.ID != "u1" {
		t.Errorf("identity = %+v, want u1", ident)
	}
}

func TestLocalProvider_signOutNotifiesNil(t *testing.T) {
	p := NewLocalProvider(fakeAuthenticator{usr: user.User{ID: "u1", Email: "u1@test.cd"}})
	rec := &eventRecorder{}
	p.Subscribe(rec.record)

	if _, err := p.SignInWithPassword(context.Background(), "u1@test.cd", "pwd"); err != nil {
		t.Fatalf("SignInWithPassword() error = %v", err)
	}
	waitForCount(t, rec, 1)

	if err := p.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	waitForCount(t, rec, 2)

	event, ident := rec.last()
	if event != EventSignedOut {
		t.Errorf("event = %v, want %v", event, EventSignedOut)
	}
	if ident != nil {
		t.Errorf("identity = %+v, want nil", ident)
	}

	cur, _ := p.CurrentSession(context.Background())
	if cur != nil {
		t.Errorf("CurrentSession() = %+v, want nil", cur)
	}
}

func TestLocalProvider_unsubscribeStopsNotifications(t *testing.T) {
	p := NewLocalProvider(fakeAuthenticator{usr: user.User{ID: "u1", Email: "u1@test.cd"}})
	rec := &eventRecorder{}
	unsubscribe := p.Subscribe(rec.record)
	unsubscribe()

	if _, err := p.SignInWithPassword(context.Background(), "u1@test.cd", "pwd"); err != nil {
		t.Fatalf("SignInWithPassword() error = %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if rec.count() != 0 {
		t.Errorf("recorded %d events after unsubscribe, want 0", rec.count())
	}
}

func TestLocalProvider_credentialErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		authErr error
		wantErr error
	}{
		{name: "not found", authErr: user.ErrNotFound, wantErr: ErrInvalidCredentials},
		{name: "bad password", authErr: user.ErrInvalidPassword, wantErr: ErrInvalidCredentials},
		{name: "wrapped bad password", authErr: errors.Wrap(user.ErrInvalidPassword, "checking"), wantErr: ErrInvalidCredentials},
		{name: "deactivated", authErr: user.ErrAccountDeactivated, wantErr: ErrAccountDeactivated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewLocalProvider(fakeAuthenticator{err: tt.authErr})
			_, err := p.SignInWithPassword(context.Background(), "u1@test.cd", "pwd")
			if err != tt.wantErr {
				t.Errorf("SignInWithPassword() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
