package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/chama/core"
)

// SessionManager owns the current authenticated identity and mediates
// between the asynchronous IdentityProvider notifications and the rest of
// the application's synchronous permission checks.
//
// It is explicitly constructed and closed; consumers read snapshots
// (CurrentUser, IsAuthenticated, IsLoading) and call Login, Logout and
// HasPermission.
type SessionManager struct {
	provider IdentityProvider
	profiles ProfileStore
	logger   core.Logger

	adminAllowList map[string]struct{}
	loadTimeout    time.Duration

	mu            sync.Mutex
	current       *SessionView
	authenticated bool
	loading       bool
	seq           uint64 // resolution dispatch counter
	applied       uint64 // last applied resolution
	closed        bool
	unsubscribe   func()
	loadTimer     *time.Timer
}

const defaultLoadTimeout = 3 * time.Second

func NewSessionManager(provider IdentityProvider, profiles ProfileStore, conf *core.Config, logger core.Logger) *SessionManager {
	allowList := make(map[string]struct{}, len(conf.Auth.AdminEmails))
	for _, email := range conf.Auth.AdminEmails {
		allowList[core.CleanString(email, true /* lower */)] = struct{}{}
	}

	timeout := conf.Auth.SessionLoadTimeout
	if timeout <= 0 {
		timeout = defaultLoadTimeout
	}

	return &SessionManager{
		provider:       provider,
		profiles:       profiles,
		logger:         logger,
		adminAllowList: allowList,
		loadTimeout:    timeout,
	}
}

// Initialize subscribes to the provider's change notifications and checks
// for an existing session. It runs once; subsequent calls are no-ops.
//
// Errors from the session query are logged and swallowed: clearing the
// loading flag on a failed check would flash an unauthenticated state while
// a slow lookup might still resolve. The safety timer force-clears loading
// if nothing else has by then.
func (m *SessionManager) Initialize(ctx context.Context) {
	m.mu.Lock()
	if m.closed || m.unsubscribe != nil {
		m.mu.Unlock()
		return
	}
	m.loading = true
	m.unsubscribe = m.provider.Subscribe(m.handleSessionChange)
	m.loadTimer = time.AfterFunc(m.loadTimeout, m.forceClearLoading)
	m.mu.Unlock()

	ident, err := m.provider.CurrentSession(ctx)
	if err != nil {
		m.logger.Warn(fmt.Sprintf("checking current session: %v", err), err)
		return
	}
	if ident == nil {
		// no session yet; the change feed or the safety timer clears loading
		return
	}
	m.resolveProfile(ctx, *ident)
}

// Close tears the manager down: the subscription is dropped, the safety
// timer stopped and any in-flight resolution becomes a no-op.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	if m.loadTimer != nil {
		m.loadTimer.Stop()
	}
}

// CurrentUser returns a snapshot of the signed-in user's session view.
func (m *SessionManager) CurrentUser() (SessionView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return SessionView{}, false
	}
	return *m.current, true
}

// IsAuthenticated is true exactly when a user is present and profile
// resolution has completed, successfully or via fallback.
func (m *SessionManager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticated
}

// IsLoading is true from Initialize until the first resolution (success,
// fallback or explicit no-session) completes, bounded by the safety timer.
func (m *SessionManager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Login forwards credentials to the provider's password sign-in. It does
// not update the session view itself; that update arrives through the
// standing change-notification subscription. Callers must not assume
// CurrentUser is populated synchronously after a successful return.
//
// Credential failures surface as ErrInvalidCredentials.
func (m *SessionManager) Login(ctx context.Context, email, password string) (Identity, error) {
	ident, err := m.provider.SignInWithPassword(ctx, core.CleanString(email, true /* lower */), password)
	if err != nil {
		if errors.Cause(err) == ErrInvalidCredentials {
			return Identity{}, err
		}
		return Identity{}, errors.Wrap(err, "signing in")
	}
	return ident, nil
}

// Logout clears the local session unconditionally, then asks the provider
// to sign out. Local state is authoritative for consumers even if the
// remote call is still in flight or fails; sign-out errors are logged only.
func (m *SessionManager) Logout(ctx context.Context) {
	m.clearSession()

	if err := m.provider.SignOut(ctx); err != nil {
		m.logger.Warn(fmt.Sprintf("signing out: %v", err), err)
	}
}

// HasPermission reports whether the signed-in user's role grants the given
// capability. Pure and total: no user, an unresolved or unknown role, or an
// unknown capability all yield false.
func (m *SessionManager) HasPermission(capability string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || !m.authenticated {
		return false
	}
	return RoleHasCapability(m.current.Role, capability)
}

// handleSessionChange is the standing subscription callback. It fires for
// sign-in, sign-out and token refreshes for the lifetime of the manager.
func (m *SessionManager) handleSessionChange(event SessionEvent, ident *Identity) {
	if ident == nil {
		m.clearSession()
		return
	}
	m.resolveProfile(context.Background(), *ident)
}

// resolveProfile materializes the session view for an identity.
//
// It may be invoked more than once for the same identity (the Initialize
// query and the change feed can race at startup); each attempt is tagged at
// dispatch time and only applied if no newer attempt has been, so a slow
// early resolution cannot overwrite a later one (last-started-wins).
//
// The role falls back open: a missing profile row or a failed lookup yields
// the baseline member role with the user still authenticated, never a
// blocking error. Identities on the configured admin allow-list are
// escalated to admin on the fallback paths, with a log trail.
func (m *SessionManager) resolveProfile(ctx context.Context, ident Identity) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.seq++
	seq := m.seq
	m.mu.Unlock()

	// a thrown lookup can never leave consumers stuck loading
	defer m.clearLoading()

	view := SessionView{
		ID:    ident.ID,
		Email: ident.Email,
		Role:  RoleMember,
	}

	prof, err := m.profiles.ProfileByID(ctx, ident.ID)
	switch {
	case err == nil:
		view.Role = prof.Role
		view.DisplayName = prof.DisplayName
		view.Avatar = prof.Avatar
	case errors.Cause(err) == ErrProfileNotFound:
		// expected for fresh identities; keep the baseline role
		m.escalateIfAllowed(&view)
	default:
		m.logger.Warn(fmt.Sprintf("resolving profile for %s: %v", ident.ID, err), err)
		m.escalateIfAllowed(&view)
	}

	m.apply(seq, &view)
}

func (m *SessionManager) escalateIfAllowed(view *SessionView) {
	if _, ok := m.adminAllowList[core.CleanString(view.Email, true /* lower */)]; ok {
		m.logger.Warn(fmt.Sprintf("escalating %s to admin via allow-list; no profile role resolved", view.Email))
		view.Role = RoleAdmin
	}
}

// apply installs a resolved view unless the manager was closed, the session
// was cleared, or a newer resolution has already been applied.
func (m *SessionManager) apply(seq uint64, view *SessionView) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || seq < m.applied {
		return
	}
	m.applied = seq
	m.current = view
	m.authenticated = true
}

// clearSession drops the local view and invalidates in-flight resolutions.
func (m *SessionManager) clearSession() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.seq++
	m.applied = m.seq
	m.current = nil
	m.authenticated = false
	m.loading = false
}

func (m *SessionManager) clearLoading() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
}

func (m *SessionManager) forceClearLoading() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || !m.loading {
		return
	}
	m.loading = false
	m.logger.Warn("session resolution timed out; clearing loading state")
}
