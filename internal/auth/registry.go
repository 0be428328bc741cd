// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/warden/internal/identity"
	"github.com/holomush/warden/internal/password"
	"github.com/holomush/warden/internal/state"
	"github.com/holomush/warden/pkg/errutil"
)

var tracer = otel.Tracer("warden/auth")

// Binding ties a session to the user logged into it.
type Binding struct {
	SessionID  string
	UserID     string
	LoggedInAt time.Time
}

// SessionRegistry binds at most one user to each session and tracks the
// users currently logged in. It is safe for concurrent use.
type SessionRegistry struct {
	users     identity.Store
	hashers   *password.Hashers
	lockout   *Lockout
	listeners []LoginListener
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]Binding
	// userSessions counts live bindings per user ID.
	userSessions map[string]int
}

// SessionRegistryOption configures a SessionRegistry.
type SessionRegistryOption func(*SessionRegistry)

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) SessionRegistryOption {
	return func(r *SessionRegistry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLoginListener adds a listener. Listeners are called in the order added.
func WithLoginListener(l LoginListener) SessionRegistryOption {
	return func(r *SessionRegistry) {
		if l != nil {
			r.listeners = append(r.listeners, l)
		}
	}
}

// WithLockout enables failed-attempt lockout.
func WithLockout(l *Lockout) SessionRegistryOption {
	return func(r *SessionRegistry) {
		r.lockout = l
	}
}

// WithClock replaces the time source for bindings and the lockout.
func WithClock(now func() time.Time) SessionRegistryOption {
	return func(r *SessionRegistry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry(users identity.Store, hashers *password.Hashers, opts ...SessionRegistryOption) (*SessionRegistry, error) {
	if users == nil {
		return nil, oops.Code("AUTH_NO_STORE").Errorf("identity store is required")
	}
	if hashers == nil {
		return nil, oops.Code("AUTH_NO_HASHERS").Errorf("password hashers are required")
	}
	r := &SessionRegistry{
		users:        users,
		hashers:      hashers,
		logger:       slog.Default(),
		now:          time.Now,
		sessions:     make(map[string]Binding),
		userSessions: make(map[string]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.lockout.setClock(r.now)
	return r, nil
}

// Login authenticates userName with pw and binds the user to sessionID.
// Steps run in a fixed order: user lookup, session check, password check,
// account state. Only LoginSuccess creates a binding.
//
// The error is non-nil only for an empty session ID or an identity store
// failure other than not-found; the outcome is then zero.
func (r *SessionRegistry) Login(ctx context.Context, sessionID, userName, pw string) (LoginOutcome, error) {
	ctx, span := tracer.Start(ctx, "auth.login",
		trace.WithAttributes(attribute.String("session.id", sessionID)),
	)
	defer span.End()

	outcome, err := r.login(ctx, sessionID, userName, pw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return outcome, err
	}
	span.SetAttributes(attribute.String("login.outcome", outcome.String()))
	return outcome, nil
}

func (r *SessionRegistry) login(ctx context.Context, sessionID, userName, pw string) (LoginOutcome, error) {
	if sessionID == "" {
		return 0, oops.Code("AUTH_INVALID_SESSION").Errorf("session ID cannot be empty")
	}

	user, err := r.users.FindUserByLogin(ctx, userName)
	if err != nil {
		if !errors.Is(err, identity.ErrNotFound) {
			return 0, oops.With("session_id", sessionID).Wrap(err)
		}
		_, _ = r.hashers.Verify(pw, r.hashers.DummyHash()) //nolint:errcheck // timing only
		return r.failed(ctx, sessionID, userName, LoginUserNotExisting), nil
	}

	if r.hasBinding(sessionID) {
		return r.failed(ctx, sessionID, userName, LoginSessionAlreadyHasUser), nil
	}

	match, err := r.hashers.Verify(pw, user.PasswordHash)
	if err != nil {
		errutil.LogWarn(ctx, r.logger.With("user_id", user.ID), "stored password hash is unusable", err)
	}
	if err != nil || !match {
		if _, newlyLocked := r.lockout.RecordFailure(user.ID); newlyLocked {
			r.logger.InfoContext(ctx, "account locked after repeated failures",
				"user_id", user.ID, "remaining", r.lockout.Remaining(user.ID))
		}
		return r.failed(ctx, sessionID, userName, LoginInvalidPassword), nil
	}

	if !user.IsEnabled() || r.lockout.IsLocked(user.ID) {
		return r.failed(ctx, sessionID, userName, LoginUserDisabled), nil
	}

	binding, ok := r.bind(sessionID, user.ID)
	if !ok {
		return r.failed(ctx, sessionID, userName, LoginSessionAlreadyHasUser), nil
	}

	r.lockout.RecordSuccess(user.ID)
	r.upgradeHash(ctx, user, pw)
	r.logger.DebugContext(ctx, "login succeeded", "session_id", sessionID, "user_id", user.ID)
	for _, l := range r.listeners {
		l.OnLogin(binding)
	}
	return LoginSuccess, nil
}

func (r *SessionRegistry) hasBinding(sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[sessionID]
	return ok
}

// bind creates the binding unless another login won the race since the
// session was last checked.
func (r *SessionRegistry) bind(sessionID, userID string) (Binding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[sessionID]; exists {
		return Binding{}, false
	}
	b := Binding{SessionID: sessionID, UserID: userID, LoggedInAt: r.now()}
	r.sessions[sessionID] = b
	r.userSessions[userID]++
	return b, true
}

func (r *SessionRegistry) failed(ctx context.Context, sessionID, userName string, outcome LoginOutcome) LoginOutcome {
	r.logger.DebugContext(ctx, "login rejected",
		"session_id", sessionID, "user", userName, "outcome", outcome.String())
	for _, l := range r.listeners {
		l.OnLoginFailed(sessionID, userName, outcome)
	}
	return outcome
}

// upgradeHash rehashes pw with the default algorithm when the stored hash
// uses another one. Failures are logged and never fail the login.
func (r *SessionRegistry) upgradeHash(ctx context.Context, user *identity.User, pw string) {
	updater, ok := r.users.(identity.PasswordUpdater)
	if !ok || !r.hashers.NeedsUpgrade(user.PasswordHash) {
		return
	}
	hash, err := r.hashers.Hash(pw)
	if err != nil {
		errutil.LogWarn(ctx, r.logger, "password hash upgrade failed", err)
		return
	}
	if err := updater.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		errutil.LogWarn(ctx, r.logger.With("user_id", user.ID), "password hash upgrade failed", err)
		return
	}
	r.logger.InfoContext(ctx, "password hash upgraded",
		"user_id", user.ID,
		"from", password.AlgorithmOf(user.PasswordHash),
		"to", r.hashers.Default().Algorithm())
}

// Logout removes the binding of sessionID. It returns state.Unchanged if the
// session had none.
func (r *SessionRegistry) Logout(sessionID string) state.Change {
	r.mu.Lock()
	b, ok := r.sessions[sessionID]
	if ok {
		r.unbindLocked(b)
	}
	r.mu.Unlock()

	if !ok {
		return state.Unchanged
	}
	for _, l := range r.listeners {
		l.OnLogout(b)
	}
	return state.Changed
}

// SessionEnded is called by the session transport when a session terminates.
func (r *SessionRegistry) SessionEnded(sessionID string) {
	r.Logout(sessionID)
}

// LogoutUser ends every session bound to userID and returns how many were ended.
func (r *SessionRegistry) LogoutUser(userID string) int {
	r.mu.Lock()
	var ended []Binding
	if r.userSessions[userID] > 0 {
		for _, b := range r.sessions {
			if b.UserID == userID {
				ended = append(ended, b)
			}
		}
		for _, b := range ended {
			r.unbindLocked(b)
		}
	}
	r.mu.Unlock()

	slices.SortFunc(ended, func(a, b Binding) int { return a.LoggedInAt.Compare(b.LoggedInAt) })
	for _, b := range ended {
		for _, l := range r.listeners {
			l.OnLogout(b)
		}
	}
	return len(ended)
}

func (r *SessionRegistry) unbindLocked(b Binding) {
	delete(r.sessions, b.SessionID)
	if n := r.userSessions[b.UserID] - 1; n > 0 {
		r.userSessions[b.UserID] = n
	} else {
		delete(r.userSessions, b.UserID)
	}
}

// IsUserLoggedIn reports whether any session is bound to userID.
func (r *SessionRegistry) IsUserLoggedIn(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.userSessions[userID] > 0
}

// CurrentUserID returns the user bound to sessionID.
func (r *SessionRegistry) CurrentUserID(sessionID string) (string, bool) {
	b, ok := r.Binding(sessionID)
	return b.UserID, ok
}

// Binding returns the binding of sessionID.
func (r *SessionRegistry) Binding(sessionID string) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.sessions[sessionID]
	return b, ok
}

// LoggedInUserCount returns the number of bound sessions.
func (r *SessionRegistry) LoggedInUserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// LoggedInUserIDs returns the distinct IDs of logged-in users, sorted.
func (r *SessionRegistry) LoggedInUserIDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.userSessions))
	for id := range r.userSessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}
