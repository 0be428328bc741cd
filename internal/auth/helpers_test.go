// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/holomush/warden/internal/auth"
	"github.com/holomush/warden/internal/identity"
	"github.com/holomush/warden/internal/password"
)

// fixture holds the users every registry and validator test starts from:
//   - admin / adminpw (ID admin-id)
//   - user / userpw (ID user-id)
//   - disabled / disabledpw (Disabled)
//   - deleted / deletedpw (Deleted)
type fixture struct {
	store   *identity.MemoryStore
	hashers *password.Hashers
}

// testingT is satisfied by *testing.T and GinkgoT().
type testingT interface {
	require.TestingT
	Helper()
}

func newFixture(t testingT) *fixture {
	t.Helper()
	hashers, err := password.NewBuiltinHashers(password.AlgorithmSHA512)
	require.NoError(t, err)

	store := identity.NewMemoryStore()
	for _, u := range []struct {
		id, login, pw     string
		disabled, deleted bool
	}{
		{id: "admin-id", login: "admin", pw: "adminpw"},
		{id: "user-id", login: "user", pw: "userpw"},
		{id: "disabled-id", login: "disabled", pw: "disabledpw", disabled: true},
		{id: "deleted-id", login: "deleted", pw: "deletedpw", deleted: true},
	} {
		hash, err := hashers.Hash(u.pw)
		require.NoError(t, err)
		require.NoError(t, store.PutUser(&identity.User{
			ID:           u.id,
			Login:        u.login,
			PasswordHash: hash,
			Disabled:     u.disabled,
			Deleted:      u.deleted,
		}))
	}
	return &fixture{store: store, hashers: hashers}
}

// mockStore is a testify mock of identity.Store.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) FindUserByLogin(ctx context.Context, login string) (*identity.User, error) {
	args := m.Called(ctx, login)
	u, _ := args.Get(0).(*identity.User)
	return u, args.Error(1)
}

func (m *mockStore) FindUserByID(ctx context.Context, id string) (*identity.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*identity.User)
	return u, args.Error(1)
}

func (m *mockStore) FindRoleByID(ctx context.Context, id string) (*identity.Role, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*identity.Role)
	return r, args.Error(1)
}

func (m *mockStore) FindUserGroupByID(ctx context.Context, id string) (*identity.UserGroup, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(*identity.UserGroup)
	return g, args.Error(1)
}

func (m *mockStore) Users(ctx context.Context) ([]*identity.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).([]*identity.User)
	return u, args.Error(1)
}

func (m *mockStore) Roles(ctx context.Context) ([]*identity.Role, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]*identity.Role)
	return r, args.Error(1)
}

func (m *mockStore) UserGroups(ctx context.Context) ([]*identity.UserGroup, error) {
	args := m.Called(ctx)
	g, _ := args.Get(0).([]*identity.UserGroup)
	return g, args.Error(1)
}

var _ identity.Store = (*mockStore)(nil)

// listenerRecorder collects LoginListener calls.
type listenerRecorder struct {
	mu       sync.Mutex
	logins   []string
	logouts  []string
	failures []string
}

func (r *listenerRecorder) OnLogin(b auth.Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, b.SessionID+"="+b.UserID)
}

func (r *listenerRecorder) OnLogout(b auth.Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logouts = append(r.logouts, b.SessionID+"="+b.UserID)
}

func (r *listenerRecorder) OnLoginFailed(sessionID, userName string, outcome auth.LoginOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, sessionID+"/"+userName+":"+outcome.String())
}
