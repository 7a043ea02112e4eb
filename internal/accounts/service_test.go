package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/avatar/internal/config"
)

func newTestService(t *testing.T) (*Service, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	return NewService(nil, repo), repo
}

func TestService_CreateAndLookup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)

	a, err := svc.Create(ctx, CreateInput{Email: "  Bob@Example.com ", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", a.Email)
	assert.Equal(t, "bob", a.DisplayName)
	assert.Equal(t, RoleSubscriber, a.Role)
	assert.NotEqual(t, "secret", a.PasswordHash)

	got, err := svc.GetByEmail(ctx, "BOB@example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = svc.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetByID(ctx, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(ctx, CreateInput{Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Authenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, err := svc.Create(ctx, CreateInput{Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Email: "nopw@example.com"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "ann@example.com", "pw")
	assert.NoError(t, err)
	_, err = svc.Authenticate(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "ghost@example.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nopw@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Permissions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, repo := newTestService(t)
	admin, _ := repo.Create(ctx, Account{Email: "admin@example.com", Role: RoleAdmin})
	author, _ := repo.Create(ctx, Account{Email: "author@example.com", Role: RoleAuthor})
	sub, _ := repo.Create(ctx, Account{Email: "sub@example.com", Role: RoleSubscriber})

	cases := []struct {
		name          string
		actor, target int64
		want          bool
	}{
		{name: "self", actor: sub.ID, target: sub.ID, want: true},
		{name: "admin edits other", actor: admin.ID, target: sub.ID, want: true},
		{name: "author edits other", actor: author.ID, target: sub.ID, want: false},
		{name: "unknown actor", actor: 999, target: sub.ID, want: false},
		{name: "anonymous", actor: 0, target: sub.ID, want: false},
	}
	for _, tc := range cases {
		got, err := svc.CanEdit(ctx, tc.actor, tc.target)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, got, tc.name)
	}

	ok, _ := svc.CanUpload(ctx, author.ID)
	assert.True(t, ok)
	ok, _ = svc.CanUpload(ctx, sub.ID)
	assert.False(t, ok)
	ok, _ = svc.CanUpload(ctx, 0)
	assert.False(t, ok)
}

func TestService_EnsureAdmin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, repo := newTestService(t)
	cfg := config.AdminConfig{Email: "root@example.com", DisplayName: "Root", Password: "pw"}

	require.NoError(t, svc.EnsureAdmin(ctx, cfg))
	require.NoError(t, svc.EnsureAdmin(ctx, cfg))
	n, _ := repo.Count(ctx)
	assert.Equal(t, int64(1), n)

	a, err := svc.GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, a.Role)
	assert.Equal(t, "Root", a.DisplayName)

	empty, _ := newTestService(t)
	assert.Error(t, empty.EnsureAdmin(ctx, config.AdminConfig{}))
}
