package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shoppyglobe/backend/internal/auth"
	"github.com/shoppyglobe/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUserRepository struct {
	m     sync.Mutex
	users map[string]domain.User
	seq   int
	err   error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: map[string]domain.User{}}
}

func (m *mockUserRepository) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	m.seq++
	doc := *u
	doc.ID = fmt.Sprintf("user-%d", m.seq)
	m.users[doc.ID] = doc
	return &doc, nil
}

func (m *mockUserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (m *mockUserRepository) Update(_ context.Context, u *domain.User) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	for id, existing := range m.users {
		if id != u.ID && existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	m.users[u.ID] = *u
	return u, nil
}

type stubTokens struct{}

func (stubTokens) GenerateToken(userID string, role domain.Role) (string, error) {
	return "token-" + userID + "-" + string(role), nil
}

func TestRegister(t *testing.T) {
	svc := NewAuthService(newMockUserRepository(), stubTokens{})
	email := gofakeit.Email()

	user, token, err := svc.Register(context.Background(), gofakeit.Name(), email, "secret1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, "token-user-1-user", token)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	_, _, err = svc.Register(context.Background(), gofakeit.Name(), email, "secret2")
	require.ErrorIs(t, err, domain.ErrUserExists)
}

func TestRegister_StoreDown(t *testing.T) {
	repo := newMockUserRepository()
	repo.err = errors.New("no reachable servers")
	svc := NewAuthService(repo, stubTokens{})

	_, _, err := svc.Register(context.Background(), "Ann", gofakeit.Email(), "secret1")
	require.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestLogin(t *testing.T) {
	svc := NewAuthService(newMockUserRepository(), stubTokens{})
	email := gofakeit.Email()
	_, _, err := svc.Register(context.Background(), "Ann", email, "secret1")
	require.NoError(t, err)

	user, token, err := svc.Login(context.Background(), email, "secret1")
	require.NoError(t, err)
	assert.Equal(t, email, user.Email)
	assert.NotEmpty(t, token)

	_, _, err = svc.Login(context.Background(), email, "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), gofakeit.Email(), "secret1")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	repo := newMockUserRepository()
	svc := NewAuthService(repo, stubTokens{})
	user, _, err := svc.Register(context.Background(), "Ann", "ann@example.com", "secret1")
	require.NoError(t, err)
	_, _, err = svc.Register(context.Background(), "Bob", "bob@example.com", "secret1")
	require.NoError(t, err)

	name, empty, password := "Annie", "", "newpass"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{Name: &name, Email: &empty, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "Annie", updated.Name)
	assert.Equal(t, "ann@example.com", updated.Email)

	ok, err := auth.CheckPassword(updated.PasswordHash, "newpass")
	require.NoError(t, err)
	assert.True(t, ok)

	taken := "bob@example.com"
	_, err = svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{Email: &taken})
	require.ErrorIs(t, err, domain.ErrUserExists)

	_, err = svc.UpdateProfile(context.Background(), "missing", ProfileUpdate{})
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
