package session

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"moviehub/internal/client/api"
	"moviehub/internal/client/storage"
	"moviehub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type MockAccountClient struct {
	mock.Mock
}

func (m *MockAccountClient) Login(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	args := m.Called(ctx, email, password)
	resp, _ := args.Get(0).(*api.AuthResponse)
	return resp, args.Error(1)
}

func (m *MockAccountClient) Signup(ctx context.Context, name, email, password string) (*api.AuthResponse, error) {
	args := m.Called(ctx, name, email, password)
	resp, _ := args.Get(0).(*api.AuthResponse)
	return resp, args.Error(1)
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func ada() *domain.Profile {
	return &domain.Profile{
		ID:        "u-1",
		Name:      "Ada",
		Email:     "ada@example.com",
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func newTestController(t *testing.T, store storage.Storage) (*Controller, *MockAccountClient, *fakeClock) {
	t.Helper()
	accounts := &MockAccountClient{}
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := NewController(accounts, store, zaptest.NewLogger(t))
	c.now = clock.Now
	require.NoError(t, c.Init())
	return c, accounts, clock
}

func TestInit_EmptyStorageIsAnonymous(t *testing.T) {
	c, _, _ := newTestController(t, storage.NewMemoryStorage())

	_, ok := c.User()
	assert.False(t, ok)
	assert.Equal(t, Nav{Action: "Sign In"}, c.Nav())
}

func TestInit_RestoresStoredProfile(t *testing.T) {
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Set(StorageKey, `{"id":"u-1","name":"Ada","email":"ada@example.com","createdAt":"2024-01-02T03:04:05Z"}`))

	c, _, _ := newTestController(t, store)

	user, ok := c.User()
	require.True(t, ok)
	assert.Equal(t, *ada(), user)
	assert.Equal(t, Nav{Authenticated: true, Greeting: "Welcome, Ada!", Action: "Logout"}, c.Nav())
}

func TestInit_UndecodableEntryIsRemoved(t *testing.T) {
	for _, raw := range []string{"{broken", "null"} {
		store := storage.NewMemoryStorage()
		require.NoError(t, store.Set(StorageKey, raw))

		c, _, _ := newTestController(t, store)

		_, ok := c.User()
		assert.False(t, ok, raw)
		_, stored, _ := store.Get(StorageKey)
		assert.False(t, stored, "entry %q should be removed", raw)
	}
}

func TestLogin_SuccessPersistsAndClosesModal(t *testing.T) {
	store := storage.NewMemoryStorage()
	c, accounts, clock := newTestController(t, store)
	accounts.On("Login", mock.Anything, "ada@example.com", "secret1").
		Return(&api.AuthResponse{Success: true, User: ada(), Message: "Login successful"}, nil)

	c.OpenLogin()
	ok, err := c.Login(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, ModalNone, c.Modal())
	assert.Equal(t, "Welcome, Ada!", c.Nav().Greeting)
	assert.Equal(t, "Login successful!", c.Notice())
	assert.Empty(t, c.FormError(FormLogin))

	raw, stored, _ := store.Get(StorageKey)
	require.True(t, stored)
	assert.NotContains(t, raw, "password")
	assert.Contains(t, raw, `"name":"Ada"`)

	clock.Advance(3 * time.Second)
	assert.Empty(t, c.Notice(), "notice expires after three seconds")
	accounts.AssertExpectations(t)
}

func TestLogin_ServerRejectionShowsMessageAndExpires(t *testing.T) {
	store := storage.NewMemoryStorage()
	c, accounts, clock := newTestController(t, store)
	accounts.On("Login", mock.Anything, "ada@example.com", "wrong").
		Return(&api.AuthResponse{Success: false, Message: "Invalid email or password"}, nil)

	c.OpenLogin()
	ok, err := c.Login(context.Background(), "ada@example.com", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, ModalLogin, c.Modal(), "modal stays open on failure")
	assert.Equal(t, "Invalid email or password", c.FormError(FormLogin))
	assert.Empty(t, c.FormError(FormSignup))

	clock.Advance(4 * time.Second)
	assert.Equal(t, "Invalid email or password", c.FormError(FormLogin))
	clock.Advance(time.Second)
	assert.Empty(t, c.FormError(FormLogin))

	_, stored, _ := store.Get(StorageKey)
	assert.False(t, stored)
}

func TestLogin_EmptyServerMessageUsesDefault(t *testing.T) {
	c, accounts, _ := newTestController(t, storage.NewMemoryStorage())
	accounts.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(&api.AuthResponse{Success: false}, nil)

	_, _ = c.Login(context.Background(), "a@b.co", "x")
	assert.Equal(t, "Login failed", c.FormError(FormLogin))
}

func TestLogin_TransportFailure(t *testing.T) {
	c, accounts, _ := newTestController(t, storage.NewMemoryStorage())
	accounts.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	ok, err := c.Login(context.Background(), "a@b.co", "x")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Login failed. Please try again.", c.FormError(FormLogin))
}

func TestSignup_Outcomes(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c, accounts, _ := newTestController(t, storage.NewMemoryStorage())
		accounts.On("Signup", mock.Anything, "Ada", "ada@example.com", "secret1").
			Return(&api.AuthResponse{Success: true, User: ada()}, nil)

		c.OpenSignup()
		ok, err := c.Signup(context.Background(), "Ada", "ada@example.com", "secret1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, ModalNone, c.Modal())
		assert.Equal(t, "Account created successfully!", c.Notice())
	})

	t.Run("duplicate", func(t *testing.T) {
		c, accounts, _ := newTestController(t, storage.NewMemoryStorage())
		accounts.On("Signup", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(&api.AuthResponse{Success: false, Message: "User already exists"}, nil)

		_, _ = c.Signup(context.Background(), "Ada", "ada@example.com", "secret1")
		assert.Equal(t, "User already exists", c.FormError(FormSignup))
		assert.Empty(t, c.FormError(FormLogin))
	})

	t.Run("default and transport messages", func(t *testing.T) {
		c, accounts, _ := newTestController(t, storage.NewMemoryStorage())
		accounts.On("Signup", mock.Anything, "A", mock.Anything, mock.Anything).
			Return(&api.AuthResponse{Success: false}, nil)
		accounts.On("Signup", mock.Anything, "B", mock.Anything, mock.Anything).
			Return(nil, errors.New("timeout"))

		_, _ = c.Signup(context.Background(), "A", "a@b.co", "secret1")
		assert.Equal(t, "Signup failed", c.FormError(FormSignup))

		_, _ = c.Signup(context.Background(), "B", "b@b.co", "secret1")
		assert.Equal(t, "Signup failed. Please try again.", c.FormError(FormSignup))
	})
}

func TestLogout_ClearsStorageAndFreshControllerIsAnonymous(t *testing.T) {
	store := storage.NewMemoryStorage()
	c, accounts, _ := newTestController(t, store)
	accounts.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(&api.AuthResponse{Success: true, User: ada()}, nil)

	_, err := c.Login(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)
	require.True(t, c.Nav().Authenticated)

	require.NoError(t, c.Logout())

	_, stored, _ := store.Get(StorageKey)
	assert.False(t, stored)
	assert.False(t, c.Nav().Authenticated)
	assert.Empty(t, c.Notice(), "reload drops transient state")

	fresh, _, _ := newTestController(t, store)
	_, ok := fresh.User()
	assert.False(t, ok)
}

func TestModalSwitching(t *testing.T) {
	c, _, _ := newTestController(t, storage.NewMemoryStorage())

	c.OpenLogin()
	assert.Equal(t, ModalLogin, c.Modal())
	c.SwitchToSignup()
	assert.Equal(t, ModalSignup, c.Modal())
	c.SwitchToLogin()
	assert.Equal(t, ModalLogin, c.Modal())
	c.CloseModals()
	assert.Equal(t, ModalNone, c.Modal())
}

func TestRenderNav(t *testing.T) {
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Set(StorageKey, `{"id":"u-2","name":"<b>Eve</b>","email":"eve@example.com"}`))
	c, _, _ := newTestController(t, store)

	var buf bytes.Buffer
	require.NoError(t, c.RenderNav(&buf))
	assert.Contains(t, buf.String(), "Welcome, &lt;b&gt;Eve&lt;/b&gt;!")
	assert.Contains(t, buf.String(), "Logout")

	require.NoError(t, c.Logout())
	buf.Reset()
	require.NoError(t, c.RenderNav(&buf))
	assert.Contains(t, buf.String(), "Sign In")
	assert.NotContains(t, buf.String(), "Welcome")
}
