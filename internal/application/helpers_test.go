package application

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lynnxiaofeng/parkyoga/internal/adapters/api"
	tomlrepo "github.com/lynnxiaofeng/parkyoga/internal/adapters/repo/toml"
	filestore "github.com/lynnxiaofeng/parkyoga/internal/adapters/secrets/file"
	"github.com/lynnxiaofeng/parkyoga/internal/apitest"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	backend *apitest.Backend
	client  api.Client
	store   *filestore.Store
	session *SessionManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend := apitest.NewServer(t)
	client := api.Client{BaseURL: backend.URL}
	store := filestore.NewStore(filepath.Join(t.TempDir(), "secrets"))
	session := NewSessionManager(client, store, nil)
	session.Restore(context.Background())

	return &fixture{backend: backend, client: client, store: store, session: session}
}

func (f *fixture) signIn(t *testing.T, user apitest.User) {
	t.Helper()

	if _, ok := f.backend.User(user.Email); !ok {
		f.backend.SeedUser(user)
	}
	require.NoError(t, f.session.Login(context.Background(), LoginCommand{Email: user.Email, Password: user.Password}))
}

func newNotificationRepo(t *testing.T) *tomlrepo.Repository {
	t.Helper()

	config := viper.New()
	config.Set(tomlrepo.NotificationsPathKey, filepath.Join(t.TempDir(), "notifications.toml"))
	repo, err := tomlrepo.NewRepository(config)
	require.NoError(t, err)
	return repo
}

var (
	alice = apitest.User{Username: "alice", Email: "alice@example.com", Password: "lotus"}
	admin = apitest.User{Username: "root", Email: "admin@example.com", Password: "asana", IsAdmin: true}
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func mockAnyContext() interface{} {
	return mock.Anything
}

func clientFor(backend *apitest.Backend) api.Client {
	return api.Client{BaseURL: backend.URL}
}
