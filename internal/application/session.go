package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/lynnxiaofeng/parkyoga/internal/domain"
	"github.com/lynnxiaofeng/parkyoga/internal/ports"
)

// storedUser is the persisted form of the signed-in user, matching the
// backend's user object.
type storedUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// SessionManager owns the in-memory session and is its only writer. Every
// change is persisted first and then published to subscribers.
type SessionManager struct {
	auth   ports.AuthAPI
	store  ports.SecretStore
	logger hclog.Logger

	mu        sync.Mutex
	session   domain.Session
	listeners map[uint64]func(domain.Session)
	nextID    uint64
}

func NewSessionManager(auth ports.AuthAPI, store ports.SecretStore, logger hclog.Logger) *SessionManager {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &SessionManager{
		auth:      auth,
		store:     store,
		logger:    logger.Named("session"),
		session:   domain.Session{Loading: true},
		listeners: map[uint64]func(domain.Session){},
	}
}

// Restore loads a persisted session. Missing or unreadable entries leave the
// session empty; Restore never fails.
func (m *SessionManager) Restore(ctx context.Context) {
	restored, ok := m.readStored(ctx)

	m.mu.Lock()
	if ok && m.session.Token == "" {
		m.session.Token = restored.Token
		m.session.User = restored.User
	}
	m.session.Loading = false
	m.mu.Unlock()

	m.publish()
}

func (m *SessionManager) readStored(ctx context.Context) (domain.Session, bool) {
	token, err := m.store.Get(ctx, ports.SessionTokenKey)
	if err != nil {
		m.logStoreMiss("token", err)
		return domain.Session{}, false
	}
	rawUser, err := m.store.Get(ctx, ports.SessionUserKey)
	if err != nil {
		m.logStoreMiss("user", err)
		return domain.Session{}, false
	}
	if strings.TrimSpace(token) == "" {
		return domain.Session{}, false
	}

	var user storedUser
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		m.logger.Warn("stored user is not valid JSON, ignoring saved session", "error", err)
		return domain.Session{}, false
	}

	return domain.Session{
		Token: token,
		User:  &domain.UserProfile{Username: user.Username, Email: user.Email, IsAdmin: user.IsAdmin},
	}, true
}

func (m *SessionManager) logStoreMiss(entry string, err error) {
	if errors.Is(err, ports.ErrSecretNotFound) {
		m.logger.Debug("no saved session", "entry", entry)
		return
	}
	m.logger.Warn("could not read saved session", "entry", entry, "error", err)
}

// Register creates a regular account. It never signs the user in.
func (m *SessionManager) Register(ctx context.Context, cmd RegisterCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if cmd.RequestedAdmin {
		m.logger.Info("administrator role requested at sign-up; registering a regular account", "email", cmd.Email)
	}

	err := m.auth.Register(ctx, ports.Registration{
		Username: strings.TrimSpace(cmd.Username),
		Email:    strings.TrimSpace(cmd.Email),
		Password: cmd.Password,
		IsAdmin:  false,
	})
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Login authenticates and replaces the session. On any failure the previous
// session is left as it was.
func (m *SessionManager) Login(ctx context.Context, cmd LoginCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	result, err := m.auth.Login(ctx, strings.TrimSpace(cmd.Email), cmd.Password)
	if err != nil {
		m.logger.Debug("login rejected", "error", err)
		return err
	}

	user := result.User
	encoded, err := json.Marshal(storedUser{Username: user.Username, Email: user.Email, IsAdmin: user.IsAdmin})
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}

	if err := m.store.Put(ctx, ports.SessionTokenKey, result.Token); err != nil {
		return fmt.Errorf("persist session token: %w", err)
	}
	if err := m.store.Put(ctx, ports.SessionUserKey, string(encoded)); err != nil {
		if rollbackErr := m.store.Delete(ctx, ports.SessionTokenKey); rollbackErr != nil {
			return fmt.Errorf("persist session user and rollback token: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("persist session user: %w", err)
	}

	m.mu.Lock()
	m.session.Token = result.Token
	m.session.User = &user
	m.session.Loading = false
	m.mu.Unlock()

	m.logger.Debug("signed in", "username", user.Username, "admin", user.IsAdmin)
	m.publish()
	return nil
}

// Logout forgets the session. Memory is always cleared; store failures are
// reported after the fact.
func (m *SessionManager) Logout(ctx context.Context) error {
	var storeErr error
	for _, key := range []string{ports.SessionTokenKey, ports.SessionUserKey} {
		if err := m.store.Delete(ctx, key); err != nil {
			storeErr = errors.Join(storeErr, err)
		}
	}

	m.mu.Lock()
	m.session.Token = ""
	m.session.User = nil
	m.session.Loading = false
	m.mu.Unlock()

	m.publish()

	if storeErr != nil {
		m.logger.Warn("could not clear saved session", "error", storeErr)
		return fmt.Errorf("clear saved session: %w", storeErr)
	}
	return nil
}

func (m *SessionManager) Snapshot() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Clone()
}

func (m *SessionManager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.IsAuthenticated()
}

// Subscription detaches a listener registered with Subscribe.
type Subscription struct {
	once   sync.Once
	cancel func()
}

func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

// Subscribe registers fn for every session change. Listeners run on the
// goroutine that made the change, outside the manager lock.
func (m *SessionManager) Subscribe(fn func(domain.Session)) *Subscription {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return &Subscription{cancel: func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}}
}

func (m *SessionManager) publish() {
	m.mu.Lock()
	snapshot := m.session.Clone()
	ids := make([]uint64, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	listeners := make([]func(domain.Session), 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, m.listeners[id])
	}
	m.mu.Unlock()

	for _, listener := range listeners {
		listener(snapshot.Clone())
	}
}
