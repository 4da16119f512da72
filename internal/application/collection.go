package application

import (
	"context"
	"errors"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/lynnxiaofeng/parkyoga/internal/domain"
	"github.com/lynnxiaofeng/parkyoga/internal/ports"
)

const rateLimitTitle = "Too Many Requests"

type fetchFunc[T any] func(ctx context.Context, token string) ([]T, error)

// collection is a server-backed list kept consistent with the session: it
// refetches on token transitions and after mutations, and drops results of
// fetches that a newer refresh or a sign-out has overtaken.
type collection[T any] struct {
	name    string
	session *SessionManager
	fetch   fetchFunc[T]
	alerter ports.Alerter
	logger  hclog.Logger

	mu         sync.Mutex
	items      []T
	generation uint64
	token      string
	mountCtx   context.Context
	sub        *Subscription
}

func newCollection[T any](name string, session *SessionManager, fetch fetchFunc[T], alerter ports.Alerter, logger hclog.Logger) *collection[T] {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if alerter == nil {
		alerter = discardAlerter{}
	}

	return &collection[T]{
		name:    name,
		session: session,
		fetch:   fetch,
		alerter: alerter,
		logger:  logger.Named(name),
	}
}

// Mount starts following the session and loads the list once.
func (c *collection[T]) Mount(ctx context.Context) error {
	c.mu.Lock()
	if c.sub != nil {
		c.mu.Unlock()
		return c.Refresh(ctx)
	}
	c.mountCtx = context.WithoutCancel(ctx)
	c.token = c.session.Snapshot().Token
	c.mu.Unlock()

	sub := c.session.Subscribe(c.onSession)

	c.mu.Lock()
	c.sub = sub
	c.mu.Unlock()

	return c.Refresh(ctx)
}

func (c *collection[T]) Unmount() {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.generation++
	c.mu.Unlock()

	sub.Close()
}

func (c *collection[T]) onSession(session domain.Session) {
	c.mu.Lock()
	if session.Token == c.token {
		c.mu.Unlock()
		return
	}
	c.token = session.Token
	ctx := c.mountCtx

	if session.Token == "" {
		c.items = nil
		c.generation++
		c.mu.Unlock()
		c.logger.Debug("session ended, list cleared")
		return
	}
	c.mu.Unlock()

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("refresh after sign-in failed", "error", err)
	}
}

// Refresh refetches the whole list. Without a token the list is emptied and
// no request is made. A 429 leaves the list untouched.
func (c *collection[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	generation := c.generation
	c.mu.Unlock()

	snapshot := c.session.Snapshot()
	if !snapshot.IsAuthenticated() {
		c.mu.Lock()
		if generation == c.generation {
			c.items = nil
		}
		c.mu.Unlock()
		return nil
	}

	items, err := c.fetch(ctx, snapshot.Token)

	current := c.session.Snapshot()
	c.mu.Lock()
	stale := generation != c.generation || current.Token != snapshot.Token
	if !stale && err == nil {
		c.items = items
	}
	c.mu.Unlock()

	if stale {
		c.logger.Debug("discarding stale fetch", "generation", generation)
		return nil
	}
	if err != nil {
		c.reportFailure("refresh", err)
		return err
	}
	return nil
}

// mutate runs op with the current token and refreshes once the server has
// answered. Rate-limited and unanswered requests skip the refresh.
func (c *collection[T]) mutate(ctx context.Context, action string, adminOnly bool, op func(ctx context.Context, token string) error) error {
	snapshot := c.session.Snapshot()
	if !snapshot.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}
	if adminOnly && !snapshot.IsAdmin() {
		c.logger.Warn("only administrators can "+action, "collection", c.name)
		return domain.ErrAdminRequired
	}

	err := op(ctx, snapshot.Token)
	if err != nil {
		c.reportFailure(action, err)
		var apiErr *domain.APIError
		if errors.Is(err, domain.ErrRateLimited) || !errors.As(err, &apiErr) {
			return err
		}
	}

	if refreshErr := c.Refresh(ctx); refreshErr != nil {
		c.logger.Warn("refresh after "+action+" failed", "error", refreshErr)
	}
	return err
}

func (c *collection[T]) reportFailure(action string, err error) {
	if errors.Is(err, domain.ErrRateLimited) {
		c.alerter.Alert(rateLimitTitle, domain.UserMessage(err, ""))
		return
	}
	c.logger.Warn(action+" failed", "error", err)
}

func (c *collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

type discardAlerter struct{}

func (discardAlerter) Alert(string, string) {}
