package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vishnukanth5457/joinup/internal/apierr"
	"github.com/vishnukanth5457/joinup/internal/model"
	"github.com/vishnukanth5457/joinup/internal/tokenstore"
)

var ErrClosed = errors.New("session: manager is not running")

// Authenticator performs the network half of login and registration.
type Authenticator interface {
	Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error)
}

type op struct {
	ctx    context.Context
	fn     func(ctx context.Context) error
	result chan error
}

// Manager owns the authentication state. All mutations run on a single
// goroutine started by Start; network calls happen outside it and their
// results are applied through it.
type Manager struct {
	store tokenstore.Store
	auth  Authenticator
	log   logrus.FieldLogger

	ops  chan op
	done chan struct{}

	mu    sync.RWMutex
	snap  Snapshot
	epoch uint64

	subsMu sync.Mutex
	subs   map[chan Snapshot]struct{}

	startOnce sync.Once
}

func NewManager(store tokenstore.Store, auth Authenticator, logger logrus.FieldLogger) *Manager {
	return &Manager{
		store: store,
		auth:  auth,
		log:   logger.WithField("component", "session"),
		ops:   make(chan op),
		done:  make(chan struct{}),
		subs:  make(map[chan Snapshot]struct{}),
	}
}

// Start runs the mutation loop until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		go m.run(ctx)
	})
}

func (m *Manager) run(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			return
		case o := <-m.ops:
			o.result <- o.fn(o.ctx)
		}
	}
}

func (m *Manager) submit(ctx context.Context, fn func(ctx context.Context) error) error {
	o := op{ctx: ctx, fn: fn, result: make(chan error, 1)}
	select {
	case m.ops <- o:
	case <-m.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-o.result
}

// Current returns a copy of the session.
func (m *Manager) Current() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.clone()
}

// Subscribe delivers every state change until cancel is called. Slow readers
// only see the latest snapshot.
func (m *Manager) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	m.subsMu.Lock()
	m.subs[ch] = struct{}{}
	m.subsMu.Unlock()
	cancel := func() {
		m.subsMu.Lock()
		if _, ok := m.subs[ch]; ok {
			delete(m.subs, ch)
			close(ch)
		}
		m.subsMu.Unlock()
	}
	return ch, cancel
}

// set must only be called from the mutation loop.
func (m *Manager) set(next Snapshot) {
	m.mu.Lock()
	next.Generation = m.snap.Generation + 1
	m.snap = next
	snap := m.snap.clone()
	m.mu.Unlock()

	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for ch := range m.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (m *Manager) state() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.State
}

func (m *Manager) currentEpoch() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epoch
}

// Restore loads a persisted session. It only acts on the first call; the
// stored token is trusted without a round trip to the server.
func (m *Manager) Restore(ctx context.Context) error {
	return m.submit(ctx, func(ctx context.Context) error {
		if m.state() != StateUninitialized {
			return nil
		}
		m.set(Snapshot{State: StateRestoring})

		rec, err := m.store.Load(ctx)
		switch {
		case err == nil:
			user := rec.User
			m.set(Snapshot{State: StateAuthenticated, Token: rec.Token, User: &user})
			m.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Debug("session restored")
		case errors.Is(err, tokenstore.ErrNotFound):
			m.set(Snapshot{State: StateUnauthenticated})
		default:
			m.log.WithError(err).Warn("stored session unreadable, starting signed out")
			if errors.Is(err, tokenstore.ErrCorrupt) {
				if clearErr := m.store.Clear(ctx); clearErr != nil {
					m.log.WithError(clearErr).Warn("failed to clear corrupt session")
				}
			}
			m.set(Snapshot{State: StateUnauthenticated})
		}
		return nil
	})
}

func (m *Manager) Login(ctx context.Context, email, password string) (model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.User{}, apierr.Validation("email and password are required")
	}
	epoch := m.currentEpoch()
	resp, err := m.auth.Login(ctx, model.LoginRequest{Email: email, Password: password})
	if err != nil {
		return model.User{}, err
	}
	return m.apply(ctx, epoch, resp)
}

// Register signs up and signs in. Field validation is the caller's job.
func (m *Manager) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	epoch := m.currentEpoch()
	resp, err := m.auth.Register(ctx, req)
	if err != nil {
		return model.User{}, err
	}
	return m.apply(ctx, epoch, resp)
}

// apply persists a fresh session and then publishes it. A clear that ran
// after the request started wins over the late response.
func (m *Manager) apply(ctx context.Context, epoch uint64, resp model.AuthResponse) (model.User, error) {
	if resp.AccessToken == "" || resp.User.ID == "" {
		return model.User{}, &apierr.Error{Kind: apierr.KindServer, Message: "incomplete sign-in response"}
	}
	user := resp.User
	err := m.submit(ctx, func(ctx context.Context) error {
		if m.currentEpoch() != epoch {
			m.log.WithField("user_id", user.ID).Info("discarding sign-in that finished after logout")
			return apierr.Auth("signed out while signing in")
		}
		if err := m.store.Save(ctx, tokenstore.Record{Token: resp.AccessToken, User: user}); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
		m.set(Snapshot{State: StateAuthenticated, Token: resp.AccessToken, User: &user})
		m.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("signed in")
		return nil
	})
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Logout clears the store, then memory. Store failures are logged and the
// in-memory session is cleared regardless. Calling it twice is harmless.
func (m *Manager) Logout(ctx context.Context) error {
	return m.clear(ctx, "logout")
}

// HandleLifecycle feeds an app lifecycle transition into the state machine.
// Only a transition into background ends the session.
func (m *Manager) HandleLifecycle(ctx context.Context, next AppState) error {
	if next != AppBackground {
		return nil
	}
	return m.clear(ctx, "background")
}

func (m *Manager) clear(ctx context.Context, reason string) error {
	return m.submit(ctx, func(ctx context.Context) error {
		if err := m.store.Clear(ctx); err != nil {
			m.log.WithError(err).WithField("reason", reason).Warn("failed to clear stored session")
		}
		m.mu.Lock()
		m.epoch++
		prev := m.snap.State
		m.mu.Unlock()

		if prev == StateUnauthenticated {
			return nil
		}
		m.set(Snapshot{State: StateUnauthenticated})
		if prev == StateAuthenticated {
			m.log.WithField("reason", reason).Info("signed out")
		}
		return nil
	})
}
