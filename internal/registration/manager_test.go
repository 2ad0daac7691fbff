package registration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vishnukanth5457/joinup/internal/apierr"
	"github.com/vishnukanth5457/joinup/internal/logging"
	"github.com/vishnukanth5457/joinup/internal/model"
	"github.com/vishnukanth5457/joinup/internal/session"
	"github.com/vishnukanth5457/joinup/internal/testenv"
)

func TestRegisterTwiceIsConflict(t *testing.T) {
	env := testenv.New(t)
	org := env.AddOrganizer(t, "org@b.com", "Robo Club")
	env.AddStudent(t, "a@b.com", "Asha")
	event := env.AddEvent(org, "Robo Race", 48*time.Hour, 0)
	env.Login(t, "a@b.com")

	m := NewManager(env.Gateway, env.Sessions, logging.Discard())
	ctx := context.Background()

	reg, err := m.Register(ctx, event.ID)
	if err != nil {
		t.Fatalf("register error: %v", err)
	}
	if reg.QRCodeData == "" || reg.EventID != event.ID {
		t.Fatalf("unexpected registration %+v", reg)
	}

	_, err = m.Register(ctx, event.ID)
	if !apierr.IsConflict(err) {
		t.Fatalf("expected conflict on second registration, got %v", err)
	}
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}

	regs, err := m.ListMine(ctx)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(regs) != 1 || regs[0].ID != reg.ID || regs[0].QRCodeData != reg.QRCodeData {
		t.Fatalf("expected the original registration to be unchanged, got %+v", regs)
	}
}

func TestRegisterFullEventIsConflict(t *testing.T) {
	env := testenv.New(t)
	org := env.AddOrganizer(t, "org@b.com", "Robo Club")
	env.AddStudent(t, "a@b.com", "Asha")
	env.AddStudent(t, "b@b.com", "Bala")
	event := env.AddEvent(org, "Tiny Workshop", 48*time.Hour, 1)

	m := NewManager(env.Gateway, env.Sessions, logging.Discard())
	ctx := context.Background()

	env.Login(t, "a@b.com")
	if _, err := m.Register(ctx, event.ID); err != nil {
		t.Fatalf("register error: %v", err)
	}
	env.Login(t, "b@b.com")
	_, err := m.Register(ctx, event.ID)
	if !apierr.IsConflict(err) || !errors.Is(err, ErrEventFull) {
		t.Fatalf("expected event full conflict, got %v", err)
	}
}

func TestRegisterUnknownEventIsNotConflict(t *testing.T) {
	env := testenv.New(t)
	env.AddStudent(t, "a@b.com", "Asha")
	env.Login(t, "a@b.com")

	_, err := NewManager(env.Gateway, env.Sessions, logging.Discard()).Register(context.Background(), "missing")
	if err == nil || apierr.IsConflict(err) {
		t.Fatalf("expected a non-conflict error for unknown event, got %v", err)
	}
	if apierr.StatusOf(err) != 404 {
		t.Fatalf("expected 404 to be preserved, got %d", apierr.StatusOf(err))
	}
}

func TestSignedOutCallsAreAuthErrors(t *testing.T) {
	env := testenv.New(t)
	env.AddStudent(t, "a@b.com", "Asha")
	env.Login(t, "a@b.com")
	ctx := context.Background()

	if err := env.Sessions.HandleLifecycle(ctx, session.AppBackground); err != nil {
		t.Fatalf("background error: %v", err)
	}
	m := NewManager(env.Gateway, env.Sessions, logging.Discard())
	if _, err := m.ListMine(ctx); !apierr.IsAuth(err) {
		t.Fatalf("expected auth error after backgrounding, got %v", err)
	}
	if _, err := m.Register(ctx, "e1"); !apierr.IsAuth(err) {
		t.Fatalf("expected auth error for register, got %v", err)
	}
	if _, err := m.Certificates(ctx); !apierr.IsAuth(err) {
		t.Fatalf("expected auth error for certificates, got %v", err)
	}
}

func TestRefreshAndCancel(t *testing.T) {
	env := testenv.New(t)
	org := env.AddOrganizer(t, "org@b.com", "Robo Club")
	env.AddStudent(t, "a@b.com", "Asha")
	event := env.AddEvent(org, "Robo Race", 48*time.Hour, 0)
	env.Login(t, "a@b.com")

	m := NewManager(env.Gateway, env.Sessions, logging.Discard())
	ctx := context.Background()

	if _, err := m.Refresh(ctx, event.ID); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered before registering, got %v", err)
	}
	reg, err := m.Register(ctx, event.ID)
	if err != nil {
		t.Fatalf("register error: %v", err)
	}
	got, err := m.Refresh(ctx, event.ID)
	if err != nil || got.ID != reg.ID {
		t.Fatalf("expected refresh to find registration, got %+v err=%v", got, err)
	}
	if err := m.Cancel(ctx, reg.ID); err != nil {
		t.Fatalf("cancel error: %v", err)
	}
	if _, err := m.Refresh(ctx, event.ID); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected registration to be gone after cancel, got %v", err)
	}
}

type blockingAPI struct {
	API
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingAPI) CreateRegistration(ctx context.Context, token, eventID string) (model.Registration, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return model.Registration{ID: "r1", EventID: eventID, QRCodeData: "joinup-r1"}, nil
}

func TestResponseAfterLogoutIsDropped(t *testing.T) {
	env := testenv.New(t)
	env.AddStudent(t, "a@b.com", "Asha")
	env.Login(t, "a@b.com")

	api := &blockingAPI{started: make(chan struct{}), release: make(chan struct{})}
	m := NewManager(api, env.Sessions, logging.Discard())
	ctx := context.Background()

	errCh := make(chan error, 1)
	go func() {
		_, err := m.Register(ctx, "e1")
		errCh <- err
	}()
	<-api.started
	if err := env.Sessions.Logout(ctx); err != nil {
		t.Fatalf("logout error: %v", err)
	}
	close(api.release)

	if err := <-errCh; !apierr.IsAuth(err) {
		t.Fatalf("expected late registration response to be dropped, got %v", err)
	}
}
