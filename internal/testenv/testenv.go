// Package testenv wires a stub service, a gateway client and a session
// manager together for component tests.
package testenv

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vishnukanth5457/joinup/internal/config"
	"github.com/vishnukanth5457/joinup/internal/gateway"
	"github.com/vishnukanth5457/joinup/internal/logging"
	"github.com/vishnukanth5457/joinup/internal/metrics"
	"github.com/vishnukanth5457/joinup/internal/model"
	"github.com/vishnukanth5457/joinup/internal/session"
	"github.com/vishnukanth5457/joinup/internal/stubserver"
	"github.com/vishnukanth5457/joinup/internal/tokenstore"
)

const Password = "secret1"

type Env struct {
	Server   *stubserver.Server
	App      *httptest.Server
	Gateway  *gateway.Client
	Store    *tokenstore.MemoryStore
	Sessions *session.Manager
}

func New(t *testing.T) *Env {
	t.Helper()
	cfg := config.Config{
		JWTSecret:      "test-secret",
		JWTIssuer:      "test-issuer",
		AccessTokenTTL: 15 * time.Minute,
		RequestTimeout: 5 * time.Second,
	}
	logger := logging.Discard()
	server := stubserver.NewServer(cfg, logger)
	app := httptest.NewServer(server.Router())
	t.Cleanup(app.Close)

	cfg.APIURL = app.URL
	client := gateway.New(cfg, logger, metrics.NewGateway(prometheus.NewRegistry()))
	store := tokenstore.NewMemoryStore()
	sessions := session.NewManager(store, client, logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	sessions.Start(ctx)
	if err := sessions.Restore(ctx); err != nil {
		t.Fatalf("restore error: %v", err)
	}

	return &Env{Server: server, App: app, Gateway: client, Store: store, Sessions: sessions}
}

// AddStudent seeds a student account without signing in.
func (e *Env) AddStudent(t *testing.T, email, name string) model.User {
	t.Helper()
	user, err := e.Server.AddUser(model.User{Email: email, Name: name, Role: model.RoleStudent, College: "MIT", IsApproved: true}, Password)
	if err != nil {
		t.Fatalf("seed student: %v", err)
	}
	return user
}

// AddOrganizer seeds an organizer account without signing in.
func (e *Env) AddOrganizer(t *testing.T, email, name string) model.User {
	t.Helper()
	user, err := e.Server.AddUser(model.User{Email: email, Name: name, Role: model.RoleOrganizer, College: "MIT", OrganizationName: name, IsApproved: true}, Password)
	if err != nil {
		t.Fatalf("seed organizer: %v", err)
	}
	return user
}

// AddEvent seeds an event owned by organizer, starting in the given offset from now.
func (e *Env) AddEvent(organizer model.User, title string, in time.Duration, limit int) model.Event {
	input := model.EventInput{
		Title:       title,
		Description: title + " description",
		Date:        model.NewTime(time.Now().Add(in)),
		Venue:       "Main Hall",
		College:     "MIT",
	}
	if limit > 0 {
		input.MaxParticipants = &limit
	}
	return e.Server.AddEvent(organizer.ID, input)
}

func (e *Env) Login(t *testing.T, email string) {
	t.Helper()
	if _, err := e.Sessions.Login(context.Background(), email, Password); err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
}
