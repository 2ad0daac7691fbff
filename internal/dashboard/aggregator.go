package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vishnukanth5457/joinup/internal/apierr"
	"github.com/vishnukanth5457/joinup/internal/model"
	"github.com/vishnukanth5457/joinup/internal/session"
)

type API interface {
	StudentDashboard(ctx context.Context, token string) (model.StudentSummary, error)
	OrganizerDashboard(ctx context.Context, token string) (model.OrganizerSummary, error)
	MyRegistrations(ctx context.Context, token string) ([]model.Registration, error)
	MyEvents(ctx context.Context, token string) ([]model.Event, error)
}

// Result is a fetched value. Stale is set when the latest fetch failed and
// Value is the last good one.
type Result[T any] struct {
	Value     T
	FetchedAt time.Time
	Stale     bool
}

type View struct {
	Role          model.Role
	Student       *Result[model.StudentSummary]
	Registrations *Result[[]model.Registration]
	Organizer     *Result[model.OrganizerSummary]
	Events        *Result[[]model.Event]
}

type cache struct {
	userID        string
	student       *Result[model.StudentSummary]
	organizer     *Result[model.OrganizerSummary]
	registrations *Result[[]model.Registration]
	events        *Result[[]model.Event]
}

// Aggregator serves dashboard projections. It keeps the last good value of
// each projection per user and falls back to it when a fetch fails.
type Aggregator struct {
	api      API
	sessions session.Source
	log      logrus.FieldLogger
	now      func() time.Time

	mu    sync.Mutex
	cache cache
}

func NewAggregator(api API, sessions session.Source, logger logrus.FieldLogger) *Aggregator {
	return &Aggregator{
		api:      api,
		sessions: sessions,
		log:      logger.WithField("component", "dashboard"),
		now:      time.Now,
	}
}

// cacheFor returns the cache of userID, dropping one left by another user.
func (a *Aggregator) cacheFor(userID string) *cache {
	if a.cache.userID != userID {
		a.cache = cache{userID: userID}
	}
	return &a.cache
}

// fetch runs load and records the outcome in the slot picked by pick.
func fetch[T any](a *Aggregator, ctx context.Context, what string, pick func(*cache) **Result[T], load func(ctx context.Context, token string) (T, error)) (*Result[T], error) {
	snap, err := session.Require(a.sessions)
	if err != nil {
		return nil, err
	}
	value, err := load(ctx, snap.Token)
	if err == nil {
		err = session.Check(a.sessions, snap)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	slot := pick(a.cacheFor(snap.User.ID))
	if err != nil {
		if apierr.IsAuth(err) || *slot == nil {
			return nil, apierr.Wrap(err, what)
		}
		a.log.WithError(err).WithField("projection", what).Warn("serving stale dashboard data")
		stale := **slot
		stale.Stale = true
		return &stale, apierr.Wrap(err, what)
	}
	fresh := &Result[T]{Value: value, FetchedAt: a.now()}
	*slot = fresh
	out := *fresh
	return &out, nil
}

// StudentSummary returns the summary and a nil error on success. On failure
// it returns the last good summary marked stale together with the error, or
// nil when there is none.
func (a *Aggregator) StudentSummary(ctx context.Context) (*Result[model.StudentSummary], error) {
	return fetch(a, ctx, "load student dashboard", func(c *cache) **Result[model.StudentSummary] { return &c.student }, a.api.StudentDashboard)
}

func (a *Aggregator) OrganizerSummary(ctx context.Context) (*Result[model.OrganizerSummary], error) {
	return fetch(a, ctx, "load organizer dashboard", func(c *cache) **Result[model.OrganizerSummary] { return &c.organizer }, a.api.OrganizerDashboard)
}

func (a *Aggregator) Registrations(ctx context.Context) (*Result[[]model.Registration], error) {
	return fetch(a, ctx, "load registrations", func(c *cache) **Result[[]model.Registration] { return &c.registrations }, a.api.MyRegistrations)
}

func (a *Aggregator) Events(ctx context.Context) (*Result[[]model.Event], error) {
	return fetch(a, ctx, "load events", func(c *cache) **Result[[]model.Event] { return &c.events }, a.api.MyEvents)
}

// Refresh loads the signed-in role's summary and list concurrently. The
// view carries whatever is available; the error is the first failure.
func (a *Aggregator) Refresh(ctx context.Context) (View, error) {
	snap, err := session.Require(a.sessions)
	if err != nil {
		return View{}, err
	}
	view := View{Role: snap.Role()}

	var g errgroup.Group
	switch view.Role {
	case model.RoleStudent:
		g.Go(func() error {
			var err error
			view.Student, err = a.StudentSummary(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			view.Registrations, err = a.Registrations(ctx)
			return err
		})
	case model.RoleOrganizer:
		g.Go(func() error {
			var err error
			view.Organizer, err = a.OrganizerSummary(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			view.Events, err = a.Events(ctx)
			return err
		})
	default:
		return view, apierr.Validation("no dashboard for role " + string(view.Role))
	}
	err = g.Wait()
	return view, err
}
