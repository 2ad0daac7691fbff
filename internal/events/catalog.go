package events

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vishnukanth5457/joinup/internal/apierr"
	"github.com/vishnukanth5457/joinup/internal/model"
	"github.com/vishnukanth5457/joinup/internal/session"
)

type API interface {
	ListEvents(ctx context.Context, token, search string) ([]model.Event, error)
	GetEvent(ctx context.Context, token, eventID string) (model.Event, error)
	MyEvents(ctx context.Context, token string) ([]model.Event, error)
	CreateEvent(ctx context.Context, token string, in model.EventInput) (model.Event, error)
	Recommendations(ctx context.Context, token string) ([]model.Event, error)
	RateEvent(ctx context.Context, token string, in model.RatingInput) (model.Rating, error)
	EventRatings(ctx context.Context, token, eventID string) ([]model.Rating, error)
}

// Catalog reads and publishes events. Reads are safe to run concurrently.
type Catalog struct {
	api      API
	sessions session.Source
	log      logrus.FieldLogger
}

func NewCatalog(api API, sessions session.Source, logger logrus.FieldLogger) *Catalog {
	return &Catalog{api: api, sessions: sessions, log: logger.WithField("component", "events")}
}

func (c *Catalog) List(ctx context.Context, search string) ([]model.Event, error) {
	snap, err := session.Require(c.sessions)
	if err != nil {
		return nil, err
	}
	events, err := c.api.ListEvents(ctx, snap.Token, strings.TrimSpace(search))
	if err != nil {
		return nil, apierr.Wrap(err, "load events")
	}
	if err := session.Check(c.sessions, snap); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Catalog) Get(ctx context.Context, eventID string) (model.Event, error) {
	snap, err := session.Require(c.sessions)
	if err != nil {
		return model.Event{}, err
	}
	event, err := c.api.GetEvent(ctx, snap.Token, eventID)
	if err != nil {
		return model.Event{}, apierr.Wrap(err, "load event")
	}
	if err := session.Check(c.sessions, snap); err != nil {
		return model.Event{}, err
	}
	return event, nil
}

// Mine lists the signed-in organizer's events, newest first.
func (c *Catalog) Mine(ctx context.Context) ([]model.Event, error) {
	snap, err := session.Require(c.sessions)
	if err != nil {
		return nil, err
	}
	events, err := c.api.MyEvents(ctx, snap.Token)
	if err != nil {
		return nil, apierr.Wrap(err, "load my events")
	}
	if err := session.Check(c.sessions, snap); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Catalog) Recommended(ctx context.Context) ([]model.Event, error) {
	snap, err := session.Require(c.sessions)
	if err != nil {
		return nil, err
	}
	events, err := c.api.Recommendations(ctx, snap.Token)
	if err != nil {
		return nil, apierr.Wrap(err, "load recommendations")
	}
	if err := session.Check(c.sessions, snap); err != nil {
		return nil, err
	}
	return events, nil
}

// Create publishes an event. Input is validated by the caller.
func (c *Catalog) Create(ctx context.Context, in model.EventInput) (model.Event, error) {
	snap, err := session.Require(c.sessions)
	if err != nil {
		return model.Event{}, err
	}
	event, err := c.api.CreateEvent(ctx, snap.Token, in)
	if err != nil {
		return model.Event{}, apierr.Wrap(err, "create event")
	}
	if err := session.Check(c.sessions, snap); err != nil {
		return model.Event{}, err
	}
	c.log.WithField("event_id", event.ID).Info("event created")
	return event, nil
}

func (c *Catalog) Rate(ctx context.Context, in model.RatingInput) (model.Rating, error) {
	snap, err := session.Require(c.sessions)
	if err != nil {
		return model.Rating{}, err
	}
	rating, err := c.api.RateEvent(ctx, snap.Token, in)
	if err != nil {
		return model.Rating{}, apierr.Wrap(err, "rate event")
	}
	if err := session.Check(c.sessions, snap); err != nil {
		return model.Rating{}, err
	}
	return rating, nil
}

func (c *Catalog) Ratings(ctx context.Context, eventID string) ([]model.Rating, error) {
	snap, err := session.Require(c.sessions)
	if err != nil {
		return nil, err
	}
	ratings, err := c.api.EventRatings(ctx, snap.Token, eventID)
	if err != nil {
		return nil, apierr.Wrap(err, "load ratings")
	}
	if err := session.Check(c.sessions, snap); err != nil {
		return nil, err
	}
	return ratings, nil
}
