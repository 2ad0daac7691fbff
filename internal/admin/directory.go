package admin

import (
	"context"

	"github.com/vishnukanth5457/joinup/internal/apierr"
	"github.com/vishnukanth5457/joinup/internal/model"
	"github.com/vishnukanth5457/joinup/internal/session"
)

type API interface {
	Me(ctx context.Context, token string) (model.User, error)
	AdminUsers(ctx context.Context, token string) ([]model.User, error)
	AdminEvents(ctx context.Context, token string) ([]model.Event, error)
}

type Directory struct {
	api      API
	sessions session.Source
}

func NewDirectory(api API, sessions session.Source) *Directory {
	return &Directory{api: api, sessions: sessions}
}

// Me fetches the server's view of the signed-in user.
func (d *Directory) Me(ctx context.Context) (model.User, error) {
	snap, err := session.Require(d.sessions)
	if err != nil {
		return model.User{}, err
	}
	user, err := d.api.Me(ctx, snap.Token)
	if err != nil {
		return model.User{}, apierr.Wrap(err, "load profile")
	}
	if err := session.Check(d.sessions, snap); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (d *Directory) Users(ctx context.Context) ([]model.User, error) {
	snap, err := session.Require(d.sessions)
	if err != nil {
		return nil, err
	}
	users, err := d.api.AdminUsers(ctx, snap.Token)
	if err != nil {
		return nil, apierr.Wrap(err, "load users")
	}
	if err := session.Check(d.sessions, snap); err != nil {
		return nil, err
	}
	return users, nil
}

func (d *Directory) Events(ctx context.Context) ([]model.Event, error) {
	snap, err := session.Require(d.sessions)
	if err != nil {
		return nil, err
	}
	events, err := d.api.AdminEvents(ctx, snap.Token)
	if err != nil {
		return nil, apierr.Wrap(err, "load events")
	}
	if err := session.Check(d.sessions, snap); err != nil {
		return nil, err
	}
	return events, nil
}
