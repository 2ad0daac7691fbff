package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vishnukanth5457/joinup/internal/apierr"
	"github.com/vishnukanth5457/joinup/internal/model"
	"github.com/vishnukanth5457/joinup/internal/session"
)

var (
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrEventFull         = errors.New("event is full")
	ErrNotRegistered     = errors.New("not registered for this event")
)

type API interface {
	CreateRegistration(ctx context.Context, token, eventID string) (model.Registration, error)
	MyRegistrations(ctx context.Context, token string) ([]model.Registration, error)
	CancelRegistration(ctx context.Context, token, registrationID string) error
	MyCertificates(ctx context.Context, token string) ([]model.Certificate, error)
}

// Manager creates and reads the signed-in student's registrations. It never
// retries on its own and never edits a registration locally.
type Manager struct {
	api      API
	sessions session.Source
	log      logrus.FieldLogger
}

func NewManager(api API, sessions session.Source, logger logrus.FieldLogger) *Manager {
	return &Manager{api: api, sessions: sessions, log: logger.WithField("component", "registration")}
}

func (m *Manager) Register(ctx context.Context, eventID string) (model.Registration, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return model.Registration{}, apierr.Validation("event id is required")
	}
	snap, err := session.Require(m.sessions)
	if err != nil {
		return model.Registration{}, err
	}

	reg, err := m.api.CreateRegistration(ctx, snap.Token, eventID)
	if err != nil {
		if conflict := asConflict(err); conflict != nil {
			m.log.WithFields(logrus.Fields{"event_id": eventID}).Info(conflict.Error())
			return model.Registration{}, conflict
		}
		return model.Registration{}, apierr.Wrap(err, "register for event")
	}
	if err := session.Check(m.sessions, snap); err != nil {
		m.log.WithField("event_id", eventID).Info("dropping registration response for ended session")
		return model.Registration{}, err
	}
	return reg, nil
}

// asConflict maps the service's duplicate and capacity rejections to
// conflict errors. The service reports them as 400 with a detail message;
// a 409 is taken as a conflict whatever its detail.
func asConflict(err error) error {
	if !apierr.IsValidation(err) && !apierr.IsConflict(err) {
		return nil
	}
	detail := strings.ToLower(err.Error())
	switch {
	case strings.Contains(detail, "already registered"):
		return conflict(err, ErrAlreadyRegistered)
	case strings.Contains(detail, "is full"):
		return conflict(err, ErrEventFull)
	case apierr.IsConflict(err):
		return err
	}
	return nil
}

func conflict(cause, reason error) error {
	return &apierr.Error{
		Kind:    apierr.KindConflict,
		Status:  apierr.StatusOf(cause),
		Message: reason.Error(),
		Err:     fmt.Errorf("%w: %w", reason, cause),
	}
}

func (m *Manager) ListMine(ctx context.Context) ([]model.Registration, error) {
	snap, err := session.Require(m.sessions)
	if err != nil {
		return nil, err
	}
	regs, err := m.api.MyRegistrations(ctx, snap.Token)
	if err != nil {
		return nil, apierr.Wrap(err, "load registrations")
	}
	if err := session.Check(m.sessions, snap); err != nil {
		return nil, err
	}
	return regs, nil
}

// Refresh re-reads the registration for one event. There is no push channel,
// so this is how attendance and certificate changes become visible.
func (m *Manager) Refresh(ctx context.Context, eventID string) (model.Registration, error) {
	regs, err := m.ListMine(ctx)
	if err != nil {
		return model.Registration{}, err
	}
	for _, reg := range regs {
		if reg.EventID == eventID {
			return reg, nil
		}
	}
	return model.Registration{}, ErrNotRegistered
}

func (m *Manager) Cancel(ctx context.Context, registrationID string) error {
	if strings.TrimSpace(registrationID) == "" {
		return apierr.Validation("registration id is required")
	}
	snap, err := session.Require(m.sessions)
	if err != nil {
		return err
	}
	if err := m.api.CancelRegistration(ctx, snap.Token, registrationID); err != nil {
		return apierr.Wrap(err, "cancel registration")
	}
	return session.Check(m.sessions, snap)
}

func (m *Manager) Certificates(ctx context.Context) ([]model.Certificate, error) {
	snap, err := session.Require(m.sessions)
	if err != nil {
		return nil, err
	}
	certs, err := m.api.MyCertificates(ctx, snap.Token)
	if err != nil {
		return nil, apierr.Wrap(err, "load certificates")
	}
	if err := session.Check(m.sessions, snap); err != nil {
		return nil, err
	}
	return certs, nil
}
