package attendance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vishnukanth5457/joinup/internal/apierr"
	"github.com/vishnukanth5457/joinup/internal/model"
	"github.com/vishnukanth5457/joinup/internal/session"
)

var (
	// ErrScanInFlight rejects a submission while an earlier one for the same
	// scan session or payload has not returned yet.
	ErrScanInFlight  = errors.New("attendance: scan already in progress")
	ErrInvalidCode   = errors.New("invalid QR code")
	ErrAlreadyMarked = errors.New("attendance already marked")
)

type API interface {
	MarkAttendance(ctx context.Context, token, qrCodeData string) (model.MarkResult, error)
	IssueCertificate(ctx context.Context, token, registrationID string) (model.Certificate, error)
	EventRegistrations(ctx context.Context, token, eventID string) ([]model.Registration, error)
}

// Marker submits scanned QR payloads. The payload is passed through untouched;
// the server decides whether it is valid and marks it at most once.
type Marker struct {
	api      API
	sessions session.Source
	log      logrus.FieldLogger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewMarker(api API, sessions session.Source, logger logrus.FieldLogger) *Marker {
	return &Marker{
		api:      api,
		sessions: sessions,
		log:      logger.WithField("component", "attendance"),
		inFlight: make(map[string]struct{}),
	}
}

// Mark returns the attendee's display name.
func (m *Marker) Mark(ctx context.Context, qrCodeData string) (string, error) {
	if strings.TrimSpace(qrCodeData) == "" {
		return "", apierr.Validation("QR code is empty")
	}
	snap, err := session.Require(m.sessions)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	if _, busy := m.inFlight[qrCodeData]; busy {
		m.mu.Unlock()
		return "", ErrScanInFlight
	}
	m.inFlight[qrCodeData] = struct{}{}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.inFlight, qrCodeData)
		m.mu.Unlock()
	}()

	res, err := m.api.MarkAttendance(ctx, snap.Token, qrCodeData)
	if err != nil {
		return "", rejectReason(err)
	}
	if err := session.Check(m.sessions, snap); err != nil {
		return "", err
	}
	m.log.WithField("student", res.StudentName).Info("attendance marked")
	return res.StudentName, nil
}

// rejectReason reports unknown and already consumed codes as validation errors.
func rejectReason(err error) error {
	switch {
	case apierr.StatusOf(err) == http.StatusNotFound:
		return invalid(err, ErrInvalidCode)
	case apierr.IsValidation(err) && strings.Contains(strings.ToLower(err.Error()), "already marked"):
		return invalid(err, ErrAlreadyMarked)
	case apierr.IsValidation(err):
		return invalid(err, ErrInvalidCode)
	}
	return apierr.Wrap(err, "mark attendance")
}

func invalid(cause, reason error) error {
	return &apierr.Error{
		Kind:    apierr.KindValidation,
		Status:  apierr.StatusOf(cause),
		Message: reason.Error(),
		Err:     fmt.Errorf("%w: %w", reason, cause),
	}
}

// IssueCertificate asks the server for a registration's certificate. The
// server refuses until attendance is marked and returns the existing one
// when it was already issued.
func (m *Marker) IssueCertificate(ctx context.Context, registrationID string) (model.Certificate, error) {
	if strings.TrimSpace(registrationID) == "" {
		return model.Certificate{}, apierr.Validation("registration id is required")
	}
	snap, err := session.Require(m.sessions)
	if err != nil {
		return model.Certificate{}, err
	}
	cert, err := m.api.IssueCertificate(ctx, snap.Token, registrationID)
	if err != nil {
		return model.Certificate{}, apierr.Wrap(err, "issue certificate")
	}
	if err := session.Check(m.sessions, snap); err != nil {
		return model.Certificate{}, err
	}
	return cert, nil
}

// Roster lists the registrations of an event the organizer owns.
func (m *Marker) Roster(ctx context.Context, eventID string) ([]model.Registration, error) {
	snap, err := session.Require(m.sessions)
	if err != nil {
		return nil, err
	}
	regs, err := m.api.EventRegistrations(ctx, snap.Token, eventID)
	if err != nil {
		return nil, apierr.Wrap(err, "load attendees")
	}
	if err := session.Check(m.sessions, snap); err != nil {
		return nil, err
	}
	return regs, nil
}

// ScanSession is one camera session. It accepts a single submission at a time.
type ScanSession struct {
	ID     string
	marker *Marker

	mu   sync.Mutex
	busy bool
}

func (m *Marker) NewScanSession() *ScanSession {
	return &ScanSession{ID: uuid.NewString(), marker: m}
}

func (s *ScanSession) Submit(ctx context.Context, qrCodeData string) (string, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return "", ErrScanInFlight
	}
	s.busy = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	name, err := s.marker.Mark(ctx, qrCodeData)
	if err != nil && !errors.Is(err, ErrScanInFlight) {
		s.marker.log.WithFields(logrus.Fields{"scan_session": s.ID}).WithError(err).Debug("scan rejected")
	}
	return name, err
}
