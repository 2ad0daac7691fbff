package stubserver

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vishnukanth5457/joinup/internal/model"
)

// AddEvent seeds an event owned by organizerID.
func (s *Server) AddEvent(organizerID string, in model.EventInput) model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertEventLocked(organizerID, in)
}

func (s *Server) insertEventLocked(organizerID string, in model.EventInput) model.Event {
	category := in.Category
	if category == "" {
		category = "General"
	}
	event := model.Event{
		ID:              uuid.NewString(),
		Title:           in.Title,
		Description:     in.Description,
		Date:            in.Date,
		Venue:           in.Venue,
		Fee:             in.Fee,
		College:         in.College,
		Category:        category,
		MaxParticipants: in.MaxParticipants,
		OrganizerID:     organizerID,
		OrganizerName:   s.userLocked(organizerID).Name,
		CreatedAt:       model.NewTime(s.now()),
	}
	s.events[event.ID] = &event
	return event
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var in model.EventInput
	if err := decodeJSON(r, &in); err != nil {
		writeInvalid(w, "invalid request body")
		return
	}
	if err := in.Validate(); err != nil {
		writeInvalid(w, err.Error())
		return
	}
	if in.Date.IsZero() {
		writeInvalid(w, "date is required")
		return
	}
	s.mu.Lock()
	event := s.insertEventLocked(claims.UserID, in)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search")))
	college := r.URL.Query().Get("college")

	s.mu.Lock()
	events := make([]model.Event, 0, len(s.events))
	for _, event := range s.events {
		if search != "" && !strings.Contains(strings.ToLower(event.Title), search) && !strings.Contains(strings.ToLower(event.Description), search) {
			continue
		}
		if college != "" && event.College != college {
			continue
		}
		events = append(events, *event)
	}
	s.mu.Unlock()

	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date.Time) })
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	s.mu.Lock()
	event, ok := s.events[eventID]
	var out model.Event
	if ok {
		out = *event
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMyEvents(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	s.mu.Lock()
	events := s.eventsByOrganizerLocked(claims.UserID)
	s.mu.Unlock()
	sort.Slice(events, func(i, j int) bool { return events[i].Date.After(events[j].Date.Time) })
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) eventsByOrganizerLocked(organizerID string) []model.Event {
	events := make([]model.Event, 0)
	for _, event := range s.events {
		if event.OrganizerID == organizerID {
			events = append(events, *event)
		}
	}
	return events
}

func (s *Server) handleAdminEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	events := make([]model.Event, 0, len(s.events))
	for _, event := range s.events {
		events = append(events, *event)
	}
	s.mu.Unlock()
	sort.Slice(events, func(i, j int) bool { return events[i].CreatedAt.After(events[j].CreatedAt.Time) })
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	users := make([]model.User, 0, len(s.users))
	for _, record := range s.users {
		users = append(users, record.user)
	}
	s.mu.Unlock()
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	writeJSON(w, http.StatusOK, users)
}
