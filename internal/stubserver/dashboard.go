package stubserver

import (
	"math"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vishnukanth5457/joinup/internal/model"
)

func (s *Server) handleCreateRating(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var in model.RatingInput
	if err := decodeJSON(r, &in); err != nil {
		writeInvalid(w, "invalid request body")
		return
	}
	if err := in.Validate(); err != nil {
		writeInvalid(w, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[in.EventID]
	if !ok {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	attended := false
	for _, reg := range s.registrations {
		if reg.StudentID == claims.UserID && reg.EventID == in.EventID && reg.AttendanceMarked {
			attended = true
			break
		}
	}
	if !attended {
		writeError(w, http.StatusBadRequest, "Can only rate events you attended")
		return
	}
	for _, rating := range s.ratings {
		if rating.StudentID == claims.UserID && rating.EventID == in.EventID {
			writeError(w, http.StatusBadRequest, "Already rated this event")
			return
		}
	}

	rating := model.Rating{
		ID:          uuid.NewString(),
		EventID:     in.EventID,
		StudentID:   claims.UserID,
		StudentName: s.userLocked(claims.UserID).Name,
		Rating:      in.Rating,
		Feedback:    in.Feedback,
		CreatedAt:   model.NewTime(s.now()),
	}
	s.ratings = append(s.ratings, rating)

	sum, count := 0, 0
	for _, existing := range s.ratings {
		if existing.EventID == in.EventID {
			sum += existing.Rating
			count++
		}
	}
	event.AverageRating = round2(float64(sum) / float64(count))
	event.TotalRatings = count

	writeJSON(w, http.StatusOK, rating)
}

func (s *Server) handleEventRatings(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	s.mu.Lock()
	ratings := make([]model.Rating, 0)
	for _, rating := range s.ratings {
		if rating.EventID == eventID {
			ratings = append(ratings, rating)
		}
	}
	s.mu.Unlock()
	sort.Slice(ratings, func(i, j int) bool { return ratings[i].CreatedAt.After(ratings[j].CreatedAt.Time) })
	writeJSON(w, http.StatusOK, ratings)
}

func (s *Server) handleStudentDashboard(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	s.mu.Lock()
	now := s.now()
	var summary model.StudentSummary
	for _, reg := range s.registrations {
		if reg.StudentID != claims.UserID {
			continue
		}
		summary.TotalEventsRegistered++
		if reg.AttendanceMarked {
			summary.AttendedEvents++
		}
		if reg.CertificateIssued {
			summary.CertificatesEarned++
		}
		if !reg.AttendanceMarked {
			if event, ok := s.events[reg.EventID]; ok && event.Date.After(now) {
				summary.UpcomingEvents++
			}
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleOrganizerDashboard(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	s.mu.Lock()
	now := s.now()
	events := s.eventsByOrganizerLocked(claims.UserID)
	summary := model.OrganizerSummary{TotalEvents: len(events), TopEvents: []model.TopEvent{}}
	owned := make(map[string]bool, len(events))
	weighted, ratingCount := 0.0, 0
	for _, event := range events {
		owned[event.ID] = true
		summary.TotalRegistrations += event.CurrentRegistrations
		if event.Date.After(now) {
			summary.UpcomingEvents++
		}
		weighted += event.AverageRating * float64(event.TotalRatings)
		ratingCount += event.TotalRatings
	}
	for _, reg := range s.registrations {
		if owned[reg.EventID] && reg.AttendanceMarked {
			summary.TotalAttendees++
		}
	}
	s.mu.Unlock()

	summary.PastEvents = summary.TotalEvents - summary.UpcomingEvents
	if ratingCount > 0 {
		summary.AverageRating = round2(weighted / float64(ratingCount))
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].CurrentRegistrations > events[j].CurrentRegistrations })
	for i, event := range events {
		if i == 5 {
			break
		}
		summary.TopEvents = append(summary.TopEvents, model.TopEvent{
			ID:            event.ID,
			Title:         event.Title,
			Registrations: event.CurrentRegistrations,
			Rating:        event.AverageRating,
		})
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleRecommendations lists upcoming events the student has not joined,
// own college first, then by date.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	s.mu.Lock()
	now := s.now()
	college := s.userLocked(claims.UserID).College
	joined := map[string]bool{}
	for _, reg := range s.registrations {
		if reg.StudentID == claims.UserID {
			joined[reg.EventID] = true
		}
	}
	events := make([]model.Event, 0)
	for _, event := range s.events {
		if !joined[event.ID] && event.Date.After(now) {
			events = append(events, *event)
		}
	}
	s.mu.Unlock()

	sort.Slice(events, func(i, j int) bool {
		iLocal, jLocal := events[i].College == college, events[j].College == college
		if iLocal != jLocal {
			return iLocal
		}
		return events[i].Date.Before(events[j].Date.Time)
	})
	if len(events) > 10 {
		events = events[:10]
	}
	writeJSON(w, http.StatusOK, events)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
