package stubserver

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vishnukanth5457/joinup/internal/model"
)

const qrPrefix = "joinup-"

type createRegistrationRequest struct {
	EventID string `json:"event_id"`
}

type markAttendanceRequest struct {
	QRCodeData string `json:"qr_code_data"`
}

type issueCertificateRequest struct {
	RegistrationID string `json:"registration_id"`
}

func (s *Server) handleCreateRegistration(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req createRegistrationRequest
	if err := decodeJSON(r, &req); err != nil || req.EventID == "" {
		writeInvalid(w, "event_id is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[req.EventID]
	if !ok {
		s.metrics.Registration("not_found")
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	for _, reg := range s.registrations {
		if reg.StudentID == claims.UserID && reg.EventID == req.EventID {
			s.metrics.Registration("duplicate")
			writeError(w, http.StatusBadRequest, "Already registered for this event")
			return
		}
	}
	if event.Full() {
		s.metrics.Registration("full")
		writeError(w, http.StatusBadRequest, "Event is full")
		return
	}

	regID := uuid.NewString()
	reg := &model.Registration{
		ID:            regID,
		StudentID:     claims.UserID,
		StudentName:   s.userLocked(claims.UserID).Name,
		EventID:       event.ID,
		EventTitle:    event.Title,
		PaymentStatus: model.PaymentPaid,
		QRCodeData:    qrPrefix + regID,
		CreatedAt:     model.NewTime(s.now()),
	}
	s.registrations[regID] = reg
	s.qrCodes[reg.QRCodeData] = regID
	event.CurrentRegistrations++
	s.metrics.Registration("created")

	writeJSON(w, http.StatusOK, *reg)
}

func (s *Server) handleMyRegistrations(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	s.mu.Lock()
	regs := make([]model.Registration, 0)
	for _, reg := range s.registrations {
		if reg.StudentID == claims.UserID {
			regs = append(regs, *reg)
		}
	}
	s.mu.Unlock()
	sort.Slice(regs, func(i, j int) bool { return regs[i].CreatedAt.After(regs[j].CreatedAt.Time) })
	writeJSON(w, http.StatusOK, regs)
}

func (s *Server) handleCancelRegistration(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	regID := chi.URLParam(r, "registrationId")

	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.registrations[regID]
	if !ok || reg.StudentID != claims.UserID {
		writeError(w, http.StatusNotFound, "Registration not found")
		return
	}
	if reg.AttendanceMarked {
		writeError(w, http.StatusBadRequest, "Cannot cancel after attendance is marked")
		return
	}
	delete(s.registrations, regID)
	delete(s.qrCodes, reg.QRCodeData)
	if event, ok := s.events[reg.EventID]; ok && event.CurrentRegistrations > 0 {
		event.CurrentRegistrations--
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Registration cancelled"})
}

func (s *Server) handleEventRegistrations(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	eventID := chi.URLParam(r, "eventId")

	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok || event.OrganizerID != claims.UserID {
		writeError(w, http.StatusNotFound, "Event not found or access denied")
		return
	}
	regs := make([]model.Registration, 0)
	for _, reg := range s.registrations {
		if reg.EventID == eventID {
			regs = append(regs, *reg)
		}
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].CreatedAt.Before(regs[j].CreatedAt.Time) })
	writeJSON(w, http.StatusOK, regs)
}

// handleMarkAttendance flips attendance at most once per registration.
func (s *Server) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req markAttendanceRequest
	if err := decodeJSON(r, &req); err != nil || req.QRCodeData == "" {
		writeInvalid(w, "qr_code_data is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	regID, ok := s.qrCodes[req.QRCodeData]
	if !ok {
		s.metrics.AttendanceMark("invalid")
		writeError(w, http.StatusNotFound, "Invalid QR code")
		return
	}
	reg := s.registrations[regID]
	event, ok := s.events[reg.EventID]
	if !ok || event.OrganizerID != claims.UserID {
		s.metrics.AttendanceMark("forbidden")
		writeError(w, http.StatusForbidden, "You don't have permission to mark attendance for this event")
		return
	}
	if reg.AttendanceMarked {
		s.metrics.AttendanceMark("duplicate")
		writeError(w, http.StatusBadRequest, "Attendance already marked")
		return
	}
	at := model.NewTime(s.now())
	reg.AttendanceMarked = true
	reg.AttendanceTime = &at
	s.metrics.AttendanceMark("marked")

	writeJSON(w, http.StatusOK, model.MarkResult{Message: "Attendance marked successfully", StudentName: reg.StudentName})
}

func (s *Server) handleIssueCertificate(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req issueCertificateRequest
	if err := decodeJSON(r, &req); err != nil || req.RegistrationID == "" {
		writeInvalid(w, "registration_id is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.registrations[req.RegistrationID]
	if !ok {
		writeError(w, http.StatusNotFound, "Registration not found")
		return
	}
	event, ok := s.events[reg.EventID]
	if !ok || event.OrganizerID != claims.UserID {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}
	if !reg.AttendanceMarked {
		writeError(w, http.StatusBadRequest, "Cannot issue certificate - attendance not marked")
		return
	}
	if existing, ok := s.certificates[reg.ID]; ok {
		writeJSON(w, http.StatusOK, *existing)
		return
	}

	now := s.now()
	body := fmt.Sprintf("Certificate of Participation\n%s\n%s\n%s", reg.StudentName, event.Title, event.Date.Format("January 02, 2006"))
	cert := &model.Certificate{
		ID:              uuid.NewString(),
		RegistrationID:  reg.ID,
		StudentID:       reg.StudentID,
		StudentName:     reg.StudentName,
		EventID:         reg.EventID,
		EventTitle:      reg.EventTitle,
		IssuedDate:      model.NewTime(now),
		CertificateData: base64.StdEncoding.EncodeToString([]byte(body)),
	}
	s.certificates[reg.ID] = cert
	reg.CertificateIssued = true

	writeJSON(w, http.StatusOK, *cert)
}

func (s *Server) handleMyCertificates(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	s.mu.Lock()
	certs := make([]model.Certificate, 0)
	for _, cert := range s.certificates {
		if cert.StudentID == claims.UserID {
			certs = append(certs, *cert)
		}
	}
	s.mu.Unlock()
	sort.Slice(certs, func(i, j int) bool { return certs[i].IssuedDate.After(certs[j].IssuedDate.Time) })
	writeJSON(w, http.StatusOK, certs)
}
