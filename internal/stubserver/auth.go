package stubserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/vishnukanth5457/joinup/internal/model"
)

var errEmailTaken = errors.New("email already registered")

// AddUser seeds an account directly. Tests use it for admins and for
// accounts awaiting approval.
func (s *Server) AddUser(user model.User, password string) (model.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return model.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertUserLocked(user, hash)
}

func (s *Server) insertUserLocked(user model.User, hash string) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(user.Email))
	if _, exists := s.emails[email]; exists {
		return model.User{}, errEmailTaken
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = email
	if user.CreatedAt.IsZero() {
		user.CreatedAt = model.NewTime(s.now())
	}
	s.users[user.ID] = &userRecord{user: user, passwordHash: hash}
	s.emails[email] = user.ID
	return user, nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeInvalid(w, err.Error())
		return
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.mu.Lock()
	user, err := s.insertUserLocked(model.User{
		Email:            req.Email,
		Name:             req.Name,
		Role:             req.Role,
		College:          req.College,
		Department:       req.Department,
		Year:             req.Year,
		OrganizationName: req.OrganizationName,
		IsApproved:       true,
	}, hash)
	s.mu.Unlock()
	if errors.Is(err, errEmailTaken) {
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp, err := s.issueToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.log.WithField("user_id", user.ID).Debug("user registered")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, "invalid request body")
		return
	}

	s.mu.Lock()
	var record userRecord
	id, ok := s.emails[strings.ToLower(strings.TrimSpace(req.Email))]
	if ok {
		record = *s.users[id]
	}
	s.mu.Unlock()

	if !ok || CheckPassword(record.passwordHash, req.Password) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !record.user.IsApproved {
		writeError(w, http.StatusForbidden, "Account not approved yet")
		return
	}
	resp, err := s.issueToken(record.user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	s.mu.Lock()
	record, ok := s.users[claims.UserID]
	var user model.User
	if ok {
		user = record.user
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) userLocked(id string) model.User {
	if record, ok := s.users[id]; ok {
		return record.user
	}
	return model.User{}
}
