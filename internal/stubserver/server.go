package stubserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/vishnukanth5457/joinup/internal/config"
	"github.com/vishnukanth5457/joinup/internal/metrics"
	"github.com/vishnukanth5457/joinup/internal/model"
)

type userRecord struct {
	user         model.User
	passwordHash string
}

// Server is an in-memory event service. Every mutation holds mu, so
// attendance marking and registration are linearizable.
type Server struct {
	cfg      config.Config
	log      logrus.FieldLogger
	registry *prometheus.Registry
	metrics  *metrics.Server
	now      func() time.Time

	mu            sync.Mutex
	users         map[string]*userRecord
	emails        map[string]string
	events        map[string]*model.Event
	registrations map[string]*model.Registration
	qrCodes       map[string]string
	certificates  map[string]*model.Certificate
	ratings       []model.Rating
}

func NewServer(cfg config.Config, logger logrus.FieldLogger) *Server {
	registry := prometheus.NewRegistry()
	return &Server{
		cfg:           cfg,
		log:           logger.WithField("component", "stubserver"),
		registry:      registry,
		metrics:       metrics.NewServer(registry),
		now:           func() time.Time { return time.Now().UTC() },
		users:         make(map[string]*userRecord),
		emails:        make(map[string]string),
		events:        make(map[string]*model.Event),
		registrations: make(map[string]*model.Registration),
		qrCodes:       make(map[string]string),
		certificates:  make(map[string]*model.Certificate),
	}
}

// SetClock replaces the time source used for timestamps and upcoming/past splits.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	student := s.requireRole(model.RoleStudent)
	organizer := s.requireRole(model.RoleOrganizer)
	admin := s.requireRole(model.RoleAdmin)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)

			r.Get("/events", s.handleListEvents)
			r.With(organizer).Post("/events", s.handleCreateEvent)
			r.With(organizer).Get("/events/organizer/my-events", s.handleMyEvents)
			r.Get("/events/{eventId}", s.handleGetEvent)

			r.With(student).Post("/registrations", s.handleCreateRegistration)
			r.With(student).Get("/registrations/my-registrations", s.handleMyRegistrations)
			r.With(student).Delete("/registrations/{registrationId}", s.handleCancelRegistration)
			r.With(organizer).Get("/registrations/event/{eventId}", s.handleEventRegistrations)

			r.With(organizer).Post("/attendance/mark", s.handleMarkAttendance)

			r.With(organizer).Post("/certificates/issue", s.handleIssueCertificate)
			r.With(student).Get("/certificates/my-certificates", s.handleMyCertificates)

			r.With(student).Post("/ratings", s.handleCreateRating)
			r.Get("/ratings/event/{eventId}", s.handleEventRatings)

			r.With(student).Get("/dashboard/student", s.handleStudentDashboard)
			r.With(organizer).Get("/dashboard/organizer", s.handleOrganizerDashboard)
			r.With(student).Get("/recommendations", s.handleRecommendations)

			r.With(admin).Get("/admin/users", s.handleAdminUsers)
			r.With(admin).Get("/admin/events", s.handleAdminEvents)
		})
	})

	return r
}

// Auth

type claimsKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		claims, err := ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		s.mu.Lock()
		_, exists := s.users[claims.UserID]
		s.mu.Unlock()
		if !exists {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey{}).(*Claims)
	return claims
}

func (s *Server) requireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromContext(r.Context())
			if claims == nil {
				writeError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			if model.Role(claims.Role) != role {
				writeError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) issueToken(user model.User) (model.AuthResponse, error) {
	token, err := NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, Claims{
		UserID: user.ID,
		Role:   string(user.Role),
	})
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{AccessToken: token, TokenType: "bearer", User: user}, nil
}

// Helpers

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeInvalid mirrors the request-validation body shape: a list of messages.
func writeInvalid(w http.ResponseWriter, msgs ...string) {
	items := make([]map[string]string, 0, len(msgs))
	for _, msg := range msgs {
		items = append(items, map[string]string{"msg": msg})
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"detail": items})
}
