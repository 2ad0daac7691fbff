package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/vishnukanth5457/joinup/internal/model"
)

// Auth

func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	var out model.AuthResponse
	err := c.do(ctx, request{endpoint: "auth.login", method: http.MethodPost, path: "/api/auth/login", body: req}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	var out model.AuthResponse
	err := c.do(ctx, request{endpoint: "auth.register", method: http.MethodPost, path: "/api/auth/register", body: req}, &out)
	return out, err
}

func (c *Client) Me(ctx context.Context, token string) (model.User, error) {
	var out model.User
	err := c.do(ctx, request{endpoint: "auth.me", method: http.MethodGet, path: "/api/auth/me", token: token}, &out)
	return out, err
}

// Events

func (c *Client) ListEvents(ctx context.Context, token, search string) ([]model.Event, error) {
	path := "/api/events"
	if search != "" {
		path += "?" + url.Values{"search": {search}}.Encode()
	}
	var out []model.Event
	err := c.do(ctx, request{endpoint: "events.list", method: http.MethodGet, path: path, token: token}, &out)
	return out, err
}

func (c *Client) GetEvent(ctx context.Context, token, eventID string) (model.Event, error) {
	var out model.Event
	err := c.do(ctx, request{endpoint: "events.get", method: http.MethodGet, path: "/api/events/" + url.PathEscape(eventID), token: token}, &out)
	return out, err
}

func (c *Client) MyEvents(ctx context.Context, token string) ([]model.Event, error) {
	var out []model.Event
	err := c.do(ctx, request{endpoint: "events.mine", method: http.MethodGet, path: "/api/events/organizer/my-events", token: token}, &out)
	return out, err
}

func (c *Client) CreateEvent(ctx context.Context, token string, in model.EventInput) (model.Event, error) {
	var out model.Event
	err := c.do(ctx, request{endpoint: "events.create", method: http.MethodPost, path: "/api/events", token: token, body: in}, &out)
	return out, err
}

// Registrations

func (c *Client) CreateRegistration(ctx context.Context, token, eventID string) (model.Registration, error) {
	var out model.Registration
	body := map[string]string{"event_id": eventID}
	err := c.do(ctx, request{endpoint: "registrations.create", method: http.MethodPost, path: "/api/registrations", token: token, body: body}, &out)
	return out, err
}

func (c *Client) MyRegistrations(ctx context.Context, token string) ([]model.Registration, error) {
	var out []model.Registration
	err := c.do(ctx, request{endpoint: "registrations.mine", method: http.MethodGet, path: "/api/registrations/my-registrations", token: token}, &out)
	return out, err
}

func (c *Client) CancelRegistration(ctx context.Context, token, registrationID string) error {
	return c.do(ctx, request{endpoint: "registrations.cancel", method: http.MethodDelete, path: "/api/registrations/" + url.PathEscape(registrationID), token: token}, nil)
}

func (c *Client) EventRegistrations(ctx context.Context, token, eventID string) ([]model.Registration, error) {
	var out []model.Registration
	err := c.do(ctx, request{endpoint: "registrations.event", method: http.MethodGet, path: "/api/registrations/event/" + url.PathEscape(eventID), token: token}, &out)
	return out, err
}

// Attendance and certificates

func (c *Client) MarkAttendance(ctx context.Context, token, qrCodeData string) (model.MarkResult, error) {
	var out model.MarkResult
	body := map[string]string{"qr_code_data": qrCodeData}
	err := c.do(ctx, request{endpoint: "attendance.mark", method: http.MethodPost, path: "/api/attendance/mark", token: token, body: body}, &out)
	return out, err
}

func (c *Client) IssueCertificate(ctx context.Context, token, registrationID string) (model.Certificate, error) {
	var out model.Certificate
	body := map[string]string{"registration_id": registrationID}
	err := c.do(ctx, request{endpoint: "certificates.issue", method: http.MethodPost, path: "/api/certificates/issue", token: token, body: body}, &out)
	return out, err
}

func (c *Client) MyCertificates(ctx context.Context, token string) ([]model.Certificate, error) {
	var out []model.Certificate
	err := c.do(ctx, request{endpoint: "certificates.mine", method: http.MethodGet, path: "/api/certificates/my-certificates", token: token}, &out)
	return out, err
}

// Ratings

func (c *Client) RateEvent(ctx context.Context, token string, in model.RatingInput) (model.Rating, error) {
	var out model.Rating
	err := c.do(ctx, request{endpoint: "ratings.create", method: http.MethodPost, path: "/api/ratings", token: token, body: in}, &out)
	return out, err
}

func (c *Client) EventRatings(ctx context.Context, token, eventID string) ([]model.Rating, error) {
	var out []model.Rating
	err := c.do(ctx, request{endpoint: "ratings.event", method: http.MethodGet, path: "/api/ratings/event/" + url.PathEscape(eventID), token: token}, &out)
	return out, err
}

// Dashboards

func (c *Client) StudentDashboard(ctx context.Context, token string) (model.StudentSummary, error) {
	var out model.StudentSummary
	err := c.do(ctx, request{endpoint: "dashboard.student", method: http.MethodGet, path: "/api/dashboard/student", token: token}, &out)
	return out, err
}

func (c *Client) OrganizerDashboard(ctx context.Context, token string) (model.OrganizerSummary, error) {
	var out model.OrganizerSummary
	err := c.do(ctx, request{endpoint: "dashboard.organizer", method: http.MethodGet, path: "/api/dashboard/organizer", token: token}, &out)
	return out, err
}

// Admin

func (c *Client) AdminUsers(ctx context.Context, token string) ([]model.User, error) {
	var out []model.User
	err := c.do(ctx, request{endpoint: "admin.users", method: http.MethodGet, path: "/api/admin/users", token: token}, &out)
	return out, err
}

func (c *Client) AdminEvents(ctx context.Context, token string) ([]model.Event, error) {
	var out []model.Event
	err := c.do(ctx, request{endpoint: "admin.events", method: http.MethodGet, path: "/api/admin/events", token: token}, &out)
	return out, err
}

func (c *Client) Recommendations(ctx context.Context, token string) ([]model.Event, error) {
	var out []model.Event
	err := c.do(ctx, request{endpoint: "events.recommended", method: http.MethodGet, path: "/api/recommendations", token: token}, &out)
	return out, err
}
