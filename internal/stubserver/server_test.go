package stubserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vishnukanth5457/joinup/internal/config"
	"github.com/vishnukanth5457/joinup/internal/logging"
	"github.com/vishnukanth5457/joinup/internal/model"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Config{JWTSecret: "test-secret", JWTIssuer: "test-issuer", AccessTokenTTL: 15 * time.Minute}
	server := NewServer(cfg, logging.Discard())
	app := httptest.NewServer(server.Router())
	t.Cleanup(app.Close)
	return server, app
}

func doReq(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode error: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode error: %v", err)
	}
}

func detail(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	decode(t, resp, &body)
	return body.Detail
}

func signUp(t *testing.T, url string, req model.RegisterRequest) model.AuthResponse {
	t.Helper()
	resp := doReq(t, http.MethodPost, url+"/api/auth/register", "", req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on register, got %d", resp.StatusCode)
	}
	var out model.AuthResponse
	decode(t, resp, &out)
	return out
}

func studentReq(email string) model.RegisterRequest {
	return model.RegisterRequest{Email: email, Password: "secret1", Name: "Asha", College: "MIT", Role: model.RoleStudent}
}

func organizerReq(email string) model.RegisterRequest {
	return model.RegisterRequest{Email: email, Password: "secret1", Name: "Robo Club", College: "MIT", Role: model.RoleOrganizer, OrganizationName: "Robotics"}
}

func TestAuthFlow(t *testing.T) {
	server, app := newTestServer(t)

	auth := signUp(t, app.URL, studentReq("a@b.com"))
	if auth.AccessToken == "" || auth.TokenType != "bearer" || auth.User.Email != "a@b.com" {
		t.Fatalf("unexpected auth response %+v", auth)
	}

	resp := doReq(t, http.MethodPost, app.URL+"/api/auth/register", "", studentReq("a@b.com"))
	if resp.StatusCode != http.StatusBadRequest || detail(t, resp) != "Email already registered" {
		t.Fatalf("expected duplicate email to be rejected")
	}

	resp = doReq(t, http.MethodPost, app.URL+"/api/auth/login", "", model.LoginRequest{Email: "a@b.com", Password: "nope"})
	if resp.StatusCode != http.StatusUnauthorized || detail(t, resp) != "Invalid credentials" {
		t.Fatalf("expected 401 Invalid credentials")
	}

	resp = doReq(t, http.MethodPost, app.URL+"/api/auth/login", "", model.LoginRequest{Email: "A@B.com", Password: "secret1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected login to succeed, got %d", resp.StatusCode)
	}

	if _, err := server.AddUser(model.User{Email: "pending@b.com", Name: "P", Role: model.RoleOrganizer, College: "MIT"}, "secret1"); err != nil {
		t.Fatalf("seed error: %v", err)
	}
	resp = doReq(t, http.MethodPost, app.URL+"/api/auth/login", "", model.LoginRequest{Email: "pending@b.com", Password: "secret1"})
	if resp.StatusCode != http.StatusForbidden || detail(t, resp) != "Account not approved yet" {
		t.Fatalf("expected unapproved account to get 403")
	}

	resp = doReq(t, http.MethodGet, app.URL+"/api/auth/me", auth.AccessToken, nil)
	var me model.User
	decode(t, resp, &me)
	if me.ID != auth.User.ID {
		t.Fatalf("expected /me to return the signed-in user")
	}

	resp = doReq(t, http.MethodGet, app.URL+"/api/auth/me", "garbage", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", resp.StatusCode)
	}
	resp = doReq(t, http.MethodGet, app.URL+"/api/auth/me", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestRegistrationAttendanceCertificateFlow(t *testing.T) {
	_, app := newTestServer(t)
	org := signUp(t, app.URL, organizerReq("org@b.com"))
	student := signUp(t, app.URL, studentReq("s@b.com"))
	other := signUp(t, app.URL, studentReq("s2@b.com"))

	limit := 1
	resp := doReq(t, http.MethodPost, app.URL+"/api/events", org.AccessToken, model.EventInput{
		Title: "Robo Race", Description: "Build and race", Date: model.NewTime(time.Now().Add(48 * time.Hour)),
		Venue: "Hall A", College: "MIT", MaxParticipants: &limit,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected event creation to succeed, got %d", resp.StatusCode)
	}
	var event model.Event
	decode(t, resp, &event)
	if event.Category != "General" || event.OrganizerName != "Robo Club" {
		t.Fatalf("unexpected event defaults %+v", event)
	}

	resp = doReq(t, http.MethodPost, app.URL+"/api/events", student.AccessToken, model.EventInput{Title: "x"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected students to be barred from creating events, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodPost, app.URL+"/api/registrations", student.AccessToken, map[string]string{"event_id": event.ID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected registration to succeed, got %d", resp.StatusCode)
	}
	var reg model.Registration
	decode(t, resp, &reg)
	if !strings.HasPrefix(reg.QRCodeData, "joinup-") || reg.AttendanceMarked || reg.PaymentStatus != model.PaymentPaid {
		t.Fatalf("unexpected registration %+v", reg)
	}

	resp = doReq(t, http.MethodPost, app.URL+"/api/registrations", student.AccessToken, map[string]string{"event_id": event.ID})
	if resp.StatusCode != http.StatusBadRequest || detail(t, resp) != "Already registered for this event" {
		t.Fatalf("expected duplicate registration to be rejected")
	}
	resp = doReq(t, http.MethodPost, app.URL+"/api/registrations", other.AccessToken, map[string]string{"event_id": event.ID})
	if resp.StatusCode != http.StatusBadRequest || detail(t, resp) != "Event is full" {
		t.Fatalf("expected full event to be rejected")
	}

	resp = doReq(t, http.MethodPost, app.URL+"/api/certificates/issue", org.AccessToken, map[string]string{"registration_id": reg.ID})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected certificate before attendance to fail, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodPost, app.URL+"/api/attendance/mark", org.AccessToken, map[string]string{"qr_code_data": reg.QRCodeData})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected mark to succeed, got %d", resp.StatusCode)
	}
	var mark model.MarkResult
	decode(t, resp, &mark)
	if mark.StudentName != "Asha" {
		t.Fatalf("expected student name, got %+v", mark)
	}
	resp = doReq(t, http.MethodPost, app.URL+"/api/attendance/mark", org.AccessToken, map[string]string{"qr_code_data": reg.QRCodeData})
	if resp.StatusCode != http.StatusBadRequest || detail(t, resp) != "Attendance already marked" {
		t.Fatalf("expected second mark to be rejected")
	}
	resp = doReq(t, http.MethodPost, app.URL+"/api/attendance/mark", org.AccessToken, map[string]string{"qr_code_data": "joinup-unknown"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected unknown QR to be 404, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodPost, app.URL+"/api/certificates/issue", org.AccessToken, map[string]string{"registration_id": reg.ID})
	var first model.Certificate
	decode(t, resp, &first)
	resp = doReq(t, http.MethodPost, app.URL+"/api/certificates/issue", org.AccessToken, map[string]string{"registration_id": reg.ID})
	var second model.Certificate
	decode(t, resp, &second)
	if first.ID == "" || first.ID != second.ID {
		t.Fatalf("expected reissue to return the existing certificate")
	}

	resp = doReq(t, http.MethodGet, app.URL+"/api/registrations/my-registrations", student.AccessToken, nil)
	var regs []model.Registration
	decode(t, resp, &regs)
	if len(regs) != 1 || !regs[0].AttendanceMarked || !regs[0].CertificateIssued || regs[0].AttendanceTime == nil {
		t.Fatalf("expected refreshed registration state, got %+v", regs)
	}

	resp = doReq(t, http.MethodDelete, app.URL+"/api/registrations/"+reg.ID, student.AccessToken, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected cancel after attendance to fail, got %d", resp.StatusCode)
	}
}

func TestDashboards(t *testing.T) {
	server, app := newTestServer(t)
	org := signUp(t, app.URL, organizerReq("org@b.com"))
	student := signUp(t, app.URL, studentReq("s@b.com"))

	future := server.AddEvent(org.User.ID, model.EventInput{Title: "Future", Description: "d", Venue: "v", College: "MIT", Date: model.NewTime(time.Now().Add(24 * time.Hour))})
	server.AddEvent(org.User.ID, model.EventInput{Title: "Past", Description: "d", Venue: "v", College: "MIT", Date: model.NewTime(time.Now().Add(-24 * time.Hour))})

	doReq(t, http.MethodPost, app.URL+"/api/registrations", student.AccessToken, map[string]string{"event_id": future.ID})

	resp := doReq(t, http.MethodGet, app.URL+"/api/dashboard/student", student.AccessToken, nil)
	var studentSummary model.StudentSummary
	decode(t, resp, &studentSummary)
	if studentSummary.TotalEventsRegistered != 1 || studentSummary.UpcomingEvents != 1 || studentSummary.AttendedEvents != 0 {
		t.Fatalf("unexpected student summary %+v", studentSummary)
	}

	resp = doReq(t, http.MethodGet, app.URL+"/api/dashboard/organizer", org.AccessToken, nil)
	var orgSummary model.OrganizerSummary
	decode(t, resp, &orgSummary)
	if orgSummary.TotalEvents != 2 || orgSummary.UpcomingEvents != 1 || orgSummary.PastEvents != 1 || orgSummary.TotalRegistrations != 1 {
		t.Fatalf("unexpected organizer summary %+v", orgSummary)
	}
	if len(orgSummary.TopEvents) != 2 || orgSummary.TopEvents[0].ID != future.ID {
		t.Fatalf("expected most registered event first, got %+v", orgSummary.TopEvents)
	}

	resp = doReq(t, http.MethodGet, app.URL+"/api/dashboard/organizer", student.AccessToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected students to be barred from organizer dashboard, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, app := newTestServer(t)
	org := signUp(t, app.URL, organizerReq("org@b.com"))
	doReq(t, http.MethodPost, app.URL+"/api/attendance/mark", org.AccessToken, map[string]string{"qr_code_data": "nope"})

	resp := doReq(t, http.MethodGet, app.URL+"/metrics", "", nil)
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if !strings.Contains(string(body), `joinup_attendance_marks_total{result="invalid"} 1`) {
		t.Fatalf("expected attendance metric in output:\n%s", body)
	}
}
