package model

type Role string

const (
	RoleStudent   Role = "student"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

type User struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Role             Role   `json:"role"`
	College          string `json:"college"`
	Department       string `json:"department,omitempty"`
	Year             *int   `json:"year,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
	IsApproved       bool   `json:"is_approved"`
	CreatedAt        Time   `json:"created_at"`
}

type Event struct {
	ID                   string  `json:"id"`
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	Date                 Time    `json:"date"`
	Venue                string  `json:"venue"`
	Fee                  float64 `json:"fee"`
	College              string  `json:"college"`
	Category             string  `json:"category"`
	MaxParticipants      *int    `json:"max_participants,omitempty"`
	OrganizerID          string  `json:"organizer_id"`
	OrganizerName        string  `json:"organizer_name"`
	CurrentRegistrations int     `json:"current_registrations"`
	AverageRating        float64 `json:"average_rating"`
	TotalRatings         int     `json:"total_ratings"`
	CreatedAt            Time    `json:"created_at"`
}

// Full reports whether the event has reached its participant cap.
func (e Event) Full() bool {
	return e.MaxParticipants != nil && *e.MaxParticipants > 0 && e.CurrentRegistrations >= *e.MaxParticipants
}

type Registration struct {
	ID                string        `json:"id"`
	StudentID         string        `json:"student_id"`
	StudentName       string        `json:"student_name"`
	EventID           string        `json:"event_id"`
	EventTitle        string        `json:"event_title"`
	PaymentStatus     PaymentStatus `json:"payment_status"`
	QRCodeData        string        `json:"qr_code_data"`
	AttendanceMarked  bool          `json:"attendance_marked"`
	AttendanceTime    *Time         `json:"attendance_time"`
	CertificateIssued bool          `json:"certificate_issued"`
	CreatedAt         Time          `json:"created_at"`
}

type Certificate struct {
	ID              string `json:"id"`
	RegistrationID  string `json:"registration_id"`
	StudentID       string `json:"student_id"`
	StudentName     string `json:"student_name"`
	EventID         string `json:"event_id"`
	EventTitle      string `json:"event_title"`
	IssuedDate      Time   `json:"issued_date"`
	CertificateData string `json:"certificate_data"`
}

type Rating struct {
	ID          string `json:"id"`
	EventID     string `json:"event_id"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Rating      int    `json:"rating"`
	Feedback    string `json:"feedback,omitempty"`
	CreatedAt   Time   `json:"created_at"`
}

type StudentSummary struct {
	TotalEventsRegistered int `json:"total_events_registered"`
	AttendedEvents        int `json:"attended_events"`
	CertificatesEarned    int `json:"certificates_earned"`
	UpcomingEvents        int `json:"upcoming_events"`
}

type TopEvent struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Registrations int     `json:"registrations"`
	Rating        float64 `json:"rating"`
}

type OrganizerSummary struct {
	TotalEvents        int        `json:"total_events"`
	TotalRegistrations int        `json:"total_registrations"`
	TotalAttendees     int        `json:"total_attendees"`
	UpcomingEvents     int        `json:"upcoming_events"`
	PastEvents         int        `json:"past_events"`
	AverageRating      float64    `json:"average_rating"`
	TopEvents          []TopEvent `json:"top_events"`
}

// AuthResponse is returned by both login and register.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

type MarkResult struct {
	Message     string `json:"message"`
	StudentName string `json:"student_name"`
}
