package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vishnukanth5457/joinup/internal/apierr"
	"github.com/vishnukanth5457/joinup/internal/model"
)

var (
	primary  = lipgloss.Color("#7D56F4")
	accent   = lipgloss.Color("#00E5FF")
	success  = lipgloss.Color("#00C853")
	warning  = lipgloss.Color("#FFD600")
	errorCol = lipgloss.Color("#FF1744")
	muted    = lipgloss.Color("#565F89")

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primary).
			Bold(true).
			Padding(0, 1)

	KeyStyle = lipgloss.NewStyle().
			Foreground(muted).
			Width(24)

	ValueStyle = lipgloss.NewStyle().Bold(true)

	TitleStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)

	SuccessStyle = lipgloss.NewStyle().Foreground(success)

	WarningStyle = lipgloss.NewStyle().Foreground(warning).Italic(true)

	ErrorStyle = lipgloss.NewStyle().Foreground(errorCol).Bold(true)

	MutedStyle = lipgloss.NewStyle().Foreground(muted)
)

func Header(w io.Writer, title string) {
	fmt.Fprintln(w, HeaderStyle.Render(title))
}

func Field(w io.Writer, key string, value interface{}) {
	fmt.Fprintln(w, KeyStyle.Render(key)+ValueStyle.Render(fmt.Sprint(value)))
}

func Success(w io.Writer, msg string) {
	fmt.Fprintln(w, SuccessStyle.Render("✓ "+msg))
}

func Stale(w io.Writer, msg string) {
	fmt.Fprintln(w, WarningStyle.Render(msg))
}

// Error prints err with a prefix naming its kind.
func Error(w io.Writer, err error) {
	label := "error"
	switch apierr.KindOf(err) {
	case apierr.KindNetwork:
		label = "network"
	case apierr.KindAuth:
		label = "auth"
	case apierr.KindValidation:
		label = "invalid"
	case apierr.KindConflict:
		label = "conflict"
	case apierr.KindServer:
		label = "server"
	}
	fmt.Fprintln(w, ErrorStyle.Render(label+": ")+err.Error())
}

func User(w io.Writer, user model.User) {
	Field(w, "Name", user.Name)
	Field(w, "Email", user.Email)
	Field(w, "Role", user.Role)
	Field(w, "College", user.College)
	if user.Department != "" {
		Field(w, "Department", user.Department)
	}
	if user.Year != nil {
		Field(w, "Year", *user.Year)
	}
	if user.OrganizationName != "" {
		Field(w, "Organization", user.OrganizationName)
	}
}

func Events(w io.Writer, events []model.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, MutedStyle.Render("no events"))
		return
	}
	for _, e := range events {
		capacity := fmt.Sprintf("%d", e.CurrentRegistrations)
		if e.MaxParticipants != nil {
			capacity = fmt.Sprintf("%d/%d", e.CurrentRegistrations, *e.MaxParticipants)
		}
		fmt.Fprintf(w, "%s  %s\n", TitleStyle.Render(e.Title), MutedStyle.Render(e.ID))
		fmt.Fprintf(w, "  %s · %s · %s · fee %.2f · %s registered\n",
			e.Date.Format("2006-01-02 15:04"), e.Venue, e.Category, e.Fee, capacity)
	}
}

func Registrations(w io.Writer, regs []model.Registration) {
	if len(regs) == 0 {
		fmt.Fprintln(w, MutedStyle.Render("no registrations"))
		return
	}
	for _, r := range regs {
		status := []string{}
		if r.AttendanceMarked {
			status = append(status, "attended")
		}
		if r.CertificateIssued {
			status = append(status, "certificate")
		}
		if len(status) == 0 {
			status = append(status, "registered")
		}
		fmt.Fprintf(w, "%s  %s\n", TitleStyle.Render(r.EventTitle), MutedStyle.Render(strings.Join(status, ", ")))
		fmt.Fprintf(w, "  id %s · student %s · qr %s\n", r.ID, r.StudentName, r.QRCodeData)
	}
}

func Certificates(w io.Writer, certs []model.Certificate) {
	if len(certs) == 0 {
		fmt.Fprintln(w, MutedStyle.Render("no certificates"))
		return
	}
	for _, c := range certs {
		fmt.Fprintf(w, "%s  %s\n", TitleStyle.Render(c.EventTitle), MutedStyle.Render(c.IssuedDate.Format("2006-01-02")))
	}
}

func Ratings(w io.Writer, ratings []model.Rating) {
	if len(ratings) == 0 {
		fmt.Fprintln(w, MutedStyle.Render("no ratings"))
		return
	}
	for _, r := range ratings {
		fmt.Fprintf(w, "%s %s %s\n", TitleStyle.Render(strings.Repeat("★", r.Rating)), r.StudentName, MutedStyle.Render(r.Feedback))
	}
}

func Users(w io.Writer, users []model.User) {
	for _, u := range users {
		fmt.Fprintf(w, "%s  %s  %s\n", TitleStyle.Render(u.Name), u.Email, MutedStyle.Render(string(u.Role)))
	}
}

func StudentSummary(w io.Writer, s model.StudentSummary) {
	Field(w, "Registered", s.TotalEventsRegistered)
	Field(w, "Attended", s.AttendedEvents)
	Field(w, "Certificates", s.CertificatesEarned)
	Field(w, "Upcoming", s.UpcomingEvents)
}

func OrganizerSummary(w io.Writer, s model.OrganizerSummary) {
	Field(w, "Events", s.TotalEvents)
	Field(w, "Registrations", s.TotalRegistrations)
	Field(w, "Attendees", s.TotalAttendees)
	Field(w, "Upcoming", s.UpcomingEvents)
	Field(w, "Past", s.PastEvents)
	Field(w, "Average rating", fmt.Sprintf("%.2f", s.AverageRating))
	for _, e := range s.TopEvents {
		fmt.Fprintf(w, "  %s  %d registrations  %.1f★\n", TitleStyle.Render(e.Title), e.Registrations, e.Rating)
	}
}
