package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/vishnukanth5457/joinup/internal/apierr"
	"github.com/vishnukanth5457/joinup/internal/model"
)

func TestErrorLabelsKind(t *testing.T) {
	cases := map[string]error{
		"conflict": apierr.Conflict("already registered for this event"),
		"network":  apierr.Network(errors.New("dial")),
		"error":    errors.New("plain"),
	}
	for label, err := range cases {
		var buf bytes.Buffer
		Error(&buf, err)
		if !strings.Contains(buf.String(), label+": ") {
			t.Fatalf("expected %q label in %q", label, buf.String())
		}
	}
}

func TestRegistrationsShowsStatus(t *testing.T) {
	var buf bytes.Buffer
	Registrations(&buf, []model.Registration{{ID: "r1", EventTitle: "Robo Race", AttendanceMarked: true, QRCodeData: "joinup-r1"}})
	out := buf.String()
	if !strings.Contains(out, "attended") || !strings.Contains(out, "joinup-r1") {
		t.Fatalf("unexpected output %q", out)
	}
}
