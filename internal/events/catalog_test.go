package events

import (
	"context"
	"testing"
	"time"

	"github.com/vishnukanth5457/joinup/internal/apierr"
	"github.com/vishnukanth5457/joinup/internal/attendance"
	"github.com/vishnukanth5457/joinup/internal/logging"
	"github.com/vishnukanth5457/joinup/internal/model"
	"github.com/vishnukanth5457/joinup/internal/registration"
	"github.com/vishnukanth5457/joinup/internal/testenv"
)

func TestListSearchAndGet(t *testing.T) {
	env := testenv.New(t)
	org := env.AddOrganizer(t, "org@b.com", "Robo Club")
	env.AddStudent(t, "a@b.com", "Asha")
	race := env.AddEvent(org, "Robo Race", 72*time.Hour, 0)
	env.AddEvent(org, "Poetry Slam", 24*time.Hour, 0)
	env.Login(t, "a@b.com")

	catalog := NewCatalog(env.Gateway, env.Sessions, logging.Discard())
	ctx := context.Background()

	all, err := catalog.List(ctx, "")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(all) != 2 || all[0].Title != "Poetry Slam" {
		t.Fatalf("expected both events ordered by date, got %+v", all)
	}

	found, err := catalog.List(ctx, "  robo ")
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(found) != 1 || found[0].ID != race.ID {
		t.Fatalf("expected search to find Robo Race, got %+v", found)
	}

	event, err := catalog.Get(ctx, race.ID)
	if err != nil || event.Title != "Robo Race" {
		t.Fatalf("expected event detail, got %+v err=%v", event, err)
	}
	if _, err := catalog.Get(ctx, "missing"); apierr.StatusOf(err) != 404 {
		t.Fatalf("expected 404 for missing event, got %v", err)
	}
}

func TestOrganizerCreateAndMine(t *testing.T) {
	env := testenv.New(t)
	env.AddOrganizer(t, "org@b.com", "Robo Club")
	env.Login(t, "org@b.com")

	catalog := NewCatalog(env.Gateway, env.Sessions, logging.Discard())
	ctx := context.Background()

	limit := 30
	created, err := catalog.Create(ctx, model.EventInput{
		Title:           "Drone Expo",
		Description:     "Fly things",
		Date:            model.NewTime(time.Now().Add(96 * time.Hour)),
		Venue:           "Field",
		Fee:             50,
		College:         "MIT",
		Category:        "Tech",
		MaxParticipants: &limit,
	})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if created.OrganizerName != "Robo Club" || created.Category != "Tech" {
		t.Fatalf("unexpected event %+v", created)
	}
	mine, err := catalog.Mine(ctx)
	if err != nil || len(mine) != 1 || mine[0].ID != created.ID {
		t.Fatalf("expected created event in my events, got %+v err=%v", mine, err)
	}
}

func TestStudentCannotCreate(t *testing.T) {
	env := testenv.New(t)
	env.AddStudent(t, "a@b.com", "Asha")
	env.Login(t, "a@b.com")

	_, err := NewCatalog(env.Gateway, env.Sessions, logging.Discard()).Create(context.Background(), model.EventInput{Title: "x"})
	if !apierr.IsAuth(err) {
		t.Fatalf("expected auth error for student, got %v", err)
	}
}

func TestRateAfterAttendance(t *testing.T) {
	env := testenv.New(t)
	org := env.AddOrganizer(t, "org@b.com", "Robo Club")
	env.AddStudent(t, "a@b.com", "Asha")
	event := env.AddEvent(org, "Robo Race", 48*time.Hour, 0)
	ctx := context.Background()
	logger := logging.Discard()
	catalog := NewCatalog(env.Gateway, env.Sessions, logger)

	env.Login(t, "a@b.com")
	reg, err := registration.NewManager(env.Gateway, env.Sessions, logger).Register(ctx, event.ID)
	if err != nil {
		t.Fatalf("register error: %v", err)
	}
	if _, err := catalog.Rate(ctx, model.RatingInput{EventID: event.ID, Rating: 5}); !apierr.IsValidation(err) {
		t.Fatalf("expected rating before attendance to be rejected, got %v", err)
	}

	env.Login(t, "org@b.com")
	if _, err := attendance.NewMarker(env.Gateway, env.Sessions, logger).Mark(ctx, reg.QRCodeData); err != nil {
		t.Fatalf("mark error: %v", err)
	}

	env.Login(t, "a@b.com")
	rating, err := catalog.Rate(ctx, model.RatingInput{EventID: event.ID, Rating: 4, Feedback: "fun"})
	if err != nil {
		t.Fatalf("rate error: %v", err)
	}
	if rating.StudentName != "Asha" || rating.Rating != 4 {
		t.Fatalf("unexpected rating %+v", rating)
	}
	ratings, err := catalog.Ratings(ctx, event.ID)
	if err != nil || len(ratings) != 1 {
		t.Fatalf("expected one rating, got %+v err=%v", ratings, err)
	}
	updated, err := catalog.Get(ctx, event.ID)
	if err != nil || updated.AverageRating != 4 || updated.TotalRatings != 1 {
		t.Fatalf("expected event rating to update, got %+v err=%v", updated, err)
	}

	recommended, err := catalog.Recommended(ctx)
	if err != nil {
		t.Fatalf("recommendations error: %v", err)
	}
	for _, e := range recommended {
		if e.ID == event.ID {
			t.Fatalf("expected joined event to be excluded from recommendations")
		}
	}
}
