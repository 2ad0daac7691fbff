package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vishnukanth5457/joinup/internal/admin"
	"github.com/vishnukanth5457/joinup/internal/apierr"
	"github.com/vishnukanth5457/joinup/internal/attendance"
	"github.com/vishnukanth5457/joinup/internal/config"
	"github.com/vishnukanth5457/joinup/internal/dashboard"
	"github.com/vishnukanth5457/joinup/internal/events"
	"github.com/vishnukanth5457/joinup/internal/gateway"
	"github.com/vishnukanth5457/joinup/internal/logging"
	"github.com/vishnukanth5457/joinup/internal/metrics"
	"github.com/vishnukanth5457/joinup/internal/model"
	"github.com/vishnukanth5457/joinup/internal/registration"
	"github.com/vishnukanth5457/joinup/internal/session"
	"github.com/vishnukanth5457/joinup/internal/tokenstore"
	"github.com/vishnukanth5457/joinup/internal/ui"
)

var errUsage = errors.New("usage")

const commands = "login|register|logout|status|background|events|event|recommended|my-events|create-event|join|registrations|cancel|certificates|mark|roster|issue|rate|ratings|dashboard|users|all-events"

type options struct {
	cmd         string
	server      string
	email       string
	password    string
	name        string
	college     string
	role        string
	department  string
	year        int
	org         string
	id          string
	qr          string
	search      string
	title       string
	description string
	date        string
	venue       string
	fee         float64
	category    string
	max         int
	rating      int
	feedback    string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("joinup", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.cmd, "cmd", "status", "Command: "+commands)
	fs.StringVar(&opts.server, "server", "", "Override the API base URL")
	fs.StringVar(&opts.email, "email", "", "Account email")
	fs.StringVar(&opts.password, "password", "", "Account password (or JOINUP_PASSWORD)")
	fs.StringVar(&opts.name, "name", "", "Display name (register)")
	fs.StringVar(&opts.college, "college", "", "College (register, create-event)")
	fs.StringVar(&opts.role, "role", "student", "student|organizer|admin (register)")
	fs.StringVar(&opts.department, "department", "", "Department (student register)")
	fs.IntVar(&opts.year, "year", 0, "Year of study (student register)")
	fs.StringVar(&opts.org, "org", "", "Organization name (organizer register)")
	fs.StringVar(&opts.id, "id", "", "Event or registration id")
	fs.StringVar(&opts.qr, "qr", "", "Scanned QR payload (mark)")
	fs.StringVar(&opts.search, "search", "", "Search text (events)")
	fs.StringVar(&opts.title, "title", "", "Event title")
	fs.StringVar(&opts.description, "description", "", "Event description")
	fs.StringVar(&opts.date, "date", "", "Event date, RFC 3339 or 2006-01-02T15:04:05")
	fs.StringVar(&opts.venue, "venue", "", "Event venue")
	fs.Float64Var(&opts.fee, "fee", 0, "Event fee")
	fs.StringVar(&opts.category, "category", "", "Event category")
	fs.IntVar(&opts.max, "max", 0, "Maximum participants (0 for no limit)")
	fs.IntVar(&opts.rating, "rating", 0, "Rating 1-5")
	fs.StringVar(&opts.feedback, "feedback", "", "Rating feedback")
	if err := fs.Parse(args); err != nil {
		return opts, errUsage
	}
	if opts.password == "" {
		opts.password = os.Getenv("JOINUP_PASSWORD")
	}
	return opts, nil
}

type app struct {
	out          io.Writer
	sessions     *session.Manager
	registration *registration.Manager
	marker       *attendance.Marker
	catalog      *events.Catalog
	dashboard    *dashboard.Aggregator
	directory    *admin.Directory
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg := config.Load()
	if opts.server != "" {
		cfg.APIURL = opts.server
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.SetOutput(stderr)

	store, closeStore, err := tokenstore.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	client := gateway.New(cfg, logger, metrics.NewGateway(prometheus.NewRegistry()))
	sessions := session.NewManager(store, client, logger)

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	sessions.Start(loopCtx)
	if err := sessions.Restore(ctx); err != nil {
		return err
	}

	a := &app{
		out:          stdout,
		sessions:     sessions,
		registration: registration.NewManager(client, sessions, logger),
		marker:       attendance.NewMarker(client, sessions, logger),
		catalog:      events.NewCatalog(client, sessions, logger),
		dashboard:    dashboard.NewAggregator(client, sessions, logger),
		directory:    admin.NewDirectory(client, sessions),
	}
	return a.dispatch(ctx, opts)
}

func (a *app) dispatch(ctx context.Context, opts options) error {
	switch opts.cmd {
	case "login":
		return a.login(ctx, opts)
	case "register":
		return a.register(ctx, opts)
	case "logout":
		if err := a.sessions.Logout(ctx); err != nil {
			return err
		}
		ui.Success(a.out, "signed out")
		return nil
	case "background":
		if err := a.sessions.HandleLifecycle(ctx, session.AppBackground); err != nil {
			return err
		}
		ui.Success(a.out, "app backgrounded, session cleared")
		return nil
	case "status":
		a.status()
		return nil
	case "events":
		list, err := a.catalog.List(ctx, opts.search)
		if err != nil {
			return err
		}
		ui.Header(a.out, "Events")
		ui.Events(a.out, list)
		return nil
	case "event":
		if err := requireFlag("id", opts.id); err != nil {
			return err
		}
		event, err := a.catalog.Get(ctx, opts.id)
		if err != nil {
			return err
		}
		ui.Header(a.out, event.Title)
		ui.Field(a.out, "Organizer", event.OrganizerName)
		ui.Field(a.out, "Description", event.Description)
		ui.Events(a.out, []model.Event{event})
		return nil
	case "recommended":
		list, err := a.catalog.Recommended(ctx)
		if err != nil {
			return err
		}
		ui.Header(a.out, "Recommended for you")
		ui.Events(a.out, list)
		return nil
	case "my-events":
		list, err := a.catalog.Mine(ctx)
		if err != nil {
			return err
		}
		ui.Header(a.out, "My events")
		ui.Events(a.out, list)
		return nil
	case "create-event":
		return a.createEvent(ctx, opts)
	case "join":
		if err := requireFlag("id", opts.id); err != nil {
			return err
		}
		reg, err := a.registration.Register(ctx, opts.id)
		if err != nil {
			return err
		}
		ui.Success(a.out, "registered for "+reg.EventTitle)
		ui.Field(a.out, "Registration", reg.ID)
		ui.Field(a.out, "QR code", reg.QRCodeData)
		return nil
	case "registrations":
		regs, err := a.registration.ListMine(ctx)
		if err != nil {
			return err
		}
		ui.Header(a.out, "My registrations")
		ui.Registrations(a.out, regs)
		return nil
	case "cancel":
		if err := requireFlag("id", opts.id); err != nil {
			return err
		}
		if err := a.registration.Cancel(ctx, opts.id); err != nil {
			return err
		}
		ui.Success(a.out, "registration cancelled")
		return nil
	case "certificates":
		certs, err := a.registration.Certificates(ctx)
		if err != nil {
			return err
		}
		ui.Header(a.out, "My certificates")
		ui.Certificates(a.out, certs)
		return nil
	case "mark":
		if err := requireFlag("qr", opts.qr); err != nil {
			return err
		}
		name, err := a.marker.NewScanSession().Submit(ctx, opts.qr)
		if err != nil {
			return err
		}
		ui.Success(a.out, "attendance marked for "+name)
		return nil
	case "roster":
		if err := requireFlag("id", opts.id); err != nil {
			return err
		}
		regs, err := a.marker.Roster(ctx, opts.id)
		if err != nil {
			return err
		}
		ui.Header(a.out, "Attendees")
		ui.Registrations(a.out, regs)
		return nil
	case "issue":
		if err := requireFlag("id", opts.id); err != nil {
			return err
		}
		cert, err := a.marker.IssueCertificate(ctx, opts.id)
		if err != nil {
			return err
		}
		ui.Success(a.out, "certificate issued to "+cert.StudentName)
		return nil
	case "rate":
		in := model.RatingInput{EventID: opts.id, Rating: opts.rating, Feedback: opts.feedback}
		if err := in.Validate(); err != nil {
			return apierr.Validation(err.Error())
		}
		if _, err := a.catalog.Rate(ctx, in); err != nil {
			return err
		}
		ui.Success(a.out, "thanks for the feedback")
		return nil
	case "ratings":
		if err := requireFlag("id", opts.id); err != nil {
			return err
		}
		ratings, err := a.catalog.Ratings(ctx, opts.id)
		if err != nil {
			return err
		}
		ui.Header(a.out, "Ratings")
		ui.Ratings(a.out, ratings)
		return nil
	case "dashboard":
		return a.showDashboard(ctx)
	case "users":
		users, err := a.directory.Users(ctx)
		if err != nil {
			return err
		}
		ui.Header(a.out, "Users")
		ui.Users(a.out, users)
		return nil
	case "all-events":
		list, err := a.directory.Events(ctx)
		if err != nil {
			return err
		}
		ui.Header(a.out, "All events")
		ui.Events(a.out, list)
		return nil
	}
	return apierr.Validation(fmt.Sprintf("unknown command %q, expected one of %s", opts.cmd, commands))
}

func requireFlag(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return apierr.Validation("-" + name + " is required")
	}
	return nil
}

func (a *app) login(ctx context.Context, opts options) error {
	req := model.LoginRequest{Email: opts.email, Password: opts.password}
	if err := req.Validate(); err != nil {
		return apierr.Validation(err.Error())
	}
	user, err := a.sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	ui.Success(a.out, "signed in as "+user.Name)
	return nil
}

func (a *app) register(ctx context.Context, opts options) error {
	req := model.RegisterRequest{
		Email:            opts.email,
		Password:         opts.password,
		Name:             opts.name,
		College:          opts.college,
		Role:             model.Role(opts.role),
		Department:       opts.department,
		OrganizationName: opts.org,
	}
	if opts.year > 0 {
		year := opts.year
		req.Year = &year
	}
	if err := req.Validate(); err != nil {
		return apierr.Validation(err.Error())
	}
	user, err := a.sessions.Register(ctx, req)
	if err != nil {
		return err
	}
	ui.Success(a.out, "welcome, "+user.Name)
	return nil
}

func (a *app) createEvent(ctx context.Context, opts options) error {
	in := model.EventInput{
		Title:       opts.title,
		Description: opts.description,
		Venue:       opts.venue,
		Fee:         opts.fee,
		College:     opts.college,
		Category:    opts.category,
	}
	if opts.max > 0 {
		limit := opts.max
		in.MaxParticipants = &limit
	}
	date, err := model.ParseTime(opts.date)
	if err != nil {
		return apierr.Validation("-date must look like 2026-03-14T09:30:00")
	}
	in.Date = date
	if err := in.Validate(); err != nil {
		return apierr.Validation(err.Error())
	}
	event, err := a.catalog.Create(ctx, in)
	if err != nil {
		return err
	}
	ui.Success(a.out, "event created")
	ui.Field(a.out, "Event", event.ID)
	return nil
}

func (a *app) status() {
	snap := a.sessions.Current()
	ui.Header(a.out, "Session")
	ui.Field(a.out, "State", snap.State)
	if snap.Authenticated() {
		ui.User(a.out, *snap.User)
	}
}

func (a *app) showDashboard(ctx context.Context) error {
	view, err := a.dashboard.Refresh(ctx)
	if view.Student == nil && view.Organizer == nil && err != nil {
		return err
	}
	ui.Header(a.out, "Dashboard")
	if view.Student != nil {
		ui.StudentSummary(a.out, view.Student.Value)
	}
	if view.Organizer != nil {
		ui.OrganizerSummary(a.out, view.Organizer.Value)
	}
	if view.Registrations != nil {
		ui.Registrations(a.out, view.Registrations.Value)
	}
	if view.Events != nil {
		ui.Events(a.out, view.Events.Value)
	}
	if err != nil {
		ui.Stale(a.out, "showing last known values: "+err.Error())
	}
	return nil
}
