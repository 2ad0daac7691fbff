package session

import "github.com/vishnukanth5457/joinup/internal/model"

type State int

const (
	StateUninitialized State = iota
	StateRestoring
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRestoring:
		return "restoring"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// AppState is the host application's lifecycle position.
type AppState string

const (
	AppActive     AppState = "active"
	AppInactive   AppState = "inactive"
	AppBackground AppState = "background"
)

// Snapshot is an immutable view of the session. Token and User are either
// both set or both empty.
type Snapshot struct {
	State      State
	Token      string
	User       *model.User
	Generation uint64
}

func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.Token != "" && s.User != nil
}

func (s Snapshot) Role() model.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

func (s Snapshot) clone() Snapshot {
	if s.User != nil {
		user := *s.User
		s.User = &user
	}
	return s
}
