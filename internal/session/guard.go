package session

import "github.com/vishnukanth5457/joinup/internal/apierr"

// Source is the read side of Manager that other components depend on.
type Source interface {
	Current() Snapshot
}

// Require returns the current session or an auth error when signed out.
func Require(src Source) (Snapshot, error) {
	snap := src.Current()
	if !snap.Authenticated() {
		return Snapshot{}, apierr.Auth("not signed in")
	}
	return snap, nil
}

// Check reports an auth error when the session changed after snap was taken.
// Responses to requests sent under an old session are dropped.
func Check(src Source, snap Snapshot) error {
	if src.Current().Generation != snap.Generation {
		return apierr.Auth("session ended before the response arrived")
	}
	return nil
}
