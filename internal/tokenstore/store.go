package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/vishnukanth5457/joinup/internal/model"
)

// Keys of the two persisted entries. They are always written and cleared together.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

var (
	// ErrNotFound is returned by Load when no complete session is stored.
	// A store holding only one of the two entries reports ErrNotFound too.
	ErrNotFound = errors.New("tokenstore: no session stored")
	// ErrCorrupt is returned by Load when the stored profile cannot be decoded.
	ErrCorrupt = errors.New("tokenstore: stored session is corrupt")
)

type Record struct {
	Token string
	User  model.User
}

func (r Record) complete() bool {
	return r.Token != "" && r.User.ID != ""
}

type Store interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
	Clear(ctx context.Context) error
}

func validateRecord(rec Record) error {
	if !rec.complete() {
		return fmt.Errorf("tokenstore: refusing to save partial session")
	}
	return nil
}
