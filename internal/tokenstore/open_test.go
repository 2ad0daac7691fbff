package tokenstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/vishnukanth5457/joinup/internal/config"
)

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	store, closeFn, err := Open(ctx, config.Config{Store: "file", StorePath: path})
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	defer closeFn()
	if fs, ok := store.(*FileStore); !ok || fs.Path() != path {
		t.Fatalf("expected file store at %s, got %T", path, store)
	}

	store, closeFn, err = Open(ctx, config.Config{Store: "memory"})
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}
	defer closeFn()
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}

	if _, _, err := Open(ctx, config.Config{Store: "floppy"}); err == nil {
		t.Fatalf("expected unknown backend to fail")
	}
}
