package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("document not found")

// DocumentStore keeps whole JSON documents by key. There are no partial
// updates: every Put replaces the document.
type DocumentStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte) error
	Close() error
}

type Backend string

const (
	BackendFile     Backend = "file"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendMemory   Backend = "memory"
)

type Options struct {
	Backend  Backend
	DataDir  string
	SQLite   string
	Postgres string
}

func Open(opts Options) (DocumentStore, error) {
	var (
		s   DocumentStore
		err error
	)
	switch opts.Backend {
	case BackendFile, "":
		s, err = NewFileStore(opts.DataDir)
	case BackendSQLite:
		s, err = OpenSQLite(opts.SQLite)
	case BackendPostgres:
		s, err = OpenPostgres(opts.Postgres)
	case BackendMemory:
		s = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// LoadJSON decodes the document at key into v. A missing document returns
// ErrNotFound and leaves v untouched.
func LoadJSON(ctx context.Context, s DocumentStore, key string, v any) error {
	body, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func SaveJSON(ctx context.Context, s DocumentStore, key string, v any) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(ctx, key, body)
}
