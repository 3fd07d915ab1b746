// Package storage is the optional interaction log: an audit trail of
// request/reply pairs. Recording failures are for the caller to log,
// never to surface to the client.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Interaction is one recorded request/reply pair.
type Interaction struct {
	ID        string
	Provider  string
	Framework string
	Prompt    string
	Reply     string
	Degraded  bool
	CreatedAt time.Time
}

// Store records and lists interactions.
type Store interface {
	Record(ctx context.Context, it Interaction) error
	Recent(ctx context.Context, limit int) ([]Interaction, error)
	Close() error
}

// Open builds a store for the configured backend: "none" (or empty),
// "memory", or "sqlite".
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "none":
		return nopStore{}, nil
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if path == "" {
			path = "interactions.db"
		}
		return OpenSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// nopStore drops everything.
type nopStore struct{}

func (nopStore) Record(context.Context, Interaction) error { return nil }

func (nopStore) Recent(context.Context, int) ([]Interaction, error) { return nil, nil }

func (nopStore) Close() error { return nil }
