package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned by Get for unknown keys.
var ErrNotFound = errors.New("archived payload not found")

// Archiver keeps raw payloads for audit. The returned ref is what rows store.
type Archiver interface {
	Put(ctx context.Context, key string, payload any) (string, error)
}

// Reader loads an archived payload back by its ref.
type Reader interface {
	Get(ctx context.Context, ref string) ([]byte, error)
}

// Pebble archives JSON payloads in a local pebble database.
type Pebble struct {
	db *pebble.DB
}

// Open opens (or creates) the archive at path.
func Open(path string) (*Pebble, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	log.Info().Str("path", path).Msg("Payload archive opened.")
	return &Pebble{db: db}, nil
}

// Put stores payload as JSON under key and returns the key as its reference.
func (p *Pebble) Put(_ context.Context, key string, payload any) (string, error) {
	data, err := jsoniter.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload %s: %w", key, err)
	}
	if err := p.db.Set([]byte(key), data, pebble.Sync); err != nil {
		return "", fmt.Errorf("archive payload %s: %w", key, err)
	}
	return key, nil
}

// Get returns the raw JSON stored under ref.
func (p *Pebble) Get(_ context.Context, ref string) ([]byte, error) {
	value, closer, err := p.db.Get([]byte(ref))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Close flushes and closes the database.
func (p *Pebble) Close() error {
	return p.db.Close()
}

// Noop drops payloads; used when no archive path is configured.
type Noop struct{}

func (Noop) Put(_ context.Context, key string, _ any) (string, error) {
	return "", nil
}

func (Noop) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, ErrNotFound
}
