package catalog

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const reloadTTL = 5 * time.Minute

// Store caches a loaded schema and reloads it from disk after a TTL so a
// long-running server picks up edits to the description document. Concurrent
// reloads for the same path collapse into one read via singleflight.
type Store struct {
	path string

	mu        sync.RWMutex
	schema    *Schema
	expiresAt time.Time
	sf        singleflight.Group
}

// NewStore loads the document once, failing fast if it is missing or
// malformed, and keeps serving that copy until the TTL lapses.
func NewStore(path string) (*Store, error) {
	schema, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{
		path:      path,
		schema:    schema,
		expiresAt: time.Now().Add(reloadTTL),
	}, nil
}

// Get returns the cached schema, reloading from disk when stale. A failed
// reload keeps the previous copy so an edit race never takes the agent down.
func (s *Store) Get() *Schema {
	s.mu.RLock()
	schema, fresh := s.schema, time.Now().Before(s.expiresAt)
	s.mu.RUnlock()
	if fresh {
		return schema
	}

	v, err, _ := s.sf.Do(s.path, func() (interface{}, error) {
		reloaded, err := Load(s.path)
		if err != nil {
			log.Warn().Err(err).Str("path", s.path).Msg("schema reload failed, keeping cached copy")
			s.mu.Lock()
			s.expiresAt = time.Now().Add(30 * time.Second)
			s.mu.Unlock()
			return nil, err
		}
		s.mu.Lock()
		s.schema = reloaded
		s.expiresAt = time.Now().Add(reloadTTL)
		s.mu.Unlock()
		log.Debug().Str("path", s.path).Int("tables", len(reloaded.Tables)).Msg("schema reloaded")
		return reloaded, nil
	})
	if err != nil || v == nil {
		return schema
	}
	return v.(*Schema)
}
