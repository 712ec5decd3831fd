// Package blob holds in-memory binary artifacts behind locally resolvable
// URLs, the way a browser hands out object URLs: acquire a URL for a blob,
// release the prior one on replacement or teardown.
package blob

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// PathPrefix is where the HTTP layer serves blobs from.
const PathPrefix = "/blobs/"

// Blob is one held artifact.
type Blob struct {
	ID          string
	Name        string
	ContentType string
	Data        []byte
}

// Store is the session's allocation table for preview artifacts. Payloads
// live only in memory and disappear with the process.
type Store struct {
	mu    sync.Mutex
	blobs map[string]*Blob
}

func NewStore() *Store {
	return &Store{blobs: make(map[string]*Blob)}
}

// Put registers a blob and returns its URL path.
func (s *Store) Put(name, contentType string, data []byte) string {
	id := uuid.NewString()

	s.mu.Lock()
	s.blobs[id] = &Blob{ID: id, Name: name, ContentType: contentType, Data: data}
	s.mu.Unlock()

	return PathPrefix + id
}

// Get looks up a blob by id.
func (s *Store) Get(id string) (*Blob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[id]
	return b, ok
}

// Release frees the blob behind a URL previously returned by Put. Unknown
// and empty URLs are ignored so call sites can release unconditionally.
func (s *Store) Release(url string) {
	id := strings.TrimPrefix(url, PathPrefix)
	if id == "" || id == url {
		return
	}

	s.mu.Lock()
	delete(s.blobs, id)
	s.mu.Unlock()
}

// Len reports how many blobs are currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}
