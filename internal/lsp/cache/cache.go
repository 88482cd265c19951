// Package cache tracks the open documents for the language server. Each
// document carries the version number the client last sent, so results
// computed asynchronously (the external checker in particular) can be
// discarded when the document has moved on.
package cache

import (
	"sync"
)

// Document is an immutable text snapshot of an open script.
type Document struct {
	URI     string
	Text    string
	Version int32
}

// Store holds the open documents keyed by URI.
type Store struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func NewStore() *Store {
	return &Store{docs: make(map[string]Document)}
}

func (s *Store) Open(uri, text string, version int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = Document{URI: uri, Text: text, Version: version}
}

// Update replaces the document text unless version is older than what the
// store already holds.
func (s *Store) Update(uri, text string, version int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.docs[uri]; ok && version < cur.Version {
		return
	}
	s.docs[uri] = Document{URI: uri, Text: text, Version: version}
}

func (s *Store) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

func (s *Store) Get(uri string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	return doc, ok
}

// Current reports whether version still matches the stored document. A
// closed document is never current.
func (s *Store) Current(uri string, version int32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	return ok && doc.Version == version
}

func (s *Store) URIs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	return uris
}
