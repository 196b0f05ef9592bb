package cache

import (
	"sort"
	"strings"
	"sync"
)

// Session holds the text of the documents the client has open. The client
// owns these buffers; on-disk content is only used for included files.
type Session struct {
	id        string
	mu        sync.Mutex
	documents map[string]*Document
}

type Document struct {
	URI     string
	Version int
	Text    string
}

// Line returns line n (0-based) of the document, or "" when out of range.
func (d *Document) Line(n int) string {
	lines := strings.Split(d.Text, "\n")
	if n < 0 || n >= len(lines) {
		return ""
	}
	return strings.TrimSuffix(lines[n], "\r")
}

func NewSession(id string) *Session {
	return &Session{
		id:        id,
		documents: make(map[string]*Document),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Open(uri string, version int, text string) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &Document{URI: uri, Version: version, Text: text}
	s.documents[uri] = d
	return d
}

// Update replaces the text of a document. Changes older than the stored
// version are ignored and the stored document is returned.
func (s *Session) Update(uri string, version int, text string) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.documents[uri]; ok && version != 0 && version < d.Version {
		return d
	}
	d := &Document{URI: uri, Version: version, Text: text}
	s.documents[uri] = d
	return d
}

func (s *Session) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, uri)
}

func (s *Session) Document(uri string) (*Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.documents[uri]
	return d, ok
}

// URIs returns the open document URIs in sorted order.
func (s *Session) URIs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	uris := make([]string, 0, len(s.documents))
	for uri := range s.documents {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}
