// Package testutil provides testing utilities.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"apitools/internal/rest"
)

// Request is a request recorded by Server.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   string
}

// JSON decodes the recorded body.
func (r Request) JSON(t *testing.T) map[string]any {
	t.Helper()
	var v map[string]any
	if err := json.Unmarshal([]byte(r.Body), &v); err != nil {
		t.Fatalf("request body is not a JSON object: %v (%q)", err, r.Body)
	}
	return v
}

// Server is an in-memory fake of a remote REST API served over TLS.
// Routes are keyed by method and path; the query string is ignored when
// matching.
type Server struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []Request
}

// NewServer starts a fake server that is closed when the test ends.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{t: t, routes: make(map[string]http.HandlerFunc)}
	s.srv = httptest.NewTLSServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.srv.Close)
	return s
}

// Host returns host:port for use as a client host.
func (s *Server) Host() string {
	return strings.TrimPrefix(s.srv.URL, "https://")
}

// Options returns client options that trust the test certificate.
func (s *Server) Options() []rest.Option {
	return []rest.Option{rest.WithHTTPClient(s.srv.Client())}
}

// Handle registers a canned response. body may be a string (sent as is) or
// any value (sent as JSON).
func (s *Server) Handle(method, path string, status int, body any) {
	var data []byte
	switch b := body.(type) {
	case string:
		data = []byte(b)
	case nil:
	default:
		var err error
		data, err = json.Marshal(b)
		if err != nil {
			s.t.Fatalf("encoding canned response: %v", err)
		}
	}
	s.HandleFunc(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write(data)
	})
}

// HandleFunc registers a handler for method and path.
func (s *Server) HandleFunc(method, path string, fn http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+path] = fn
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Find returns the first recorded request for method and path.
func (s *Server) Find(method, path string) (Request, bool) {
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			return r, true
		}
	}
	return Request{}, false
}

// Count returns how many requests hit method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   string(body),
	})
	fn, ok := s.routes[r.Method+" "+r.URL.Path]
	s.mu.Unlock()

	if !ok {
		s.t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"no route"}`)
		return
	}
	fn(w, r)
}
