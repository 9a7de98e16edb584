// Package apitest provides a scripted stand-in for the REST backend so
// stores and the HTTP client can be exercised end to end in tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi"
)

// Recorded is one request the fake backend received.
type Recorded struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Decode unmarshals the recorded request body into out.
func (r Recorded) Decode(out any) error {
	return json.Unmarshal(r.Body, out)
}

type Server struct {
	*httptest.Server
	router *chi.Mux

	mu       sync.Mutex
	requests []Recorded
}

// NewServer starts a fake backend. Routes are relative to URL()+"/api".
// Unregistered routes answer 404 with a plain-text body.
func NewServer() *Server {
	s := &Server{router: chi.NewRouter()}
	s.router.Use(s.record)
	s.Server = httptest.NewServer(s.router)
	return s
}

// BaseURL is what the client should be configured with.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// JSON answers method+path with status and body encoded as JSON. A
// []byte or string body is written verbatim.
func (s *Server) JSON(method, path string, status int, body any) {
	s.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		switch b := body.(type) {
		case []byte:
			_, _ = w.Write(b)
		case string:
			_, _ = io.WriteString(w, b)
		default:
			_ = json.NewEncoder(w).Encode(body)
		}
	})
}

func (s *Server) Handle(method, path string, h http.HandlerFunc) {
	s.router.Method(method, "/api"+path, h)
}

func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many requests hit method+path (path without /api).
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Last returns the most recent request, if any.
func (s *Server) Last() (Recorded, bool) {
	reqs := s.Requests()
	if len(reqs) == 0 {
		return Recorded{}, false
	}
	return reqs[len(reqs)-1], true
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		path := strings.TrimPrefix(r.URL.Path, "/api")
		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method: r.Method,
			Path:   path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// StaticToken is a TokenSource with a fixed token.
type StaticToken string

func (t StaticToken) Token() string {
	return string(t)
}
