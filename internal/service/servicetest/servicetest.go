// Package servicetest provides a fake gateway for page action tests.
package servicetest

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"klassart-storefront/internal/apiclient"
	"klassart-storefront/internal/domain"
	"klassart-storefront/internal/service"
)

// Device is the device block wired into test backends.
var Device = domain.Device{Device: "android", AppVersion: "1.0.5", Latitude: "28.6139", Longitude: "77.2090"}

// Request is one call the fake gateway received.
type Request struct {
	// Endpoint is the backend path for proxied calls, or the gateway route otherwise.
	Endpoint string
	Header   http.Header
	Body     map[string]any
	Fields   map[string]string
	Files    map[string][]byte
}

// Gateway answers proxied calls with canned JSON replies.
type Gateway struct {
	Server *httptest.Server

	mu       sync.Mutex
	replies  map[string]string
	requests []Request
}

// NewGateway starts a fake gateway closed at test cleanup.
func NewGateway(t *testing.T) *Gateway {
	t.Helper()
	g := &Gateway{replies: map[string]string{}}
	g.Server = httptest.NewServer(http.HandlerFunc(g.serve))
	t.Cleanup(g.Server.Close)
	return g
}

// Reply sets the JSON body returned for endpoint. Unset endpoints answer {"success": true}.
func (g *Gateway) Reply(endpoint, body string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.replies[endpoint] = body
}

// ReplyAll answers every endpoint with body.
func (g *Gateway) ReplyAll(body string) {
	g.Reply("*", body)
}

// Last returns the most recent request for endpoint.
func (g *Gateway) Last(endpoint string) (Request, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := len(g.requests) - 1; i >= 0; i-- {
		if g.requests[i].Endpoint == endpoint {
			return g.requests[i], true
		}
	}
	return Request{}, false
}

// Calls returns the endpoints called so far, in order.
func (g *Gateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.requests))
	for _, r := range g.requests {
		out = append(out, r.Endpoint)
	}
	return out
}

func (g *Gateway) serve(w http.ResponseWriter, r *http.Request) {
	rec := Request{Endpoint: r.URL.Path, Header: r.Header.Clone()}
	if ep := r.URL.Query().Get("endpoint"); ep != "" {
		rec.Endpoint = ep
	}

	mediaType, params, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		rec.Fields, rec.Files = readMultipart(r.Body, params["boundary"])
	} else {
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.Body)
		}
	}

	g.mu.Lock()
	g.requests = append(g.requests, rec)
	reply, ok := g.replies[rec.Endpoint]
	if !ok {
		reply, ok = g.replies["*"]
	}
	g.mu.Unlock()
	if !ok {
		reply = `{"success": true}`
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(reply))
}

func readMultipart(body io.Reader, boundary string) (map[string]string, map[string][]byte) {
	fields := map[string]string{}
	files := map[string][]byte{}
	mr := multipart.NewReader(body, boundary)
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		data, _ := io.ReadAll(part)
		if part.FileName() != "" {
			files[part.FormName()] = data
		} else {
			fields[part.FormName()] = string(data)
		}
	}
	return fields, files
}

// Store is an in memory auth store.
type Store struct {
	mu      sync.Mutex
	session domain.Session
	Cleared int
}

// LoggedIn returns a Store holding a session.
func LoggedIn() *Store {
	return &Store{session: domain.Session{UserID: "42", SessionID: "sess-42"}}
}

func (s *Store) Current() (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.session.Valid()
}

func (s *Store) ClearAuth(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cleared++
	s.session = domain.Session{}
	return nil
}

// Backend wires a real request client against the fake gateway.
func Backend(g *Gateway, store *Store) service.Backend {
	return service.Backend{
		API:      apiclient.New(g.Server.URL, store),
		Sessions: store,
		Device:   Device,
	}
}

// String reads a body field as a string, whatever its JSON type.
func (r Request) String(key string) string {
	v, ok := r.Body[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	raw, _ := json.Marshal(v)
	return strings.Trim(string(raw), `"`)
}
