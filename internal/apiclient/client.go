// Package apiclient talks to the backend through the proxy gateway.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"klassart-storefront/internal/domain"
)

const (
	proxyPath       = "/api/proxy"
	proxyUploadPath = "/api/proxy-upload"

	headerUserID    = "x-user-id"
	headerSessionID = "x-session-id"
)

// SessionStore is the part of the auth store the client needs.
type SessionStore interface {
	Current() (domain.Session, bool)
	ClearAuth(ctx context.Context) error
}

// File is one file part of a multipart upload.
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// Client issues authenticated requests through the gateway.
type Client struct {
	baseURL   string
	http      *http.Client
	store     SessionStore
	logger    *log.Logger
	onExpired func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// OnSessionExpired registers the navigation hook run after the session is cleared.
func OnSessionExpired(fn func()) Option {
	return func(c *Client) { c.onExpired = fn }
}

// New creates a Client for the gateway at gatewayURL.
func New(gatewayURL string, store SessionStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(gatewayURL, "/"),
		http:    http.DefaultClient,
		store:   store,
		logger:  log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Get(ctx context.Context, endpoint string, withToken bool) (*Response, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil, withToken)
}

func (c *Client) Post(ctx context.Context, endpoint string, body any, withToken bool) (*Response, error) {
	return c.do(ctx, http.MethodPost, endpoint, body, withToken)
}

func (c *Client) Put(ctx context.Context, endpoint string, body any, withToken bool) (*Response, error) {
	return c.do(ctx, http.MethodPut, endpoint, body, withToken)
}

func (c *Client) Delete(ctx context.Context, endpoint string, withToken bool) (*Response, error) {
	return c.do(ctx, http.MethodDelete, endpoint, nil, withToken)
}

// PostRoute posts JSON to a dedicated gateway route such as the billing
// relays. Those routes never receive identity headers.
func (c *Client) PostRoute(ctx context.Context, route string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+route, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(ctx, req)
}

// Upload posts a multipart form through the upload relay.
// The content type carries the multipart boundary, never application/json.
func (c *Client) Upload(ctx context.Context, endpoint string, fields map[string]string, files []File, withToken bool) (*Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for _, f := range files {
		part, err := mw.CreatePart(filePartHeader(f))
		if err != nil {
			return nil, fmt.Errorf("create part %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("write part %s: %w", f.Field, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(proxyUploadPath, endpoint), &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if withToken {
		c.attachIdentity(req)
	}
	return c.send(ctx, req)
}

func filePartHeader(f File) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(f.Field), escapeQuotes(f.Name)))
	contentType := f.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(f.Data)
	}
	h.Set("Content-Type", contentType)
	return h
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, withToken bool) (*Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(proxyPath, endpoint), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if withToken {
		c.attachIdentity(req)
	}
	return c.send(ctx, req)
}

func (c *Client) url(path, endpoint string) string {
	return c.baseURL + path + "?endpoint=" + url.QueryEscape(endpoint)
}

// attachIdentity always sets both headers, empty when nobody is logged in.
func (c *Client) attachIdentity(req *http.Request) {
	var sess domain.Session
	if c.store != nil {
		sess, _ = c.store.Current()
	}
	req.Header.Set(headerUserID, sess.UserID)
	req.Header.Set(headerSessionID, sess.SessionID)
}

func (c *Client) send(ctx context.Context, req *http.Request) (*Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Message: msgNetwork, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: msgNetwork, Err: err}
	}

	var env domain.Envelope
	decodeErr := json.Unmarshal(raw, &env)
	if decodeErr == nil && env.Redirect {
		c.expire(ctx)
		return nil, ErrSessionExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := msgRequestFailed
		if decodeErr == nil && env.ErrorMessage() != "" {
			msg = env.ErrorMessage()
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: msgRequestFailed, Err: decodeErr}
	}
	return &Response{Status: resp.StatusCode, Envelope: env, Body: raw}, nil
}

func (c *Client) expire(ctx context.Context) {
	if c.store != nil {
		if err := c.store.ClearAuth(ctx); err != nil {
			c.logger.Printf("clear session after redirect: %v", err)
		}
	}
	if c.onExpired != nil {
		c.onExpired()
	}
}
