package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	headerUserID    = "x-user-id"
	headerSessionID = "x-session-id"
)

const (
	msgMissingEndpoint = "Endpoint parameter is required"
	msgInvalidEndpoint = "Invalid endpoint"
)

var (
	errInvalidJSON     = errors.New("invalid JSON body")
	errInvalidEndpoint = errors.New("endpoint leaves the backend host")
)

// relay forwards one request to the backend and returns its JSON reply verbatim.
type relay struct {
	backend string
	// host is the backend host every outbound URL must keep.
	host   string
	client *http.Client
	logger *log.Logger
}

type outbound struct {
	method      string
	endpoint    string
	body        []byte
	contentType string
	// identity is copied from the inbound request; empty values are dropped.
	identity http.Header
}

// target joins endpoint onto the backend URL. The endpoint must be an
// absolute path and the joined URL must still point at the backend host.
func (r *relay) target(endpoint string) (string, error) {
	if !strings.HasPrefix(endpoint, "/") || strings.HasPrefix(endpoint, "//") || strings.HasPrefix(endpoint, "/\\") {
		return "", errInvalidEndpoint
	}
	joined := r.backend + endpoint
	u, err := url.Parse(joined)
	if err != nil || u.Host != r.host {
		return "", errInvalidEndpoint
	}
	return joined, nil
}

// checkEndpoint answers 400 and returns false when the endpoint query is
// missing or would leave the backend host.
func (r *relay) checkEndpoint(c *gin.Context, endpoint string) bool {
	if endpoint == "" {
		writeFailure(c, http.StatusBadRequest, msgMissingEndpoint)
		return false
	}
	if _, err := r.target(endpoint); err != nil {
		r.logger.Printf("endpoint %q rejected (request %s): %v", endpoint, requestID(c), err)
		writeFailure(c, http.StatusBadRequest, msgInvalidEndpoint)
		return false
	}
	return true
}

func (r *relay) forward(c *gin.Context, out outbound, failMsg string) {
	status, payload, err := r.roundTrip(c, out)
	if err != nil {
		r.logger.Printf("relay %s %s failed (request %s): %v", out.method, out.endpoint, requestID(c), err)
		writeFailure(c, http.StatusInternalServerError, failMsg)
		return
	}
	c.Data(status, "application/json; charset=utf-8", payload)
}

func (r *relay) roundTrip(c *gin.Context, out outbound) (int, []byte, error) {
	var body io.Reader
	if len(out.body) > 0 {
		body = bytes.NewReader(out.body)
	}
	target, err := r.target(out.endpoint)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(c.Request.Context(), out.method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	if out.contentType != "" {
		req.Header.Set("Content-Type", out.contentType)
	}
	for _, name := range []string{headerUserID, headerSessionID} {
		if v := out.identity.Get(name); v != "" {
			req.Header.Set(name, v)
		}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("call backend: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read backend response: %w", err)
	}
	if !json.Valid(payload) {
		return 0, nil, fmt.Errorf("backend answered %d with non JSON body", resp.StatusCode)
	}
	return resp.StatusCode, payload, nil
}

// readJSONBody returns the request body, nil when empty, or errInvalidJSON.
func readJSONBody(c *gin.Context) ([]byte, error) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, errInvalidJSON
	}
	return raw, nil
}

func writeFailure(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}
