package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type backendCall struct {
	method string
	path   string
	header http.Header
	body   []byte
}

type stubBackend struct {
	status int
	reply  string
	calls  []backendCall
}

func (b *stubBackend) start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.calls = append(b.calls, backendCall{
			method: r.Method,
			path:   r.URL.RequestURI(),
			header: r.Header.Clone(),
			body:   body,
		})
		w.WriteHeader(b.status)
		_, _ = w.Write([]byte(b.reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T, backendURL string) *gin.Engine {
	t.Helper()
	router, err := buildRouter(log.New(io.Discard, "", 0), Deps{BackendURL: backendURL})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func decodeFailure(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	if body["success"] != false {
		t.Fatalf("expected success=false, got %v", body)
	}
	return body
}

func TestProxyMissingEndpoint(t *testing.T) {
	backend := &stubBackend{status: http.StatusOK, reply: `{}`}
	router := newTestRouter(t, backend.start(t).URL)

	req := httptest.NewRequest(http.MethodGet, "/api/proxy", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if body := decodeFailure(t, rec); body["message"] != msgMissingEndpoint {
		t.Fatalf("unexpected message %v", body["message"])
	}
	if len(backend.calls) != 0 {
		t.Fatalf("backend must not be called")
	}
}

func TestProxyForwardsJSONAndIdentity(t *testing.T) {
	backend := &stubBackend{status: http.StatusCreated, reply: `{"success": true, "data": {"cart_id": 5}}`}
	router := newTestRouter(t, backend.start(t).URL)

	req := httptest.NewRequest(http.MethodPost, "/api/proxy?endpoint=%2Fcart%2Fadd", strings.NewReader(`{"post_id": "9", "qty": 2}`))
	req.Header.Set("x-user-id", "42")
	req.Header.Set("x-session-id", "abc")
	req.Header.Set("Authorization", "Bearer leak")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected backend status preserved, got %d", rec.Code)
	}
	if rec.Body.String() != backend.reply {
		t.Fatalf("expected body relayed verbatim, got %s", rec.Body.String())
	}
	if len(backend.calls) != 1 {
		t.Fatalf("expected one backend call, got %d", len(backend.calls))
	}
	call := backend.calls[0]
	if call.method != http.MethodPost || call.path != "/cart/add" {
		t.Fatalf("unexpected backend call %s %s", call.method, call.path)
	}
	if string(call.body) != `{"post_id": "9", "qty": 2}` {
		t.Fatalf("unexpected body %s", call.body)
	}
	if call.header.Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content type %q", call.header.Get("Content-Type"))
	}
	if call.header.Get("x-user-id") != "42" || call.header.Get("x-session-id") != "abc" {
		t.Fatalf("identity headers not forwarded: %v", call.header)
	}
	if call.header.Get("Authorization") != "" {
		t.Fatalf("only identity headers may be forwarded")
	}
	if rec.Header().Get(headerRequestID) == "" {
		t.Fatalf("expected request id on response")
	}
}

func TestProxyDropsEmptyIdentityHeaders(t *testing.T) {
	backend := &stubBackend{status: http.StatusOK, reply: `{"success": true}`}
	router := newTestRouter(t, backend.start(t).URL)

	req := httptest.NewRequest(http.MethodGet, "/api/proxy?endpoint=/cart", nil)
	req.Header["X-User-Id"] = []string{""}
	req.Header["X-Session-Id"] = []string{""}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	call := backend.calls[0]
	if _, ok := call.header["X-User-Id"]; ok {
		t.Fatalf("empty identity header must not be forwarded")
	}
	if len(call.body) != 0 {
		t.Fatalf("GET must not carry a body")
	}
}

func TestProxyPreservesErrorStatus(t *testing.T) {
	backend := &stubBackend{status: http.StatusUnauthorized, reply: `{"success": false, "redirect": true}`}
	router := newTestRouter(t, backend.start(t).URL)

	req := httptest.NewRequest(http.MethodDelete, "/api/proxy?endpoint=/cart/empty", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized || rec.Body.String() != backend.reply {
		t.Fatalf("expected relayed 401, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestProxyRejectsMalformedRequestJSON(t *testing.T) {
	backend := &stubBackend{status: http.StatusOK, reply: `{}`}
	router := newTestRouter(t, backend.start(t).URL)

	req := httptest.NewRequest(http.MethodPost, "/api/proxy?endpoint=/cart", strings.NewReader(`{"broken"`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	decodeFailure(t, rec)
	if len(backend.calls) != 0 {
		t.Fatalf("backend must not be called")
	}
}

func TestProxyBackendNotJSON(t *testing.T) {
	backend := &stubBackend{status: http.StatusBadGateway, reply: `<html>oops</html>`}
	router := newTestRouter(t, backend.start(t).URL)

	req := httptest.NewRequest(http.MethodGet, "/api/proxy?endpoint=/post/list", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	decodeFailure(t, rec)
}

func TestProxyBackendUnreachable(t *testing.T) {
	backend := &stubBackend{status: http.StatusOK, reply: `{}`}
	srv := backend.start(t)
	router := newTestRouter(t, srv.URL)
	srv.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/proxy?endpoint=/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	decodeFailure(t, rec)
}

func TestUploadRelaysMultipartUntouched(t *testing.T) {
	backend := &stubBackend{status: http.StatusOK, reply: `{"success": true, "data": {"file_obj": {"file_url": "u"}}}`}
	router := newTestRouter(t, backend.start(t).URL)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("prompt", "a cat")
	part, _ := mw.CreateFormFile("image", "cat.png")
	_, _ = part.Write([]byte("PNG"))
	_ = mw.Close()
	sent := append([]byte(nil), buf.Bytes()...)

	req := httptest.NewRequest(http.MethodPost, "/api/proxy-upload?endpoint=/account/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	call := backend.calls[0]
	if call.path != "/account/upload" || call.method != http.MethodPost {
		t.Fatalf("unexpected call %s %s", call.method, call.path)
	}
	if call.header.Get("Content-Type") != mw.FormDataContentType() {
		t.Fatalf("boundary must be preserved, got %q", call.header.Get("Content-Type"))
	}
	if !bytes.Equal(call.body, sent) {
		t.Fatalf("multipart body was re-encoded")
	}
}

func TestUploadRejectsNonMultipart(t *testing.T) {
	backend := &stubBackend{status: http.StatusOK, reply: `{}`}
	router := newTestRouter(t, backend.start(t).URL)

	req := httptest.NewRequest(http.MethodPost, "/api/proxy-upload?endpoint=/account/upload", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}

func TestBillingMyPlanRelay(t *testing.T) {
	backend := &stubBackend{status: http.StatusOK, reply: `{"success": true, "data": {"active_plan_info": null}}`}
	router := newTestRouter(t, backend.start(t).URL)

	req := httptest.NewRequest(http.MethodPost, "/api/billing/my-plan", strings.NewReader(`{"user_id": "1"}`))
	req.Header.Set("x-user-id", "1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != backend.reply {
		t.Fatalf("unexpected relay %d %s", rec.Code, rec.Body.String())
	}
	call := backend.calls[0]
	if call.path != "/billing/my-plan" {
		t.Fatalf("unexpected path %s", call.path)
	}
	if call.header.Get("x-user-id") != "" {
		t.Fatalf("billing relays do not forward identity headers")
	}
}

func TestBillingRelayRequiresBody(t *testing.T) {
	backend := &stubBackend{status: http.StatusOK, reply: `{}`}
	router := newTestRouter(t, backend.start(t).URL)

	req := httptest.NewRequest(http.MethodPost, "/api/billing/start-billing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if body := decodeFailure(t, rec); body["message"] != "Internal server error" {
		t.Fatalf("unexpected message %v", body["message"])
	}
}

func TestBillingCallbackCORS(t *testing.T) {
	backend := &stubBackend{status: http.StatusAccepted, reply: `{"success": true}`}
	router := newTestRouter(t, backend.start(t).URL)

	preflight := httptest.NewRequest(http.MethodOptions, "/api/billing/start-billing-callback", nil)
	preflight.Header.Set("Origin", "https://checkout.example.com")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	preflight.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, preflight)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected preflight 200, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("unexpected allow origin %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost) {
		t.Fatalf("unexpected allow methods %q", rec.Header().Get("Access-Control-Allow-Methods"))
	}
	if len(backend.calls) != 0 {
		t.Fatalf("preflight must not reach the backend")
	}

	post := httptest.NewRequest(http.MethodPost, "/api/billing/start-billing-callback",
		strings.NewReader(`{"razorpay_payment_id": "pay_1", "razorpay_order_id": "order_1", "razorpay_signature": "sig"}`))
	post.Header.Set("Origin", "https://checkout.example.com")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, post)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected backend status preserved, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected CORS header on callback response")
	}
	if backend.calls[0].path != "/billing/start-billing-callback" {
		t.Fatalf("unexpected path %s", backend.calls[0].path)
	}
}

func TestBillingCallbackCORSWithoutOrigin(t *testing.T) {
	backend := &stubBackend{status: http.StatusOK, reply: `{"success": true}`}
	router := newTestRouter(t, backend.start(t).URL)

	for _, method := range []string{http.MethodOptions, http.MethodPost} {
		req := httptest.NewRequest(method, "/api/billing/start-billing-callback", strings.NewReader(`{"razorpay_order_id": "order_1"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", method, rec.Code)
		}
		h := rec.Header()
		if h.Get("Access-Control-Allow-Origin") != "*" ||
			!strings.Contains(h.Get("Access-Control-Allow-Methods"), http.MethodPost) ||
			h.Get("Access-Control-Allow-Headers") != "Content-Type" {
			t.Fatalf("%s: missing CORS headers %v", method, h)
		}
	}
	if len(backend.calls) != 1 {
		t.Fatalf("only the POST may reach the backend, got %d calls", len(backend.calls))
	}
}

func TestProxyRejectsEndpointsOffTheBackendHost(t *testing.T) {
	backend := &stubBackend{status: http.StatusOK, reply: `{"success": true}`}
	router := newTestRouter(t, backend.start(t).URL)

	for _, endpoint := range []string{"@evil.example/x", ".evil.example/x", "//evil.example/x", "evil.example/x", ":8080/x"} {
		req := httptest.NewRequest(http.MethodGet, "/api/proxy?endpoint="+url.QueryEscape(endpoint), nil)
		req.Header.Set("x-user-id", "42")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected status 400, got %d", endpoint, rec.Code)
		}
		if body := decodeFailure(t, rec); body["message"] != msgInvalidEndpoint {
			t.Fatalf("%s: unexpected message %v", endpoint, body["message"])
		}
	}
	if len(backend.calls) != 0 {
		t.Fatalf("backend must not be called, got %d calls", len(backend.calls))
	}
}

func TestUploadRejectsEndpointOffTheBackendHost(t *testing.T) {
	backend := &stubBackend{status: http.StatusOK, reply: `{"success": true}`}
	router := newTestRouter(t, backend.start(t).URL)

	req := httptest.NewRequest(http.MethodPost, "/api/proxy-upload?endpoint="+url.QueryEscape("@evil.example/x"), strings.NewReader("--b--"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest || len(backend.calls) != 0 {
		t.Fatalf("expected 400 without a backend call, got %d and %d calls", rec.Code, len(backend.calls))
	}
}

func TestRelayTargetKeepsBackendHost(t *testing.T) {
	rl := &relay{backend: "https://api.klassart.example", host: "api.klassart.example"}
	got, err := rl.target("/post/view?id=1")
	if err != nil || got != "https://api.klassart.example/post/view?id=1" {
		t.Fatalf("unexpected target %q %v", got, err)
	}
	for _, endpoint := range []string{"@evil.example/steal", ".evil.example/steal", "//evil.example", "/\\evil.example"} {
		if _, err := rl.target(endpoint); !errors.Is(err, errInvalidEndpoint) {
			t.Fatalf("%q: expected invalid endpoint, got %v", endpoint, err)
		}
	}
}

func TestHealthAndReady(t *testing.T) {
	router := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected readyz 503 without backend, got %d", rec.Code)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := newTestRouter(t, "http://backend.invalid")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get(headerRequestID) != "req-123" {
		t.Fatalf("expected request id echoed, got %q", rec.Header().Get(headerRequestID))
	}
}

func TestBuildRouterRejectsBadBackendURL(t *testing.T) {
	if _, err := buildRouter(log.New(io.Discard, "", 0), Deps{BackendURL: "not a url"}); err == nil {
		t.Fatalf("expected error for invalid backend url")
	}
}

func TestRelayDefaultsToClientWithoutTimeout(t *testing.T) {
	rl, err := newRelay(log.New(io.Discard, "", 0), Deps{BackendURL: "https://api.klassart.example/"})
	if err != nil {
		t.Fatalf("new relay: %v", err)
	}
	if rl.client != http.DefaultClient || rl.client.Timeout != 0 {
		t.Fatalf("expected the default client, got %+v", rl.client)
	}
	if rl.backend != "https://api.klassart.example" || rl.host != "api.klassart.example" {
		t.Fatalf("unexpected backend %q host %q", rl.backend, rl.host)
	}
}
