package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"klassart-storefront/internal/domain"
	"klassart-storefront/internal/service/servicetest"
)

const (
	loginReply     = `{"success": true, "data": {"user": {"user_id": 42, "sess_id": "sess-42", "name": "Ada", "email": "ada@example.com", "phone": "9876543210"}}}`
	authorizeReply = `{"success": true, "data": {"user": {"user_id": 42, "sess_id": "sess-42", "name": "Ada", "email": "ada@example.com", "need_setup": "0", "billing_expired": "0", "address": {"address_line_1": "1 Main St", "city": "Pune", "zip": "411001", "state_code": "MH"}}}}`
)

type harness struct {
	t           *testing.T
	gw          *servicetest.Gateway
	sessionFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:           t,
		gw:          servicetest.NewGateway(t),
		sessionFile: filepath.Join(t.TempDir(), "session.json"),
	}
	t.Setenv("SESSION_STORE", "file")
	t.Setenv("SESSION_FILE", h.sessionFile)
	h.gw.Reply("/account/login-validate", loginReply)
	h.gw.Reply("/account/authorized", authorizeReply)
	return h
}

func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--gateway", h.gw.Server.URL}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (h *harness) login() {
	h.t.Helper()
	if _, _, err := h.run("login", "--email", "ada@example.com", "--password", "secret"); err != nil {
		h.t.Fatalf("login: %v", err)
	}
}

func TestLoginPersistsSessionAcrossCommands(t *testing.T) {
	h := newHarness(t)
	h.login()

	if _, err := os.Stat(h.sessionFile); err != nil {
		t.Fatalf("session file must exist after login: %v", err)
	}

	out, _, err := h.run("whoami", "-o", "json")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	var profile domain.UserProfile
	if err := json.Unmarshal([]byte(out), &profile); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if profile.Name != "Ada" {
		t.Fatalf("unexpected profile %+v", profile)
	}
	req, _ := h.gw.Last("/account/authorized")
	if req.Header.Get("x-user-id") != "42" || req.Header.Get("x-session-id") != "sess-42" {
		t.Fatalf("restored session must be sent, got %v", req.Header)
	}
}

func TestLogoutForgetsSession(t *testing.T) {
	h := newHarness(t)
	h.login()

	if _, _, err := h.run("logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := os.Stat(h.sessionFile); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("session file must be removed, got %v", err)
	}
	if _, _, err := h.run("cart"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestExpiredSessionIsReported(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.gw.Reply("/cart", `{"success": true, "redirect": true}`)

	_, stderr, err := h.run("cart")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(stderr, msgSessionExpired) {
		t.Fatalf("expected expiry notice, got %q", stderr)
	}
	if _, err := os.Stat(h.sessionFile); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expired session must be removed, got %v", err)
	}
}

func TestProductsFiltersAndSorts(t *testing.T) {
	h := newHarness(t)
	h.gw.Reply("/post/list", `{"success": true, "data": {"posts": [
		{"post_id": 1, "name": "Sunset", "price": "900", "orientation_ids": ["1"]},
		{"post_id": 2, "name": "Sunrise", "price": "300", "orientation_ids": ["1", "2"]},
		{"post_id": 3, "name": "Moon", "price": "100", "orientation_ids": ["2"]},
		{"post_id": 4, "name": "Sun rail", "price": "50", "is_featured": 1}
	]}}`)

	out, _, err := h.run("products", "--search", "sun", "--orientation", "1", "--sort", "price-low", "-o", "json")
	if err != nil {
		t.Fatalf("products: %v", err)
	}
	var list []domain.Product
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(list) != 2 || list[0].PostID != "2" || list[1].PostID != "1" {
		t.Fatalf("unexpected products %+v", list)
	}
}

func TestUnknownOutputFormat(t *testing.T) {
	h := newHarness(t)
	if _, _, err := h.run("products", "-o", "xml"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

const filtersReply = `{"success": true, "data": {"allarticle": {"frame": [{"article_id": 5, "name": "Frame", "article_price": "650"}]}}}`

func TestStudioGenerateCustomizeAddToCart(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.gw.Reply("/prompt/generate", `{"success": true, "post_id": 77, "data": {"publicUrl": ["https://cdn/a.png", "https://cdn/b.png"]}}`)
	h.gw.Reply("/filters/list", filtersReply)
	h.gw.Reply("/customimage", `{"success": true, "genrated_img": ["https://cdn/c1.png", "https://cdn/c2.png"], "post_id": 88}`)

	out, _, err := h.run("studio", "--prompt", "a red fox", "--count", "2", "--article", "5", "--variant", "2", "--add-to-cart", "--qty", "2")
	if err != nil {
		t.Fatalf("studio: %v", err)
	}
	if !strings.Contains(out, "state: generated") || !strings.Contains(out, "committed: cart") {
		t.Fatalf("unexpected output %s", out)
	}
	if strings.Contains(out, "result:") || strings.Contains(out, "article:") {
		t.Fatalf("committed customization must not be shown, got %s", out)
	}
	add, ok := h.gw.Last("/cart/add")
	if !ok {
		t.Fatalf("expected a cart call")
	}
	if add.String("post_id") != "88" || add.String("amount") != "1300" || add.String("qty") != "2" {
		t.Fatalf("unexpected cart body %v", add.Body)
	}
	if custom, _ := h.gw.Last("/customimage"); custom.String("post_id") != "77" || custom.String("article_id") != "5" {
		t.Fatalf("unexpected customize body %v", custom.Body)
	}
}

func TestStudioRejectsBothCommits(t *testing.T) {
	h := newHarness(t)
	h.login()
	if _, _, err := h.run("studio", "--prompt", "fox", "--add-to-cart", "--list"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := h.gw.Last("/prompt/generate"); ok {
		t.Fatalf("nothing may be generated")
	}
}

func TestProductLoadsDetailAndArticlesTogether(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.gw.Reply("/post/view", `{"success": true, "data": {"form_data": {"post_id": 12, "name": "Sunset", "image_url": "https://cdn/sunset.png", "price": "650", "orientation_ids": ["3"]}}}`)
	h.gw.Reply("/filters/list", filtersReply)
	h.gw.Reply("/customimage", `{"success": true, "genrated_img": ["https://cdn/framed.png"], "price": "899"}`)

	out, _, err := h.run("product", "12", "--article", "5", "--add-to-cart", "-o", "json")
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	var view struct {
		Price    string `json:"price"`
		AddedQty int    `json:"added_qty"`
		Workflow struct {
			State  string         `json:"state"`
			Result map[string]any `json:"result"`
		} `json:"workflow"`
	}
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if view.Price != "899.00" || view.AddedQty != 1 {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.Workflow.State != "generated" || view.Workflow.Result != nil {
		t.Fatalf("expected workflow shown after the commit, got %+v", view.Workflow)
	}
	if custom, _ := h.gw.Last("/customimage"); custom.String("size") != "3" {
		t.Fatalf("product orientation must be used, got %v", custom.Body)
	}
	if add, _ := h.gw.Last("/cart/add"); add.String("amount") != "899" || add.String("post_id") != "12" {
		t.Fatalf("unexpected cart body %v", add.Body)
	}
}

func TestCheckoutCreatesOrder(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.gw.Reply("/cart", `{"success": true, "data": {"cart_items": [{"cart_id": 1, "item_name": "Frame"}], "item_total": "1000", "delivery_charge": "50", "discount": "0"}}`)
	h.gw.Reply("/payment/process", `{"success": true, "data": {"response": {"id": "order_1", "amount": 1050, "currency": "INR"}, "public_key": "rzp_test"}}`)

	out, _, err := h.run("checkout", "-o", "json")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !strings.Contains(out, `"order_1"`) || !strings.Contains(out, `"1050.00"`) {
		t.Fatalf("unexpected output %s", out)
	}
	if req, _ := h.gw.Last("/payment/process"); req.String("total_amount") != "1050.00" {
		t.Fatalf("unexpected body %v", req.Body)
	}
}

func TestPlanShowsActivePlan(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.gw.Reply("/api/billing/my-plan", `{"success": true, "data": {"active_plan_info": {"subscription_plan_title": "Pro"}}}`)

	out, _, err := h.run("plan")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !strings.Contains(out, "title: Pro") {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestDashboardTabs(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.gw.Reply("/dashboard", `{"success": true, "data": {"posts": [
		{"post_id": 1, "name": "Sunset", "status_text": "Active"},
		{"post_id": 2, "name": "Moon", "status_text": "Sale"}
	]}}`)

	out, _, err := h.run("dashboard", "--tab", "Sale", "-o", "json")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	var dash domain.Dashboard
	if err := json.Unmarshal([]byte(out), &dash); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(dash.Posts) != 1 || dash.Posts[0].Name != "Moon" {
		t.Fatalf("unexpected posts %+v", dash.Posts)
	}
}
