package customer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"klassart-storefront/internal/apiclient"
	"klassart-storefront/internal/domain"
	sessionrepo "klassart-storefront/internal/repository/session"
	"klassart-storefront/internal/service"
	"klassart-storefront/internal/service/servicetest"
	"klassart-storefront/internal/session"
)

const loginReply = `{"success": true, "data": {"user": {"user_id": 42, "sess_id": "sess-42", "name": "Ada", "email": "ada@example.com", "phone": "9876543210", "need_setup": "0"}}}`

func newService(t *testing.T, gw *servicetest.Gateway) (*Service, *session.Store) {
	t.Helper()
	store := session.New(sessionrepo.NewFile(filepath.Join(t.TempDir(), "session.json")))
	backend := service.Backend{
		API:      apiclient.New(gw.Server.URL, store),
		Sessions: store,
		Device:   servicetest.Device,
	}
	return New(backend, store), store
}

func login(t *testing.T, svc *Service, gw *servicetest.Gateway) {
	t.Helper()
	gw.Reply("/account/login-validate", loginReply)
	if _, err := svc.Login(context.Background(), "ada@example.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestLoginStoresSession(t *testing.T) {
	gw := servicetest.NewGateway(t)
	svc, store := newService(t, gw)
	login(t, svc, gw)

	sess, ok := store.Current()
	if !ok || sess.UserID != "42" || sess.SessionID != "sess-42" {
		t.Fatalf("unexpected session %+v", sess)
	}
	req, _ := gw.Last("/account/login-validate")
	if req.String("email") != "ada@example.com" || req.String("device") != "android" {
		t.Fatalf("unexpected body %v", req.Body)
	}
	if _, ok := req.Header["X-User-Id"]; ok {
		t.Fatalf("login must not send identity headers")
	}
}

func TestLoginFailures(t *testing.T) {
	gw := servicetest.NewGateway(t)
	svc, store := newService(t, gw)

	if _, err := svc.Login(context.Background(), "", "x"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	gw.Reply("/account/login-validate", `{"success": false, "error": true, "message": "Invalid password"}`)
	_, err := svc.Login(context.Background(), "ada@example.com", "bad")
	if apiclient.Message(err) != "Invalid password" {
		t.Fatalf("expected backend message, got %v", err)
	}

	gw.Reply("/account/login-validate", `{"success": true, "data": {"user": {"user_id": 42}}}`)
	if _, err := svc.Login(context.Background(), "ada@example.com", "x"); err == nil {
		t.Fatalf("expected error for a user without session")
	}
	if store.Authenticated() {
		t.Fatalf("no session may be stored after failed logins")
	}
}

func TestAuthorizeRefreshesProfile(t *testing.T) {
	gw := servicetest.NewGateway(t)
	svc, store := newService(t, gw)
	login(t, svc, gw)

	gw.Reply("/account/authorized", `{"success": true, "data": {"user": {"user_id": "42", "name": "Ada Lovelace", "billing_expired": "1"}}}`)
	profile, err := svc.Authorize(context.Background())
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if profile.Name != "Ada Lovelace" || !profile.NeedsBilling() {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if sess, _ := store.Current(); sess.SessionID != "sess-42" {
		t.Fatalf("session id must survive a reply without one, got %+v", sess)
	}
}

func TestAuthorizeFailureClearsAuth(t *testing.T) {
	gw := servicetest.NewGateway(t)
	svc, store := newService(t, gw)
	login(t, svc, gw)

	gw.Reply("/account/authorized", `{"success": false, "message": "Invalid session"}`)
	if _, err := svc.Authorize(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if store.Authenticated() {
		t.Fatalf("failed authorization must clear the session")
	}
}

func TestUpdateProfileValidatesAndMirrors(t *testing.T) {
	gw := servicetest.NewGateway(t)
	svc, store := newService(t, gw)
	login(t, svc, gw)

	_, err := svc.UpdateProfile(context.Background(), ProfileUpdate{Name: "Ada", Email: "a@b.c", Phone: "12345"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected phone validation error, got %v", err)
	}
	if _, ok := gw.Last("/account/update-profile"); ok {
		t.Fatalf("invalid input must not reach the backend")
	}

	profile, err := svc.UpdateProfile(context.Background(), ProfileUpdate{Name: "Ada L.", Email: "ada@example.com", Phone: "9876543210"})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if profile.Name != "Ada L." {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if stored, _ := store.Profile(); stored.Name != "Ada L." {
		t.Fatalf("store must mirror the update, got %+v", stored)
	}
}

func TestUpdateAddress(t *testing.T) {
	gw := servicetest.NewGateway(t)
	svc, store := newService(t, gw)
	login(t, svc, gw)

	if _, err := svc.UpdateAddress(context.Background(), domain.Address{City: "Pune"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	addr := domain.Address{Line1: "1 Main St", City: "Pune", Zip: "411001", StateCode: "MH"}
	if _, err := svc.UpdateAddress(context.Background(), addr); err != nil {
		t.Fatalf("update address: %v", err)
	}
	req, _ := gw.Last("/account/update-address")
	if req.String("address_line_1") != "1 Main St" || req.String("state_code") != "MH" || req.String("sess_id") != "sess-42" {
		t.Fatalf("unexpected body %v", req.Body)
	}
	if p, _ := store.Profile(); p.Address == nil || p.Address.Zip != "411001" {
		t.Fatalf("address must be mirrored, got %+v", p.Address)
	}
}

func TestOTPFlow(t *testing.T) {
	gw := servicetest.NewGateway(t)
	svc, store := newService(t, gw)

	if err := svc.SendOTP(context.Background()); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error without profile, got %v", err)
	}

	login(t, svc, gw)
	if err := svc.SendOTP(context.Background()); err != nil {
		t.Fatalf("send otp: %v", err)
	}
	if req, _ := gw.Last("/account/send-otp"); req.String("email") != "ada@example.com" {
		t.Fatalf("unexpected body %v", req.Body)
	}

	if _, err := svc.VerifyOTP(context.Background(), "123456"); err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	if p, _ := store.Profile(); p.EmailVerified != "1" {
		t.Fatalf("email must be marked verified")
	}
}

func TestUploadAvatar(t *testing.T) {
	gw := servicetest.NewGateway(t)
	svc, store := newService(t, gw)
	login(t, svc, gw)

	gw.Reply("/account/upload", `{"success": true, "data": {"file_obj": {"file_url": "https://cdn/ada.png"}}}`)
	profile, err := svc.UploadAvatar(context.Background(), "ada.png", []byte("\x89PNG\r\n\x1a\n"))
	if err != nil {
		t.Fatalf("upload avatar: %v", err)
	}
	if profile.Image != "https://cdn/ada.png" {
		t.Fatalf("unexpected image %q", profile.Image)
	}
	upload, _ := gw.Last("/account/upload")
	if len(upload.Files["image"]) == 0 || upload.Fields["user_id"] != "42" {
		t.Fatalf("unexpected upload %+v", upload)
	}
	update, _ := gw.Last("/account/update-profile")
	if update.String("image") != "https://cdn/ada.png" {
		t.Fatalf("profile must point at uploaded file, got %v", update.Body)
	}
	if p, _ := store.Profile(); p.Image != "https://cdn/ada.png" {
		t.Fatalf("store must mirror the image")
	}

	gw.Reply("/account/upload", `{"success": true, "data": {}}`)
	if _, err := svc.UploadAvatar(context.Background(), "ada.png", []byte("x")); err == nil {
		t.Fatalf("expected error when no url is returned")
	}
}

func TestDashboardAndFilter(t *testing.T) {
	gw := servicetest.NewGateway(t)
	svc, _ := newService(t, gw)
	login(t, svc, gw)

	gw.Reply("/dashboard", `{"success": true, "data": {"total_product": 3, "total_active_product": "2", "total_sale_product": 1, "posts": [
		{"post_id": 1, "name": "Sunset", "status_text": "Active"},
		{"post_id": 2, "name": "Sunrise", "status_text": "Sale"},
		{"post_id": 3, "name": "Moon", "status_text": "Active"}
	]}}`)
	dash, err := svc.Dashboard(context.Background(), 0, "")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.TotalProducts != "3" || len(dash.Posts) != 3 || dash.Posts[1].StatusText != "Sale" {
		t.Fatalf("unexpected dashboard %+v", dash)
	}
	if req, _ := gw.Last("/dashboard"); req.String("page") != "1" || req.String("orientation_ids") != "[]" {
		t.Fatalf("unexpected body %v", req.Body)
	}

	if got := FilterDashboard(dash.Posts, TabActive, ""); len(got) != 2 {
		t.Fatalf("expected 2 active posts, got %d", len(got))
	}
	if got := FilterDashboard(dash.Posts, TabAll, "sun"); len(got) != 2 {
		t.Fatalf("expected 2 sun posts, got %d", len(got))
	}
	if got := FilterDashboard(dash.Posts, TabSale, "sun"); len(got) != 1 || got[0].PostID != "2" {
		t.Fatalf("unexpected sale posts %+v", got)
	}
}

func TestNotifications(t *testing.T) {
	gw := servicetest.NewGateway(t)
	svc, _ := newService(t, gw)
	login(t, svc, gw)

	gw.Reply("/notification", `{"success": true, "data": {"notifications": [{"notification_title": "Order shipped", "description": "on its way", "created": "2 days ago"}]}}`)
	items, err := svc.Notifications(context.Background(), 1)
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Order shipped" {
		t.Fatalf("unexpected notifications %+v", items)
	}
}

func TestRedirectClearsSession(t *testing.T) {
	calls := map[string]func(*Service) error{
		"authorize": func(s *Service) error { _, err := s.Authorize(context.Background()); return err },
		"profile": func(s *Service) error {
			_, err := s.UpdateProfile(context.Background(), ProfileUpdate{Name: "a", Email: "b", Phone: "9876543210"})
			return err
		},
		"address": func(s *Service) error {
			_, err := s.UpdateAddress(context.Background(), domain.Address{Line1: "a", City: "b", Zip: "c", StateCode: "d"})
			return err
		},
		"avatar": func(s *Service) error {
			_, err := s.UploadAvatar(context.Background(), "a.png", []byte("x"))
			return err
		},
		"dashboard": func(s *Service) error {
			_, err := s.Dashboard(context.Background(), 1, "")
			return err
		},
		"notifications": func(s *Service) error {
			_, err := s.Notifications(context.Background(), 1)
			return err
		},
	}
	for name, call := range calls {
		gw := servicetest.NewGateway(t)
		svc, store := newService(t, gw)
		login(t, svc, gw)
		gw.ReplyAll(`{"success": true, "redirect": true}`)

		if err := call(svc); !errors.Is(err, apiclient.ErrSessionExpired) {
			t.Fatalf("%s: expected session expired, got %v", name, err)
		}
		if store.Authenticated() {
			t.Fatalf("%s: session must be cleared", name)
		}
	}
}
