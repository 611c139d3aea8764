package customer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"klassart-storefront/internal/apiclient"
	"klassart-storefront/internal/domain"
	"klassart-storefront/internal/service"
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

type authStore interface {
	Current() (domain.Session, bool)
	Profile() (domain.UserProfile, bool)
	SetAuth(ctx context.Context, profile domain.UserProfile) error
	ClearAuth(ctx context.Context) error
}

type Service struct {
	backend service.Backend
	auth    authStore
}

func New(backend service.Backend, auth authStore) *Service {
	return &Service{backend: backend, auth: auth}
}

type loginRequest struct {
	domain.Device
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userData struct {
	User *domain.UserProfile `json:"user"`
}

// Login validates credentials and stores the returned session.
func (s *Service) Login(ctx context.Context, email, password string) (domain.UserProfile, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.UserProfile{}, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}
	var data userData
	req := loginRequest{Device: s.backend.Device, Email: email, Password: password}
	if err := s.backend.Call(ctx, "/account/login-validate", req, false, &data); err != nil {
		return domain.UserProfile{}, fmt.Errorf("login: %w", err)
	}
	if data.User == nil || !data.User.Session().Valid() {
		return domain.UserProfile{}, &apiclient.APIError{Message: "Login failed. Invalid response."}
	}
	if err := s.auth.SetAuth(ctx, *data.User); err != nil {
		return domain.UserProfile{}, err
	}
	return *data.User, nil
}

// Authorize revalidates the stored session. Any failure logs the user out.
func (s *Service) Authorize(ctx context.Context) (domain.UserProfile, error) {
	if _, err := s.backend.RequireSession(); err != nil {
		return domain.UserProfile{}, err
	}
	var data userData
	err := s.backend.Call(ctx, "/account/authorized", s.backend.Base(), true, &data)
	if err == nil && data.User == nil {
		err = domain.ErrUnauthenticated
	}
	if err == nil {
		// The reply may omit sess_id; the store keeps the current one then.
		err = s.auth.SetAuth(ctx, *data.User)
	}
	if err != nil {
		if clearErr := s.auth.ClearAuth(ctx); clearErr != nil {
			err = errors.Join(err, clearErr)
		}
		return domain.UserProfile{}, fmt.Errorf("authorize: %w", err)
	}
	profile, _ := s.auth.Profile()
	return profile, nil
}

// Logout forgets the session locally; the backend keeps no logout endpoint.
func (s *Service) Logout(ctx context.Context) error {
	return s.auth.ClearAuth(ctx)
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Name  string
	Email string
	Phone string
	Image string
}

type profileRequest struct {
	service.Base
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Image string `json:"image,omitempty"`
}

// UpdateProfile saves the profile and mirrors it into the store on success.
func (s *Service) UpdateProfile(ctx context.Context, in ProfileUpdate) (domain.UserProfile, error) {
	if _, err := s.backend.RequireSession(); err != nil {
		return domain.UserProfile{}, err
	}
	in.Name, in.Email, in.Phone = strings.TrimSpace(in.Name), strings.TrimSpace(in.Email), strings.TrimSpace(in.Phone)
	if in.Name == "" || in.Email == "" || in.Phone == "" {
		return domain.UserProfile{}, fmt.Errorf("%w: name, email and phone are required", domain.ErrValidation)
	}
	if !phonePattern.MatchString(in.Phone) {
		return domain.UserProfile{}, fmt.Errorf("%w: phone must be 10 digits", domain.ErrValidation)
	}
	return s.saveProfile(ctx, in)
}

func (s *Service) saveProfile(ctx context.Context, in ProfileUpdate) (domain.UserProfile, error) {
	req := profileRequest{Base: s.backend.Base(), Name: in.Name, Email: in.Email, Phone: in.Phone, Image: in.Image}
	if err := s.backend.Call(ctx, "/account/update-profile", req, true, nil); err != nil {
		return domain.UserProfile{}, fmt.Errorf("update profile: %w", err)
	}
	return s.mirror(ctx, func(p *domain.UserProfile) {
		p.Name, p.Email, p.Phone = in.Name, in.Email, in.Phone
		if in.Image != "" {
			p.Image = in.Image
		}
	})
}

type addressRequest struct {
	service.Base
	domain.Address
}

// UpdateAddress saves the delivery address.
func (s *Service) UpdateAddress(ctx context.Context, addr domain.Address) (domain.UserProfile, error) {
	if _, err := s.backend.RequireSession(); err != nil {
		return domain.UserProfile{}, err
	}
	addr = domain.Address{
		Line1:     strings.TrimSpace(addr.Line1),
		City:      strings.TrimSpace(addr.City),
		Zip:       strings.TrimSpace(addr.Zip),
		StateCode: strings.TrimSpace(addr.StateCode),
	}
	if addr.Line1 == "" || addr.City == "" || addr.Zip == "" || addr.StateCode == "" {
		return domain.UserProfile{}, fmt.Errorf("%w: all address fields are required", domain.ErrValidation)
	}
	req := addressRequest{Base: s.backend.Base(), Address: addr}
	if err := s.backend.Call(ctx, "/account/update-address", req, true, nil); err != nil {
		return domain.UserProfile{}, fmt.Errorf("update address: %w", err)
	}
	return s.mirror(ctx, func(p *domain.UserProfile) { p.Address = &addr })
}

type otpRequest struct {
	domain.Device
	Email string `json:"email"`
	OTP   string `json:"otp,omitempty"`
}

// SendOTP mails a verification code to the profile email.
func (s *Service) SendOTP(ctx context.Context) error {
	email, err := s.profileEmail()
	if err != nil {
		return err
	}
	if err := s.backend.Call(ctx, "/account/send-otp", otpRequest{Device: s.backend.Device, Email: email}, false, nil); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

// VerifyOTP checks the code and marks the email verified.
func (s *Service) VerifyOTP(ctx context.Context, otp string) (domain.UserProfile, error) {
	email, err := s.profileEmail()
	if err != nil {
		return domain.UserProfile{}, err
	}
	otp = strings.TrimSpace(otp)
	if otp == "" {
		return domain.UserProfile{}, fmt.Errorf("%w: otp is required", domain.ErrValidation)
	}
	req := otpRequest{Device: s.backend.Device, Email: email, OTP: otp}
	if err := s.backend.Call(ctx, "/account/verify-otp", req, false, nil); err != nil {
		return domain.UserProfile{}, fmt.Errorf("verify otp: %w", err)
	}
	return s.mirror(ctx, func(p *domain.UserProfile) { p.EmailVerified = "1" })
}

func (s *Service) profileEmail() (string, error) {
	profile, ok := s.auth.Profile()
	if !ok || profile.Email == "" {
		return "", fmt.Errorf("%w: no email found to verify", domain.ErrValidation)
	}
	return profile.Email, nil
}

type uploadData struct {
	File struct {
		URL string `json:"file_url"`
	} `json:"file_obj"`
}

// UploadAvatar uploads a profile picture and points the profile at it.
func (s *Service) UploadAvatar(ctx context.Context, name string, data []byte) (domain.UserProfile, error) {
	if _, err := s.backend.RequireSession(); err != nil {
		return domain.UserProfile{}, err
	}
	if len(data) == 0 {
		return domain.UserProfile{}, fmt.Errorf("%w: image is empty", domain.ErrValidation)
	}
	resp, err := s.backend.API.Upload(ctx, "/account/upload", s.backend.Fields(),
		[]apiclient.File{{Field: "image", Name: name, Data: data}}, true)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("upload avatar: %w", err)
	}
	var out uploadData
	if err := resp.Into(&out); err != nil {
		return domain.UserProfile{}, fmt.Errorf("upload avatar: %w", err)
	}
	if out.File.URL == "" {
		return domain.UserProfile{}, &apiclient.APIError{Message: "Failed to upload image - no URL returned"}
	}

	current, _ := s.auth.Profile()
	return s.saveProfile(ctx, ProfileUpdate{
		Name:  current.Name,
		Email: current.Email,
		Phone: current.Phone,
		Image: out.File.URL,
	})
}

// mirror applies a confirmed server update to the stored profile.
func (s *Service) mirror(ctx context.Context, apply func(*domain.UserProfile)) (domain.UserProfile, error) {
	profile, ok := s.auth.Profile()
	if !ok {
		sess, _ := s.auth.Current()
		profile = domain.UserProfile{UserID: domain.FlexString(sess.UserID), SessionID: sess.SessionID}
	}
	apply(&profile)
	if err := s.auth.SetAuth(ctx, profile); err != nil {
		return domain.UserProfile{}, err
	}
	return profile, nil
}
