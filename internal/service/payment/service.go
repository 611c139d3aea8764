// Package payment runs cart checkout against the backend payment endpoints.
// The gateway overlay itself is opened by the caller; only its identifiers
// pass through here.
package payment

import (
	"context"
	"fmt"
	"strconv"

	"klassart-storefront/internal/domain"
	"klassart-storefront/internal/service"
)

type profiles interface {
	Profile() (domain.UserProfile, bool)
}

type Service struct {
	backend  service.Backend
	profiles profiles
}

func New(backend service.Backend, profiles profiles) *Service {
	return &Service{backend: backend, profiles: profiles}
}

// Order is a created gateway order with the total it was created for.
type Order struct {
	domain.Checkout `yaml:",inline"`
	Total           string `json:"total_amount" yaml:"total"`
}

// Total formats the grand total of summary with two decimals.
func Total(summary domain.CartSummary) string {
	return strconv.FormatFloat(summary.GrandTotal(), 'f', 2, 64)
}

type processRequest struct {
	service.Base
	Total string `json:"total_amount"`
}

// Process creates a gateway order for the cart. A saved delivery address is required.
func (s *Service) Process(ctx context.Context, summary domain.CartSummary) (Order, error) {
	if _, err := s.backend.RequireSession(); err != nil {
		return Order{}, err
	}
	if len(summary.Items) == 0 {
		return Order{}, fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}
	profile, ok := s.profiles.Profile()
	if !ok || profile.Address == nil {
		return Order{}, fmt.Errorf("%w: add a delivery address to proceed", domain.ErrValidation)
	}

	total := Total(summary)
	var checkout domain.Checkout
	req := processRequest{Base: s.backend.Base(), Total: total}
	if err := s.backend.Call(ctx, "/payment/process", req, true, &checkout); err != nil {
		return Order{}, fmt.Errorf("process payment: %w", err)
	}
	if checkout.Order.ID == "" {
		return Order{}, fmt.Errorf("process payment: %w", domain.ErrNotFound)
	}
	return Order{Checkout: checkout, Total: total}, nil
}

type validateRequest struct {
	service.Base
	Total string `json:"total_amount"`
	domain.PaymentConfirmation
}

// Validate hands the gateway identifiers back to the backend, which places the order.
func (s *Service) Validate(ctx context.Context, total string, c domain.PaymentConfirmation) error {
	if _, err := s.backend.RequireSession(); err != nil {
		return err
	}
	req := validateRequest{Base: s.backend.Base(), Total: total, PaymentConfirmation: c}
	if err := s.backend.Call(ctx, "/payment/validate", req, true, nil); err != nil {
		return fmt.Errorf("validate payment: %w", err)
	}
	return nil
}
