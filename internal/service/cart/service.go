package cart

import (
	"context"
	"fmt"

	"klassart-storefront/internal/domain"
	"klassart-storefront/internal/service"
)

// DefaultUnitPrice is charged when neither customization nor article carries a price.
const DefaultUnitPrice = 499

type Service struct {
	backend service.Backend
}

func New(backend service.Backend) *Service {
	return &Service{backend: backend}
}

// ClampQuantity keeps a quantity at 1 or more.
func ClampQuantity(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

type addRequest struct {
	service.Base
	PostID string  `json:"post_id"`
	Amount float64 `json:"amount"`
	Qty    int     `json:"qty"`
}

type removeRequest struct {
	service.Base
	CartID string `json:"cart_id"`
	PostID string `json:"post_id"`
}

func (s *Service) Get(ctx context.Context) (domain.CartSummary, error) {
	if _, err := s.backend.RequireSession(); err != nil {
		return domain.CartSummary{}, err
	}
	var summary domain.CartSummary
	if err := s.backend.Call(ctx, "/cart", s.backend.Base(), true, &summary); err != nil {
		return domain.CartSummary{}, fmt.Errorf("load cart: %w", err)
	}
	return summary, nil
}

// Add puts qty units of a post in the cart; amount sent is unitPrice times qty.
func (s *Service) Add(ctx context.Context, postID string, unitPrice float64, qty int) error {
	if _, err := s.backend.RequireSession(); err != nil {
		return err
	}
	if postID == "" {
		postID = "0"
	}
	if unitPrice <= 0 {
		unitPrice = DefaultUnitPrice
	}
	qty = ClampQuantity(qty)
	req := addRequest{Base: s.backend.Base(), PostID: postID, Amount: unitPrice * float64(qty), Qty: qty}
	if err := s.backend.Call(ctx, "/cart/add", req, true, nil); err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	return nil
}

// Remove deletes one cart line. The backend reads the id from both fields.
func (s *Service) Remove(ctx context.Context, cartID string) error {
	if _, err := s.backend.RequireSession(); err != nil {
		return err
	}
	if cartID == "" {
		return fmt.Errorf("%w: cart id is required", domain.ErrValidation)
	}
	req := removeRequest{Base: s.backend.Base(), CartID: cartID, PostID: cartID}
	if err := s.backend.Call(ctx, "/cart/remove", req, true, nil); err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

func (s *Service) Empty(ctx context.Context) error {
	if _, err := s.backend.RequireSession(); err != nil {
		return err
	}
	if err := s.backend.Call(ctx, "/cart/empty", s.backend.Base(), true, nil); err != nil {
		return fmt.Errorf("empty cart: %w", err)
	}
	return nil
}
