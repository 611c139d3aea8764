// Package billing manages subscription plans through the gateway billing routes.
package billing

import (
	"context"
	"fmt"
	"strings"

	"klassart-storefront/internal/domain"
	"klassart-storefront/internal/service"
)

// Gateway routes relayed to the backend billing endpoints.
const (
	RouteMyPlan           = "/api/billing/my-plan"
	RouteStartBilling     = "/api/billing/start-billing"
	RouteSaveStartBilling = "/api/billing/save-start-billing"
	RouteCallback         = "/api/billing/start-billing-callback"
)

type Service struct {
	backend service.Backend
}

func New(backend service.Backend) *Service {
	return &Service{backend: backend}
}

func (s *Service) call(ctx context.Context, route string, body any, out any) error {
	if _, err := s.backend.RequireSession(); err != nil {
		return err
	}
	resp, err := s.backend.API.PostRoute(ctx, route, body)
	if err != nil {
		return err
	}
	return resp.Into(out)
}

func (s *Service) plan(ctx context.Context, route string) (domain.PlanInfo, error) {
	var info domain.PlanInfo
	if err := s.call(ctx, route, s.backend.Base(), &info); err != nil {
		return domain.PlanInfo{}, fmt.Errorf("load plan: %w", err)
	}
	return info, nil
}

// MyPlan loads the active plan, if any.
func (s *Service) MyPlan(ctx context.Context) (domain.PlanInfo, error) {
	return s.plan(ctx, RouteMyPlan)
}

// StartBilling lists the purchasable plans. A user who still has an active
// plan gets that plan instead.
func (s *Service) StartBilling(ctx context.Context) (domain.PlanInfo, error) {
	return s.plan(ctx, RouteStartBilling)
}

// ResolvePlan picks what the subscription page shows: plans for users that
// need setup or whose billing expired, otherwise the active plan, falling
// back to the plan list when there is none.
func (s *Service) ResolvePlan(ctx context.Context, profile domain.UserProfile) (domain.PlanInfo, error) {
	if profile.NeedsBilling() {
		info, err := s.StartBilling(ctx)
		if err != nil {
			return domain.PlanInfo{}, err
		}
		if info.Active != nil {
			info.Plans = nil
		}
		return info, nil
	}
	info, err := s.MyPlan(ctx)
	if err != nil {
		return domain.PlanInfo{}, err
	}
	if info.Active != nil {
		return domain.PlanInfo{Active: info.Active}, nil
	}
	plans, err := s.StartBilling(ctx)
	if err != nil {
		return domain.PlanInfo{}, err
	}
	return domain.PlanInfo{Plans: plans.Plans}, nil
}

type saveRequest struct {
	service.Base
	PlanID string `json:"subscription_plan_id"`
}

// SaveStartBilling creates the gateway order for a subscription plan.
func (s *Service) SaveStartBilling(ctx context.Context, planID string) (domain.Checkout, error) {
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return domain.Checkout{}, fmt.Errorf("%w: subscription plan is required", domain.ErrValidation)
	}
	var checkout domain.Checkout
	if err := s.call(ctx, RouteSaveStartBilling, saveRequest{Base: s.backend.Base(), PlanID: planID}, &checkout); err != nil {
		return domain.Checkout{}, fmt.Errorf("start subscription: %w", err)
	}
	if checkout.SubscriptionID == "" {
		checkout.SubscriptionID = domain.FlexString(planID)
	}
	return checkout, nil
}

type callbackRequest struct {
	saveRequest
	domain.PaymentConfirmation
}

// Callback confirms a subscription payment.
func (s *Service) Callback(ctx context.Context, planID string, c domain.PaymentConfirmation) error {
	req := callbackRequest{
		saveRequest:         saveRequest{Base: s.backend.Base(), PlanID: planID},
		PaymentConfirmation: c,
	}
	if err := s.call(ctx, RouteCallback, req, nil); err != nil {
		return fmt.Errorf("confirm subscription: %w", err)
	}
	return nil
}
