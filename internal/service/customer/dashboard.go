package customer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"klassart-storefront/internal/domain"
	"klassart-storefront/internal/service"
)

// Dashboard tabs understood by FilterDashboard.
const (
	TabAll    = "All"
	TabActive = "Active"
	TabSale   = "Sale"
)

type dashboardRequest struct {
	service.Base
	Page           string `json:"page"`
	Query          string `json:"query"`
	OrientationIDs []int  `json:"orientation_ids"`
	SubCategoryID  string `json:"sub_category_id"`
	CategoryID     string `json:"article_category_id"`
	Price          string `json:"price"`
}

// Dashboard loads the seller overview.
func (s *Service) Dashboard(ctx context.Context, page int, query string) (domain.Dashboard, error) {
	if _, err := s.backend.RequireSession(); err != nil {
		return domain.Dashboard{}, err
	}
	if page < 1 {
		page = 1
	}
	req := dashboardRequest{
		Base:           s.backend.Base(),
		Page:           strconv.Itoa(page),
		Query:          query,
		OrientationIDs: []int{},
	}
	var out domain.Dashboard
	if err := s.backend.Call(ctx, "/dashboard", req, true, &out); err != nil {
		return domain.Dashboard{}, fmt.Errorf("load dashboard: %w", err)
	}
	return out, nil
}

// FilterDashboard keeps the posts of a tab whose name contains search.
func FilterDashboard(posts []domain.DashboardPost, tab, search string) []domain.DashboardPost {
	search = strings.ToLower(strings.TrimSpace(search))
	var out []domain.DashboardPost
	for _, p := range posts {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if (tab == TabActive || tab == TabSale) && p.StatusText != tab {
			continue
		}
		out = append(out, p)
	}
	return out
}

type notificationRequest struct {
	service.Base
	Page string `json:"page"`
}

// Notifications loads one page of the notification feed.
func (s *Service) Notifications(ctx context.Context, page int) ([]domain.Notification, error) {
	if _, err := s.backend.RequireSession(); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	var out struct {
		Notifications []domain.Notification `json:"notifications"`
	}
	req := notificationRequest{Base: s.backend.Base(), Page: strconv.Itoa(page)}
	if err := s.backend.Call(ctx, "/notification", req, true, &out); err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	return out.Notifications, nil
}
