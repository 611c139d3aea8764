package session

import (
	"context"

	"klassart-storefront/internal/domain"
)

// Repository persists the session of one storefront profile.
// Load returns domain.ErrNotFound when nothing is stored.
type Repository interface {
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, s domain.Session) error
	Delete(ctx context.Context) error
}
