package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"klassart-storefront/internal/domain"
)

type redisRepo struct {
	client *redis.Client
	key    string
}

// NewRedis keeps the session in a hash at storefront:session:<profile>.
func NewRedis(client *redis.Client, profile string) Repository {
	return &redisRepo{client: client, key: fmt.Sprintf("storefront:session:%s", profile)}
}

func (r *redisRepo) Load(ctx context.Context) (*domain.Session, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}
	s := domain.Session{UserID: fields["user_id"], SessionID: fields["session_id"]}
	if !s.Valid() {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *redisRepo) Save(ctx context.Context, s domain.Session) error {
	return r.client.HSet(ctx, r.key, map[string]interface{}{
		"user_id":    s.UserID,
		"session_id": s.SessionID,
	}).Err()
}

func (r *redisRepo) Delete(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
