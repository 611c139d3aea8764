package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"klassart-storefront/internal/domain"
)

func TestRedis_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DialTimeout: time.Second})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	repo := NewRedis(client, "test-"+time.Now().Format("150405.000000"))
	defer repo.Delete(ctx)

	if _, err := repo.Load(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	want := domain.Session{UserID: "9", SessionID: "zz"}
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != want {
		t.Fatalf("unexpected session %+v", got)
	}
	if err := repo.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Load(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
