package services_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"citymap-server/models"
	"citymap-server/services"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"github.com/redis/go-redis/v9"
)

func redisStore(t *testing.T) *services.RedisSessionStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable at %s: %v", addr, err)
	}
	return services.NewRedisSessionStore(client, time.Minute)
}

// TestRedisSessionStore_Missing verifies an absent key maps to
// ErrSessionNotFound rather than a store error.
func TestRedisSessionStore_Missing(t *testing.T) {
	store := redisStore(t)

	_, err := store.Get(context.Background(), uuid.NewString())
	if !errors.Is(err, services.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

// TestRedisSessionStore_SaveGetDelete verifies a session survives the JSON
// round trip through Redis and is gone after Delete.
func TestRedisSessionStore_SaveGetDelete(t *testing.T) {
	store := redisStore(t)
	ctx := context.Background()

	session := services.NewSession(uuid.NewString())
	session.Visibility.Toggle(models.CategoryOrdinary)
	_, omaha := renderedFeatures(t)
	session.Hover([]*geojson.Feature{omaha})
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	t.Cleanup(func() { store.Delete(context.Background(), session.ID) })

	got, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Visibility.IsVisible(models.CategoryOrdinary) || !got.Visibility.IsVisible(models.CategoryCapital) {
		t.Errorf("visibility not preserved: %v", got.Visibility.Flags())
	}
	if got.Active["name"] != "Omaha" {
		t.Errorf("active projection not preserved: %v", got.Active)
	}

	if err := store.Delete(ctx, session.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, session.ID); !errors.Is(err, services.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}
}
