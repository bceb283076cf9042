package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"quiz-room-service/internal/app"
	"quiz-room-service/internal/domain"
)

func TestRoomStoreReservesAndReleasesCodes(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewRoomStore(newClient(mr), time.Minute)

	if !store.Register(ctx, app.NewRoom("4242", domain.Quiz{}, "org1", time.Now())) {
		t.Fatalf("expected register to succeed")
	}
	if !mr.Exists("quizroom:room:4242") {
		t.Fatalf("expected redis key to be set")
	}

	store.Delete("4242")
	if mr.Exists("quizroom:room:4242") {
		t.Fatalf("expected redis key to be removed")
	}
	if store.Len() != 0 {
		t.Fatalf("expected no local rooms, got %d", store.Len())
	}
}

func TestRoomStoreRejectsCodeHeldByAnotherInstance(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	other := NewRoomStore(newClient(mr), time.Minute)
	store := NewRoomStore(newClient(mr), time.Minute)

	if !other.Register(ctx, app.NewRoom("1111", domain.Quiz{}, "org1", time.Now())) {
		t.Fatalf("expected first reservation")
	}
	if store.Register(ctx, app.NewRoom("1111", domain.Quiz{}, "org2", time.Now())) {
		t.Fatalf("expected code held elsewhere to be rejected")
	}
}

func TestRoomStoreTouchExtendsTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewRoomStore(newClient(mr), time.Minute)
	store.Register(ctx, app.NewRoom("2222", domain.Quiz{}, "org1", time.Now()))

	mr.FastForward(50 * time.Second)
	if err := store.Touch(ctx); err != nil {
		t.Fatalf("touch: %v", err)
	}
	mr.FastForward(30 * time.Second)
	if !mr.Exists("quizroom:room:2222") {
		t.Fatalf("expected touched key to survive")
	}
}
