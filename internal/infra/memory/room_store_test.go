package memory

import (
	"context"
	"testing"
	"time"

	"quiz-room-service/internal/app"
	"quiz-room-service/internal/domain"
)

func TestRoomStoreLifecycle(t *testing.T) {
	store := NewRoomStore()
	ctx := context.Background()

	room := app.NewRoom("1234", sampleQuiz(), "org1", time.Now())
	if !store.Register(ctx, room) {
		t.Fatalf("expected register to succeed")
	}
	if store.Register(ctx, app.NewRoom("1234", domain.Quiz{}, "org2", time.Now())) {
		t.Fatalf("expected duplicate code to be rejected")
	}
	if got, ok := store.Get("1234"); !ok || got != room {
		t.Fatalf("expected registered room back")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 room, got %d", store.Len())
	}

	store.Delete("1234")
	store.Delete("1234")
	if _, ok := store.Get("1234"); ok {
		t.Fatalf("expected room removed")
	}
}
