package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/parlohq/parlo-backend/internal/domain"
	"github.com/parlohq/parlo-backend/internal/testutil"
)

func messageFixtures() *testutil.MockStore {
	store := testutil.NewMockStore()
	store.Repos.UserRepo.AddUser(&domain.User{ID: "alice", Email: "alice@example.com"})
	store.Repos.UserRepo.AddUser(&domain.User{ID: "bob", Email: "bob@example.com"})
	store.Repos.WorkspaceRepo.AddWorkspace(&domain.Workspace{ID: "w-1", Name: "notes", OwnerID: "alice"})
	store.Repos.ConversationRepo.AddConversation(&domain.Conversation{
		ID: "c-1", WorkspaceID: "w-1", ParticipantIDs: []string{"alice", "bob"},
	})
	return store
}

func TestMessagePost(t *testing.T) {
	store := messageFixtures()
	svc := NewMessageService(store)

	before := time.Now().UTC()
	msg, err := svc.Post(context.Background(), bob, PostMessageInput{
		ConversationID: "c-1",
		Content:        "hello",
	})
	if err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if msg.ID == "" {
		t.Error("expected a generated id")
	}
	if msg.SenderID != "bob" {
		t.Errorf("sender must be the actor, got %q", msg.SenderID)
	}
	if msg.SentAt.Before(before) {
		t.Errorf("expected SentAt defaulted to now, got %v", msg.SentAt)
	}
}

func TestMessagePostRequiresContent(t *testing.T) {
	store := messageFixtures()
	svc := NewMessageService(store)

	_, err := svc.Post(context.Background(), bob, PostMessageInput{ConversationID: "c-1"})
	if !errors.Is(err, domain.ErrContentRequired) {
		t.Fatalf("expected ErrContentRequired, got %v", err)
	}
}

func TestMessagePostRequiresParticipation(t *testing.T) {
	store := messageFixtures()
	store.Repos.UserRepo.AddUser(&domain.User{ID: "mallory", Email: "m@example.com"})
	svc := NewMessageService(store)
	ctx := context.Background()

	_, err := svc.Post(ctx, identityFor("mallory"), PostMessageInput{
		ConversationID: "c-1", Content: "let me in",
	})
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	// Admins post anywhere.
	if _, err := svc.Post(ctx, admin, PostMessageInput{ConversationID: "c-1", Content: "announcement"}); err != nil {
		t.Fatalf("admin post returned error: %v", err)
	}

	_, err = svc.Post(ctx, bob, PostMessageInput{ConversationID: "c-missing", Content: "hello"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMessagePostKeepsExplicitSentAt(t *testing.T) {
	store := messageFixtures()
	svc := NewMessageService(store)

	sentAt := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
	msg, err := svc.Post(context.Background(), bob, PostMessageInput{
		ConversationID: "c-1",
		Content:        "backfilled",
		SentAt:         sentAt,
	})
	if err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if !msg.SentAt.Equal(sentAt) {
		t.Errorf("expected SentAt %v, got %v", sentAt, msg.SentAt)
	}
}

func TestMessageListByConversation(t *testing.T) {
	store := messageFixtures()
	base := time.Date(2026, time.January, 2, 3, 0, 0, 0, time.UTC)
	store.Repos.MessageRepo.AddMessage(&domain.Message{
		ID: "m-2", ConversationID: "c-1", SenderID: "alice", SentAt: base.Add(time.Second),
	})
	store.Repos.MessageRepo.AddMessage(&domain.Message{
		ID: "m-1", ConversationID: "c-1", SenderID: "bob", SentAt: base,
	})
	svc := NewMessageService(store)
	ctx := context.Background()

	msgs, err := svc.ListByConversation(ctx, alice, "c-1", 0, 0)
	if err != nil {
		t.Fatalf("ListByConversation returned error: %v", err)
	}
	if len(msgs) != 2 || msgs[0].ID != "m-1" || msgs[1].ID != "m-2" {
		t.Errorf("unexpected history order: %+v", msgs)
	}

	store.Repos.UserRepo.AddUser(&domain.User{ID: "mallory", Email: "m@example.com"})
	if _, err := svc.ListByConversation(ctx, identityFor("mallory"), "c-1", 0, 0); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	n, err := svc.CountByConversation(ctx, bob, "c-1")
	if err != nil {
		t.Fatalf("CountByConversation returned error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected count 2, got %d", n)
	}
}
