package chatlist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentbot/backend/internal/model/chat"
	"github.com/studentbot/backend/internal/notify"
)

type fakeStore struct {
	mu        sync.Mutex
	chats     map[string][]chat.Session
	deleteErr error
	deleted   []string
}

func (s *fakeStore) ListChats(_ context.Context, userID string) ([]chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]chat.Session(nil), s.chats[userID]...), nil
}

func (s *fakeStore) DeleteChat(_ context.Context, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, chatID)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for userID, sessions := range s.chats {
		for i, session := range sessions {
			if session.ID == chatID {
				s.chats[userID] = append(sessions[:i], sessions[i+1:]...)
			}
		}
	}
	return nil
}

func (s *fakeStore) add(userID string, session chat.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chats == nil {
		s.chats = make(map[string][]chat.Session)
	}
	s.chats[userID] = append(s.chats[userID], session)
}

func TestStartLoadsInitialList(t *testing.T) {
	store := &fakeStore{}
	store.add("u1", chat.Session{ID: "c1", Title: "first"})

	c := NewController(store, nil, "u1")
	c.Start(context.Background())
	defer c.Close()

	chats := c.Chats()
	require.Len(t, chats, 1)
	assert.Equal(t, "c1", chats[0].ID)
}

func TestRefreshOnChatCreatedEvent(t *testing.T) {
	store := &fakeStore{}
	bus := notify.NewBus()

	c := NewController(store, bus, "u1")
	c.Start(context.Background())
	defer c.Close()

	require.Empty(t, c.Chats())

	store.add("u1", chat.Session{ID: "c1", Title: "new chat"})
	bus.Publish(notify.Event{UserID: "u1", ChatID: "c1", Title: "new chat"})

	require.Eventually(t, func() bool {
		return len(c.Chats()) == 1
	}, time.Second, 10*time.Millisecond, "list should refresh after the event")
}

func TestEventForOtherUserIsIgnored(t *testing.T) {
	store := &fakeStore{}
	bus := notify.NewBus()

	c := NewController(store, bus, "u1")
	c.Start(context.Background())
	defer c.Close()

	store.add("u1", chat.Session{ID: "c1"})
	bus.Publish(notify.Event{UserID: "u2", ChatID: "x"})

	// Give the loop a moment; the list must stay stale for foreign events.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, c.Chats())
}

func TestConfirmDeleteRemovesChat(t *testing.T) {
	store := &fakeStore{}
	store.add("u1", chat.Session{ID: "c1", Title: "doomed"})

	c := NewController(store, nil, "u1")
	c.Start(context.Background())
	defer c.Close()

	staged, ok := c.RequestDelete("c1")
	require.True(t, ok)
	assert.Equal(t, "doomed", staged.Title)

	require.NoError(t, c.ConfirmDelete(context.Background()))
	assert.Empty(t, c.Chats(), "deleted chat must leave the next list")
	assert.Equal(t, []string{"c1"}, store.deleted)
}

func TestConfirmDeleteFailureStillRefreshesButSurfaces(t *testing.T) {
	store := &fakeStore{deleteErr: errors.New("boom")}
	store.add("u1", chat.Session{ID: "c1"})

	c := NewController(store, nil, "u1")
	c.Start(context.Background())
	defer c.Close()

	_, ok := c.RequestDelete("c1")
	require.True(t, ok)

	err := c.ConfirmDelete(context.Background())
	require.Error(t, err, "delete failures must be visible to the caller")
	assert.Len(t, c.Chats(), 1, "refresh still ran and the chat is still there")
}

func TestCancelDeleteClearsCandidate(t *testing.T) {
	store := &fakeStore{}
	store.add("u1", chat.Session{ID: "c1"})

	c := NewController(store, nil, "u1")
	c.Start(context.Background())
	defer c.Close()

	_, ok := c.RequestDelete("c1")
	require.True(t, ok)
	c.CancelDelete()

	_, pending := c.PendingDelete()
	assert.False(t, pending)
	require.NoError(t, c.ConfirmDelete(context.Background()))
	assert.Empty(t, store.deleted, "nothing staged means nothing deleted")
}
