// Package chatlist mirrors the sidebar: a per-user chat list that refreshes
// on chat-created events and supports confirmed deletion.
package chatlist

import (
	"context"
	"log"
	"sync"

	"github.com/studentbot/backend/internal/model/chat"
	"github.com/studentbot/backend/internal/notify"
)

// Store is the slice of the history backend the list controller reads from.
type Store interface {
	ListChats(ctx context.Context, userID string) ([]chat.Session, error)
	DeleteChat(ctx context.Context, chatID string) error
}

// Controller keeps the chat list for one user current.
type Controller struct {
	store  Store
	bus    *notify.Bus
	userID string

	mu            sync.Mutex
	chats         []chat.Session
	pendingDelete *chat.Session

	events chan notify.Event
	done   chan struct{}
}

// NewController builds a list controller for the given user.
func NewController(store Store, bus *notify.Bus, userID string) *Controller {
	return &Controller{
		store:  store,
		bus:    bus,
		userID: userID,
		done:   make(chan struct{}),
	}
}

// Start loads the initial list and begins refreshing whenever a chat-created
// event for this user arrives. Stop with Close.
func (c *Controller) Start(ctx context.Context) {
	c.Refresh(ctx)

	if c.bus == nil {
		return
	}

	c.events = c.bus.Subscribe()
	go func() {
		for {
			select {
			case <-c.done:
				return
			case <-ctx.Done():
				return
			case evt, ok := <-c.events:
				if !ok {
					return
				}
				if evt.UserID != "" && evt.UserID != c.userID {
					continue
				}
				c.Refresh(ctx)
			}
		}
	}()
}

// Close unsubscribes from the bus and stops the refresh loop.
func (c *Controller) Close() {
	close(c.done)
	if c.bus != nil && c.events != nil {
		c.bus.Unsubscribe(c.events)
	}
}

// Refresh re-fetches the chat list. Read failures degrade to an empty list.
func (c *Controller) Refresh(ctx context.Context) []chat.Session {
	chats, err := c.store.ListChats(ctx, c.userID)
	if err != nil {
		log.Printf("[chatlist] failed to list chats for user=%s: %v", c.userID, err)
		chats = []chat.Session{}
	}

	c.mu.Lock()
	c.chats = chats
	c.mu.Unlock()
	return c.Chats()
}

// Chats returns a copy of the current list.
func (c *Controller) Chats() []chat.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := make([]chat.Session, len(c.chats))
	copy(copied, c.chats)
	return copied
}

// RequestDelete stages a chat for the confirmation dialog.
func (c *Controller) RequestDelete(chatID string) (chat.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, session := range c.chats {
		if session.ID == chatID {
			staged := session
			c.pendingDelete = &staged
			return session, true
		}
	}
	return chat.Session{}, false
}

// CancelDelete clears the staged candidate.
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	c.pendingDelete = nil
	c.mu.Unlock()
}

// PendingDelete returns the staged candidate, if any.
func (c *Controller) PendingDelete() (chat.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingDelete == nil {
		return chat.Session{}, false
	}
	return *c.pendingDelete, true
}

// ConfirmDelete deletes the staged chat. The list is refreshed whether or not
// the server call succeeded, but the error is returned so callers can tell
// the user instead of failing silently.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	pending := c.pendingDelete
	c.pendingDelete = nil
	c.mu.Unlock()

	if pending == nil {
		return nil
	}

	err := c.store.DeleteChat(ctx, pending.ID)
	c.Refresh(ctx)
	return err
}
