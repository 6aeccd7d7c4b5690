// Package chatflow drives a single chat session: optimistic transcript state,
// lazy chat creation on the first message, streamed reply assembly and
// persistence ordering.
package chatflow

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studentbot/backend/internal/model/chat"
	"github.com/studentbot/backend/internal/notify"
)

var (
	ErrEmptyInput    = errors.New("message is empty")
	ErrInputTooShort = errors.New("message is too short")
	ErrUserRequired  = errors.New("user id is required")
	ErrBusy          = errors.New("a send is already in flight")
)

// MinInputLen is the submit threshold. The web client enforced two different
// minimums in different screens; the stricter one is kept.
const MinInputLen = 2

// State is the controller lifecycle position.
type State int

const (
	StateIdle State = iota
	StateComposing
	StateSending
)

// Store is the slice of the history backend the controller writes through.
type Store interface {
	CreateChat(ctx context.Context, chatID, title, userID string) error
	SaveMessage(ctx context.Context, chatID, sender, content string) error
	Messages(ctx context.Context, chatID string) ([]chat.Message, error)
}

// Completer produces one assistant reply for a transcript, reporting decoded
// chunks through onDelta as they arrive.
type Completer interface {
	Complete(ctx context.Context, transcript []chat.TranscriptEntry, onDelta func(string)) (string, error)
}

// Result describes one successful submit round trip.
type Result struct {
	ChatID      string
	CreatedChat bool
	UserMessage chat.Message
	Reply       chat.Message
}

// Controller owns the in-memory transcript and input state for one chat.
// Only one send may be in flight; a concurrent submit fails with ErrBusy
// rather than racing the transcript.
type Controller struct {
	store     Store
	completer Completer
	bus       *notify.Bus

	mu       sync.Mutex
	sending  bool
	userID   string
	chatID   string
	input    string
	messages []chat.Message
}

// NewController builds a controller for a user's chat. chatID may be empty
// for a conversation that does not exist yet.
func NewController(store Store, completer Completer, bus *notify.Bus, userID, chatID string) *Controller {
	return &Controller{
		store:     store,
		completer: completer,
		bus:       bus,
		userID:    userID,
		chatID:    chatID,
	}
}

// Load pulls the persisted transcript into memory. Fetch failures degrade to
// an empty transcript; only writes surface errors to the user.
func (c *Controller) Load(ctx context.Context) {
	c.mu.Lock()
	chatID := c.chatID
	c.mu.Unlock()

	if chatID == "" {
		return
	}

	messages, err := c.store.Messages(ctx, chatID)
	if err != nil {
		log.Printf("[flow] failed to load transcript for chat=%s: %v", chatID, err)
		messages = nil
	}

	c.mu.Lock()
	c.messages = messages
	c.mu.Unlock()
}

// SetInput replaces the composed input text.
func (c *Controller) SetInput(input string) {
	c.mu.Lock()
	c.input = input
	c.mu.Unlock()
}

// Input returns the current input text. It survives a failed submit so the
// user can retry.
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// ChatID returns the session id, empty until the first message creates one.
func (c *Controller) ChatID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chatID
}

// State reports the controller lifecycle position.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.sending:
		return StateSending
	case strings.TrimSpace(c.input) != "":
		return StateComposing
	default:
		return StateIdle
	}
}

// Messages returns a copy of the in-memory transcript.
func (c *Controller) Messages() []chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := make([]chat.Message, len(c.messages))
	copy(copied, c.messages)
	return copied
}

// Submit runs one send round trip with the composed input:
//
//  1. validate the trimmed input (no state change on rejection);
//  2. on the first message, create the chat record before anything else and
//     publish the chat-created event;
//  3. append the user message locally, then persist it;
//  4. stream the completion for the full normalized transcript;
//  5. append and persist the assistant reply, then clear the input.
//
// On a completion failure the optimistic user message stays in the transcript
// and the input is preserved for retry.
func (c *Controller) Submit(ctx context.Context, onDelta func(string)) (*Result, error) {
	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return nil, ErrBusy
	}

	content := strings.TrimSpace(c.input)
	if content == "" {
		c.mu.Unlock()
		return nil, ErrEmptyInput
	}
	if len([]rune(content)) < MinInputLen {
		c.mu.Unlock()
		return nil, ErrInputTooShort
	}

	c.sending = true
	firstMessage := len(c.messages) == 0
	chatID := c.chatID
	userID := c.userID
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.sending = false
		c.mu.Unlock()
	}()

	createdChat := false
	if firstMessage {
		if userID == "" {
			return nil, ErrUserRequired
		}
		if chatID == "" {
			chatID = uuid.NewString()
		}
		if err := c.store.CreateChat(ctx, chatID, chat.TitleFromMessage(content), userID); err != nil {
			return nil, err
		}
		createdChat = true

		c.mu.Lock()
		c.chatID = chatID
		c.mu.Unlock()

		if c.bus != nil {
			c.bus.Publish(notify.Event{
				UserID: userID,
				ChatID: chatID,
				Title:  chat.TitleFromMessage(content),
			})
		}
	}

	userMsg := chat.Message{
		ID:        newMessageID(),
		ChatID:    chatID,
		Role:      chat.RoleUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	c.mu.Lock()
	c.messages = append(c.messages, userMsg)
	transcript := chat.BuildTranscript(c.messages)
	c.mu.Unlock()

	// Awaited for wire ordering, but a failure here does not abort the send;
	// the optimistic message is not rolled back either.
	if err := c.store.SaveMessage(ctx, chatID, chat.RoleUser, content); err != nil {
		log.Printf("[flow] failed to persist user message for chat=%s: %v", chatID, err)
	}

	reply, err := c.completer.Complete(ctx, transcript, onDelta)
	if err != nil {
		return nil, err
	}

	replyMsg := chat.Message{
		ID:        newMessageID(),
		ChatID:    chatID,
		Role:      chat.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now().UTC(),
	}

	c.mu.Lock()
	c.messages = append(c.messages, replyMsg)
	c.input = ""
	c.mu.Unlock()

	if err := c.store.SaveMessage(ctx, chatID, chat.SenderBot, reply); err != nil {
		log.Printf("[flow] failed to persist assistant message for chat=%s: %v", chatID, err)
	}

	return &Result{
		ChatID:      chatID,
		CreatedChat: createdChat,
		UserMessage: userMsg,
		Reply:       replyMsg,
	}, nil
}

// newMessageID yields the time-based client-side message id the history
// contract expects.
func newMessageID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
