package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studentbot/backend/internal/model/chat"
)

var (
	ErrUserRequired = errors.New("user id is required")
	ErrChatNotFound = errors.New("chat not found")
)

// Service is the in-memory chat history backend. It serves the same contract
// a remote history service would, which keeps the flow controller oblivious
// to where transcripts actually live.
type Service struct {
	mu       sync.RWMutex
	chats    map[string]chat.Session
	byUser   map[string][]string
	messages map[string][]chat.Message
}

// NewService bootstraps the in-memory history store.
func NewService() *Service {
	return &Service{
		chats:    make(map[string]chat.Session),
		byUser:   make(map[string][]string),
		messages: make(map[string][]chat.Message),
	}
}

// CreateChat records a new session owned by the given user. An empty chatID
// gets a generated one; creating an id twice is idempotent.
func (s *Service) CreateChat(_ context.Context, chatID, title, userID string) error {
	if userID == "" {
		return ErrUserRequired
	}
	if chatID == "" {
		chatID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[chatID]; ok {
		return nil
	}

	s.chats[chatID] = chat.Session{
		ID:        chatID,
		UserID:    userID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	s.byUser[userID] = append(s.byUser[userID], chatID)
	s.messages[chatID] = make([]chat.Message, 0, 16)
	return nil
}

// ListChats returns the sessions owned by a user, newest first.
func (s *Service) ListChats(_ context.Context, userID string) ([]chat.Session, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	sessions := make([]chat.Session, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if session, ok := s.chats[ids[i]]; ok {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

// GetChat retrieves a session by identifier.
func (s *Service) GetChat(_ context.Context, chatID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.chats[chatID]
	if !ok {
		return chat.Session{}, ErrChatNotFound
	}
	return session, nil
}

// SaveMessage appends one message to a chat's transcript.
func (s *Service) SaveMessage(_ context.Context, chatID, sender, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[chatID]; !ok {
		return ErrChatNotFound
	}

	s.messages[chatID] = append(s.messages[chatID], chat.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Sender:    sender,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// Messages returns the stored transcript for a chat in insertion order.
func (s *Service) Messages(_ context.Context, chatID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[chatID]
	if !ok {
		return nil, ErrChatNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// DeleteChat removes a session and its messages.
func (s *Service) DeleteChat(_ context.Context, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.chats[chatID]
	if !ok {
		return ErrChatNotFound
	}

	delete(s.chats, chatID)
	delete(s.messages, chatID)

	ids := s.byUser[session.UserID]
	for i, id := range ids {
		if id == chatID {
			s.byUser[session.UserID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}
