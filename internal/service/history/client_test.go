package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListChatsParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chats" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("user_id") != "u1" {
			t.Errorf("unexpected user_id: %s", r.URL.Query().Get("user_id"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"chats":[{"id":"c1","title":"first"},{"id":"c2","title":"second"}]}`))
	}))
	defer srv.Close()

	chats, err := NewClient(srv.URL).ListChats(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListChats err: %v", err)
	}
	if len(chats) != 2 || chats[0].ID != "c1" {
		t.Fatalf("unexpected chats: %+v", chats)
	}
}

func TestListChatsFailureDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	chats, err := NewClient(srv.URL).ListChats(context.Background(), "u1")
	if err != nil {
		t.Fatalf("read-path failures must be swallowed, got %v", err)
	}
	if len(chats) != 0 {
		t.Fatalf("expected empty list, got %+v", chats)
	}
}

func TestMessagesFailureDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	messages, err := NewClient(srv.URL).Messages(context.Background(), "c1")
	if err != nil {
		t.Fatalf("read-path failures must be swallowed, got %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected empty transcript, got %+v", messages)
	}
}

func TestCreateChatPostsPayload(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).CreateChat(context.Background(), "c1", "my title", "u1")
	if err != nil {
		t.Fatalf("CreateChat err: %v", err)
	}

	if got["chatId"] != "c1" || got["title"] != "my title" || got["userId"] != "u1" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestCreateChatFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).CreateChat(context.Background(), "c1", "t", "u1"); err == nil {
		t.Fatal("expected error when chat creation fails")
	}
}

func TestSaveMessagePostsHistoryShape(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).SaveMessage(context.Background(), "c1", "bot", "hi there")
	if err != nil {
		t.Fatalf("SaveMessage err: %v", err)
	}
	if got["chat_id"] != "c1" || got["sender"] != "bot" || got["content"] != "hi there" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestDeleteChatFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("unexpected method: %s", r.Method)
		}
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).DeleteChat(context.Background(), "missing"); err == nil {
		t.Fatal("expected error when delete fails")
	}
}
