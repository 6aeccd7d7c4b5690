package chats

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/studentbot/backend/internal/notify"
	chatservice "github.com/studentbot/backend/internal/service/chat"
)

func setupRouter() (*chi.Mux, *chatservice.Service, *notify.Bus) {
	chatSvc := chatservice.NewService()
	bus := notify.NewBus()
	handler := New(chatSvc, bus)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc, bus
}

func postJSON(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCreateChat(t *testing.T) {
	r, _, bus := setupRouter()
	events := bus.Subscribe()
	defer bus.Unsubscribe(events)

	resp := postJSON(r, "/chats", map[string]string{
		"chatId": "c1",
		"title":  "exam stress",
		"userId": "u1",
	})

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	select {
	case evt := <-events:
		if evt.ChatID != "c1" || evt.UserID != "u1" {
			t.Fatalf("unexpected event: %+v", evt)
		}
	default:
		t.Fatal("expected a chat-created event")
	}
}

func TestCreateChatMissingUserID(t *testing.T) {
	r, _, _ := setupRouter()

	resp := postJSON(r, "/chats", map[string]string{"chatId": "c1", "title": "t"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestListChats(t *testing.T) {
	r, _, _ := setupRouter()
	postJSON(r, "/chats", map[string]string{"chatId": "c1", "title": "first", "userId": "u1"})

	req := httptest.NewRequest(http.MethodGet, "/chats?user_id=u1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var payload struct {
		Chats []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"chats"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Chats) != 1 || payload.Chats[0].ID != "c1" {
		t.Fatalf("unexpected chats: %+v", payload.Chats)
	}
}

func TestSaveAndFetchMessages(t *testing.T) {
	r, _, _ := setupRouter()
	postJSON(r, "/chats", map[string]string{"chatId": "c1", "title": "t", "userId": "u1"})

	resp := postJSON(r, "/messages", map[string]string{
		"chat_id": "c1",
		"sender":  "user",
		"content": "hello",
	})
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/messages?chat_id=c1", nil)
	getResp := httptest.NewRecorder()
	r.ServeHTTP(getResp, req)

	var payload struct {
		Messages []struct {
			Sender  string `json:"sender"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(getResp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Messages) != 1 || payload.Messages[0].Content != "hello" {
		t.Fatalf("unexpected messages: %+v", payload.Messages)
	}
}

func TestSaveMessageUnknownChat(t *testing.T) {
	r, _, _ := setupRouter()

	resp := postJSON(r, "/messages", map[string]string{
		"chat_id": "missing",
		"sender":  "user",
		"content": "hello",
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestFetchMessagesUnknownChatIsEmpty(t *testing.T) {
	r, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/messages?chat_id=missing", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Body.String(); !bytes.Contains([]byte(got), []byte(`"messages":[]`)) {
		t.Fatalf("expected empty message list, got %s", got)
	}
}

func TestDeleteChatRemovesFromNextList(t *testing.T) {
	r, _, _ := setupRouter()
	postJSON(r, "/chats", map[string]string{"chatId": "c1", "title": "t", "userId": "u1"})

	req := httptest.NewRequest(http.MethodDelete, "/chats/c1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	listReq := httptest.NewRequest(http.MethodGet, "/chats?user_id=u1", nil)
	listResp := httptest.NewRecorder()
	r.ServeHTTP(listResp, listReq)

	var payload struct {
		Chats []any `json:"chats"`
	}
	if err := json.Unmarshal(listResp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Chats) != 0 {
		t.Fatalf("expected chat to vanish from the list, got %+v", payload.Chats)
	}
}

func TestDeleteUnknownChat(t *testing.T) {
	r, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodDelete, "/chats/missing", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
