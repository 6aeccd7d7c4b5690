package chat

import (
	"strings"
	"time"
)

// TitleLimit caps how much of the first message becomes the session title.
const TitleLimit = 30

// Session is a user-owned conversation thread. The id is client-generated and
// opaque; the title is fixed at creation from the first message.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// TitleFromMessage derives a session title from the first message of a new
// conversation, truncated to TitleLimit characters.
func TitleFromMessage(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) > TitleLimit {
		return string(runes[:TitleLimit])
	}
	return content
}
