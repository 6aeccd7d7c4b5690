package chat

import "time"

// Role and sender values used across the history and completion contracts.
// The history service stores "user"/"bot" senders; the completion endpoint
// accepts "user"/"assistant" roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	SenderBot     = "bot"
)

// Message is one turn in a session transcript. Stored rows may carry either a
// role or a sender depending on which service wrote them.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId,omitempty"`
	Sender    string    `json:"sender,omitempty"`
	Role      string    `json:"role,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// NormalizedRole maps whatever the message carries onto the completion
// contract: the role wins over the sender, and "bot" always becomes
// "assistant".
func (m Message) NormalizedRole() string {
	role := m.Role
	if role == "" {
		role = m.Sender
	}
	if role == SenderBot {
		return RoleAssistant
	}
	return role
}

// FromAssistant reports whether the message is a bot/assistant turn.
func (m Message) FromAssistant() bool {
	return m.NormalizedRole() == RoleAssistant
}

// TranscriptEntry is the role/content pair the completion endpoint accepts.
type TranscriptEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BuildTranscript converts stored messages into outbound completion entries,
// dropping messages without content or an identifiable role.
func BuildTranscript(messages []Message) []TranscriptEntry {
	entries := make([]TranscriptEntry, 0, len(messages))
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		role := msg.NormalizedRole()
		if role == "" {
			continue
		}
		entries = append(entries, TranscriptEntry{Role: role, Content: msg.Content})
	}
	return entries
}
