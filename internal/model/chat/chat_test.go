package chat

import "testing"

func TestTitleFromMessageTruncates(t *testing.T) {
	got := TitleFromMessage("How can I manage stress during exam periods?")
	want := "How can I manage stress during"
	if got != want {
		t.Fatalf("unexpected title: got %q want %q", got, want)
	}
}

func TestTitleFromMessageShortInput(t *testing.T) {
	if got := TitleFromMessage("  hello  "); got != "hello" {
		t.Fatalf("unexpected title: got %q", got)
	}
}

func TestNormalizedRole(t *testing.T) {
	cases := []struct {
		name string
		msg  Message
		want string
	}{
		{"bot sender maps to assistant", Message{Sender: "bot", Content: "x"}, RoleAssistant},
		{"user sender stays user", Message{Sender: "user", Content: "x"}, RoleUser},
		{"user role stays user", Message{Role: "user", Content: "x"}, RoleUser},
		{"assistant role stays assistant", Message{Role: "assistant", Content: "x"}, RoleAssistant},
		{"bot role maps to assistant", Message{Role: "bot", Content: "x"}, RoleAssistant},
		{"role wins over sender", Message{Role: "assistant", Sender: "user", Content: "x"}, RoleAssistant},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.msg.NormalizedRole(); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestBuildTranscriptDropsUnusableMessages(t *testing.T) {
	messages := []Message{
		{Sender: "user", Content: "hi"},
		{Sender: "bot", Content: "hello"},
		{Sender: "user", Content: ""},
		{Content: "orphan"},
	}

	entries := BuildTranscript(messages)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Role != RoleUser || entries[0].Content != "hi" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Role != RoleAssistant || entries[1].Content != "hello" {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}
