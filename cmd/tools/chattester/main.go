// chattester exercises the history and completion clients from a terminal:
// list a user's chats, dump a transcript, or run one full submit round trip
// through the flow controller.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/studentbot/backend/internal/config"
	"github.com/studentbot/backend/internal/service/chatflow"
	"github.com/studentbot/backend/internal/service/completion"
	"github.com/studentbot/backend/internal/service/history"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] cannot load .env, using system environment variables: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	mode := flag.String("mode", "", "test mode: list, transcript or send")
	userID := flag.String("user", "", "user id owning the chats")
	chatID := flag.String("chat", "", "chat id (empty starts a new chat in send mode)")
	message := flag.String("message", "", "message to submit in send mode")
	historyURL := flag.String("history", cfg.History.BaseURL, "history service base URL")
	completionURL := flag.String("completion", cfg.Completion.BaseURL, "completion service base URL")
	timeout := flag.Duration("timeout", 60*time.Second, "request timeout")

	flag.Parse()

	if *historyURL == "" {
		log.Fatal("a history base URL is required: set HISTORY_BASE_URL or pass -history")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store := history.NewClient(*historyURL)
	heading := color.New(color.FgCyan, color.Bold)
	botText := color.New(color.FgGreen)
	userText := color.New(color.FgYellow)

	switch *mode {
	case "list":
		requireFlag(*userID, "-user")
		chats, _ := store.ListChats(ctx, *userID)
		heading.Printf("%d chat(s) for user %s\n", len(chats), *userID)
		for _, session := range chats {
			fmt.Printf("  %s  %s\n", session.ID, session.Title)
		}

	case "transcript":
		requireFlag(*chatID, "-chat")
		messages, _ := store.Messages(ctx, *chatID)
		heading.Printf("%d message(s) in chat %s\n", len(messages), *chatID)
		for _, msg := range messages {
			line := userText
			if msg.FromAssistant() {
				line = botText
			}
			line.Printf("  [%s] %s\n", msg.NormalizedRole(), msg.Content)
		}

	case "send":
		requireFlag(*userID, "-user")
		requireFlag(*message, "-message")
		if *completionURL == "" {
			log.Fatal("send mode needs a completion base URL: set COMPLETION_BASE_URL or pass -completion")
		}

		controller := chatflow.NewController(store, completion.NewClient(*completionURL), nil, *userID, *chatID)
		controller.Load(ctx)
		controller.SetInput(*message)

		heading.Println("streaming reply:")
		result, err := controller.Submit(ctx, func(delta string) {
			botText.Print(delta)
		})
		fmt.Println()
		if err != nil {
			log.Fatalf("submit failed: %v", err)
		}
		if result.CreatedChat {
			heading.Printf("created chat %s\n", result.ChatID)
		}
		heading.Printf("done, reply length=%d\n", len(result.Reply.Content))

	default:
		flag.Usage()
		log.Fatal("specify -mode=list, -mode=transcript or -mode=send")
	}
}

func requireFlag(value, name string) {
	if value == "" {
		flag.Usage()
		fmt.Fprintf(os.Stderr, "missing required flag %s\n", name)
		os.Exit(2)
	}
}
