// Package ai generates assistant replies with an Ark chat model through an
// eino chain. It backs the local /api/chat endpoint when no remote completion
// service is configured.
package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/studentbot/backend/internal/config"
	"github.com/studentbot/backend/internal/model/chat"
)

// ErrEmptyTranscript is returned when a completion is requested with no user
// message to answer.
var ErrEmptyTranscript = errors.New("transcript has no user message")

const systemPrompt = "You are StudentBot, a supportive assistant for students. " +
	"You give practical, encouraging guidance on health and wellness, career " +
	"paths, study techniques and personal development. Keep answers concise, " +
	"concrete and actionable, and remind users to verify important decisions " +
	"with a qualified advisor."

// Service wraps the compiled prompt/model chain.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the AI service from configuration.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{chatModel: chatModel, cfg: cfg, chain: runnable}, nil
}

// StreamingEnabled reports whether replies should stream chunk by chunk.
func (s *Service) StreamingEnabled() bool {
	return s.cfg.StreamResponse
}

// GenerateReply produces one complete reply for the transcript.
func (s *Service) GenerateReply(ctx context.Context, transcript []chat.TranscriptEntry) (string, error) {
	input, err := buildChainInput(transcript)
	if err != nil {
		return "", err
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	log.Printf("[ai] generated reply, length=%d", len(response.Content))
	return response.Content, nil
}

// StreamReply streams reply chunks for the transcript.
func (s *Service) StreamReply(ctx context.Context, transcript []chat.TranscriptEntry) (*schema.StreamReader[*schema.Message], error) {
	if !s.StreamingEnabled() {
		return nil, fmt.Errorf("streaming disabled in configuration")
	}

	input, err := buildChainInput(transcript)
	if err != nil {
		return nil, err
	}

	stream, err := s.chain.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to stream AI chain output: %w", err)
	}
	return stream, nil
}

// Complete satisfies the flow controller's Completer: it streams when the
// configuration allows it and falls back to a single invoke otherwise.
func (s *Service) Complete(ctx context.Context, transcript []chat.TranscriptEntry, onDelta func(string)) (string, error) {
	if !s.StreamingEnabled() {
		reply, err := s.GenerateReply(ctx, transcript)
		if err != nil {
			return "", err
		}
		if onDelta != nil {
			onDelta(reply)
		}
		return reply, nil
	}

	stream, err := s.StreamReply(ctx, transcript)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" && onDelta != nil {
			onDelta(chunk.Content)
		}
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

// buildChainInput splits the transcript into prior history plus the query the
// model should answer. The final user entry is the query.
func buildChainInput(transcript []chat.TranscriptEntry) (map[string]any, error) {
	if len(transcript) == 0 {
		return nil, ErrEmptyTranscript
	}

	last := transcript[len(transcript)-1]
	if last.Role != chat.RoleUser {
		return nil, ErrEmptyTranscript
	}

	const historyLimit = 10

	prior := transcript[:len(transcript)-1]
	startIdx := 0
	if len(prior) > historyLimit {
		startIdx = len(prior) - historyLimit
	}

	history := make([]*schema.Message, 0, len(prior)-startIdx)
	for _, entry := range prior[startIdx:] {
		switch entry.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(entry.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(entry.Content, nil))
		}
	}

	return map[string]any{
		"system":  systemPrompt,
		"history": history,
		"query":   last.Content,
	}, nil
}
