// Package completion implements the client side of the streaming completion
// contract: post a transcript, read the reply back as raw text chunks.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/studentbot/backend/internal/model/chat"
)

// ErrEmptyBody signals a completion response with nothing to read. The caller
// must surface it and leave the transcript untouched.
var ErrEmptyBody = errors.New("completion response has no body")

const readChunkSize = 4096

// Client posts transcripts to a completion endpoint and reassembles the
// streamed reply. There is no framing on the wire: chunks are concatenated in
// arrival order until the stream ends.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a completion client for the given base URL. No timeout is
// set on the underlying client: the stream stays open for as long as the
// model keeps producing.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// Complete issues one completion request for the full transcript and returns
// the concatenated reply. onDelta, when non-nil, observes every decoded chunk
// as it arrives so callers can render incrementally.
func (c *Client) Complete(ctx context.Context, transcript []chat.TranscriptEntry, onDelta func(string)) (string, error) {
	body, err := json.Marshal(map[string]any{"messages": transcript})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion endpoint returned status %d", resp.StatusCode)
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return "", ErrEmptyBody
	}

	reply, err := accumulate(resp.Body, onDelta)
	if err != nil {
		return "", err
	}
	if reply == "" {
		return "", ErrEmptyBody
	}
	return reply, nil
}

// accumulate concatenates stream chunks in arrival order. The result is
// identical whether the reply arrives as one chunk or many.
func accumulate(r io.Reader, onDelta func(string)) (string, error) {
	buf := make([]byte, readChunkSize)
	var out strings.Builder

	for {
		n, err := r.Read(buf)
		if n > 0 {
			delta := string(buf[:n])
			out.WriteString(delta)
			if onDelta != nil {
				onDelta(delta)
			}
		}
		if errors.Is(err, io.EOF) {
			return out.String(), nil
		}
		if err != nil {
			return "", fmt.Errorf("read completion stream: %w", err)
		}
	}
}
