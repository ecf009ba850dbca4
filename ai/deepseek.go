package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/shadil-rayyan/Math-Mantra-sub000/models"
)

const (
	DefaultAPIURL  = "https://api.deepseek.com/v1/chat/completions"
	DefaultTimeout = 60 * time.Second
	model          = "deepseek-chat"
)

// ErrNoChoices is returned when the API answers without any completion.
var ErrNoChoices = errors.New("no choices in API response")

// Client asks a chat completions API to explain questions
type Client struct {
	apiKey  string
	url     string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates a new API client. Empty url and zero timeout select the defaults.
func NewClient(apiKey, url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		apiKey:  apiKey,
		url:     url,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	ID      string       `json:"id,omitempty"`
}

// Prompt builds the request text for a question
func Prompt(q models.Question) string {
	answer := fmt.Sprintf("%d", q.Answer)
	if q.Target != "" {
		answer = q.Target
	}
	return fmt.Sprintf(`
A child is practising maths and just got this question wrong.

Question: %s
Correct answer: %s

Explain step by step, in short simple sentences, how to reach the correct answer.
The explanation will be read aloud by a screen reader, so avoid tables and symbols that are hard to pronounce.
Answer in plain text.
`, q.Expression, answer)
}

// Explain returns a step-by-step explanation of a question
func (c *Client) Explain(ctx context.Context, q models.Question) (string, error) {
	startTime := time.Now()
	log.Printf("Requesting explanation for %q", q.Expression)

	reqJSON, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: Prompt(q)}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			log.Printf("Explanation request timed out after %v", time.Since(startTime))
		}
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("API request failed with status %d: %s", resp.StatusCode, truncate(string(body), 300))
		return "", fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return "", ErrNoChoices
	}

	content := chat.Choices[0].Message.Content
	log.Printf("Explanation for %q received in %v. Content length: %d", q.Expression, time.Since(startTime), len(content))
	return content, nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
