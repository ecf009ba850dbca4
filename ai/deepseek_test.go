package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shadil-rayyan/Math-Mantra-sub000/models"
)

func TestExplain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "3+5") {
			t.Errorf("unexpected request %+v", req)
		}
		json.NewEncoder(w).Encode(chatResponse{Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: "Three plus five is eight."}}}})
	}))
	defer srv.Close()

	c := NewClient("secret", srv.URL, time.Second)
	got, err := c.Explain(context.Background(), models.Question{Expression: "3+5", Answer: 8})
	if err != nil {
		t.Fatalf("Explain() error: %v", err)
	}
	if got != "Three plus five is eight." {
		t.Errorf("Explain() = %q", got)
	}
}

func TestExplainErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}, nil},
		{"no choices", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}, ErrNoChoices},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{`))
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			_, err := NewClient("k", srv.URL, time.Second).Explain(context.Background(), models.Question{Expression: "1+1", Answer: 2})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPromptLabel(t *testing.T) {
	p := Prompt(models.Question{Expression: "Turn to the east", Target: "east"})
	if !strings.Contains(p, "Correct answer: east") {
		t.Errorf("prompt missing label answer: %s", p)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("k", "", 0)
	if c.url != DefaultAPIURL || c.timeout != DefaultTimeout {
		t.Errorf("unexpected defaults %q %v", c.url, c.timeout)
	}
}
