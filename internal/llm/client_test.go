package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080", "test-key", "test-model")
	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.Model != "test-model" {
		t.Errorf("NewClient() Model = %v, want test-model", client.Model)
	}
}

func TestClient_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("expected /v1/chat/completions, got %s", r.URL.Path)
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("expected single user message, got %+v", req.Messages)
		}

		resp := ChatResponse{
			Choices: []ChatChoice{
				{Message: ChatChoiceMessage{Role: "assistant", Content: "Hello there"}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	reply, err := client.Chat(context.Background(), "Hi")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "Hello there" {
		t.Errorf("Chat() = %q, want %q", reply, "Hello there")
	}
}

func TestClient_ChatWithMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "override-model" {
			t.Errorf("request model = %q, want override-model", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system+user messages, got %+v", req.Messages)
		}

		resp := ChatResponse{
			Choices: []ChatChoice{
				{Message: ChatChoiceMessage{Role: "assistant", Content: "ok"}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "default-model")
	messages := []Message{
		{Role: "system", Content: "You are helpful."},
		{Role: "user", Content: "Hi"},
	}
	reply, err := client.ChatWithMessages(context.Background(), messages, ChatParams{Model: "override-model", Temperature: 0.7})
	if err != nil {
		t.Fatalf("ChatWithMessages() error = %v", err)
	}
	if reply != "ok" {
		t.Errorf("ChatWithMessages() = %q, want %q", reply, "ok")
	}
}

func TestClient_Chat_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ChatResponse{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	if _, err := client.Chat(context.Background(), "Hi"); err == nil {
		t.Error("Chat() expected error for empty choices, got nil")
	}
}

func TestClient_Chat_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	if _, err := client.Chat(context.Background(), "Hi"); err == nil {
		t.Error("Chat() expected error on 503 response, got nil")
	}
}

func TestClient_StreamChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if !req.Stream {
			t.Error("expected stream=true in request")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{"Hel", "lo"}
		for _, chunk := range chunks {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q},\"finish_reason\":\"\"}]}\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")

	var got string
	err := client.StreamChat(context.Background(), "Hi", func(chunk string) error {
		got += chunk
		return nil
	})
	if err != nil {
		t.Fatalf("StreamChat() error = %v", err)
	}
	if got != "Hello" {
		t.Errorf("StreamChat() collected %q, want %q", got, "Hello")
	}
}

func TestClient_StreamChat_CallbackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"x\"},\"finish_reason\":\"\"}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	err := client.StreamChat(context.Background(), "Hi", func(chunk string) error {
		return fmt.Errorf("consumer gone")
	})
	if err == nil {
		t.Error("StreamChat() expected callback error to propagate, got nil")
	}
}
