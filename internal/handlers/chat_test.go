package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"notechat-ai/internal/service"
	"notechat-ai/internal/service/mocks"
)

func TestChatHandler_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	chatService := mocks.NewMockChatService(ctrl)
	handler := NewChatHandler(chatService)

	chatService.EXPECT().
		ProcessChat(gomock.Any(), service.ChatRequest{Message: "Hello"}).
		Return(service.ChatResponse{Reply: "Hi there!"}, nil)

	body, _ := json.Marshal(ChatRequest{Message: "Hello"})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Reply != "Hi there!" {
		t.Errorf("reply = %q, want Hi there!", resp.Reply)
	}
}

func TestChatHandler_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	chatService := mocks.NewMockChatService(ctrl)
	handler := NewChatHandler(chatService)

	chatService.EXPECT().
		ProcessChat(gomock.Any(), gomock.Any()).
		Return(service.ChatResponse{}, &service.ValidationError{Field: "message", Message: "cannot be empty"})

	body, _ := json.Marshal(ChatRequest{Message: ""})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestChatHandler_ExternalServiceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	chatService := mocks.NewMockChatService(ctrl)
	handler := NewChatHandler(chatService)

	chatService.EXPECT().
		ProcessChat(gomock.Any(), gomock.Any()).
		Return(service.ChatResponse{}, service.WrapError(service.ErrExternalService, "LLM call failed"))

	body, _ := json.Marshal(ChatRequest{Message: "Hello"})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestChatHandler_Streaming(t *testing.T) {
	ctrl := gomock.NewController(t)
	chatService := mocks.NewMockChatService(ctrl)
	handler := NewChatHandler(chatService)

	chatService.EXPECT().
		StreamChat(gomock.Any(), service.ChatRequest{Message: "Hello"}, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ service.ChatRequest, callback func(chunk string) error) error {
			for _, chunk := range []string{"Hi", " there"} {
				if err := callback(chunk); err != nil {
					return err
				}
			}
			return nil
		})

	body, _ := json.Marshal(ChatRequest{Message: "Hello"})
	req := httptest.NewRequest(http.MethodPost, "/api/chat?stream=true", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	out := rec.Body.String()
	if !strings.Contains(out, "data: Hi\n\n") || !strings.Contains(out, "data: [DONE]\n\n") {
		t.Errorf("streaming output = %q", out)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
}

func TestChatHandler_UnknownError(t *testing.T) {
	ctrl := gomock.NewController(t)
	chatService := mocks.NewMockChatService(ctrl)
	handler := NewChatHandler(chatService)

	chatService.EXPECT().
		ProcessChat(gomock.Any(), gomock.Any()).
		Return(service.ChatResponse{}, errors.New("boom"))

	body, _ := json.Marshal(ChatRequest{Message: "Hello"})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
