package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"notechat-ai/internal/indexer"
)

// stubIndexer implements Indexer for handler tests.
type stubIndexer struct {
	allCalls  int
	globCalls []string
	stats     indexer.Stats
	err       error
}

func (s *stubIndexer) IndexAll(_ context.Context) (indexer.Stats, error) {
	s.allCalls++
	return s.stats, s.err
}

func (s *stubIndexer) IndexGlob(_ context.Context, pattern string) (indexer.Stats, error) {
	s.globCalls = append(s.globCalls, pattern)
	return s.stats, s.err
}

func TestIndexHandler_IndexAll(t *testing.T) {
	stub := &stubIndexer{stats: indexer.Stats{Indexed: 5, Skipped: 12, Failed: 1}}
	handler := NewIndexHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/index", bytes.NewReader(nil))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if stub.allCalls != 1 || len(stub.globCalls) != 0 {
		t.Errorf("expected one IndexAll call, got all=%d glob=%v", stub.allCalls, stub.globCalls)
	}

	var resp IndexResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Indexed != 5 || resp.Skipped != 12 || resp.Failed != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestIndexHandler_IndexGlob(t *testing.T) {
	stub := &stubIndexer{stats: indexer.Stats{Indexed: 2}}
	handler := NewIndexHandler(stub)

	body, _ := json.Marshal(IndexRequest{Glob: "projects/*.md"})
	req := httptest.NewRequest(http.MethodPost, "/api/index", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(stub.globCalls) != 1 || stub.globCalls[0] != "projects/*.md" {
		t.Errorf("glob calls = %v", stub.globCalls)
	}
}

func TestIndexHandler_Error(t *testing.T) {
	stub := &stubIndexer{err: fmt.Errorf("notes root missing")}
	handler := NewIndexHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/index", bytes.NewReader(nil))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestIndexHandler_MethodNotAllowed(t *testing.T) {
	handler := NewIndexHandler(&stubIndexer{})

	req := httptest.NewRequest(http.MethodGet, "/api/index", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
