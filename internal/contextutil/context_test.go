package contextutil

import (
	"context"
	"log/slog"
	"sync"
	"testing"
)

func TestLoggerFromContext_Default(t *testing.T) {
	logger := LoggerFromContext(context.Background())
	if logger != slog.Default() {
		t.Error("LoggerFromContext() without a stored logger should return slog.Default()")
	}
}

func TestLoggerFromContext_Stored(t *testing.T) {
	custom := slog.Default().With("component", "test")
	ctx := WithLogger(context.Background(), custom)

	if got := LoggerFromContext(ctx); got != custom {
		t.Error("LoggerFromContext() should return the logger stored in context")
	}
}

func TestConversationID_RoundTrip(t *testing.T) {
	ctx := context.Background()

	if _, ok := ConversationIDFromContext(ctx); ok {
		t.Error("ConversationIDFromContext() on a fresh context should report absent")
	}

	ctx = WithConversationID(ctx, "conv-1")
	id, ok := ConversationIDFromContext(ctx)
	if !ok || id != "conv-1" {
		t.Errorf("ConversationIDFromContext() = %q, %v, want conv-1, true", id, ok)
	}
}

func TestConversationID_NestedShadowing(t *testing.T) {
	outer := WithConversationID(context.Background(), "outer")
	inner := WithConversationID(outer, "inner")

	if id, _ := ConversationIDFromContext(inner); id != "inner" {
		t.Errorf("inner scope sees %q, want inner", id)
	}
	// The outer context is untouched once the inner scope is done with its value.
	if id, _ := ConversationIDFromContext(outer); id != "outer" {
		t.Errorf("outer scope sees %q, want outer", id)
	}
}

func TestConversationID_ConcurrentIsolation(t *testing.T) {
	// Two concurrently running logical units, each with its own identifier,
	// must never observe each other's identifier.
	base := context.Background()

	var wg sync.WaitGroup
	errs := make(chan string, 2)

	run := func(id string) {
		defer wg.Done()
		ctx := WithConversationID(base, id)
		for i := 0; i < 1000; i++ {
			got, ok := ConversationIDFromContext(ctx)
			if !ok || got != id {
				errs <- got
				return
			}
		}
	}

	wg.Add(2)
	go run("unit-a")
	go run("unit-b")
	wg.Wait()
	close(errs)

	for got := range errs {
		t.Errorf("goroutine observed foreign conversation ID %q", got)
	}

	// After both units complete, the ambient scope carries no identifier.
	if _, ok := ConversationIDFromContext(base); ok {
		t.Error("base context should carry no conversation ID after units complete")
	}
}

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	id, ok := RequestIDFromContext(ctx)
	if !ok || id != "req-42" {
		t.Errorf("RequestIDFromContext() = %q, %v, want req-42, true", id, ok)
	}
}
