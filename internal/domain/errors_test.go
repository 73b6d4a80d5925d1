package domain_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/msomdec/blog-desk/internal/domain"
)

func TestAsErrorThroughWrapping(t *testing.T) {
	base := &domain.Error{Kind: domain.KindAPI, Status: http.StatusUnauthorized, Message: "invalid credentials"}
	wrapped := fmt.Errorf("login: %w", base)

	e, ok := domain.AsError(wrapped)
	if !ok {
		t.Fatal("expected AsError to find *domain.Error")
	}
	if e.Message != "invalid credentials" {
		t.Fatalf("expected message %q, got %q", "invalid credentials", e.Message)
	}
	if !e.Unauthorized() {
		t.Fatal("expected Unauthorized to be true for a 401 API error")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	e := &domain.Error{Kind: domain.KindTransport, Message: cause.Error(), Err: cause}
	if !errors.Is(e, cause) {
		t.Fatal("expected errors.Is to reach the cause")
	}
	if e.Unauthorized() {
		t.Fatal("transport errors are never unauthorized")
	}
	if e.Kind.String() != "transport" {
		t.Fatalf("expected kind transport, got %s", e.Kind)
	}
}

func TestAsErrorMissing(t *testing.T) {
	if _, ok := domain.AsError(errors.New("plain")); ok {
		t.Fatal("expected AsError to fail for a plain error")
	}
}
