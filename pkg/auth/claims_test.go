package auth

import (
	"context"
	"errors"
	"testing"
)

func TestGetClaims(t *testing.T) {
	claims := &Claims{Email: "ada@example.com"}
	claims.Subject = "user-123"

	got, ok := GetClaims(WithClaims(context.Background(), claims, "raw-token"))
	if !ok {
		t.Fatal("expected claims to be found")
	}
	if got.Subject != "user-123" || got.Email != "ada@example.com" {
		t.Errorf("unexpected claims %+v", got)
	}
}

func TestGetClaims_NotFound(t *testing.T) {
	if _, ok := GetClaims(context.Background()); ok {
		t.Error("expected claims to not be found")
	}
}

func TestGetClaims_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), ClaimsKey, "not-a-claims-struct")

	if _, ok := GetClaims(ctx); ok {
		t.Error("expected claims to not be found when wrong type")
	}
}

func TestGetToken(t *testing.T) {
	ctx := WithClaims(context.Background(), &Claims{}, "test-token-abc123")

	got, ok := GetToken(ctx)
	if !ok || got != "test-token-abc123" {
		t.Errorf("expected token 'test-token-abc123', got %q (ok=%v)", got, ok)
	}
}

func TestCheckSubject(t *testing.T) {
	claims := &Claims{}
	claims.Subject = "11111111-1111-1111-1111-111111111111"
	ctx := WithClaims(context.Background(), claims, "t")

	if err := CheckSubject(ctx, "11111111-1111-1111-1111-111111111111"); err != nil {
		t.Errorf("expected matching subject to pass, got %v", err)
	}
	if err := CheckSubject(ctx, "22222222-2222-2222-2222-222222222222"); !errors.Is(err, ErrSubjectMismatch) {
		t.Errorf("expected ErrSubjectMismatch, got %v", err)
	}
	if err := CheckSubject(context.Background(), "anyone"); err != nil {
		t.Errorf("expected anonymous request to pass, got %v", err)
	}
}
