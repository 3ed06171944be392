package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) { return nil, errors.New("idp down") }

func TestStaticTokens_ReturnsAccessToken(t *testing.T) {
	got, err := StaticTokens("abc").Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
}

func TestOAuth2Tokens_RejectsEmptyOrExpired(t *testing.T) {
	if _, err := StaticTokens("").Token(context.Background()); err == nil {
		t.Fatalf("expected error for empty token")
	}

	expired := NewOAuth2Tokens(oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: "old",
		Expiry:      time.Now().Add(-time.Hour),
	}))
	if _, err := expired.Token(context.Background()); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestOAuth2Tokens_PropagatesSourceError(t *testing.T) {
	if _, err := NewOAuth2Tokens(failingSource{}).Token(context.Background()); err == nil {
		t.Fatalf("expected source error")
	}
}

func TestOAuth2Tokens_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := StaticTokens("abc").Token(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}
