package service

import (
	"errors"
	"testing"
	"time"

	"mbti-bot/internal/domain"
)

func TestSessionTokenCodec_RoundTrip(t *testing.T) {
	codec := NewSessionTokenCodec("test-secret", time.Hour)

	scores := domain.NewTraitScores()
	scores[domain.TraitIntroversion] = 1.2
	scores[domain.TraitExtraversion] = 0.3
	session := domain.Session{
		OwnerID:       "user-1",
		Username:      "Alice",
		Contact:       "alice@example.com",
		Index:         3,
		TraitScores:   scores,
		SubtypeScores: []float64{0.6, 0.9},
	}

	token, err := codec.Issue(session)
	if err != nil {
		t.Fatalf("unexpected issue error: %v", err)
	}

	parsed, err := codec.Parse(token)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if parsed.OwnerID != "user-1" || parsed.Username != "Alice" || parsed.Contact != "alice@example.com" {
		t.Fatalf("identity fields not preserved: %+v", parsed)
	}
	if parsed.Index != 3 {
		t.Fatalf("expected index 3, got %d", parsed.Index)
	}
	if parsed.TraitScores[domain.TraitIntroversion] != 1.2 || parsed.TraitScores[domain.TraitExtraversion] != 0.3 {
		t.Fatalf("trait scores not preserved: %+v", parsed.TraitScores)
	}
	if len(parsed.SubtypeScores) != 2 || parsed.SubtypeScores[1] != 0.9 {
		t.Fatalf("subtype scores not preserved: %+v", parsed.SubtypeScores)
	}
}

func TestSessionTokenCodec_RejectsWrongSecret(t *testing.T) {
	codec := NewSessionTokenCodec("secret-a", time.Hour)
	other := NewSessionTokenCodec("secret-b", time.Hour)

	token, err := codec.Issue(domain.Session{OwnerID: "user-1", TraitScores: domain.NewTraitScores()})
	if err != nil {
		t.Fatalf("unexpected issue error: %v", err)
	}
	if _, err := other.Parse(token); !errors.Is(err, ErrSessionTokenInvalid) {
		t.Fatalf("expected ErrSessionTokenInvalid, got %v", err)
	}
}

func TestSessionTokenCodec_RejectsTamperedToken(t *testing.T) {
	codec := NewSessionTokenCodec("test-secret", time.Hour)
	token, err := codec.Issue(domain.Session{OwnerID: "user-1", TraitScores: domain.NewTraitScores()})
	if err != nil {
		t.Fatalf("unexpected issue error: %v", err)
	}
	tampered := token[:len(token)-4] + "AAAA"
	if _, err := codec.Parse(tampered); err == nil {
		t.Fatalf("expected error for tampered token")
	}
}

func TestSessionTokenCodec_RejectsExpiredToken(t *testing.T) {
	codec := NewSessionTokenCodec("test-secret", time.Hour)
	codec.ttl = -time.Minute
	token, err := codec.Issue(domain.Session{OwnerID: "user-1", TraitScores: domain.NewTraitScores()})
	if err != nil {
		t.Fatalf("unexpected issue error: %v", err)
	}
	if _, err := codec.Parse(token); !errors.Is(err, ErrSessionTokenExpired) {
		t.Fatalf("expected ErrSessionTokenExpired, got %v", err)
	}
}

func TestSessionTokenCodec_RejectsEmptyToken(t *testing.T) {
	codec := NewSessionTokenCodec("test-secret", time.Hour)
	if _, err := codec.Parse("  "); !errors.Is(err, ErrSessionTokenInvalid) {
		t.Fatalf("expected ErrSessionTokenInvalid, got %v", err)
	}
}
