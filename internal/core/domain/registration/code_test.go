package registration

import (
	"strings"
	"testing"
	"time"
)

func TestNewCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := NewCode(4)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != 4 {
			t.Fatalf("expected 4 characters, got %q", code)
		}
		for _, c := range code {
			if !strings.ContainsRune("0123456789", c) {
				t.Fatalf("non-digit character in code %q", code)
			}
		}
	}
}

func TestNewCode_CustomLength(t *testing.T) {
	code, err := NewCode(6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6 characters, got %q", code)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  A@B.Com "); got != "a@b.com" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

func TestPendingCode_Remaining(t *testing.T) {
	now := time.Now()
	p := &PendingCode{Email: "a@b.com", Code: "4821", ExpiresAt: now.Add(90 * time.Second)}

	if p.Expired(now) {
		t.Fatal("code should not be expired")
	}
	if got := p.Remaining(now); got != 90*time.Second {
		t.Fatalf("unexpected remaining: %v", got)
	}

	past := now.Add(2 * time.Minute)
	if !p.Expired(past) {
		t.Fatal("code should be expired")
	}
	if got := p.Remaining(past); got != 0 {
		t.Fatalf("remaining should clamp to zero, got %v", got)
	}
}
