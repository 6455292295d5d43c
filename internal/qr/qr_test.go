package qr

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestLinkToken_RoundTrip(t *testing.T) {
	token, err := NewLinkToken("secret-a", 42, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	id, err := ParseLinkToken("secret-a", token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != 42 {
		t.Fatalf("vehicle id = %d, want 42", id)
	}
}

func TestLinkToken_RejectsForeignSignature(t *testing.T) {
	token, err := NewLinkToken("secret-a", 42, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseLinkToken("secret-b", token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign secret: got %v, want ErrInvalidToken", err)
	}
}

func TestLinkToken_RejectsExpired(t *testing.T) {
	token, err := NewLinkToken("secret-a", 42, -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseLinkToken("secret-a", token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token: got %v, want ErrInvalidToken", err)
	}
}

func TestLinkToken_RejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := ParseLinkToken("secret-a", raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("garbage %q: got %v, want ErrInvalidToken", raw, err)
		}
	}
}

func TestPNG_ProducesImage(t *testing.T) {
	png, err := PNG("secret-a", "http://localhost:8200", 7, time.Hour, 128)
	if err != nil {
		t.Fatalf("png: %v", err)
	}
	// PNG magic bytes.
	if !bytes.HasPrefix(png, []byte{0x89, 'P', 'N', 'G'}) {
		t.Fatalf("output is not a PNG (first bytes %v)", png[:4])
	}
}
