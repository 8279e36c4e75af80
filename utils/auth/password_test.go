package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "" || hash == "s3cret-password" {
		t.Fatalf("expected a non-trivial hash")
	}
	if !VerifyPassword("s3cret-password", hash) {
		t.Fatalf("expected matching password to verify")
	}
	if VerifyPassword("wrong-password", hash) {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestVerifyPasswordRejectsGarbageHash(t *testing.T) {
	if VerifyPassword("anything", "not-a-bcrypt-hash") {
		t.Fatalf("garbage hash should never verify")
	}
}

func TestGenerateTempPasswordShape(t *testing.T) {
	for i := 0; i < 20; i++ {
		pw, err := GenerateTempPassword()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(pw) != tempPasswordLength {
			t.Fatalf("expected %d chars, got %d", tempPasswordLength, len(pw))
		}
		if !strings.ContainsAny(pw, upperChars) {
			t.Fatalf("missing uppercase in %q", pw)
		}
		if !strings.ContainsAny(pw, lowerChars) {
			t.Fatalf("missing lowercase in %q", pw)
		}
		if !strings.ContainsAny(pw, digitChars) {
			t.Fatalf("missing digit in %q", pw)
		}
		if !strings.ContainsAny(pw, symbolChars) {
			t.Fatalf("missing symbol in %q", pw)
		}
		for _, ambiguous := range "0O1l" {
			if strings.ContainsRune(pw, ambiguous) {
				t.Fatalf("ambiguous character %q in %q", ambiguous, pw)
			}
		}
	}
}

func TestGenerateTempPasswordIsRandom(t *testing.T) {
	a, err := GenerateTempPassword()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := GenerateTempPassword()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if a == b {
		t.Fatalf("two generated passwords should not collide")
	}
}
