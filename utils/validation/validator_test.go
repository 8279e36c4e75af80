package validation

import (
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"user@example.com", "first.last+tag@sub.domain.org", "a@b.co"}
	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("expected %q to be valid", email)
		}
	}

	invalid := []string{"", "plainaddress", "@missinglocal.com", "user@", "user@nodot", "user @example.com"}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("expected %q to be invalid", email)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	if ok, _ := ValidateUsername("alice_01"); !ok {
		t.Fatalf("expected alice_01 to be valid")
	}
	if ok, _ := ValidateUsername("with-hyphen"); !ok {
		t.Fatalf("expected hyphenated username to be valid")
	}

	if ok, msg := ValidateUsername("ab"); ok || msg == "" {
		t.Fatalf("expected short username rejection with message")
	}
	if ok, _ := ValidateUsername(strings.Repeat("a", 31)); ok {
		t.Fatalf("expected long username rejection")
	}
	if ok, _ := ValidateUsername("bad name"); ok {
		t.Fatalf("expected spaces to be rejected")
	}
	if ok, _ := ValidateUsername("bad!name"); ok {
		t.Fatalf("expected punctuation to be rejected")
	}
}

func TestValidatePassword(t *testing.T) {
	if ok, errs := ValidatePassword("longenough1"); !ok {
		t.Fatalf("expected valid password, got %v", errs)
	}

	if ok, errs := ValidatePassword("short"); ok || len(errs) == 0 {
		t.Fatalf("expected short password rejection")
	}
	if ok, errs := ValidatePassword("12345678"); ok || len(errs) == 0 {
		t.Fatalf("expected all-digit password rejection")
	}
}

func TestValidateQuery(t *testing.T) {
	if ok, _ := ValidateQuery("What is the Q3 revenue?"); !ok {
		t.Fatalf("expected normal query to pass")
	}

	if ok, msg := ValidateQuery("   "); ok || msg == "" {
		t.Fatalf("expected whitespace-only query rejection")
	}
	if ok, _ := ValidateQuery(strings.Repeat("x", MaxQueryLength+1)); ok {
		t.Fatalf("expected over-length query rejection")
	}

	// length is counted in characters, so multibyte text under the limit
	// passes even though its byte length exceeds it
	if ok, msg := ValidateQuery(strings.Repeat("€", 1500)); !ok {
		t.Fatalf("expected 1500-character multibyte query to pass, got %q", msg)
	}
	if ok, _ := ValidateQuery(strings.Repeat("€", MaxQueryLength+1)); ok {
		t.Fatalf("expected over-length multibyte query rejection")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world  "); got != "helloworld" {
		t.Fatalf("expected null bytes stripped and trimmed, got %q", got)
	}
}

func TestValidateStruct(t *testing.T) {
	type payload struct {
		Name string `validate:"required,min=3"`
	}

	v := NewValidator()
	if err := v.ValidateStruct(payload{Name: "abc"}); err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}

	err := v.ValidateStruct(payload{})
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	formatted := FormatValidationErrors(err)
	if formatted["name"] == "" {
		t.Fatalf("expected formatted error for name field, got %v", formatted)
	}
}
