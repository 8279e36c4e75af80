package services

import (
	"errors"
	"testing"

	"github.com/finassist/finchat-api/model"
)

func float64Ptr(v float64) *float64 { return &v }
func intPtrTest(v int) *int         { return &v }

func TestValidateValueInt(t *testing.T) {
	setting := &model.ConfigSetting{
		Name:     "chunk_size",
		DataType: model.SettingTypeInt,
		MinValue: float64Ptr(100),
		MaxValue: float64Ptr(2000),
	}

	got, err := ValidateValue(setting, " 800 ")
	if err != nil {
		t.Fatalf("valid int rejected: %v", err)
	}
	if got != "800" {
		t.Fatalf("expected normalized \"800\", got %q", got)
	}

	if _, err := ValidateValue(setting, "99"); !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("expected below-min rejection, got %v", err)
	}
	if _, err := ValidateValue(setting, "2001"); !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("expected above-max rejection, got %v", err)
	}
	if _, err := ValidateValue(setting, "12.5"); !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("expected non-integer rejection, got %v", err)
	}
	if _, err := ValidateValue(setting, "abc"); !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("expected non-numeric rejection, got %v", err)
	}
}

func TestValidateValueFloat(t *testing.T) {
	setting := &model.ConfigSetting{
		Name:     "similarity_threshold",
		DataType: model.SettingTypeFloat,
		MinValue: float64Ptr(0),
		MaxValue: float64Ptr(1),
	}

	got, err := ValidateValue(setting, "0.7")
	if err != nil {
		t.Fatalf("valid float rejected: %v", err)
	}
	if got != "0.7" {
		t.Fatalf("expected normalized \"0.7\", got %q", got)
	}

	// integers are acceptable floats
	if _, err := ValidateValue(setting, "1"); err != nil {
		t.Fatalf("integer-form float rejected: %v", err)
	}

	if _, err := ValidateValue(setting, "1.5"); !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("expected above-max rejection, got %v", err)
	}
	if _, err := ValidateValue(setting, "-0.1"); !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("expected below-min rejection, got %v", err)
	}
}

func TestValidateValueString(t *testing.T) {
	setting := &model.ConfigSetting{
		Name:      "gemini_chat_model",
		DataType:  model.SettingTypeString,
		MaxLength: intPtrTest(10),
	}

	got, err := ValidateValue(setting, "short")
	if err != nil {
		t.Fatalf("valid string rejected: %v", err)
	}
	if got != "short" {
		t.Fatalf("expected \"short\", got %q", got)
	}

	if _, err := ValidateValue(setting, ""); !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("expected empty string rejection, got %v", err)
	}
	if _, err := ValidateValue(setting, "waytoolongvalue"); !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("expected over-length rejection, got %v", err)
	}
}

func TestValidateValueBool(t *testing.T) {
	setting := &model.ConfigSetting{
		Name:     "some_flag",
		DataType: model.SettingTypeBool,
	}

	got, err := ValidateValue(setting, "TRUE")
	if err != nil {
		t.Fatalf("valid bool rejected: %v", err)
	}
	if got != "true" {
		t.Fatalf("expected normalized \"true\", got %q", got)
	}

	if _, err := ValidateValue(setting, "yes"); !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("expected non-bool rejection, got %v", err)
	}
}

func TestValidateValueUnknownType(t *testing.T) {
	setting := &model.ConfigSetting{
		Name:     "broken",
		DataType: model.SettingType("json"),
	}
	if _, err := ValidateValue(setting, "{}"); !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("expected unknown type rejection, got %v", err)
	}
}

func TestSnapshotDerivedValues(t *testing.T) {
	snap := ConfigSnapshot{MaxFileSizeMB: 10, JWTAccessTokenExpireMinutes: 30}

	if snap.MaxFileSizeBytes() != 10_000_000 {
		t.Fatalf("unexpected byte limit: %d", snap.MaxFileSizeBytes())
	}
	if snap.AccessTokenLifetime().Minutes() != 30 {
		t.Fatalf("unexpected token lifetime: %v", snap.AccessTokenLifetime())
	}
}
