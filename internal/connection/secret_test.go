package connection

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestSecret_String(t *testing.T) {
	secret := NewSecret("super-secret-value-12345")

	// String() should return [REDACTED]
	if secret.String() != "[REDACTED]" {
		t.Errorf("Expected [REDACTED], got %s", secret.String())
	}

	// Reveal() should return the actual value
	if secret.Reveal() != "super-secret-value-12345" {
		t.Errorf("Expected actual value, got %s", secret.Reveal())
	}
}

func TestSecret_GoString(t *testing.T) {
	secret := NewSecret("secret")

	// GoString should also redact
	expected := "connection.Secret{[REDACTED]}"
	if secret.GoString() != expected {
		t.Errorf("Expected %s, got %s", expected, secret.GoString())
	}
}

func TestSecret_Printf(t *testing.T) {
	secret := NewSecret("my-secret-value")

	// %s format should use String()
	result := fmt.Sprintf("Secret: %s", secret)
	if result != "Secret: [REDACTED]" {
		t.Errorf("Expected 'Secret: [REDACTED]', got %s", result)
	}

	// %v format should also use String()
	result = fmt.Sprintf("Secret: %v", secret)
	if result != "Secret: [REDACTED]" {
		t.Errorf("Expected 'Secret: [REDACTED]', got %s", result)
	}

	// %#v format should use GoString()
	result = fmt.Sprintf("Secret: %#v", secret)
	if result != "Secret: connection.Secret{[REDACTED]}" {
		t.Errorf("Expected 'Secret: connection.Secret{[REDACTED]}', got %s", result)
	}
}

func TestSecret_IsEmpty(t *testing.T) {
	emptySecret := NewSecret("")
	if !emptySecret.IsEmpty() {
		t.Error("Expected empty secret to return true for IsEmpty()")
	}

	var nilSecret *Secret
	if !nilSecret.IsEmpty() {
		t.Error("Expected nil secret to return true for IsEmpty()")
	}

	nonEmptySecret := NewSecret("value")
	if nonEmptySecret.IsEmpty() {
		t.Error("Expected non-empty secret to return false for IsEmpty()")
	}
}

func TestSecret_Wipe(t *testing.T) {
	secret := NewSecret("wipe-me")

	secret.Wipe()

	if !secret.IsEmpty() {
		t.Error("Expected wiped secret to be empty")
	}
	if secret.Reveal() != "" {
		t.Errorf("Expected empty value after wipe, got %q", secret.Reveal())
	}

	// Wiping again must be safe
	secret.Wipe()

	var nilSecret *Secret
	nilSecret.Wipe() // must not panic
}

func TestSecret_Clone(t *testing.T) {
	original := NewSecret("shared-value")
	clone := original.Clone()

	if clone.Reveal() != "shared-value" {
		t.Errorf("Expected clone to hold the value, got %q", clone.Reveal())
	}

	// Wiping the original must not affect the clone
	original.Wipe()

	if clone.Reveal() != "shared-value" {
		t.Errorf("Expected clone to survive wipe of original, got %q", clone.Reveal())
	}

	var nilSecret *Secret
	if nilSecret.Clone() != nil {
		t.Error("Expected clone of nil secret to be nil")
	}
}

func TestSecret_MarshalJSON(t *testing.T) {
	secret := NewSecret("secret-value")

	data, err := json.Marshal(secret)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if string(data) != `"[REDACTED]"` {
		t.Errorf("Expected \"[REDACTED]\", got %s", string(data))
	}
}

func TestSecret_MarshalText(t *testing.T) {
	secret := NewSecret("secret-value")

	data, err := secret.MarshalText()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if string(data) != "[REDACTED]" {
		t.Errorf("Expected [REDACTED], got %s", string(data))
	}
}

func TestSecret_InStruct(t *testing.T) {
	type Request struct {
		Secret *Secret `json:"secret"`
		Name   string  `json:"name"`
	}

	req := Request{
		Secret: NewSecret("secret-value"),
		Name:   "test",
	}

	// JSON marshaling should redact the secret
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := `{"secret":"[REDACTED]","name":"test"}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, string(data))
	}
}

func TestSecret_InError(t *testing.T) {
	secret := NewSecret("secret-value")

	// Creating an error with the secret should show [REDACTED]
	err := fmt.Errorf("failed with secret: %s", secret)
	if err.Error() != "failed with secret: [REDACTED]" {
		t.Errorf("Expected redacted error, got %s", err.Error())
	}
}
