package connection

// Secret wraps a sensitive credential to prevent accidental logging and to
// allow the backing memory to be zeroed once the value is consumed.
//
// This type implements fmt.Stringer to return "[REDACTED]" instead of the
// actual value, preventing accidental credential leakage in log messages,
// error strings, or debug output. JSON and text marshaling redact the same
// way.
//
// Usage:
//
//	secret := connection.NewSecret("client-secret-value")
//	fmt.Println(secret)           // prints: [REDACTED]
//	plaintext := secret.Reveal()  // returns: "client-secret-value"
//	secret.Wipe()                 // zeroes the backing buffer
type Secret struct {
	value []byte
}

// NewSecret creates a new Secret wrapping the given value.
func NewSecret(value string) *Secret {
	return &Secret{value: []byte(value)}
}

// Reveal returns the actual value.
// Use this method only at the point the value is written into a request
// form or header. Never log the result of this method.
func (s *Secret) Reveal() string {
	if s == nil {
		return ""
	}
	return string(s.value)
}

// Wipe zeroes the backing buffer. The secret is empty afterwards. Strings
// already produced by Reveal are outside its reach, which is why callers
// keep the revealed value as short-lived as possible.
func (s *Secret) Wipe() {
	if s == nil {
		return
	}
	for i := range s.value {
		s.value[i] = 0
	}
	s.value = s.value[:0]
}

// IsEmpty returns true if no value is held.
func (s *Secret) IsEmpty() bool {
	return s == nil || len(s.value) == 0
}

// Clone returns an independent copy. Wiping either copy leaves the other
// intact.
func (s *Secret) Clone() *Secret {
	if s == nil {
		return nil
	}
	return &Secret{value: append([]byte(nil), s.value...)}
}

// String implements fmt.Stringer, returning "[REDACTED]" to prevent
// accidental logging of the value.
func (s *Secret) String() string {
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer for %#v formatting, also returning
// "[REDACTED]" to prevent accidental logging.
func (s *Secret) GoString() string {
	return "connection.Secret{[REDACTED]}"
}

// MarshalText implements encoding.TextMarshaler, returning "[REDACTED]"
// to prevent accidental serialization of the value.
func (s *Secret) MarshalText() ([]byte, error) {
	return []byte("[REDACTED]"), nil
}

// MarshalJSON implements json.Marshaler, returning "[REDACTED]"
// to prevent accidental JSON serialization of the value.
func (s *Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}
