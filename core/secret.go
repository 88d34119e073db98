package core

import "strings"

// CredentialPrefix is the issuer prefix every Gemini API key carries.
const CredentialPrefix = "AIza"

// Secret holds an API key and keeps it out of logs and serialized output.
// String, GoString, MarshalJSON and MarshalText all redact; Expose returns
// the real value for request headers.
type Secret struct {
	value string
}

// NewSecret wraps value.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// String implements fmt.Stringer.
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer.
func (s Secret) GoString() string {
	return "core.Secret{[REDACTED]}"
}

// MarshalJSON implements json.Marshaler.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte("[REDACTED]"), nil
}

// Expose returns the actual secret value.
func (s Secret) Expose() string {
	return s.value
}

// IsEmpty returns true if the secret value is empty.
func (s Secret) IsEmpty() bool {
	return s.value == ""
}

// Hint returns the issuer prefix followed by an ellipsis, safe for display.
func (s Secret) Hint() string {
	if len(s.value) <= len(CredentialPrefix) {
		return "…"
	}
	return s.value[:len(CredentialPrefix)] + "…"
}

// ValidateCredentialFormat runs the superficial local check applied before
// a key is stored. It never touches the network.
func ValidateCredentialFormat(key string) error {
	key = strings.TrimSpace(key)
	if key == "" || !strings.HasPrefix(key, CredentialPrefix) {
		return ErrInvalidCredentialFormat
	}
	return nil
}
