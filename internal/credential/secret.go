package credential

import (
	"fmt"
	"log/slog"
)

const redacted = "[REDACTED]"

// Secret holds an opaque credential value. Every formatting path (fmt verbs,
// structured logging, JSON and YAML) prints a placeholder; only Reveal
// returns the underlying value.
type Secret struct {
	value string
}

// NewSecret wraps value. An empty value produces the zero Secret, which is
// treated as absent.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// IsZero reports whether no secret was supplied.
func (s Secret) IsZero() bool {
	return s.value == ""
}

// Reveal returns the raw value for handing to the storage SDK.
func (s Secret) Reveal() string {
	return s.value
}

func (s Secret) String() string {
	if s.IsZero() {
		return ""
	}
	return redacted
}

// GoString keeps %#v from dumping the struct field.
func (s Secret) GoString() string {
	return fmt.Sprintf("credential.Secret(%q)", s.String())
}

// Format covers every fmt verb, including %x and %q.
func (s Secret) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v':
		if f.Flag('#') {
			fmt.Fprint(f, s.GoString())
			return
		}
	case 'q':
		fmt.Fprintf(f, "%q", s.String())
		return
	}
	fmt.Fprint(f, s.String())
}

// LogValue implements slog.LogValuer.
func (s Secret) LogValue() slog.Value {
	return slog.StringValue(s.String())
}

// MarshalText is used by encoding/json and for map keys.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Secret) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}
