package types

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// PayloadKind identifies which variant a Payload holds
type PayloadKind string

const (
	PayloadEmpty      PayloadKind = "empty"
	PayloadStructured PayloadKind = "structured"
	PayloadText       PayloadKind = "text"
	PayloadHash       PayloadKind = "hash"
)

var hashSentinel = regexp.MustCompile(`^<<hash:([^>]*)>>$`)

// Payload is a value received from the backend whose shape is not fixed.
// The same field may arrive as a JSON document, as a string containing an
// encoded JSON document, as plain text, or as a "<<hash:...>>" sentinel that
// stands in for content too large to ship. UnmarshalJSON is the only place
// that tells these apart.
type Payload struct {
	Kind PayloadKind
	Raw  json.RawMessage // set for PayloadStructured
	Text string          // set for PayloadText
	Hash string          // set for PayloadHash
}

// ParsePayload normalizes raw JSON into a Payload
func ParsePayload(raw []byte) Payload {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Payload{Kind: PayloadEmpty}
	}

	if trimmed[0] != '"' {
		if json.Valid(trimmed) {
			return Payload{Kind: PayloadStructured, Raw: append(json.RawMessage(nil), trimmed...)}
		}
		return Payload{Kind: PayloadText, Text: string(trimmed)}
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return Payload{Kind: PayloadText, Text: string(trimmed)}
	}
	return ParsePayloadString(s)
}

// ParsePayloadString normalizes a string value that may itself hold JSON
func ParsePayloadString(s string) Payload {
	if m := hashSentinel.FindStringSubmatch(strings.TrimSpace(s)); m != nil {
		return Payload{Kind: PayloadHash, Hash: m[1]}
	}

	inner := strings.TrimSpace(s)
	if inner != "" && (inner[0] == '{' || inner[0] == '[') && json.Valid([]byte(inner)) {
		return Payload{Kind: PayloadStructured, Raw: json.RawMessage(inner)}
	}

	return Payload{Kind: PayloadText, Text: s}
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Payload) UnmarshalJSON(data []byte) error {
	*p = ParsePayload(data)
	return nil
}

// MarshalJSON implements json.Marshaler
func (p Payload) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PayloadStructured:
		return p.Raw, nil
	case PayloadText:
		return json.Marshal(p.Text)
	case PayloadHash:
		return json.Marshal("<<hash:" + p.Hash + ">>")
	default:
		return []byte("null"), nil
	}
}

// MarshalYAML implements yaml.Marshaler
func (p Payload) MarshalYAML() (interface{}, error) {
	switch p.Kind {
	case PayloadStructured:
		var v interface{}
		if err := json.Unmarshal(p.Raw, &v); err != nil {
			return string(p.Raw), nil
		}
		return v, nil
	case PayloadText:
		return p.Text, nil
	case PayloadHash:
		return "<<hash:" + p.Hash + ">>", nil
	default:
		return nil, nil
	}
}

// IsZero lets yaml omitempty drop empty payloads
func (p Payload) IsZero() bool {
	return p.IsEmpty()
}

// IsEmpty reports whether the payload carries no value
func (p Payload) IsEmpty() bool {
	return p.Kind == "" || p.Kind == PayloadEmpty
}

// String returns the serialized textual form used for display and size checks
func (p Payload) String() string {
	switch p.Kind {
	case PayloadStructured:
		var buf bytes.Buffer
		if err := json.Indent(&buf, p.Raw, "", "  "); err != nil {
			return string(p.Raw)
		}
		return buf.String()
	case PayloadText:
		return p.Text
	case PayloadHash:
		return "[content omitted, hash " + p.Hash + "]"
	default:
		return ""
	}
}

// Decode unmarshals a structured payload into v
func (p Payload) Decode(v interface{}) error {
	if p.Kind != PayloadStructured {
		return json.Unmarshal([]byte("null"), v)
	}
	return json.Unmarshal(p.Raw, v)
}

// TextPayload builds a plain text payload
func TextPayload(s string) Payload {
	return Payload{Kind: PayloadText, Text: s}
}

// JSONPayload builds a structured payload from raw JSON
func JSONPayload(raw string) Payload {
	return Payload{Kind: PayloadStructured, Raw: json.RawMessage(raw)}
}
