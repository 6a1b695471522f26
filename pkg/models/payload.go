package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	orderedmap "github.com/pb33f/ordered-map/v2"
)

// Kind identifies the variant held by a Value
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindRaw // nested array or object, kept as compact JSON
)

// Value is a single scalar field of a Payload
type Value struct {
	Kind Kind
	text string
	b    bool
}

// StringValue returns a string Value
func StringValue(s string) Value { return Value{Kind: KindString, text: s} }

// NumberValue returns a number Value from its JSON literal
func NumberValue(n json.Number) Value { return Value{Kind: KindNumber, text: n.String()} }

// BoolValue returns a boolean Value
func BoolValue(b bool) Value { return Value{Kind: KindBool, b: b} }

// NullValue returns the null Value
func NullValue() Value { return Value{Kind: KindNull} }

// String returns the display form of the value
func (v Value) String() string {
	switch v.Kind {
	case KindString, KindNumber, KindRaw:
		return v.text
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	default:
		return "null"
	}
}

// Field is one key/value pair of a Payload
type Field struct {
	Key   string
	Value Value
}

// Payload is a flat JSON object with its key order preserved
type Payload struct {
	Fields []Field
}

// ErrNotObject is returned when the decoded document is not a JSON object
var ErrNotObject = errors.New("json document is not an object")

// ParsePayload decodes a JSON object, keeping the order its keys appear in.
// Duplicate keys keep the position of their first occurrence and the value of the last.
func ParsePayload(data []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		return Payload{}, ErrNotObject
	}

	fields := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(trimmed, fields); err != nil {
		return Payload{}, fmt.Errorf("failed to read json: %w", err)
	}

	p := Payload{Fields: make([]Field, 0, fields.Len())}
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		value, err := decodeValue(pair.Value)
		if err != nil {
			return Payload{}, fmt.Errorf("failed to decode value of %q: %w", pair.Key, err)
		}
		p.Fields = append(p.Fields, Field{Key: pair.Key, Value: value})
	}

	return p, nil
}

func decodeValue(raw json.RawMessage) (Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Value{}, errors.New("empty value")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Value{}, err
		}
		return StringValue(s), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	case 'n':
		return NullValue(), nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return Value{}, err
		}
		return Value{Kind: KindRaw, text: buf.String()}, nil
	default:
		return NumberValue(json.Number(trimmed)), nil
	}
}

// Len returns the number of fields
func (p Payload) Len() int { return len(p.Fields) }

// String renders the payload the way the parsed-text region shows it
func (p Payload) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, f := range p.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Key)
		sb.WriteString(": ")
		if f.Value.Kind == KindString {
			sb.WriteString(fmt.Sprintf("%q", f.Value.text))
		} else {
			sb.WriteString(f.Value.String())
		}
	}
	sb.WriteByte('}')
	return sb.String()
}
