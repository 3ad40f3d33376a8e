package store

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
)

// Attributes is the opaque client-supplied part of a room or review.
// It is persisted as a JSON object.
type Attributes map[string]any

// Clone returns a shallow copy of a. A nil receiver yields an empty map.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	maps.Copy(out, a)
	return out
}

// Merge returns a copy of a with every key of patch written over it.
func (a Attributes) Merge(patch Attributes) Attributes {
	out := a.Clone()
	maps.Copy(out, patch)
	return out
}

// Value implements driver.Valuer.
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(a))
	if err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (a *Attributes) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = Attributes{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan attributes: unsupported type %T", src)
	}
	out := Attributes{}
	if len(bytes.TrimSpace(raw)) > 0 {
		var err error
		if out, err = DecodeAttributes(bytes.NewReader(raw)); err != nil {
			return fmt.Errorf("decode attributes: %w", err)
		}
	}
	*a = out
	return nil
}

// DecodeAttributes reads exactly one JSON object from r. Integers keep full
// precision as int64; other numbers become float64. Errors about the shape
// of the document wrap ErrInvalidPayload; read errors are wrapped as is.
func DecodeAttributes(r io.Reader) (Attributes, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var attrs Attributes
	if err := dec.Decode(&attrs); err != nil {
		return nil, payloadError("body must be a JSON object", err)
	}
	if attrs == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalidPayload)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, payloadError("unexpected data after JSON object", err)
	}

	for k, v := range attrs {
		n, err := normalizeNumbers(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPayload, k, err)
		}
		attrs[k] = n
	}
	return attrs, nil
}

// payloadError keeps a non-syntax read error reachable with errors.As.
func payloadError(msg string, err error) error {
	var syntax *json.SyntaxError
	var typ *json.UnmarshalTypeError
	if err == nil || errors.As(err, &syntax) || errors.As(err, &typ) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrInvalidPayload, msg, err)
}

// normalizeNumbers replaces json.Number values at any depth with int64 or
// float64 so both the JSON column and BSON store them as numbers.
func normalizeNumbers(v any) (any, error) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %s out of range", t)
		}
		return f, nil
	case map[string]any:
		for k, e := range t {
			n, err := normalizeNumbers(e)
			if err != nil {
				return nil, err
			}
			t[k] = n
		}
		return t, nil
	case []any:
		for i, e := range t {
			n, err := normalizeNumbers(e)
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	}
	return v, nil
}
