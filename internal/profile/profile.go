package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Profile is a named candidate configuration discovered on disk.
// Profiles are recreated on every scan and never mutated afterwards.
type Profile struct {
	Name string
	Path string
	// Content is the raw file payload; nil when the file could not be read
	Content []byte
	// Parsed is the top-level JSON object; nil when Content is not a valid object
	Parsed map[string]any
	// Err explains why Parsed is absent or why the profile cannot be selected
	Err error
}

// Selectable reports whether the profile can be activated
func (p Profile) Selectable() bool {
	return p.Parsed != nil && p.Err == nil
}

// Loaded reports whether the profile file was read successfully
func (p Profile) Loaded() bool {
	return p.Content != nil
}

// Document is the active configuration file the external tool reads
type Document struct {
	Path    string
	Content []byte
	Parsed  map[string]any
	Err     error
}

// Loaded reports whether the active file was read successfully
func (d Document) Loaded() bool {
	return d.Content != nil
}

// Status is the relationship of a profile to the active configuration
type Status int

const (
	// StatusReadError means either side is missing, unreadable or not a JSON object
	StatusReadError Status = iota
	// StatusFullMatch means the documents are equal including the volatile field
	StatusFullMatch
	// StatusPartialMatch means the documents differ only in the volatile field
	StatusPartialMatch
	// StatusNoMatch means the documents differ outside the volatile field
	StatusNoMatch
)

func (s Status) String() string {
	switch s {
	case StatusFullMatch:
		return "full-match"
	case StatusPartialMatch:
		return "partial-match"
	case StatusNoMatch:
		return "no-match"
	default:
		return "read-error"
	}
}

// MarshalText renders the status for JSON and YAML output
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var errNotObject = errors.New("top-level value is not a JSON object")

// parseObject decodes data as a single JSON object
func parseObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}

	obj, ok := v.(map[string]any)
	if !ok || obj == nil {
		return nil, errNotObject
	}
	if err := decodeNumbers(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// bigInt is an integer literal outside the int64 range, kept as its text
type bigInt string

// decodeNumbers replaces json.Number values in place: integer literals become
// int64 (or bigInt), all others float64. 1 and 1.0 therefore stay distinct.
func decodeNumbers(v any) error {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			n, err := decodeValue(e)
			if err != nil {
				return err
			}
			t[k] = n
		}
	case []any:
		for i, e := range t {
			n, err := decodeValue(e)
			if err != nil {
				return err
			}
			t[i] = n
		}
	}
	return nil
}

func decodeValue(v any) (any, error) {
	n, ok := v.(json.Number)
	if !ok {
		return v, decodeNumbers(v)
	}

	text := n.String()
	if !strings.ContainsAny(text, ".eE") {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		return bigInt(text), nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("number %s out of range", text)
	}
	return f, nil
}
