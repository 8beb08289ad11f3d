// Package gojson is the default tokenizer driver, backed by goccy/go-json.
package gojson

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/vegaskema/internal/engine"
)

// ErrInvalid is returned by the first NextToken call when the input is not a
// single well-formed JSON value.
var ErrInvalid = errors.New("gojson: invalid JSON text")

type source struct {
	dec  *j.Decoder
	keys eng.KeyState
	err  error
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON using go-json.
// The reader is drained up front: go-json's Token skips separators without
// checking their placement, so the text is validated as a whole first.
func NewReader(r io.Reader) eng.TokenSource {
	b, err := io.ReadAll(r)
	if err != nil {
		return &source{err: err}
	}
	return NewBytes(b)
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON using go-json.
func NewBytes(b []byte) eng.TokenSource {
	if !j.Valid(b) || !lexicallyStrict(b) {
		return &source{err: ErrInvalid}
	}
	dec := j.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return &source{dec: dec}
}

func (s *source) NextToken() (eng.Token, error) {
	if s.err != nil {
		return eng.Token{}, s.err
	}
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	t := eng.Token{Offset: -1}

	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.keys.Open(true)
			t.Kind = eng.KindBeginObject
		case '[':
			s.keys.Open(false)
			t.Kind = eng.KindBeginArray
		case '}':
			s.keys.Close()
			t.Kind = eng.KindEndObject
		case ']':
			s.keys.Close()
			t.Kind = eng.KindEndArray
		}
		return t, nil
	case string:
		t.Kind = s.keys.String()
		t.String = v
		return t, nil
	}

	s.keys.Value()
	switch v := tok.(type) {
	case bool:
		t.Kind = eng.KindBool
		t.Bool = v
	case j.Number:
		t.Kind = eng.KindNumber
		t.Number = string(v)
	case float64:
		t.Kind = eng.KindNumber
		t.Number = strconv.FormatFloat(v, 'g', -1, 64)
	default:
		t.Kind = eng.KindNull
	}
	return t, nil
}

// lexicallyStrict rejects what go-json's Valid lets through but RFC 8259
// forbids: raw control bytes inside strings and numbers outside the JSON
// number grammar (leading zeros, a bare '.', an empty exponent).
func lexicallyStrict(b []byte) bool {
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == '"':
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] < 0x20 {
					return false
				}
				if b[i] == '\\' {
					i++
				}
				i++
			}
			i++
		case c == '-' || (c >= '0' && c <= '9'):
			n := numberLen(b[i:])
			if n == 0 {
				return false
			}
			i += n
			if i < len(b) && isNumberByte(b[i]) {
				return false
			}
		default:
			i++
		}
	}
	return true
}

// numberLen returns the length of the JSON number at the start of b, or 0.
func numberLen(b []byte) int {
	i := 0
	if b[i] == '-' {
		i++
	}
	switch {
	case i >= len(b):
		return 0
	case b[i] == '0':
		i++
	case b[i] >= '1' && b[i] <= '9':
		i = digits(b, i+1)
	default:
		return 0
	}
	if i < len(b) && b[i] == '.' {
		start := i + 1
		if i = digits(b, start); i == start {
			return 0
		}
	}
	if i < len(b) && (b[i] == 'e' || b[i] == 'E') {
		i++
		if i < len(b) && (b[i] == '+' || b[i] == '-') {
			i++
		}
		start := i
		if i = digits(b, start); i == start {
			return 0
		}
	}
	return i
}

func digits(b []byte, i int) int {
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	return i
}

func isNumberByte(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-'
}

// Location is unknown: go-json's decoder does not report offsets here.
func (s *source) Location() int64 { return -1 }
