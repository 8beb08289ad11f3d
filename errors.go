package vegaskema

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType      = "invalid_type"
	CodeRequired         = "required"
	CodeDuplicateKey     = "duplicate_key"
	CodeTooSmall         = "too_small"
	CodeTooBig           = "too_big"
	CodeParseError       = "parse_error"
	CodeTruncated        = "truncated"
	CodeUnsupportedValue = "unsupported_value"
	// CodeIncomplete is reported only when the caller asks for complete specs
	// (ParseOpt.RequireComplete) and a structural gate stopped the parse.
	CodeIncomplete = "incomplete"
)

// ErrSyntax is the cause attached to issues produced for malformed JSON text.
var ErrSyntax = errors.New("json format error")

// ErrUnsupportedValue is matched by every *UnsupportedValueError.
var ErrUnsupportedValue = errors.New("unsupported value")

// UnsupportedValueError reports a well-typed string that is not one of the
// recognized literals for Field.
type UnsupportedValueError struct {
	Field string // e.g. "color gradient"
	Value string // offending input, verbatim
}

func (e *UnsupportedValueError) Error() string {
	return "unsupported " + e.Field + " '" + e.Value + "'."
}

// Is lets errors.Is(err, ErrUnsupportedValue) match.
func (e *UnsupportedValueError) Is(target error) bool { return target == ErrUnsupportedValue }

// Issue represents a single validation entry.
type Issue struct {
	Path    string `json:"path"`           // JSON Pointer (for example: /marks/0/encode/enter).
	Code    string `json:"code"`           // One of the codes listed above.
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"` // Optional: remediation hints, expected types, etc.
	Cause   error  `json:"-"`              // Optional: underlying error.
	Offset  int64  `json:"offset"`         // Byte offset in the input source (-1 when unknown).
	// Params carries structured parameters (e.g., {"min":2, "got":1})
	// for i18n and observability.
	Params map[string]any `json:"params,omitempty"`
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /width: invalid type
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" {
			fmt.Fprintf(b, ": %s", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes so errors.Is/errors.As can reach sentinel errors.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// IsSyntax reports whether err was caused by malformed JSON input.
func IsSyntax(err error) bool { return errors.Is(err, ErrSyntax) }

// IsUnsupportedValue reports whether err carries an UnsupportedValueError.
func IsUnsupportedValue(err error) bool { return errors.Is(err, ErrUnsupportedValue) }
