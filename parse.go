package vegaskema

import (
	"context"
	"errors"
	"io"

	eng "github.com/reoring/vegaskema/internal/engine"
)

// TokenKind exposes the engine token kinds to custom Source implementations.
type TokenKind = eng.Kind

const (
	TokenBeginObject = eng.KindBeginObject
	TokenEndObject   = eng.KindEndObject
	TokenBeginArray  = eng.KindBeginArray
	TokenEndArray    = eng.KindEndArray
	TokenKey         = eng.KindKey
	TokenString      = eng.KindString
	TokenNumber      = eng.KindNumber
	TokenBool        = eng.KindBool
	TokenNull        = eng.KindNull
)

// DecodeDocument consumes tokens from src and builds a generic JSON tree:
// map[string]any, []any, json.Number (or float64 under NumberFloat64), string,
// bool and nil. Exactly one root value is accepted; trailing tokens are a
// syntax error. Failures are returned as Issues whose cause is ErrSyntax,
// unless enforcement (duplicate keys, depth, size) rejected the input.
func DecodeDocument(ctx context.Context, src Source, opts ...ParseOpt) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opt := MergeOpts(opts)
	ts := engineTokenSource(src)
	if !enforcementDisabled(opt) {
		ts = engineTokenSource(EnforceSource(src, opt, nil))
	}

	var (
		doc any
		err error
	)
	switch src.NumberMode() {
	case NumberFloat64:
		doc, err = eng.DecodeAnyFromSourceAsFloat64(ts)
	default:
		doc, err = eng.DecodeAnyFromSource(ts)
	}
	if err != nil {
		return nil, toIssues(err, ts.Location())
	}
	if _, err := ts.NextToken(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errTrailingData
		}
		return nil, toIssues(err, ts.Location())
	}
	return doc, nil
}

// DecodeBytes is DecodeDocument over JSONBytes with MaxBytes checked up front.
func DecodeBytes(ctx context.Context, data []byte, opts ...ParseOpt) (any, error) {
	opt := MergeOpts(opts)
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, singleIssue(CodeTruncated, "max bytes exceeded", nil)
	}
	return DecodeDocument(ctx, JSONBytes(data), opts...)
}

// DecodeReader reads at most MaxBytes+1 bytes from r and decodes them. When
// MaxBytes is zero the reader is streamed through the current driver.
func DecodeReader(ctx context.Context, r io.Reader, opts ...ParseOpt) (any, error) {
	opt := MergeOpts(opts)
	if opt.MaxBytes > 0 {
		data, err := io.ReadAll(io.LimitReader(r, opt.MaxBytes+1))
		if err != nil {
			return nil, singleIssue(CodeParseError, err.Error(), err)
		}
		return DecodeBytes(ctx, data, opts...)
	}
	return DecodeDocument(ctx, JSONReader(r), opts...)
}

var errTrailingData = errors.New("unexpected data after top-level value")

func toIssues(err error, offset int64) Issues {
	if err == nil {
		return nil
	}
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return AppendIssues(nil, Issue{Code: ie.Code, Path: ie.Path, Message: ie.Message, Offset: offset})
	}
	return AppendIssues(nil, Issue{
		Path:    "/",
		Code:    CodeParseError,
		Message: ErrSyntax.Error(),
		Hint:    err.Error(),
		Cause:   errors.Join(ErrSyntax, err),
		Offset:  offset,
	})
}

func singleIssue(code, msg string, cause error) Issues {
	return AppendIssues(nil, Issue{Path: "/", Code: code, Message: msg, Cause: cause, Offset: -1})
}
