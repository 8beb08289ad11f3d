// Package native decodes YAML and TOML documents into the same generic tree
// that vegaskema.DecodeDocument produces for JSON, so choropleth.ParseDocument
// can run over any of them.
//
// Mapping keys are stringified and nested maps become map[string]any. Numbers
// keep the decoder's native types (int, int64, uint64, float64), which the
// dsl accepts alongside json.Number.
package native

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	yv3 "gopkg.in/yaml.v3"

	vegaskema "github.com/reoring/vegaskema"
)

// DecodeYAML parses exactly one YAML document.
func DecodeYAML(ctx context.Context, data []byte, opts ...vegaskema.ParseOpt) (any, error) {
	return decode(ctx, data, opts, "yaml", func(data []byte) (any, error) {
		dec := yv3.NewDecoder(bytes.NewReader(data))
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		var extra any
		if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
			if err == nil {
				err = errors.New("more than one YAML document")
			}
			return nil, err
		}
		return v, nil
	})
}

// DecodeTOML parses a TOML document. The root is always a table.
func DecodeTOML(ctx context.Context, data []byte, opts ...vegaskema.ParseOpt) (any, error) {
	return decode(ctx, data, opts, "toml", func(data []byte) (any, error) {
		var v map[string]any
		if _, err := toml.Decode(string(data), &v); err != nil {
			return nil, err
		}
		return v, nil
	})
}

func decode(ctx context.Context, data []byte, opts []vegaskema.ParseOpt, format string, fn func([]byte) (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opt := vegaskema.MergeOpts(opts)
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, vegaskema.Issues{{Path: "/", Code: vegaskema.CodeTruncated, Message: "max bytes exceeded", Offset: -1}}
	}
	v, err := fn(data)
	if err != nil {
		return nil, syntaxIssue(format, err)
	}
	doc := normalize(v)
	if opt.MaxDepth > 0 {
		if p, ok := tooDeep(doc, vegaskema.Root(), 0, opt.MaxDepth); ok {
			return nil, vegaskema.Issues{p.Issue(vegaskema.CodeParseError, "max depth exceeded")}
		}
	}
	return doc, nil
}

// syntaxIssue names the input format in the message; the cause still matches
// vegaskema.ErrSyntax.
func syntaxIssue(format string, err error) vegaskema.Issues {
	return vegaskema.Issues{{
		Path:    "/",
		Code:    vegaskema.CodeParseError,
		Message: format + " format error",
		Hint:    err.Error(),
		Cause:   errors.Join(vegaskema.ErrSyntax, err),
		Offset:  -1,
	}}
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalize(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = normalize(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalize(t[i])
		}
		return arr
	case []map[string]any:
		// TOML arrays of tables
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalize(t[i])
		}
		return arr
	default:
		return v
	}
}

// tooDeep returns the path of the first container nested deeper than max.
func tooDeep(v any, at vegaskema.PathRef, depth, max int) (vegaskema.PathRef, bool) {
	switch t := v.(type) {
	case map[string]any:
		if depth+1 > max {
			return at, true
		}
		for k, vv := range t {
			if p, ok := tooDeep(vv, at.Field(k), depth+1, max); ok {
				return p, true
			}
		}
	case []any:
		if depth+1 > max {
			return at, true
		}
		for i, vv := range t {
			if p, ok := tooDeep(vv, at.Index(i), depth+1, max); ok {
				return p, true
			}
		}
	}
	return at, false
}
