// Package middleware validates choropleth specs at a net/http boundary.
//
// Choropleth wraps a handler: the request body is parsed, bad specs are
// answered directly and complete results are handed to the next handler
// through the request context.
package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"

	vegaskema "github.com/reoring/vegaskema"
	"github.com/reoring/vegaskema/choropleth"
)

// ctxKeyResult is a typed context key for storing choropleth.Result.
type ctxKeyResult struct{}

// ContextWithResult attaches a Result to the context.
func ContextWithResult(ctx context.Context, res choropleth.Result) context.Context {
	return context.WithValue(ctx, ctxKeyResult{}, res)
}

// ResultFromContext retrieves the Result stored by Choropleth.
func ResultFromContext(ctx context.Context) (choropleth.Result, bool) {
	v, ok := ctx.Value(ctxKeyResult{}).(choropleth.Result)
	return v, ok
}

// DefaultParseOpt returns a recommended default for HTTP JSON boundaries.
// - Duplicate keys are errors
// - Bodies are capped at 1 MiB and nesting at 32 levels
func DefaultParseOpt() vegaskema.ParseOpt {
	return vegaskema.ParseOpt{
		Strictness: vegaskema.Strictness{OnDuplicateKey: vegaskema.Error},
		MaxBytes:   1 << 20,
		MaxDepth:   32,
	}
}

// ParseFunc turns a request body into a Result. choropleth.Parse satisfies it.
type ParseFunc func(ctx context.Context, body []byte, opts ...vegaskema.ParseOpt) (choropleth.Result, error)

// Observer is notified of every parse outcome.
type Observer func(r *http.Request, res choropleth.Result, err error)

type config struct {
	opt      vegaskema.ParseOpt
	parse    ParseFunc
	logger   *slog.Logger
	observer Observer
}

// Option configures Choropleth.
type Option func(*config)

// WithParseOpt replaces DefaultParseOpt.
func WithParseOpt(opt vegaskema.ParseOpt) Option { return func(c *config) { c.opt = opt } }

// WithParser replaces choropleth.Parse, e.g. with a caching wrapper.
func WithParser(fn ParseFunc) Option {
	return func(c *config) {
		if fn != nil {
			c.parse = fn
		}
	}
}

// WithLogger sets the logger used for rejected requests.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers a callback for every parse outcome.
func WithObserver(o Observer) Option { return func(c *config) { c.observer = o } }

// Choropleth parses the request body as a choropleth spec.
//
//   - malformed JSON, enforcement failures and unsupported gradients: 400
//   - structurally incomplete specs: 422
//   - complete specs: next is called with the Result in the request context
func Choropleth(next http.Handler, opts ...Option) http.Handler {
	cfg := config{opt: DefaultParseOpt(), parse: choropleth.Parse, logger: slog.Default()}
	for _, o := range opts {
		o(&cfg)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(r.Body, cfg.opt.MaxBytes)
		if err != nil {
			cfg.logger.WarnContext(r.Context(), "read request body", slog.Any("error", err))
			WriteJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		res, err := cfg.parse(r.Context(), body, cfg.opt)
		if cfg.observer != nil {
			cfg.observer(r, res, err)
		}
		if err != nil {
			iss, ok := vegaskema.AsIssues(err)
			if !ok {
				cfg.logger.WarnContext(r.Context(), "parse choropleth spec", slog.Any("error", err))
				WriteJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			status := http.StatusBadRequest
			if iss[0].Code == vegaskema.CodeIncomplete {
				status = http.StatusUnprocessableEntity
			}
			cfg.logger.DebugContext(r.Context(), "rejected choropleth spec",
				slog.Int("status", status), slog.String("code", iss[0].Code), slog.String("path", iss[0].Path))
			WriteJSON(w, status, ErrorPayload(iss))
			return
		}
		if !res.Valid() {
			cfg.logger.DebugContext(r.Context(), "incomplete choropleth spec",
				slog.String("gate", res.FailedGate.String()), slog.String("path", res.Reason.Path))
			WriteJSON(w, http.StatusUnprocessableEntity, res)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithResult(r.Context(), res)))
	})
}

// readBody reads at most max+1 bytes so oversized bodies reach the parser
// and are reported as truncated.
func readBody(body io.ReadCloser, max int64) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	defer body.Close()
	var r io.Reader = body
	if max > 0 {
		r = io.LimitReader(body, max+1)
	}
	return io.ReadAll(r)
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues []vegaskema.Issue) map[string]any {
	return map[string]any{"issues": issues}
}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}
