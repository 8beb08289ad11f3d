package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	vegaskema "github.com/reoring/vegaskema"
	"github.com/reoring/vegaskema/choropleth"
	"github.com/reoring/vegaskema/middleware"
)

// ── serve ─────────────────────────────────────────────────────────────────────

func serveCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /v1/choropleth",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.ListenAddr = addr
			}
			return a.runServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides VEGASKEMA_LISTEN_ADDR)")
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	handler, err := newRouter(a.cfg, a.logger, prometheus.NewRegistry())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("server started", "addr", a.cfg.ListenAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		stop()
	}

	a.logger.Info("shutting down", "timeout", a.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	a.logger.Info("server stopped")
	return nil
}

// metrics are registered on the registry passed to newRouter.
type metrics struct {
	parses    *prometheus.CounterVec
	cacheHits prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vegaskema",
			Name:      "parse_total",
			Help:      "Choropleth specs parsed, by outcome.",
		}, []string{"outcome"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vegaskema",
			Name:      "cache_hits_total",
			Help:      "Parse results served from the cache.",
		}),
	}
	for _, c := range []prometheus.Collector{m.parses, m.cacheHits} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// outcome labels a parse result for metrics.
func outcome(res choropleth.Result, err error) string {
	switch {
	case err == nil && res.Valid():
		return "complete"
	case err == nil:
		return "incomplete"
	case vegaskema.IsSyntax(err):
		return "syntax_error"
	case vegaskema.IsUnsupportedValue(err):
		return "unsupported_value"
	}
	if iss, ok := vegaskema.AsIssues(err); ok {
		return iss[0].Code
	}
	return "error"
}

// newRouter wires the HTTP surface of serve.
func newRouter(cfg *Config, logger *slog.Logger, reg *prometheus.Registry) (http.Handler, error) {
	m, err := newMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	opt := middleware.DefaultParseOpt()
	opt.MaxBytes = cfg.MaxBytes
	opt.MaxDepth = cfg.MaxDepth

	mwOpts := []middleware.Option{
		middleware.WithParseOpt(opt),
		middleware.WithLogger(logger),
		middleware.WithObserver(func(_ *http.Request, res choropleth.Result, err error) {
			m.parses.WithLabelValues(outcome(res, err)).Inc()
		}),
	}
	if cfg.CacheSize > 0 {
		c, err := newResultCache(cfg.CacheSize, m.cacheHits)
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		mwOpts = append(mwOpts, middleware.WithParser(c.Parse))
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Method(http.MethodPost, "/v1/choropleth", middleware.Choropleth(http.HandlerFunc(writeResult), mwOpts...))
	return r, nil
}

func writeResult(w http.ResponseWriter, r *http.Request) {
	res, _ := middleware.ResultFromContext(r.Context())
	middleware.WriteJSON(w, http.StatusOK, res)
}

// resultCache memoizes parse outcomes keyed by the body hash. Parsing is
// pure, so a hit is indistinguishable from a fresh parse. Options are fixed
// for the lifetime of a cache.
type resultCache struct {
	lru  *lru.Cache[uint64, cachedParse]
	hits prometheus.Counter
}

type cachedParse struct {
	body []byte
	res  choropleth.Result
	err  error
}

func newResultCache(size int, hits prometheus.Counter) (*resultCache, error) {
	c, err := lru.New[uint64, cachedParse](size)
	if err != nil {
		return nil, err
	}
	return &resultCache{lru: c, hits: hits}, nil
}

// Parse satisfies middleware.ParseFunc.
func (c *resultCache) Parse(ctx context.Context, body []byte, opts ...vegaskema.ParseOpt) (choropleth.Result, error) {
	key := xxhash.Sum64(body)
	if hit, ok := c.lru.Get(key); ok && bytes.Equal(hit.body, body) {
		c.hits.Inc()
		return hit.res, hit.err
	}
	res, err := choropleth.Parse(ctx, body, opts...)
	if ctx.Err() == nil {
		c.lru.Add(key, cachedParse{body: bytes.Clone(body), res: res, err: err})
	}
	return res, err
}
