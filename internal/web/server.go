package web

// HTTP surface of the scatter plot: the interactive page, its JSON API and
// rendered snapshots. The dataset is shared read-only between requests.

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"health-scatter/internal/chart"
	"health-scatter/internal/dataset"
	logging "health-scatter/internal/infra/log"
	"health-scatter/internal/render"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	ImageRPS   float64
	ImageBurst int
	GIFFrames  int
}

type Server struct {
	ds      *dataset.Dataset
	layout  chart.Layout
	raster  *render.Raster
	vector  render.Vector
	limiter *rate.Limiter
	frames  int
}

func New(ds *dataset.Dataset, layout chart.Layout, raster *render.Raster, opts Options) *Server {
	if opts.ImageRPS <= 0 {
		opts.ImageRPS = 5
	}
	if opts.ImageBurst <= 0 {
		opts.ImageBurst = 10
	}
	if opts.GIFFrames <= 0 {
		opts.GIFFrames = 20
	}
	if raster == nil {
		raster = render.NewRaster(nil)
	}
	return &Server{
		ds:      ds,
		layout:  layout,
		raster:  raster,
		limiter: rate.NewLimiter(rate.Limit(opts.ImageRPS), opts.ImageBurst),
		frames:  opts.GIFFrames,
	}
}

// Handler returns the routed, logged handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/view", s.handleAPIView)
	mux.HandleFunc("GET /api/labels", s.handleAPILabels)
	mux.Handle("GET /chart.png", s.limited(http.HandlerFunc(s.handleChartPNG)))
	mux.Handle("GET /chart.svg", s.limited(http.HandlerFunc(s.handleChartSVG)))
	mux.Handle("GET /chart.gif", s.limited(http.HandlerFunc(s.handleChartGIF)))
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return logRequests(mux)
}

// Run serves on addr until ctx is cancelled, then drains for up to 10s.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logging.LogSuccess("Scatter plot server listening", zap.String("addr", addr), zap.Int("rows", s.ds.Len()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.LogInfo("Shutdown signal received, draining connections...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.LogWarn("Timeout waiting for connections to drain", zap.Error(err))
		return err
	}
	logging.LogSuccess("Server stopped gracefully")
	return nil
}

// limited rejects image requests above the configured rate with 429.
func (s *Server) limited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "too many render requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := logging.GenerateRequestID()
		start := time.Now()
		logging.LogRequest(requestID, r.Method, r.URL.Path, zap.String("query", r.URL.RawQuery))

		w.Header().Set("X-Request-Id", requestID)
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		logging.LogResponse(requestID, rec.status, time.Since(start).Milliseconds(),
			zap.String("path", r.URL.Path),
			zap.Int("bytes", rec.bytes))
	})
}
