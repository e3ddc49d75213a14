package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "heroes"

// Result labels of commit counters.
const (
	ResultCommitted = "committed"
	ResultFailed    = "failed"
)

// Metrics holds the collectors of the service. It satisfies the cache and
// unit of work observers and instruments the HTTP router.
type Metrics struct {
	gatherer prometheus.Gatherer

	cacheLookups *prometheus.CounterVec
	commits      *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInflight prometheus.Gauge
}

// New creates the collectors and registers them in reg. Collectors already
// registered by an earlier call are reused.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{gatherer: reg}

	var err error
	if m.cacheLookups, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by key and outcome.",
	}, []string{"key", "outcome"})); err != nil {
		return nil, err
	}

	if m.commits, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uow_commits_total",
		Help:      "Unit of work commits by store and result.",
	}, []string{"store", "result"})); err != nil {
		return nil, err
	}

	if m.httpRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})); err != nil {
		return nil, err
	}

	if m.httpDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})); err != nil {
		return nil, err
	}

	if m.httpInflight, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_inflight_requests",
		Help:      "Requests currently being served.",
	})); err != nil {
		return nil, err
	}

	return m, nil
}

// register adds c to reg. When an equal collector exists the registered
// instance is returned instead.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) CacheHit(key string) {
	m.cacheLookups.WithLabelValues(key, "hit").Inc()
}

func (m *Metrics) CacheMiss(key string) {
	m.cacheLookups.WithLabelValues(key, "miss").Inc()
}

// Committed counts a successful commit against store.
func (m *Metrics) Committed(store string) {
	m.commits.WithLabelValues(store, ResultCommitted).Inc()
}

// CommitFailed counts a rolled back commit against store.
func (m *Metrics) CommitFailed(store string) {
	m.commits.WithLabelValues(store, ResultFailed).Inc()
}

// Middleware records request count, latency and in-flight requests. Routes
// are labelled by their chi pattern so path parameters do not explode the
// label space.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInflight.Inc()
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			m.httpInflight.Dec()

			route := routePattern(r)
			method := strings.ToUpper(r.Method)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		}()

		next.ServeHTTP(ww, r)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
