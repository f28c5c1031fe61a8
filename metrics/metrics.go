package metrics

import (
	"net/http"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dataway/truenas-cert-sync/internal"
	"github.com/dataway/truenas-cert-sync/internal/logging"
)

// Metrics are the prometheus metrics of a sync process.
type Metrics struct {
	passes          *prometheus.CounterVec
	mutations       *prometheus.CounterVec
	jobWait         *prometheus.HistogramVec
	lastSuccess     prometheus.Gauge
	requestDuration *prometheus.HistogramVec
}

// New registers the metrics with promRegistry. The metrics include:
//   - the standard process metrics
//   - the standard go metrics
//   - build_info
//   - the certsync_* metrics recorded by the Observe methods
func New(promRegistry prometheus.Registerer) *Metrics {
	promRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promRegistry.MustRegister(collectors.NewGoCollector())

	factory := promauto.With(promRegistry)
	factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "build",
		Name:      "info",
		Help:      "Build information about truenas-cert-sync.",
	}, []string{"version", "commit", "date"}).With(prometheus.Labels{
		"version": internal.FullVersion(),
		"commit":  internal.Commit,
		"date":    internal.Date,
	}).Set(1)

	return &Metrics{
		passes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "certsync",
			Name:      "passes_total",
			Help:      "Number of sync passes, by result.",
		}, []string{"result"}),
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "certsync",
			Name:      "mutations_total",
			Help:      "Number of changes made to the appliance, by operation.",
		}, []string{"operation"}),
		jobWait: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "certsync",
			Name:      "job_wait_seconds",
			Help:      "A histogram of time, in seconds, spent waiting for appliance jobs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"state"}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "certsync",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last sync pass that completed without error.",
		}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "certsync",
			Name:      "api_request_duration_seconds",
			Help:      "A histogram of duration, in seconds, of requests to the appliance API.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"method", "path", "status"}),
	}
}

// Pass results.
const (
	ResultConverged = "converged"
	ResultChanged   = "changed"
	ResultFailed    = "failed"
)

func (m *Metrics) ObservePass(result string, now time.Time) {
	m.passes.WithLabelValues(result).Inc()
	if result != ResultFailed {
		m.lastSuccess.Set(float64(now.Unix()))
	}
}

func (m *Metrics) ObserveMutation(operation string) {
	m.mutations.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveJob(state string, elapsed time.Duration) {
	m.jobWait.WithLabelValues(state).Observe(elapsed.Seconds())
}

var numericSegment = regexp.MustCompile(`/[0-9]+(/|$)`)

// ObserveAPIRequest records the duration of a request to the appliance. It
// has the signature of api.Client.ObserveFunc. Numeric path segments are
// replaced so that every certificate id shares one series.
func (m *Metrics) ObserveAPIRequest(start time.Time, req *http.Request, resp *http.Response, err error) {
	status := "error"
	if err == nil && resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}

	m.requestDuration.With(prometheus.Labels{
		"method": req.Method,
		"path":   numericSegment.ReplaceAllString(req.URL.Path, "/:id$1"),
		"status": status,
	}).Observe(time.Since(start).Seconds())
}

// NewHandler creates a new gin.Engine, and adds a 'GET /metrics' handler to it.
// The handler serves prometheus metrics from the promRegistry.
func NewHandler(promRegistry *prometheus.Registry) *gin.Engine {
	setGinMode()
	engine := gin.New()
	engine.Use(logging.Middleware(), gin.Recovery())
	engine.GET("/metrics", func(c *gin.Context) {
		handler := promhttp.InstrumentMetricHandler(
			promRegistry,
			promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
		handler.ServeHTTP(c.Writer, c.Request)
	})
	engine.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

// setGinMode from the GIN_MODE environment variable. Unlike the init function
// in gin, this function defaults to ReleaseMode when the environment variable
// has no value.
func setGinMode() {
	mode := os.Getenv(gin.EnvGinMode)
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
}
