package server

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/phennylalanine/jhvocab/internal/config"
	"github.com/phennylalanine/jhvocab/internal/hub"
	"github.com/phennylalanine/jhvocab/internal/progression"
	"github.com/phennylalanine/jhvocab/internal/scheduler"
	"github.com/phennylalanine/jhvocab/internal/store"
)

// Metrics owns the dashboard's prometheus registry.
type Metrics struct {
	registry        *prometheus.Registry
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers the request metrics and the progress collector.
func NewMetrics(collector prometheus.Collector) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jhvocab_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jhvocab_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "path"},
		),
	}
	m.registry.MustRegister(m.requestCounter, m.requestDuration)
	if collector != nil {
		m.registry.MustRegister(collector)
	}
	return m
}

// Middleware records every request.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requestCounter.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// ProgressCollector exports stored levels on every scrape.
type ProgressCollector struct {
	kv      store.KV
	quizzes []config.QuizConfig
	entries []hub.Entry
	now     func() time.Time
	timeout time.Duration
	log     *zap.Logger

	levelDesc   *prometheus.Desc
	xpDesc      *prometheus.Desc
	overallDesc *prometheus.Desc
	coolingDesc *prometheus.Desc
}

// NewProgressCollector creates a collector over the catalog and hub entries.
func NewProgressCollector(kv store.KV, quizzes []config.QuizConfig, entries []hub.Entry, log *zap.Logger) *ProgressCollector {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProgressCollector{
		kv:      kv,
		quizzes: quizzes,
		entries: entries,
		now:     time.Now,
		timeout: 5 * time.Second,
		log:     log,
		levelDesc: prometheus.NewDesc("jhvocab_quiz_level",
			"Stored level of a quiz", []string{"quiz"}, nil),
		xpDesc: prometheus.NewDesc("jhvocab_quiz_xp",
			"XP toward the next level of a quiz", []string{"quiz"}, nil),
		overallDesc: prometheus.NewDesc("jhvocab_overall_level",
			"Weighted overall level across quizzes", nil, nil),
		coolingDesc: prometheus.NewDesc("jhvocab_questions_cooling_down",
			"Questions of a quiz currently in cooldown", []string{"quiz"}, nil),
	}
}

func (p *ProgressCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- p.levelDesc
	ch <- p.xpDesc
	ch <- p.overallDesc
	ch <- p.coolingDesc
}

func (p *ProgressCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	now := p.now()
	for _, q := range p.quizzes {
		st := progression.New(ctx, p.kv, progression.Keys{XP: q.XPKey, Level: q.LevelKey}, progression.WithLogger(p.log)).State()
		ch <- prometheus.MustNewConstMetric(p.levelDesc, prometheus.GaugeValue, float64(st.Level), q.ID)
		ch <- prometheus.MustNewConstMetric(p.xpDesc, prometheus.GaugeValue, float64(st.XP), q.ID)

		sched := scheduler.New(ctx, p.kv, scheduler.BoundNamespace(ctx, p.kv, q.NamespaceKey(), q.Namespace),
			scheduler.WithLogger(p.log))
		ch <- prometheus.MustNewConstMetric(p.coolingDesc, prometheus.GaugeValue, float64(len(sched.CoolingDown(now))), q.ID)
	}

	sum := hub.Summarize(ctx, p.kv, p.entries)
	ch <- prometheus.MustNewConstMetric(p.overallDesc, prometheus.GaugeValue, float64(sum.Overall))
}
