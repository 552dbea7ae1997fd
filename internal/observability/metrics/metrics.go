package metrics

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const namespace = "rentaldesk"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

const (
	ReasonDeadlineExceeded = "deadline_exceeded"
	ReasonNotFound         = "not_found"
	ReasonUniqueViolation  = "unique_violation"
	ReasonDB               = "db"
	ReasonUnknown          = "unknown"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	pipelineSteps     *prometheus.CounterVec
	notifications     *prometheus.CounterVec
	sweepDeleted      prometheus.Counter
	jobRuns           *prometheus.CounterVec
	jobDuration       *prometheus.HistogramVec
	customerCreations *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the process-wide metrics registered on the default registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// New registers a fresh set of collectors with reg. Tests pass their own registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		pipelineSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_step_total",
			Help:      "Quote workflow steps by outcome.",
		}, []string{"workflow", "step", "outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Outbound emails by kind, provider and outcome.",
		}, []string{"kind", "provider", "outcome"}),
		sweepDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "customer_sweep_deleted_total",
			Help:      "Stale quotation customers removed by the retention sweep.",
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_job_runs_total",
			Help:      "Scheduler job runs by outcome and failure reason.",
		}, []string{"job", "outcome", "reason"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scheduler_job_duration_seconds",
			Help:      "Scheduler job duration.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}, []string{"job"}),
		customerCreations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "customer_materialize_total",
			Help:      "Customer materializations from approved quotes by action.",
		}, []string{"action"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.httpRequests,
			m.httpDuration,
			m.pipelineSteps,
			m.notifications,
			m.sweepDeleted,
			m.jobRuns,
			m.jobDuration,
			m.customerCreations,
		)
	}
	return m
}

func (m *Metrics) ObservePipelineStep(workflow, step, outcome string) {
	if m == nil {
		return
	}
	m.pipelineSteps.WithLabelValues(workflow, step, outcome).Inc()
}

func (m *Metrics) ObserveNotification(kind, provider string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.notifications.WithLabelValues(kind, provider, outcome).Inc()
}

func (m *Metrics) ObserveSweep(deleted int64) {
	if m == nil || deleted <= 0 {
		return
	}
	m.sweepDeleted.Add(float64(deleted))
}

// ObserveCustomerMaterialize records whether an approval created or updated a customer.
func (m *Metrics) ObserveCustomerMaterialize(action string) {
	if m == nil {
		return
	}
	m.customerCreations.WithLabelValues(action).Inc()
}

func (m *Metrics) ObserveJob(job string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	reason := ""
	if err != nil {
		outcome = OutcomeFailure
		reason = ClassifyReason(err)
	}
	m.jobRuns.WithLabelValues(job, outcome, reason).Inc()
	m.jobDuration.WithLabelValues(job).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveJobSkipped(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, OutcomeSkipped, "").Inc()
}

// GinMiddleware records request counts and latency per route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// ClassifyReason maps an error to a bounded label value.
func ClassifyReason(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonDeadlineExceeded
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ReasonNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ReasonUniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return ReasonUniqueViolation
		}
		return ReasonDB
	}
	return ReasonUnknown
}
