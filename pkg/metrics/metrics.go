package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration  *prometheus.HistogramVec
	DBOpenConns      *prometheus.GaugeVec
	DBInUseConns     *prometheus.GaugeVec
	DBIdleConns      *prometheus.GaugeVec
	DBWaitCountTotal *prometheus.GaugeVec

	JobRunsTotal       *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
}

// New создает и регистрирует метрики в DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает метрики и регистрирует их в переданном registerer
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation", "status"}),

		DBOpenConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: constLabels,
		}, []string{}),

		DBInUseConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}, []string{}),

		DBIdleConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: constLabels,
		}, []string{}),

		DBWaitCountTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count_total",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{}),

		JobRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "crm_job_runs_total",
			Help:        "Scheduled job runs by job and result",
			ConstLabels: constLabels,
		}, []string{"job", "result"}),

		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "crm_notifications_enqueued_total",
			Help:        "Notifications put into the outbox",
			ConstLabels: constLabels,
		}, []string{"type"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBOpenConns,
		m.DBInUseConns,
		m.DBIdleConns,
		m.DBWaitCountTotal,
		m.JobRunsTotal,
		m.NotificationsTotal,
	)

	return m
}

// ObserveJob увеличивает счётчик запусков задачи
func (m *Metrics) ObserveJob(job string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.JobRunsTotal.WithLabelValues(job, result).Inc()
}

// ObserveNotification увеличивает счётчик уведомлений
func (m *Metrics) ObserveNotification(notificationType string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(notificationType).Inc()
}
