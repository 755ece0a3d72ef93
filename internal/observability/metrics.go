package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	apiRequestsTotal   *prometheus.CounterVec
	apiLatencySeconds  *prometheus.HistogramVec
	apiErrorsTotal     *prometheus.CounterVec
	messagesSentTotal  *prometheus.CounterVec
	reactionsTotal     *prometheus.CounterVec
	mentionsTotal      prometheus.Counter
	notificationsTotal *prometheus.CounterVec
	activitiesTotal    *prometheus.CounterVec
	feedRequestsTotal  *prometheus.CounterVec
	feedLatencySeconds prometheus.Histogram
	sseClientsActive   prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors for the API surface
// and the messaging domain.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		messagesSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "messages_sent_total",
			Help: "Total number of messages persisted, by message type.",
		}, []string{"type"})

		reactionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reactions_recorded_total",
			Help: "Total number of reactions recorded, by reaction type.",
		}, []string{"type"})

		mentionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mentions_resolved_total",
			Help: "Total number of mentions resolved to known users.",
		})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Total number of notifications published, by notification type.",
		}, []string{"type"})

		activitiesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activities_recorded_total",
			Help: "Total number of activity entries recorded, by activity type.",
		}, []string{"type"})

		feedRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_feed_requests_total",
			Help: "Total number of activity feed requests, by cache result.",
		}, []string{"result"})

		feedLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "activity_feed_latency_seconds",
			Help:    "Latency distribution for activity feed reads.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sse_clients_active",
			Help: "Number of currently connected notification stream clients.",
		})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			messagesSentTotal, reactionsTotal, mentionsTotal,
			notificationsTotal, activitiesTotal,
			feedRequestsTotal, feedLatencySeconds, sseClientsActive,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// MessagesSentTotal exposes the persisted-message counter.
func MessagesSentTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return messagesSentTotal
}

// ReactionsRecordedTotal exposes the reaction counter.
func ReactionsRecordedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return reactionsTotal
}

// MentionsResolvedTotal exposes the resolved-mention counter.
func MentionsResolvedTotal() prometheus.Counter {
	RegisterMetrics()
	return mentionsTotal
}

// NotificationsPublishedTotal exposes the notification counter.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// ActivitiesRecordedTotal exposes the activity counter.
func ActivitiesRecordedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return activitiesTotal
}

// FeedRequests exposes the activity feed request counter.
func FeedRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return feedRequestsTotal
}

// FeedLatency exposes the activity feed latency histogram.
func FeedLatency() prometheus.Histogram {
	RegisterMetrics()
	return feedLatencySeconds
}

// SSEClientsActive exposes the live SSE client gauge.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}
