// Package metrics holds the Prometheus collectors for eventhub services.
//
// Collectors are registered with the default registry on import and exposed
// by Handler at /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eventhub"

var (
	// CallerResolutionsTotal counts passive caller resolutions by outcome
	// (identified, anonymous, provider_error, rejected).
	CallerResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "caller_resolutions_total",
			Help:      "Caller resolutions by outcome",
		},
		[]string{"outcome"},
	)

	// AuthorizationDecisionsTotal counts gated-action decisions.
	AuthorizationDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "authorization_decisions_total",
			Help:      "Authorization decisions by requirement and result",
		},
		[]string{"requirement", "result"}, // result: allowed, not_authenticated, not_authorized, error
	)

	// DownstreamRequestsTotal counts gateway calls to backing services.
	DownstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "downstream",
			Name:      "requests_total",
			Help:      "Calls to backing services by service and status class",
		},
		[]string{"service", "class"}, // class: 2xx, 4xx, 5xx, transport_error
	)

	// DownstreamDurationSeconds measures gateway calls to backing services.
	DownstreamDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "downstream",
			Name:      "request_duration_seconds",
			Help:      "Duration of calls to backing services",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	// AuthenticationsTotal counts users-service authentications by result.
	AuthenticationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "users",
			Name:      "authentications_total",
			Help:      "Identity token authentications by result",
		},
		[]string{"result"}, // result: success, token_invalid, invalid_issuer, missing_claim, provider_unavailable, store_error
	)

	// AuthorizationUpdatesTotal counts organizer flag changes that were applied.
	AuthorizationUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "users",
			Name:      "authorization_updates_total",
			Help:      "Applied organizer flag updates by new value",
		},
		[]string{"is_organizer"},
	)
)

// RecordCaller records the outcome of a passive caller resolution.
func RecordCaller(outcome string) {
	CallerResolutionsTotal.WithLabelValues(outcome).Inc()
}

// RecordDecision records a gated-action decision.
func RecordDecision(requirement, result string) {
	AuthorizationDecisionsTotal.WithLabelValues(requirement, result).Inc()
}

// RecordDownstream records one call to a backing service. status 0 means the
// call never produced a response.
func RecordDownstream(service string, status int, elapsed time.Duration) {
	DownstreamRequestsTotal.WithLabelValues(service, statusClass(status)).Inc()
	DownstreamDurationSeconds.WithLabelValues(service).Observe(elapsed.Seconds())
}

// RecordAuthentication records a users-service authentication result.
func RecordAuthentication(result string) {
	AuthenticationsTotal.WithLabelValues(result).Inc()
}

// RecordAuthorizationUpdate records an applied organizer flag change.
func RecordAuthorizationUpdate(value bool) {
	label := "false"
	if value {
		label = "true"
	}
	AuthorizationUpdatesTotal.WithLabelValues(label).Inc()
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

func statusClass(status int) string {
	switch {
	case status == 0:
		return "transport_error"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
