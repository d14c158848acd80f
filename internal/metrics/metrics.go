package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipebox_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipebox_rate_limit_rejections_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"limiter", "backend"}, // backend: redis, local
	)

	// Recipe engine
	FilterQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipebox_filter_queries_total",
			Help: "Recipe list queries by membership scope",
		},
		[]string{"scope"}, // all, favorites, cart, favorites_cart
	)

	MembershipToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipebox_membership_toggles_total",
			Help: "Favorite, cart and subscription toggles by outcome",
		},
		[]string{"relation", "action", "outcome"},
	)

	ShoppingListLines = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipebox_shopping_list_lines",
			Help:    "Number of aggregated lines per shopping list build",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	StaleCartReferences = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipebox_stale_cart_references_total",
			Help: "Cart entries skipped because the recipe no longer exists",
		},
	)

	// Media
	ImageUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipebox_image_uploads_total",
			Help: "Recipe image uploads by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recipebox_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)
