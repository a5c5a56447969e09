package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealdesk_http_requests_total",
			Help: "Total number of HTTP requests by route pattern and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dealdesk_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	DealsEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealdesk_deals_evaluated_total",
			Help: "Total number of deal worksheets priced and scored",
		},
		[]string{"saved"},
	)

	DealScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dealdesk_deal_score",
			Help:    "Distribution of deal health scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	SignupsCancelled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealdesk_signups_cancelled_total",
			Help: "Total number of signup cancellations by resulting status",
		},
		[]string{"status"},
	)

	PayoutsComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealdesk_payouts_computed_total",
			Help: "Total number of payout statements computed",
		},
	)
)
