package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Provider holds the governance metric collectors.
type Provider struct {
	inactiveUserQueries *prometheus.CounterVec
	metadataWrites      *prometheus.CounterVec
	queryDuration       prometheus.Histogram
}

// Attach registers the governance collectors with the default registerer.
func Attach() *Provider {
	return &Provider{
		inactiveUserQueries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "idgov",
			Name:      "inactive_user_queries_total",
			Help:      "Total number of inactive-user queries partitioned by outcome.",
		}, []string{"outcome"}),
		metadataWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "idgov",
			Name:      "metadata_writes_total",
			Help:      "Total number of activity metadata writes partitioned by claim.",
		}, []string{"claim"}),
		queryDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "idgov",
			Name:      "inactive_user_query_duration_seconds",
			Help:      "Latency of inactive-user queries.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// ObserveQuery records one query with its outcome and latency.
func (p *Provider) ObserveQuery(outcome string, seconds float64) {
	if p == nil {
		return
	}
	p.inactiveUserQueries.WithLabelValues(outcome).Inc()
	p.queryDuration.Observe(seconds)
}

// CountMetadataWrite records one durable activity write for the claim.
func (p *Provider) CountMetadataWrite(claim string) {
	if p == nil {
		return
	}
	p.metadataWrites.WithLabelValues(claim).Inc()
}
