// Package observability wires tracing and the bot's domain metrics.
//
// The counters below keep label cardinality fixed: every label value comes
// from a closed set (strategy, outcome, listing type, claim status).
package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// Classifications counts classifier runs by the strategy that produced
	// the answer ("remote", "heuristic", "gate") and outcome ("classified",
	// "ignored").
	Classifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "societybot_classifications_total",
			Help: "Classifier results by strategy and outcome.",
		},
		[]string{"strategy", "outcome"},
	)

	// Matches counts ingested messages that found opposite-type leads, by
	// the listing type of the incoming message.
	Matches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "societybot_matches_total",
			Help: "Messages that produced a lead hook.",
		},
		[]string{"listing_type"},
	)

	// ClaimTransitions counts applied payment-claim status changes.
	ClaimTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "societybot_claim_transitions_total",
			Help: "Applied payment claim transitions by target status.",
		},
		[]string{"to"},
	)

	// Deliveries counts paid reveals by outcome ("sent", "empty", "failed").
	Deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "societybot_deliveries_total",
			Help: "Paid lead deliveries by outcome.",
		},
		[]string{"outcome"},
	)

	// ExpiredListingsDeleted counts rows removed by cleanup.
	ExpiredListingsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "societybot_expired_listings_deleted_total",
			Help: "Expired listings removed by cleanup.",
		},
	)

	// WebhooksRejected counts provider webhooks refused before processing,
	// by reason ("signature", "event_id").
	WebhooksRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "societybot_webhooks_rejected_total",
			Help: "Provider webhooks rejected before processing.",
		},
		[]string{"reason"},
	)

	// OutboundPublishErrors counts messages the transport failed to publish
	// after retries.
	OutboundPublishErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "societybot_outbound_publish_errors_total",
			Help: "Outbound chat messages that could not be published.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		Classifications,
		Matches,
		ClaimTransitions,
		Deliveries,
		ExpiredListingsDeleted,
		WebhooksRejected,
		OutboundPublishErrors,
	)
}
