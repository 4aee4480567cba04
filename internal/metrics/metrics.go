package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the bot's prometheus instruments.
type Metrics struct {
	MessagesHandled       prometheus.Counter
	RateLimitedRejections prometheus.Counter
	ApplicationsSubmitted prometheus.Counter
	Approvals             prometheus.Counter
	Rejections            prometheus.Counter
	PaymentCallbacks      prometheus.Counter
	PaymentsVerified      prometheus.Counter
	ActiveSessions        prometheus.Gauge
}

// New registers the instruments with the given registerer and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MessagesHandled: factory.NewCounter(prometheus.CounterOpts{
			Name: "tutorbot_messages_handled_total",
			Help: "Total number of inbound bot messages handled",
		}),
		RateLimitedRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "tutorbot_rate_limited_total",
			Help: "Total number of messages rejected by the rate limiter",
		}),
		ApplicationsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "tutorbot_applications_submitted_total",
			Help: "Total number of completed registration applications",
		}),
		Approvals: factory.NewCounter(prometheus.CounterOpts{
			Name: "tutorbot_approvals_total",
			Help: "Total number of reviewer approvals",
		}),
		Rejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "tutorbot_rejections_total",
			Help: "Total number of reviewer rejections",
		}),
		PaymentCallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "tutorbot_payment_callbacks_total",
			Help: "Total number of payment provider callbacks received",
		}),
		PaymentsVerified: factory.NewCounter(prometheus.CounterOpts{
			Name: "tutorbot_payments_verified_total",
			Help: "Total number of payments verified and finalized",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tutorbot_active_sessions",
			Help: "Current number of live registration sessions",
		}),
	}
}
