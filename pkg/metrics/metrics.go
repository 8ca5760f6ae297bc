package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "boost_ticket"

// Collectors holds the order flow metrics. A nil *Collectors is valid and
// records nothing, so components can be built without metrics in tests.
type Collectors struct {
	FlowsStarted       *prometheus.CounterVec
	QuotesIssued       *prometheus.CounterVec
	QuoteAmount        *prometheus.HistogramVec
	ValidationFailures *prometheus.CounterVec
	TicketsCreated     *prometheus.CounterVec
	HandoffFailures    *prometheus.CounterVec
	FlowsCancelled     *prometheus.CounterVec
	ActionExecutions   *prometheus.CounterVec
}

// New creates unregistered collectors.
func New() *Collectors {
	return &Collectors{
		FlowsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flows_started_total",
			Help:      "Number of order flows started, by category.",
		}, []string{"category"}),
		QuotesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_issued_total",
			Help:      "Number of prices computed for order flows, by category.",
		}, []string{"category"}),
		QuoteAmount: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_amount_euros",
			Help:      "Distribution of quoted order totals in euros.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"category"}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Number of rejected user inputs, by field.",
		}, []string{"field"}),
		TicketsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_created_total",
			Help:      "Number of confirmed orders handed off to ticket provisioning.",
		}, []string{"category", "payment_method"}),
		HandoffFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handoff_failures_total",
			Help:      "Number of failed ticket provisioning attempts.",
		}, []string{"category"}),
		FlowsCancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flows_cancelled_total",
			Help:      "Number of order flows cancelled by the customer.",
		}, []string{"category"}),
		ActionExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handoff_action_executions_total",
			Help:      "Number of hand-off action executions, by action and result.",
		}, []string{"action_id", "result"}),
	}
}

// Collectors returns every collector for registration.
func (c *Collectors) Collectors() []prometheus.Collector {
	if c == nil {
		return nil
	}
	return []prometheus.Collector{
		c.FlowsStarted,
		c.QuotesIssued,
		c.QuoteAmount,
		c.ValidationFailures,
		c.TicketsCreated,
		c.HandoffFailures,
		c.FlowsCancelled,
		c.ActionExecutions,
	}
}

// Register registers every collector with reg.
func (c *Collectors) Register(reg prometheus.Registerer) error {
	for _, col := range c.Collectors() {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collectors) FlowStarted(category string) {
	if c == nil {
		return
	}
	c.FlowsStarted.WithLabelValues(category).Inc()
}

func (c *Collectors) QuoteIssued(category string, total float64) {
	if c == nil {
		return
	}
	c.QuotesIssued.WithLabelValues(category).Inc()
	c.QuoteAmount.WithLabelValues(category).Observe(total)
}

func (c *Collectors) ValidationFailed(field string) {
	if c == nil {
		return
	}
	c.ValidationFailures.WithLabelValues(field).Inc()
}

func (c *Collectors) TicketCreated(category, paymentMethod string) {
	if c == nil {
		return
	}
	c.TicketsCreated.WithLabelValues(category, paymentMethod).Inc()
}

func (c *Collectors) HandoffFailed(category string) {
	if c == nil {
		return
	}
	c.HandoffFailures.WithLabelValues(category).Inc()
}

func (c *Collectors) FlowCancelled(category string) {
	if c == nil {
		return
	}
	c.FlowsCancelled.WithLabelValues(category).Inc()
}

func (c *Collectors) ActionExecuted(actionID string, err error) {
	if c == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	c.ActionExecutions.WithLabelValues(actionID, result).Inc()
}
