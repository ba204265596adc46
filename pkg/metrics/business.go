package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const businessSubsystem = "entitlement"

var trialStart = &Metric{
	ID:          "trialStart",
	Name:        "trial_start_total",
	Description: "Trial start attempts partitioned by result (started, already_used, error).",
	Type:        "counter_vec",
	Args:        []string{"result"},
}

var trialExpired = &Metric{
	ID:          "trialExpired",
	Name:        "trial_expiry_observed_total",
	Description: "Active to expired trial transitions observed by countdown watchers.",
	Type:        "counter",
}

var featureCheck = &Metric{
	ID:          "featureCheck",
	Name:        "feature_check_total",
	Description: "Feature access checks partitioned by feature and result.",
	Type:        "counter_vec",
	Args:        []string{"feature", "result"},
}

var subscriptionEvent = &Metric{
	ID:          "subscriptionEvent",
	Name:        "subscription_event_total",
	Description: "Processor events partitioned by result (applied, stale, invalid, error).",
	Type:        "counter_vec",
	Args:        []string{"result"},
}

var signIn = &Metric{
	ID:          "signIn",
	Name:        "sign_in_total",
	Description: "Sign-in attempts partitioned by result kind and sync outcome.",
	Type:        "counter_vec",
	Args:        []string{"kind", "synced"},
}

// BusinessMetrics are registered once at init with the default registry.
var BusinessMetrics = []*Metric{trialStart, trialExpired, featureCheck, subscriptionEvent, signIn}

func init() {
	for _, m := range BusinessMetrics {
		m.MetricCollector = NewMetric(m, businessSubsystem)
		prometheus.MustRegister(m.MetricCollector)
	}
}

func TrialStart(result string) {
	trialStart.MetricCollector.(*prometheus.CounterVec).WithLabelValues(result).Inc()
}

func TrialExpiryObserved() {
	trialExpired.MetricCollector.(prometheus.Counter).Inc()
}

func FeatureCheck(feature string, allowed bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	featureCheck.MetricCollector.(*prometheus.CounterVec).WithLabelValues(feature, result).Inc()
}

func SubscriptionEvent(result string) {
	subscriptionEvent.MetricCollector.(*prometheus.CounterVec).WithLabelValues(result).Inc()
}

func SignIn(kind string, synced bool) {
	s := "false"
	if synced {
		s = "true"
	}
	signIn.MetricCollector.(*prometheus.CounterVec).WithLabelValues(kind, s).Inc()
}
