package metrics

// DecisionRecorder fans authorization decisions out to the collector and,
// when configured, the Prometheus exporter. It satisfies the enforcement
// point's recorder interface.
type DecisionRecorder struct {
	collector *Collector
	exporter  *PrometheusExporter
}

// NewDecisionRecorder creates a recorder. exporter may be nil when
// Prometheus export is disabled.
func NewDecisionRecorder(collector *Collector, exporter *PrometheusExporter) *DecisionRecorder {
	return &DecisionRecorder{collector: collector, exporter: exporter}
}

// RecordDecision records the outcome of one authorization check.
func (r *DecisionRecorder) RecordDecision(resource, action string, allowed bool) {
	r.collector.RecordDecision(resource, action, allowed)
	if r.exporter != nil {
		r.exporter.RecordDecision(resource, action, allowed)
	}
}

// RecordFiltered records elements dropped from a collection result.
func (r *DecisionRecorder) RecordFiltered(resource string, removed int) {
	r.collector.RecordFiltered(resource, removed)
	if r.exporter != nil {
		r.exporter.RecordFiltered(resource, removed)
	}
}
