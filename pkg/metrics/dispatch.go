package metrics

import "github.com/prometheus/client_golang/prometheus"

// DispatchMetrics records counters for the verification workflow and bulk imports.
type DispatchMetrics struct {
	verifications *prometheus.CounterVec
	importRows    *prometheus.CounterVec
	importRuns    *prometheus.CounterVec
}

// NewDispatchMetrics registers the dispatch metrics on the provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_verifications_total",
		Help: "Assignment verification transitions by outcome.",
	}, []string{"outcome"})
	importRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bulk_import_rows_total",
		Help: "Bulk import rows by result.",
	}, []string{"result"})
	importRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bulk_import_runs_total",
		Help: "Bulk import apply runs by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(verifications, importRows, importRuns)
	return &DispatchMetrics{
		verifications: verifications,
		importRows:    importRows,
		importRuns:    importRuns,
	}
}

// IncVerification counts one verify transition with the given outcome.
func (d *DispatchMetrics) IncVerification(outcome string) {
	if d == nil || d.verifications == nil {
		return
	}
	d.verifications.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// AddImportRows counts applied import rows with the given result label.
func (d *DispatchMetrics) AddImportRows(result string, n int) {
	if d == nil || d.importRows == nil || n <= 0 {
		return
	}
	d.importRows.WithLabelValues(normalizeLabel(result)).Add(float64(n))
}

// IncImportRun counts one import apply run by outcome.
func (d *DispatchMetrics) IncImportRun(outcome string) {
	if d == nil || d.importRuns == nil {
		return
	}
	d.importRuns.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
