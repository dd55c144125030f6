package metrics

import (
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the dashboard.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Reactive graph
	recomputations    *prometheus.CounterVec
	recomputeLatency  *prometheus.HistogramVec
	parameterChanges  *prometheus.CounterVec
	invalidParameters *prometheus.CounterVec
	artifactsServed   *prometheus.CounterVec
	staleArtifacts    *prometheus.CounterVec

	// Dataset
	datasetRows         prometheus.Gauge
	datasetYears        prometheus.Gauge
	datasetCountries    prometheus.Gauge
	datasetLoadDuration prometheus.Histogram
	anomalies           *prometheus.GaugeVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
}

type state struct {
	manager  *Manager
	registry *prometheus.Registry
}

var current atomic.Pointer[state] //nolint:gochecknoglobals // process-wide metrics singleton

func init() { //nolint:gochecknoinits // metrics must be usable before Init
	reg := prometheus.NewRegistry()
	current.Store(&state{manager: NewManager(WithPrometheusRegistry(reg)), registry: reg})
}

// Init replaces the global manager with one built from opts on a fresh
// registry. It is meant to be called once at startup.
func Init(opts ...Option) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRegister, r)
		}
	}()
	reg := prometheus.NewRegistry()
	m := NewManager(append(opts, WithPrometheusRegistry(reg))...)
	current.Store(&state{manager: m, registry: reg})
	return nil
}

// NewManager creates a metrics manager. Collectors are registered on the
// configured registry, the default registerer unless overridden.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "edupanel",
		subsystem:        "dashboard",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recomputations = auto.NewCounterVec(
		m.counterOpts("recomputations_total", "Output recomputations by output and resulting status"),
		[]string{"output", "status"},
	)
	m.recomputeLatency = auto.NewHistogramVec(
		m.histogramOpts("recompute_latency_milliseconds", "Time to rebuild one output in milliseconds"),
		[]string{"output"},
	)
	m.parameterChanges = auto.NewCounterVec(
		m.counterOpts("parameter_changes_total", "Accepted parameter changes by parameter"),
		[]string{"param"},
	)
	m.invalidParameters = auto.NewCounterVec(
		m.counterOpts("invalid_parameters_total", "Rejected parameter change events by parameter"),
		[]string{"param"},
	)
	m.artifactsServed = auto.NewCounterVec(
		m.counterOpts("artifacts_served_total", "Artifacts returned to callers by output"),
		[]string{"output"},
	)
	m.staleArtifacts = auto.NewCounterVec(
		m.counterOpts("stale_artifacts_total", "Cached artifacts found stale on read and rebuilt"),
		[]string{"output"},
	)

	m.datasetRows = auto.NewGauge(m.gaugeOpts("dataset_rows", "Rows in the loaded panel"))
	m.datasetYears = auto.NewGauge(m.gaugeOpts("dataset_years", "Distinct years in the loaded panel"))
	m.datasetCountries = auto.NewGauge(m.gaugeOpts("dataset_countries", "Distinct countries in the loaded panel"))
	m.datasetLoadDuration = auto.NewHistogram(
		m.histogramOpts("dataset_load_duration_milliseconds", "Dataset read and enrichment time in milliseconds"),
	)
	m.anomalies = auto.NewGaugeVec(
		m.gaugeOpts("anomalies", "Rows outside the IQR fences for the last computed metric"),
		[]string{"metric"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
}

func global() *Manager { return current.Load().manager }

// RecordRecompute counts one output rebuild with its artifact status.
func RecordRecompute(output, status string) {
	global().recomputations.WithLabelValues(output, status).Inc()
}

// RecordRecomputeLatency records how long one output took to rebuild.
func RecordRecomputeLatency(output string, latencyMs float64) {
	global().recomputeLatency.WithLabelValues(output).Observe(latencyMs)
}

// RecordParameterChange counts an accepted change of param.
func RecordParameterChange(param string) {
	global().parameterChanges.WithLabelValues(param).Inc()
}

// RecordInvalidParameter counts a rejected event blamed on param.
func RecordInvalidParameter(param string) {
	global().invalidParameters.WithLabelValues(param).Inc()
}

// RecordArtifactServed counts one artifact handed out.
func RecordArtifactServed(output string) {
	global().artifactsServed.WithLabelValues(output).Inc()
}

// RecordStaleArtifact counts a cached artifact whose key no longer matched.
func RecordStaleArtifact(output string) {
	global().staleArtifacts.WithLabelValues(output).Inc()
}

// UpdateDatasetRows sets the loaded row count.
func UpdateDatasetRows(n int) {
	global().datasetRows.Set(float64(n))
}

// UpdateDatasetYears sets the distinct year count.
func UpdateDatasetYears(n int) {
	global().datasetYears.Set(float64(n))
}

// UpdateDatasetCountries sets the distinct country count.
func UpdateDatasetCountries(n int) {
	global().datasetCountries.Set(float64(n))
}

// RecordDatasetLoadDuration records dataset load time in milliseconds.
func RecordDatasetLoadDuration(ms float64) {
	global().datasetLoadDuration.Observe(ms)
}

// UpdateAnomalyCount sets the number of anomalous rows for metric.
func UpdateAnomalyCount(metric string, n int) {
	global().anomalies.WithLabelValues(metric).Set(float64(n))
}

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	global().httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	global().httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent increments the error counter for a component.
func RecordErrorByComponent(component, errorType string) {
	global().errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint increments the error counter for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	global().errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the Prometheus registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return current.Load().registry
}
