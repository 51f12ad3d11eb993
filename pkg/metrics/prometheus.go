// Package metrics provides Prometheus metrics for the play-by-play pipeline.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// defaultLatencyBuckets are in milliseconds; games take from well under a
// millisecond to about a second.
var defaultLatencyBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000} //nolint:gochecknoglobals // read-only default

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Classification
	playsClassified   *prometheus.CounterVec
	playsUnparsed     prometheus.Counter
	classifyCacheHit  prometheus.Counter
	classifyCacheMiss prometheus.Counter
	classifyCacheWait prometheus.Counter
	classifyCacheSize prometheus.Gauge

	// Games
	gamesProcessed   prometheus.Counter
	gamesDuplicate   prometheus.Counter
	gamesFailed      *prometheus.CounterVec
	gamesStored      prometheus.Gauge
	gameLatency      prometheus.Histogram
	adjustLatency    prometheus.Histogram
	playsPerGame     prometheus.Histogram
	absWPAPerPlay    prometheus.Histogram
	gamesWithoutWP   prometheus.Counter
	timeoutsCarried  prometheus.Counter
	boundariesFixed  prometheus.Counter
	workerCount      prometheus.Gauge
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge

	// Queue
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Workers
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Errors
	errorRateByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pbpwpa",
		subsystem:        "pipeline",
		histogramBuckets: defaultLatencyBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)
	latencyBuckets := m.histogramBuckets

	m.playsClassified = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("plays_classified_total"),
		Help: "Plays classified, by event kind",
	}, []string{"kind"})

	m.playsUnparsed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("plays_unparsed_total"),
		Help: "Plays no grammar matched",
	})

	m.classifyCacheHit = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("classify_cache_hits_total"),
		Help: "Classification cache hits",
	})

	m.classifyCacheMiss = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("classify_cache_misses_total"),
		Help: "Classification cache misses (descriptions parsed)",
	})

	m.classifyCacheWait = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("classify_cache_shared_total"),
		Help: "Callers that waited on an in-flight parse of the same description",
	})

	m.classifyCacheSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("classify_cache_entries"),
		Help: "Distinct descriptions held by the classification cache",
	})

	m.gamesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("games_processed_total"),
		Help: "Games classified and adjusted successfully",
	})

	m.gamesDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("games_duplicate_total"),
		Help: "Games submitted more than once in a run",
	})

	m.gamesFailed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("games_failed_total"),
		Help: "Games whose processing failed, by reason",
	}, []string{"reason"})

	m.gamesStored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("games_stored"),
		Help: "Game results held in the repository",
	})

	m.gameLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("game_processing_latency_milliseconds"),
		Help:    "End-to-end latency of processing one game",
		Buckets: latencyBuckets,
	})

	m.adjustLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("adjust_latency_milliseconds"),
		Help:    "Latency of the win probability correction pass",
		Buckets: latencyBuckets,
	})

	m.playsPerGame = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("plays_per_game"),
		Help:    "Number of plays per processed game",
		Buckets: []float64{50, 100, 200, 300, 400, 500, 600, 800},
	})

	m.absWPAPerPlay = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("play_abs_wpa_percent"),
		Help:    "Absolute win probability added per play",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 50},
	})

	m.gamesWithoutWP = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("games_without_wp_total"),
		Help: "Games processed without a win probability series",
	})

	m.timeoutsCarried = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("timeouts_redistributed_total"),
		Help: "Timeout plays whose swing was moved to the following play",
	})

	m.boundariesFixed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("period_boundaries_corrected_total"),
		Help: "Period or game start plays whose win probability was corrected",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("worker_count"),
		Help: "Configured worker count",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_size"),
		Help: "Current number of queued games",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_capacity"),
		Help: "Maximum number of queued games",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_utilization_ratio"),
		Help: "Queue size divided by capacity",
	})

	m.queueEnqueueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_enqueued_total"),
		Help: "Games enqueued",
	})

	m.queueDequeueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_dequeued_total"),
		Help: "Games dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_enqueue_errors_total"),
		Help: "Enqueue attempts rejected (closed, full or cancelled)",
	})

	m.queueProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("queue_wait_milliseconds"),
		Help:    "Time a game spent queued before a worker picked it up",
		Buckets: latencyBuckets,
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("worker_active_count"),
		Help: "Workers currently running",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("worker_processing_latency_milliseconds"),
		Help:    "Worker time per game including storage",
		Buckets: m.histogramBuckets,
	})

	m.workerErrorRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("worker_errors_total"),
		Help: "Worker job failures",
	})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("errors_by_component_total"),
		Help: "Errors by component and type",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("system_memory_usage_bytes"),
		Help: "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("system_goroutine_count"),
		Help: "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("system_gc_pause_time_milliseconds"),
		Help:    "GC pause time in milliseconds",
		Buckets: latencyBuckets,
	})
}

// Classification Metrics Functions.

// RecordPlayClassified increments the classified counter for kind.
func RecordPlayClassified(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.playsClassified.WithLabelValues(kind).Inc()
}

// RecordPlayUnparsed increments the unparsed plays counter.
func RecordPlayUnparsed() {
	if !globalManager.enabled {
		return
	}
	globalManager.playsUnparsed.Inc()
}

// RecordClassifyCacheHit increments the cache hit counter.
func RecordClassifyCacheHit() {
	if !globalManager.enabled {
		return
	}
	globalManager.classifyCacheHit.Inc()
}

// RecordClassifyCacheMiss increments the cache miss counter.
func RecordClassifyCacheMiss() {
	if !globalManager.enabled {
		return
	}
	globalManager.classifyCacheMiss.Inc()
}

// RecordClassifyCacheShared increments the shared in-flight counter.
func RecordClassifyCacheShared() {
	if !globalManager.enabled {
		return
	}
	globalManager.classifyCacheWait.Inc()
}

// UpdateClassifyCacheEntries sets the number of cached descriptions.
func UpdateClassifyCacheEntries(n int) {
	globalManager.classifyCacheSize.Set(float64(n))
}

// Game Metrics Functions.

// RecordGameProcessed records a successfully processed game.
func RecordGameProcessed(plays int, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.gamesProcessed.Inc()
	globalManager.playsPerGame.Observe(float64(plays))
	globalManager.gameLatency.Observe(latencyMs)
}

// RecordGameDuplicate increments the duplicate game counter.
func RecordGameDuplicate() {
	if !globalManager.enabled {
		return
	}
	globalManager.gamesDuplicate.Inc()
}

// RecordGameFailed increments the failed game counter for reason.
func RecordGameFailed(reason string) {
	if !globalManager.enabled {
		return
	}
	globalManager.gamesFailed.WithLabelValues(reason).Inc()
}

// RecordGameWithoutWP increments the counter of games without a WP series.
func RecordGameWithoutWP() {
	if !globalManager.enabled {
		return
	}
	globalManager.gamesWithoutWP.Inc()
}

// UpdateGamesStored sets the number of stored game results.
func UpdateGamesStored(n int) {
	globalManager.gamesStored.Set(float64(n))
}

// RecordAdjustLatency records the correction pass latency.
func RecordAdjustLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.adjustLatency.Observe(latencyMs)
}

// RecordPlayWPA records the magnitude of one play's WPA.
func RecordPlayWPA(absWPA float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.absWPAPerPlay.Observe(absWPA)
}

// RecordCorrections records how many boundary and timeout corrections a game needed.
func RecordCorrections(boundaries, timeouts int) {
	if !globalManager.enabled {
		return
	}
	globalManager.boundariesFixed.Add(float64(boundaries))
	globalManager.timeoutsCarried.Add(float64(timeouts))
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueWait records how long a job waited in the queue.
func RecordQueueWait(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// SetEnabled turns recording of business metrics on or off. Gauges are
// always updated.
func SetEnabled(enabled bool) {
	globalManager.enabled = enabled
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes the current registry in the text exposition format,
// for pickup by a node-exporter textfile collector.
func WriteTextfile(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrExportFailed)
	}
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}
