package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it uses the pipeline namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "pbpwpa")
				So(manager.enabled, ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("x_"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(false),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.subsystem, ShouldEqual, "test_subsystem")
				So(manager.metricPrefix, ShouldEqual, "x_")
				So(manager.enabled, ShouldBeFalse)
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			})
		})

		Convey("When empty values are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "pbpwpa")
				So(manager.subsystem, ShouldEqual, "pipeline")
				So(manager.histogramBuckets, ShouldResemble, defaultLatencyBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("Then recording functions do not panic", func() {
			So(func() {
				RecordPlayClassified("rebound")
				RecordPlayUnparsed()
				RecordClassifyCacheHit()
				RecordClassifyCacheMiss()
				RecordClassifyCacheShared()
				UpdateClassifyCacheEntries(3)
				RecordGameProcessed(420, 12.5)
				RecordGameDuplicate()
				RecordGameFailed("length_mismatch")
				RecordGameWithoutWP()
				UpdateGamesStored(1)
				RecordAdjustLatency(0.3)
				RecordPlayWPA(4.2)
				RecordCorrections(5, 2)
				UpdateWorkerCount(4)
				UpdateQueueSize(1)
				UpdateQueueCapacity(10)
				UpdateQueueUtilization(0.1)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordQueueWait(1)
				UpdateWorkerActiveCount(4)
				RecordWorkerProcessingLatency(2)
				RecordWorkerError()
				RecordErrorByComponent("winprob", "length_mismatch")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(8)
				RecordSystemGCPauseTime(0.1)
			}, ShouldNotPanic)
		})

		Convey("When recording is disabled", func() {
			SetEnabled(false)
			defer SetEnabled(true)

			Convey("Then business metrics are skipped without panicking", func() {
				So(func() { RecordPlayClassified("timeout") }, ShouldNotPanic)
			})
		})
	})
}

// withManager swaps the global manager for the duration of a test.
func withManager(t *testing.T, m *Manager) {
	t.Helper()
	prev := globalManager
	globalManager = m
	t.Cleanup(func() { globalManager = prev })
}

// value returns the first sample of the named counter or gauge.
func value(t *testing.T, registry *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := registry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		sample := f.GetMetric()[0]
		if c := sample.GetCounter(); c != nil {
			return c.GetValue()
		}
		return sample.GetGauge().GetValue()
	}
	return 0
}

func TestManagerOptionsApply(t *testing.T) {
	Convey("Given a manager built with recording disabled", t, func() {
		registry := prometheus.NewRegistry()
		withManager(t, NewManager(
			WithPrometheusRegistry(registry),
			WithMetricsEnabled(false),
		))

		Convey("When games are recorded", func() {
			RecordGameDuplicate()
			RecordPlayUnparsed()
			UpdateGamesStored(4)

			Convey("Then counters stay at zero but gauges move", func() {
				So(value(t, registry, "pbpwpa_pipeline_games_duplicate_total"), ShouldEqual, 0.0)
				So(value(t, registry, "pbpwpa_pipeline_plays_unparsed_total"), ShouldEqual, 0.0)
				So(value(t, registry, "pbpwpa_pipeline_games_stored"), ShouldEqual, 4.0)
			})
		})
	})

	Convey("Given a manager with custom latency buckets", t, func() {
		registry := prometheus.NewRegistry()
		withManager(t, NewManager(
			WithPrometheusRegistry(registry),
			WithHistogramBuckets([]float64{1, 10}),
		))

		Convey("When an adjust latency is observed", func() {
			RecordAdjustLatency(3)

			Convey("Then the histogram uses those buckets", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var buckets int
				for _, f := range families {
					if f.GetName() == "pbpwpa_pipeline_adjust_latency_milliseconds" {
						buckets = len(f.GetMetric()[0].GetHistogram().GetBucket())
					}
				}
				So(buckets, ShouldEqual, 2)
			})
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given recorded metrics", t, func() {
		RecordPlayClassified("field_goal_attempt")
		UpdateGamesStored(2)

		Convey("When writing the textfile", func() {
			path := filepath.Join(t.TempDir(), "pbpwpa.prom")
			err := WriteTextfile(path)

			Convey("Then it contains the pipeline metrics", func() {
				So(err, ShouldBeNil)
				raw, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				text := string(raw)
				So(strings.Contains(text, "pbpwpa_pipeline_plays_classified_total"), ShouldBeTrue)
				So(strings.Contains(text, `kind="field_goal_attempt"`), ShouldBeTrue)
				So(strings.Contains(text, "pbpwpa_pipeline_games_stored 2"), ShouldBeTrue)
			})
		})

		Convey("When the path is empty", func() {
			err := WriteTextfile("")

			Convey("Then an export error is returned", func() {
				So(errors.Is(err, ErrExportFailed), ShouldBeTrue)
			})
		})
	})

	Convey("Given the registry accessor", t, func() {
		Convey("Then it returns the custom registry", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
