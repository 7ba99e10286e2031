// Package metrics exports run results in the Prometheus text format.
package metrics

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"vmx/internal/domain"
)

const (
	MetricsNamespace = "vmx"
)

// Listener counts terminal descriptor events per status and variant. It uses
// its own registry so that every run starts from zero.
type Listener struct {
	registry    *prometheus.Registry
	descriptors *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	classErrors prometheus.Counter
	runInfo     *prometheus.GaugeVec

	mu      sync.Mutex
	started map[string]time.Time
	failed  map[string]bool
}

// NewListener creates a new Listener
func NewListener() *Listener {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Listener{
		registry: registry,
		descriptors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "descriptors_total",
			Help:      "Count of finished descriptors",
		}, []string{
			"status",
			"variant",
		}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Name:      "descriptor_duration_seconds",
			Help:      "Duration of descriptors including context acquisition",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{
			"variant",
		}),
		classErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "class_errors_total",
			Help:      "Count of classes that failed to initialize",
		}),
		runInfo: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "run_info",
			Help:      "Identifier and result of the run",
		}, []string{
			"run_id",
			"result",
		}),
		started: make(map[string]time.Time),
		failed:  make(map[string]bool),
	}
}

func key(d domain.Descriptor) string {
	return fmt.Sprintf("%s\x00%d", d.Class, d.Sequence)
}

func (l *Listener) Started(d domain.Descriptor) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started[key(d)] = time.Now()
}

func (l *Listener) Failed(d domain.Descriptor, _ error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failed[key(d)] = true
}

func (l *Listener) Finished(d domain.Descriptor) {
	status := domain.StatusPassed
	l.mu.Lock()
	if l.failed[key(d)] {
		status = domain.StatusFailed
	}
	l.mu.Unlock()
	l.record(d, status)
}

func (l *Listener) Ignored(d domain.Descriptor) {
	l.record(d, domain.StatusIgnored)
}

func (l *Listener) record(d domain.Descriptor, status domain.Status) {
	variant := strconv.Itoa(int(d.Variant))

	l.mu.Lock()
	k := key(d)
	start, ok := l.started[k]
	delete(l.started, k)
	delete(l.failed, k)
	l.mu.Unlock()

	l.descriptors.WithLabelValues(string(status), variant).Inc()
	if ok {
		l.duration.WithLabelValues(variant).Observe(time.Since(start).Seconds())
	}
}

// RecordClassErrors counts classes that produced no descriptors.
func (l *Listener) RecordClassErrors(n int) {
	l.classErrors.Add(float64(n))
}

// RecordRun marks the run as finished with the given result.
func (l *Listener) RecordRun(runID string, success bool) {
	result := "pass"
	if !success {
		result = "fail"
	}
	l.runInfo.WithLabelValues(runID, result).Set(1)
}

// Registry exposes the listener's registry.
func (l *Listener) Registry() *prometheus.Registry {
	return l.registry
}

// WriteFile writes every collected metric to path in the text exposition format.
func (l *Listener) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, l.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	log.WithField("file", path).Debug("metrics written")
	return nil
}
