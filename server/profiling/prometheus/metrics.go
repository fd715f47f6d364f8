/*
 * Copyright 2021 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package prometheus provides a Prometheus metrics exporter.
package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yorkie-team/revisiond/internal/version"
)

const (
	namespace      = "revisiond"
	kindLabel     = "kind"
	resultLabel   = "result"
	taskTypeLabel = "task_type"
)

// Metrics manages the metric information that revisiond is trying to measure.
type Metrics struct {
	registry *prometheus.Registry

	serverVersion *prometheus.GaugeVec

	workerRequestsTotal    *prometheus.CounterVec
	workerRequestSeconds   *prometheus.HistogramVec
	workerRestartsTotal    prometheus.Counter
	workerPendingRequests  prometheus.Gauge
	workerProtocolErrTotal prometheus.Counter

	revisionsCreatedTotal   prometheus.Counter
	revisionsCoalescedTotal prometheus.Counter
	sweepDurationSeconds    prometheus.Histogram
	sweepSavedDocsTotal     prometheus.Counter

	reconstructionsTotal *prometheus.CounterVec

	backgroundGoroutinesTotal *prometheus.GaugeVec
}

// NewMetrics creates a new instance of Metrics.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("register process collector: %w", err)
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}

	metrics := &Metrics{
		registry: reg,
		serverVersion: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "version",
			Help:      "Which version is running. 1 for 'server_version' label with current version.",
		}, []string{"server_version"}),
		workerRequestsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "requests_total",
			Help:      "The total number of requests answered by the patch worker.",
		}, []string{kindLabel, resultLabel}),
		workerRequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "request_seconds",
			Help:      "The round trip time of requests to the patch worker.",
		}, []string{kindLabel}),
		workerRestartsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "spawns_total",
			Help:      "The total number of patch worker processes spawned.",
		}),
		workerPendingRequests: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "pending_requests",
			Help:      "The number of requests waiting for the patch worker.",
		}),
		workerProtocolErrTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "protocol_errors_total",
			Help:      "The total number of malformed or uncorrelated worker messages.",
		}),
		revisionsCreatedTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revisions",
			Name:      "created_total",
			Help:      "The total number of revisions created.",
		}),
		revisionsCoalescedTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revisions",
			Name:      "coalesced_total",
			Help:      "The total number of saves that found no change and bumped the newest revision.",
		}),
		sweepDurationSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "revisions",
			Name:      "sweep_seconds",
			Help:      "The time taken by one sweep over the documents pending save.",
		}),
		sweepSavedDocsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revisions",
			Name:      "saved_documents_total",
			Help:      "The total number of documents saved by sweeps.",
		}),
		reconstructionsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revisions",
			Name:      "reconstructions_total",
			Help:      "The total number of revision reconstructions.",
		}, []string{resultLabel}),
		backgroundGoroutinesTotal: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "background",
			Name:      "goroutines_total",
			Help:      "The total number of goroutines attached by a particular background task.",
		}, []string{taskTypeLabel}),
	}

	metrics.serverVersion.With(prometheus.Labels{
		"server_version": version.Version,
	}).Set(1)

	return metrics, nil
}

// AddWorkerRequest records a request answered by the worker.
func (m *Metrics) AddWorkerRequest(kind string, failed bool, seconds float64) {
	result := "ok"
	if failed {
		result = "error"
	}

	m.workerRequestsTotal.With(prometheus.Labels{
		kindLabel:   kind,
		resultLabel: result,
	}).Inc()
	m.workerRequestSeconds.With(prometheus.Labels{
		kindLabel: kind,
	}).Observe(seconds)
}

// AddWorkerSpawn records a spawned worker process.
func (m *Metrics) AddWorkerSpawn() {
	m.workerRestartsTotal.Inc()
}

// SetWorkerPendingRequests sets the number of requests waiting for the worker.
func (m *Metrics) SetWorkerPendingRequests(count int) {
	m.workerPendingRequests.Set(float64(count))
}

// AddWorkerProtocolError records a worker message that could not be handled.
func (m *Metrics) AddWorkerProtocolError() {
	m.workerProtocolErrTotal.Inc()
}

// AddRevisionCreated records a created revision.
func (m *Metrics) AddRevisionCreated() {
	m.revisionsCreatedTotal.Inc()
}

// AddRevisionCoalesced records a save that found no change.
func (m *Metrics) AddRevisionCoalesced() {
	m.revisionsCoalescedTotal.Inc()
}

// ObserveSweep records the duration of a sweep and the documents it saved.
func (m *Metrics) ObserveSweep(seconds float64, savedDocs int) {
	m.sweepDurationSeconds.Observe(seconds)
	m.sweepSavedDocsTotal.Add(float64(savedDocs))
}

// AddReconstruction records a reconstruction with its result: "hit" when
// served from the cache, "ok" or "error" otherwise.
func (m *Metrics) AddReconstruction(result string) {
	m.reconstructionsTotal.With(prometheus.Labels{
		resultLabel: result,
	}).Inc()
}

// AddBackgroundGoroutines adds the number of goroutines attached by a particular background task.
func (m *Metrics) AddBackgroundGoroutines(taskType string) {
	m.backgroundGoroutinesTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
	}).Inc()
}

// RemoveBackgroundGoroutines removes the number of goroutines attached by a particular background task.
func (m *Metrics) RemoveBackgroundGoroutines(taskType string) {
	m.backgroundGoroutinesTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
	}).Dec()
}

// Registry returns the registry of this metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
