/*
Copyright 2022 The Numaproj Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelVersion   = "version"
	LabelPlatform  = "platform"
	LabelTransform = "transform"
	LabelOperation = "op"
	LabelTag       = "tag"
	LabelSideInput = "side_input"
	LabelStateKind = "state_kind"
	LabelErrorKind = "error_kind"
	LabelSink      = "sink"
)

var (
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "A metric with a constant value '1', labeled by the harness binary version and platform",
	}, []string{LabelVersion, LabelPlatform})
)

// State client metrics
var (
	// StateRequests counts the requests sent to the state store.
	StateRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "state_client",
		Name:      "requests_total",
		Help:      "Total number of state store requests",
	}, []string{LabelTransform, LabelOperation})

	// StateRequestErrors counts the failed requests sent to the state store.
	StateRequestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "state_client",
		Name:      "request_errors_total",
		Help:      "Total number of failed state store requests",
	}, []string{LabelTransform, LabelOperation})

	// StateRequestLatency is the latency of state store requests.
	StateRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: "state_client",
		Name:      "request_time",
		Help:      "State store request latency (1 to 1200000 microseconds)",
		Buckets:   prometheus.ExponentialBucketsRange(1, 1200000, 5),
	}, []string{LabelTransform, LabelOperation})

	// StateFetchedBytes counts the bytes read from the state store.
	StateFetchedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "state_client",
		Name:      "fetched_bytes_total",
		Help:      "Total number of bytes fetched from the state store",
	}, []string{LabelTransform})
)

// State cache metrics
var (
	// StateFlushLatency is the time taken to flush the staged state of a bundle.
	StateFlushLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: "state_cache",
		Name:      "flush_time",
		Help:      "Bundle state flush latency (1 to 1200000 microseconds)",
		Buckets:   prometheus.ExponentialBucketsRange(1, 1200000, 5),
	}, []string{LabelTransform})

	// StateFlushedKeys counts the state keys written by flushes.
	StateFlushedKeys = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "state_cache",
		Name:      "flushed_keys_total",
		Help:      "Total number of state keys flushed",
	}, []string{LabelTransform, LabelStateKind})
)

// Side input metrics
var (
	// SideInputFetches counts side input materializations fetched from the state store.
	SideInputFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "side_input",
		Name:      "fetch_total",
		Help:      "Total number of side input materializations fetched",
	}, []string{LabelTransform, LabelSideInput})

	// SideInputCacheHits counts side input resolutions served from the bundle cache.
	SideInputCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "side_input",
		Name:      "cache_hit_total",
		Help:      "Total number of side input resolutions served from the bundle cache",
	}, []string{LabelTransform, LabelSideInput})
)

// Bundle metrics
var (
	// BundlesStarted counts started bundles.
	BundlesStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "bundle",
		Name:      "started_total",
		Help:      "Total number of bundles started",
	}, []string{LabelTransform})

	// BundlesFinished counts successfully finished bundles.
	BundlesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "bundle",
		Name:      "finished_total",
		Help:      "Total number of bundles finished",
	}, []string{LabelTransform})

	// BundlesFailed counts failed bundles by error kind.
	BundlesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "bundle",
		Name:      "failed_total",
		Help:      "Total number of failed bundles",
	}, []string{LabelTransform, LabelErrorKind})

	// ElementsProcessed counts (element, window) invocations of the user function.
	ElementsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "bundle",
		Name:      "processed_total",
		Help:      "Total number of element windows processed",
	}, []string{LabelTransform})

	// BundleProcessingTime is the time from bundle start to bundle finish.
	BundleProcessingTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: "bundle",
		Name:      "processing_time",
		Help:      "Bundle processing latency (100 to 60000000 microseconds)",
		Buckets:   prometheus.ExponentialBucketsRange(100, 60000000, 10),
	}, []string{LabelTransform})
)

// Output router metrics
var (
	// OutputsEmitted counts values delivered to receivers.
	OutputsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "router",
		Name:      "emitted_total",
		Help:      "Total number of values delivered to receivers",
	}, []string{LabelTransform, LabelTag})

	// OutputsDropped counts values emitted to a destination without receivers.
	OutputsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "router",
		Name:      "dropped_total",
		Help:      "Total number of values emitted to a destination without receivers",
	}, []string{LabelTransform, LabelTag})
)
