// Package metrics provides Prometheus instrumentation for rule loading.
//
// All metrics live under the "saturn" namespace and are registered on a
// caller-provided registry, so tests and embedders can isolate their
// metric state.
package metrics
