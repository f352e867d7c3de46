// Package metrics records translation and lifecycle metrics.
//
// Components receive a Recorder; NoopRecorder is the default so callers never
// check for nil. When metrics.textfile is configured the CLI injects a
// PrometheusRecorder and writes its registry with WriteTextfile after the
// post-build hook, where a node_exporter textfile collector can pick it up.
package metrics
