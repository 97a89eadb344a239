// Package metrics exposes generator metrics through a small Recorder interface.
// The Prometheus implementation keeps its own registry so a one-shot run can
// dump it to a node_exporter textfile.
package metrics
