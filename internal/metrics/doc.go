// Package metrics records pipeline metrics.
//
// Components receive a Recorder and default to NoopRecorder, so metric calls
// never need nil checks. The watch command swaps in a PrometheusRecorder and
// serves it through HTTPHandler when metrics.listen is configured.
package metrics
