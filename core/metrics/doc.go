// Package metrics defines the sinks that observe simulation runs. A sink must
// record days; it may also implement RunRecorder, SampleRecorder or
// FailureRecorder. Sinks are built from configuration through
// NewMetricsSink, which wraps several sinks in a MultiSink.
package metrics
