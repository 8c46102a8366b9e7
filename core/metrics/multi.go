package metrics

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDay forwards the day to all sinks, returning the first error encountered.
func (m *MultiSink) RecordDay(ev DayEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordDay(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun forwards run summaries when supported by the sink.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RunRecorder); ok {
			if err := rec.RecordRun(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSamples forwards interval traces when supported by the sink.
func (m *MultiSink) RecordSamples(ev SamplesEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SampleRecorder); ok {
			if err := rec.RecordSamples(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFailure forwards failures when supported by the sink.
func (m *MultiSink) RecordFailure(ev FailureEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(FailureRecorder); ok {
			if err := rec.RecordFailure(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
