package changelog

import "github.com/prometheus/client_golang/prometheus"

// InstrumentedWriter counts events handed to the underlying writer.
type InstrumentedWriter struct {
	inner   Writer
	counter prometheus.Counter
}

func NewInstrumentedWriter(inner Writer, counter prometheus.Counter) *InstrumentedWriter {
	return &InstrumentedWriter{inner: inner, counter: counter}
}

func (w *InstrumentedWriter) Append(e Event) error {
	if err := w.inner.Append(e); err != nil {
		return err
	}
	w.counter.Inc()
	return nil
}
