package logging

import (
	"io"

	"go.uber.org/multierr"
)

// fanoutWriter copies every log line to all sinks. A line counts as written
// when at least one sink took all of it; failures of the other sinks are
// still reported.
type fanoutWriter struct {
	sinks []io.Writer
}

func newFanoutWriter(sinks ...io.Writer) *fanoutWriter {
	return &fanoutWriter{sinks: sinks}
}

func (fw *fanoutWriter) Write(p []byte) (int, error) {
	var (
		errs      error
		delivered bool
	)
	for _, sink := range fw.sinks {
		n, err := sink.Write(p)
		if err == nil && n < len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		delivered = true
	}

	if !delivered {
		return 0, errs
	}
	return len(p), errs
}
