package dump

import (
	"context"
	"log/slog"
)

// Diagnostics counts the errors and warnings found while decoding a stream.
// Counts only ever grow. A Diagnostics value belongs to a single decoder;
// callers decoding in parallel keep one per decoder and Add them up.
type Diagnostics struct {
	Errors   int
	Warnings int
}

// Add returns the sum of d and o.
func (d Diagnostics) Add(o Diagnostics) Diagnostics {
	return Diagnostics{Errors: d.Errors + o.Errors, Warnings: d.Warnings + o.Warnings}
}

// Clean reports whether nothing was counted.
func (d Diagnostics) Clean() bool { return d.Errors == 0 && d.Warnings == 0 }

// Recorder wraps Diagnostics with the logger diagnostics are reported to.
type Recorder struct {
	Diagnostics
	log *slog.Logger
}

// NewRecorder returns a Recorder logging to the logger of cfg.
func NewRecorder(cfg *Config) *Recorder {
	return &Recorder{log: cfg.Log()}
}

// Record counts err according to its severity and logs it with the offset
// and label of the unit it belongs to. It returns err unchanged.
func (r *Recorder) Record(err error, offset int64, label string) error {
	sev := SeverityOf(err)
	level := slog.LevelWarn
	if sev == Warning {
		r.Warnings++
		level = slog.LevelDebug
	} else {
		r.Errors++
	}
	r.log.LogAttrs(context.Background(), level, Cause(err).Error(),
		slog.Int64("offset", offset),
		slog.String("unit", label),
		slog.String("severity", sev.String()),
	)
	return err
}

// Unjoin flattens err as built by errors.Join into its parts, in the order
// they were joined. A nil err has no parts.
func Unjoin(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var errs []error
		for _, e := range j.Unwrap() {
			errs = append(errs, Unjoin(e)...)
		}
		return errs
	}
	return []error{err}
}
