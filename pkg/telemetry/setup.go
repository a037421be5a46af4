package telemetry

import (
	"errors"
	"log/slog"

	"github.com/soundprediction/hskg/pkg/config"
)

// NewHandler layers the error sinks enabled in cfg over next: a parquet
// directory when ParquetPath is set and a sqlite table when DbURL is set.
// The returned close function flushes and releases both.
func NewHandler(next slog.Handler, cfg config.TelemetryConfig) (slog.Handler, func() error, error) {
	handler := next
	var closers []func() error

	if cfg.ParquetPath != "" {
		ph, err := NewParquetHandler(handler, cfg.ParquetPath)
		if err != nil {
			return nil, nil, err
		}
		handler = ph
		closers = append(closers, ph.Close)
	}

	if cfg.DbURL != "" {
		db, err := OpenSQLite(cfg.DbURL)
		if err != nil {
			return nil, nil, errors.Join(err, closeAll(closers))
		}
		sh, err := NewSQLHandler(handler, db)
		if err != nil {
			db.Close()
			return nil, nil, errors.Join(err, closeAll(closers))
		}
		handler = sh
		closers = append(closers, db.Close)
	}

	return handler, func() error { return closeAll(closers) }, nil
}

func closeAll(closers []func() error) error {
	var errs []error
	for _, c := range closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
