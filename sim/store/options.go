package store

import (
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"
)

// tableNamePattern accepts a plain or schema-qualified identifier.
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Option configures a Store.
type Option func(*Store) error

// WithTableNames overrides the runs and events table names. Names are
// case-sensitive and may carry a schema prefix.
func WithTableNames(runs, events string) Option {
	return func(s *Store) error {
		if runs == "" || events == "" {
			return ErrEmptyTableName
		}
		for _, name := range []string{runs, events} {
			if !tableNamePattern.MatchString(name) {
				return fmt.Errorf("%w: %q", ErrInvalidTableName, name)
			}
		}
		s.runsTable = runs
		s.eventsTable = events
		return nil
	}
}

// WithLogger routes store logging to logger instead of the logrus standard
// logger. Statements are logged at Debug, row counts at Info, cleanup
// failures at Warn.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// WithBatchSize sets how many event rows go into one INSERT.
func WithBatchSize(n int) Option {
	return func(s *Store) error {
		if n <= 0 {
			return fmt.Errorf("batch size must be positive, got %d", n)
		}
		s.batchSize = n
		return nil
	}
}
