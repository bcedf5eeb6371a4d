package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDataSource signals that the dataset could not be read.
	ErrDataSource = errors.New("domain: data source unavailable")
	// ErrInvalidField is returned for a plot axis outside the numeric field set.
	ErrInvalidField = errors.New("domain: invalid numeric field")
	// ErrInvalidCriteria is returned for malformed filter ranges.
	ErrInvalidCriteria = errors.New("domain: invalid criteria")
)

// DataSourceError describes a dataset load failure.
type DataSourceError struct {
	Path string
	Op   string
	Err  error
}

func (e *DataSourceError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("data source %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("data source %q: %s: %v", e.Path, e.Op, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

func (e *DataSourceError) Is(target error) bool {
	return target == ErrDataSource
}

// NewDataSourceError wraps err as a DataSourceError.
func NewDataSourceError(path, op string, err error) error {
	return &DataSourceError{Path: path, Op: op, Err: err}
}
