package errors

import "errors"

var (
	ErrInvalidDateRange = errors.New("date_end must be after date_start")

	ErrInvalidDateFormat = errors.New("must be a calendar date in YYYY-MM-DD format")
)
