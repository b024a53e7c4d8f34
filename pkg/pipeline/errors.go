package pipeline

import "errors"

var (
	// ErrSourceUnreadable is returned when the input cannot be opened or
	// decoded as a video. Fatal for the run; no partial report is written.
	ErrSourceUnreadable = errors.New("pipeline: source unreadable")

	// ErrSinkUnwritable is returned when the output artifact cannot be
	// created. Fatal; input-side resources are still released.
	ErrSinkUnwritable = errors.New("pipeline: sink unwritable")

	// ErrInvalidParameter is returned for non-positive or non-finite
	// threshold values.
	ErrInvalidParameter = errors.New("pipeline: invalid parameter")
)
