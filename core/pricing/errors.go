package pricing

import "errors"

var (
	// ErrInsufficientData means the price horizon cannot fit the requested duration.
	ErrInsufficientData = errors.New("insufficient price data")
	// ErrInvalidDeadline means max_start_time could not be parsed.
	ErrInvalidDeadline = errors.New("Invalid max_start_time format")
	// ErrDeadlineInPast means max_start_time is earlier than now.
	ErrDeadlineInPast = errors.New("max_start_time must be in the future")
	// ErrDeadlineViolated means the selected window starts after max_start_time.
	ErrDeadlineViolated = errors.New("optimal window starts after max_start_time")
	// ErrMissingPartitionKey means no partition key was given nor configured.
	ErrMissingPartitionKey = errors.New("INVALID GLNNUMBER")
)
