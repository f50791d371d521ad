package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Backend and transport errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrBackendUnavailable = fmt.Errorf("backend unavailable")

	// ErrJobNotFound is the distinguished "task not found" response: the
	// backend no longer recognizes the job id (typically after a restart).
	// Terminal and fatal for that job; resubmission, not retry, is required.
	ErrJobNotFound = fmt.Errorf("job not found on backend")

	// Subject and ledger errors
	ErrNoSubject  = fmt.Errorf("not a video page")
	ErrLedgerMiss = fmt.Errorf("no ledger entry for subject")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
