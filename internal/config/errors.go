package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoTarget is returned when no target website URL is specified.
	ErrNoTarget = errors.New("no target specified: provide at least one website URL")

	// ErrPartialCredentials is returned when only one of username and
	// password is set. Authentication needs both; anonymous crawling
	// needs neither.
	ErrPartialCredentials = errors.New("partial credentials: username and password must be provided together")

	// ErrInvalidMaxPages is returned when the page quota is not positive.
	// A quota of zero would classify nothing.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no concurrent crawls, effectively
	// stopping the run.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidErrorRate is returned when the membership-cache error rate
	// is not a probability strictly between 0 and 1.
	ErrInvalidErrorRate = errors.New("invalid error rate: must be between 0 and 1 exclusive")

	// ErrInvalidTimeout is returned when the navigation timeout is not positive.
	// A timeout of zero or negative would cause immediate page-load failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
