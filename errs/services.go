package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Third-Party Integration Errors
var (
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrServiceUnreachable = errors.New("service unreachable")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrPartialFailure     = errors.New("partial failure")
)

// Configuration & Environment Errors
var (
	ErrConfigMissing = errors.New("configuration missing")
	ErrConfigInvalid = errors.New("configuration invalid")
)

// Background Job Errors
var (
	ErrUnknownJobKind = errors.New("unknown job kind")
	ErrJobPermanent   = errors.New("job failed permanently")
)

func NewServiceUnreachableError(service string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrServiceUnreachable,
		Details:    fmt.Sprintf("Service %s is unreachable", service),
		Cause:      cause,
		Field:      "service",
	}
}

// NewUpstreamStatusError reports a non-2xx answer from an outbound integration.
func NewUpstreamStatusError(service string, status int, body string) *ApiErr {
	sentinel := ErrServiceUnavailable
	if status == http.StatusTooManyRequests {
		sentinel = ErrRateLimitExceeded
	}
	details := fmt.Sprintf("%s responded with status %d", service, status)
	if body != "" {
		details += ": " + body
	}
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        sentinel,
		Details:    details,
		Field:      "service",
	}
}

func NewConfigError(configName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfigMissing,
		Details:    fmt.Sprintf("Configuration %s is not set", configName),
		Field:      "config",
	}
}

func NewPartialFailureError(operation string, failedSteps []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrPartialFailure,
		Details:    fmt.Sprintf("Partial failure in %s. Failed steps: %s", operation, strings.Join(failedSteps, ", ")),
		Field:      "partial_failure",
	}
}

func NewUnknownJobKindError(kind string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrUnknownJobKind,
		Details:    fmt.Sprintf("No handler registered for job kind %q", kind),
		Field:      "kind",
	}
}

// NewPermanentJobError marks a job failure that must not be retried.
func NewPermanentJobError(reason string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnprocessableEntity,
		err:        ErrJobPermanent,
		Details:    reason,
		Cause:      cause,
	}
}

func IsRateLimitError(err error) bool {
	return errors.Is(err, ErrRateLimitExceeded)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfigMissing) || errors.Is(err, ErrConfigInvalid)
}

func IsPermanentJobError(err error) bool {
	return errors.Is(err, ErrJobPermanent) || errors.Is(err, ErrUnknownJobKind)
}
