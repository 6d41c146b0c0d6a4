package cli

import (
	"errors"

	"azdoctl/internal/connection"
)

// Exit codes for azdoctl commands.
const (
	// ExitOK indicates success.
	ExitOK = 0
	// ExitGeneral indicates an unclassified failure.
	ExitGeneral = 1
	// ExitInvalidInput indicates the supplied identity failed validation.
	ExitInvalidInput = 2
	// ExitAuthFailed indicates token acquisition or organization validation failed.
	ExitAuthFailed = 3
)

// ExitCode maps an error to the process exit code contract.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var validationErr *connection.ValidationError
	if errors.As(err, &validationErr) {
		return ExitInvalidInput
	}

	var authErr *connection.AuthError
	if errors.As(err, &authErr) {
		return ExitAuthFailed
	}

	var validationFailedErr *connection.ValidationFailedError
	if errors.As(err, &validationFailedErr) {
		return ExitAuthFailed
	}

	return ExitGeneral
}
