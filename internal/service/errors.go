package service

import "errors"

// Common service errors
var (
	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is returned when login fails
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrSystemStage is returned when a system stage is modified or deleted
	ErrSystemStage = errors.New("system stage cannot be modified")

	// ErrAlreadyConverted is returned when converting a lead twice
	ErrAlreadyConverted = errors.New("lead already converted")

	// ErrOperatorHasLeads is returned when deleting an operator with assigned leads
	ErrOperatorHasLeads = errors.New("operator still has leads")

	// ErrCannotRemoveLastAdmin is returned when trying to remove the last admin
	ErrCannotRemoveLastAdmin = errors.New("cannot remove the last admin account")
)
