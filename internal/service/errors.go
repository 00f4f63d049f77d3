package service

import "errors"

// Business-rule errors shared across services. Handlers map these onto HTTP
// statuses with errors.Is; validation failures additionally carry field
// detail via validator.ValidationErrors.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation indicates input that is malformed or breaks an
	// invariant, such as passing points above max points.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates a uniqueness violation, such as a second
	// submission for the same (assignment, student) pair.
	ErrConflict = errors.New("resource conflict")

	// ErrForbidden indicates the actor is authenticated but not allowed to
	// perform the operation.
	ErrForbidden = errors.New("insufficient permissions")

	// ErrInvalidState indicates an illegal lifecycle transition, such as
	// re-submitting a graded submission.
	ErrInvalidState = errors.New("invalid state transition")

	// ErrInvalidCredentials indicates a failed email/password check.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotEnrolled indicates the student holds no active enrollment in
	// the assignment's course.
	ErrNotEnrolled = errors.New("student not enrolled in course")

	// ErrCourseFull indicates the course reached its enrollment capacity.
	ErrCourseFull = errors.New("course is at capacity")
)
