package models

// BaseError is the base type for API errors
type BaseError struct {
	Error string `json:"error" example:"something bad"`
}

// InternalServerError is returned in the body of an HTTP 500. TraceId
// carries the trace of the failed request so it can be matched against
// the server logs.
type InternalServerError struct {
	BaseError
	TraceId string `json:"trace_id,omitempty"`
}

// ValidationError is returned in the body of an HTTP 400
type ValidationError struct {
	BaseError
	Field string `json:"field,omitempty"`
}

func NewBadPayloadError() ValidationError {
	return ValidationError{
		BaseError: BaseError{
			Error: "request json is invalid",
		},
	}
}

func NewBadPathParameterError(param string) ValidationError {
	return ValidationError{
		Field: param,
		BaseError: BaseError{
			Error: "path parameter invalid",
		},
	}
}

func NewFieldNotPresentError(field string) ValidationError {
	return ValidationError{
		Field: field,
		BaseError: BaseError{
			Error: "field not present",
		},
	}
}

func NewFieldValidationError(field string, reason string) ValidationError {
	return ValidationError{
		Field: field,
		BaseError: BaseError{
			Error: reason,
		},
	}
}

// ConflictsError is returned in the body of an HTTP 409
type ConflictsError struct {
	ID string `json:"id" example:"42"`
	BaseError
}

func NewConflictsError(id string) ConflictsError {
	return ConflictsError{
		ID: id,
		BaseError: BaseError{
			Error: "resource already exists",
		},
	}
}

// NotFoundError is returned in the body of an HTTP 404
type NotFoundError struct {
	BaseError
	Resource string `json:"resource,omitempty"`
}

func NewNotFoundError(resource string) NotFoundError {
	return NotFoundError{
		Resource: resource,
		BaseError: BaseError{
			Error: "not found",
		},
	}
}

// NotAllowedError is returned in the body of an HTTP 403
type NotAllowedError struct {
	BaseError
	Reason string `json:"reason,omitempty"`
}

func NewNotAllowedError(reason string) NotAllowedError {
	return NotAllowedError{
		Reason: reason,
		BaseError: BaseError{
			Error: "operation not allowed",
		},
	}
}

// NotAuthenticatedError is returned in the body of an HTTP 401
type NotAuthenticatedError struct {
	BaseError
}

func NewNotAuthenticatedError() NotAuthenticatedError {
	return NotAuthenticatedError{
		BaseError: BaseError{
			Error: "not authenticated",
		},
	}
}

// UnavailableError is returned in the body of an HTTP 503 when the
// persistent store cannot be reached during a write. Writes fail loudly
// rather than silently succeeding.
type UnavailableError struct {
	BaseError
}

func NewUnavailableError() UnavailableError {
	return UnavailableError{
		BaseError: BaseError{
			Error: "store unavailable",
		},
	}
}
