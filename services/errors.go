package services

// ValidationError indicates bad input shape or range (HTTP 400)
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError indicates a missing referenced entity (HTTP 404)
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// PreconditionError indicates a valid entity in the wrong state for the
// requested transition (HTTP 409)
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

// ConfigurationError indicates the system is missing required reference
// data, e.g. no deadline tiers seeded (HTTP 500)
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}
