package services

// ValidationError marks a request the caller can fix: missing input,
// unknown provider, bad coordinates.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}

func validationErrorf(detail string) error {
	return &ValidationError{Detail: detail}
}
