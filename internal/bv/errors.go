package bv

// BVError is a sentinel error raised by circuit construction and evaluation.
// Callers match with errors.Is; context is added by wrapping with %w.
type BVError struct {
	Message string
}

func (e *BVError) Error() string {
	return e.Message
}

var (
	ErrRange          = &BVError{"value out of range"}
	ErrInput          = &BVError{"invalid input"}
	ErrConfig         = &BVError{"invalid configuration"}
	ErrExecution      = &BVError{"execution failed"}
	ErrNotConstructed = &BVError{"circuit has not been constructed"}
	ErrInputNotSet    = &BVError{"input has not been set"}
)
