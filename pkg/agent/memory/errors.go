package memory

import "errors"

// Validation errors. These bubble to the caller per the propagation policy:
// a validation failure is never silently coerced into a default.
var (
	ErrInvalidImportance = errors.New("memory: invalid importance")
	ErrInvalidOverride   = errors.New("memory: invalid tool override")
	ErrInvalidThresholds = errors.New("memory: invalid token thresholds")
)
