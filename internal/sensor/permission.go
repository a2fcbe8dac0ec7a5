package sensor

import "errors"

// Permission is the tri-state access status of one modality.
type Permission int

const (
	PermissionPrompt  Permission = iota // Not requested yet
	PermissionGranted                   // Sensor is delivering data
	PermissionDenied                    // Refused or unavailable; modality stays inert
)

// String returns the lower-case status name.
func (p Permission) String() string {
	switch p {
	case PermissionPrompt:
		return "prompt"
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "unknown"
	}
}

var (
	// ErrPermissionDenied is returned when sensor access was refused.
	ErrPermissionDenied = errors.New("sensor permission denied")
	// ErrSensorUnavailable is returned when the platform has no such sensor.
	ErrSensorUnavailable = errors.New("sensor unavailable")
)

// PermissionFromError maps a request result to a permission state.
// Unavailable sensors are treated exactly like denied ones.
func PermissionFromError(err error) Permission {
	if err == nil {
		return PermissionGranted
	}
	return PermissionDenied
}
