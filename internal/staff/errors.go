package staff

import "errors"

var (
	// ErrInvalidName is returned when the display name is missing
	ErrInvalidName = errors.New("display name is required")

	// ErrMissingPhone is returned when the phone number is missing
	ErrMissingPhone = errors.New("phone is required")

	// ErrBarberNotFound is returned when a barber is not found
	ErrBarberNotFound = errors.New("barber not found")
)
