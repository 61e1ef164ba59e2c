package sim

import "errors"

var (
	// ErrGridTooSmall is returned when a grid cannot hold a building.
	ErrGridTooSmall = errors.New("grid too small for a building")
	// ErrInvalidSession marks a session config that breaks a precondition.
	ErrInvalidSession = errors.New("invalid session")
	// ErrSettingOutOfRange is returned by Settings.Validate.
	ErrSettingOutOfRange = errors.New("setting out of range")
)
