package config

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingDefault is returned when a level's default state is not present in the level.
	ErrMissingDefault = errors.New("default state is not configured")
	// ErrUnknownFallback is returned when a condition suggests a fallback that is not in its level.
	ErrUnknownFallback = errors.New("condition fallback is not configured")
	// ErrFallbackCycle is returned when following condition fallbacks revisits a state.
	ErrFallbackCycle = errors.New("condition fallbacks form a cycle")
	// ErrUnknownLocomotionMode is returned when a movement mode maps to a locomotion mode that is not in
	// the tree.
	ErrUnknownLocomotionMode = errors.New("locomotion mode is not configured")
	// ErrEmptyLevel is returned when a level of the tree has no states.
	ErrEmptyLevel = errors.New("no states configured")
)

// Error describes a configuration error at a path in the tree.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
