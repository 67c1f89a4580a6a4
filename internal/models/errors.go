package models

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrCharacterNotFound = errors.New("character not found")
	ErrCapacityExceeded  = errors.New("event is full")
	ErrDuplicateSignup   = errors.New("identity already signed up for this event")
	ErrSignupNotFound    = errors.New("no signup found for this identity")
	ErrStoreConflict     = errors.New("concurrent modification detected")
)

// SeriesPartialError is returned when creation of a recurring series stops
// partway through. Created counts the instances already persisted; those are
// left in place for the caller to keep or delete.
type SeriesPartialError struct {
	Created int
	Err     error
}

func (e *SeriesPartialError) Error() string {
	return fmt.Sprintf("recurring series stopped after %d created instance(s): %v", e.Created, e.Err)
}

func (e *SeriesPartialError) Unwrap() error {
	return e.Err
}
