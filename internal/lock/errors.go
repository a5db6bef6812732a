package lock

import "errors"

// ErrHeld is returned by Guard.Acquire when another session owns the guard.
// This is a sentinel error that can be checked with errors.Is().
var ErrHeld = errors.New("guard is held by another session")

// ErrNotOwner is returned when a released or foreign session is presented to
// the guard.
var ErrNotOwner = errors.New("session does not own the guard")
