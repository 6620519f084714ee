package layout

import "errors"

var (
	// ErrWindowNotFound is returned for ids not present in the document.
	ErrWindowNotFound = errors.New("window not found")
	// ErrGestureRejected is returned when a gesture starts outside its handle
	// or on an interactive control.
	ErrGestureRejected = errors.New("gesture not allowed from this origin")
	// ErrGesturesDisabled is returned in mobile mode, where windows are static.
	ErrGesturesDisabled = errors.New("gestures are disabled in mobile mode")
	// ErrNoGesture is returned for move/end phases without a matching start.
	ErrNoGesture = errors.New("no gesture in progress")
	// ErrInvalidGeometry is returned for non-finite gesture payloads.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrAlreadyStarted is returned when Start runs twice.
	ErrAlreadyStarted = errors.New("layout already started")
)
