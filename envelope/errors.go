package envelope

import "errors"

var (
	// ErrNullEventData is returned by FromEvent when the event's
	// attached data pointer is nil.
	ErrNullEventData = errors.New("envelope: event has no attached data")

	// ErrSentinelMismatch is returned by FromEvent when the event's
	// attached data does not carry the expected sentinel, meaning the
	// event was not registered by the recovering object.
	ErrSentinelMismatch = errors.New("envelope: sentinel mismatch")
)
