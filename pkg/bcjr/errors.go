package bcjr

import "errors"

var (
	// ErrInvalidConfig is returned by constructors for unusable configurations
	ErrInvalidConfig = errors.New("invalid decoder configuration")
	// ErrSizeMismatch is returned when a buffer length disagrees with the configured frame
	ErrSizeMismatch = errors.New("buffer size mismatch")
	// ErrFrameID is returned when a frame index falls outside the frame group
	ErrFrameID = errors.New("frame index out of range")
)
