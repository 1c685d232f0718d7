package grid

import (
	"errors"
	"fmt"
)

// InsufficientImagesError is returned when fewer images arrive than the
// composer was built for. Nothing is decoded in that case.
type InsufficientImagesError struct {
	Want int
	Got  int
}

func (e *InsufficientImagesError) Error() string {
	return fmt.Sprintf("insufficient images: want %d, got %d", e.Want, e.Got)
}

// IsInsufficientImages reports whether err wraps an InsufficientImagesError.
func IsInsufficientImages(err error) bool {
	var e *InsufficientImagesError
	return errors.As(err, &e)
}

// DecodeError identifies the input that failed to decode.
type DecodeError struct {
	Index int
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image %d: %v", e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ImageSizeError reports an input whose header declares an empty or
// oversized canvas.
type ImageSizeError struct {
	Width, Height int
	Max           int
}

func (e *ImageSizeError) Error() string {
	return fmt.Sprintf("image %dx%d outside 1..%d per side", e.Width, e.Height, e.Max)
}
