package imaging

import (
	"errors"
	"io/fs"
)

// ImageError reports a failure to read, decode, encode or write one image.
//
// It is a per-image error: a batch records it for the offending job and moves
// on to the next one.
type ImageError struct {
	// Op is the failed operation: "open", "decode", "mkdir", "encode" or "write".
	Op string

	// Path is the file the operation was acting on.
	Path string

	// Err is the underlying cause.
	Err error
}

func (e *ImageError) Error() string {
	// os errors already name the path
	var pe *fs.PathError
	if errors.As(e.Err, &pe) && pe.Path == e.Path {
		return e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *ImageError) Unwrap() error {
	return e.Err
}
