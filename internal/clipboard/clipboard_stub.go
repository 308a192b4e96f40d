//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package clipboard

import "errors"

var errUnsupported = errors.New("clipboard operations are not supported on this platform")

// WriteImageData publishes PNG bytes to the clipboard.
func WriteImageData([]byte) error { return errUnsupported }

// ReadImageData returns the PNG bytes held by the clipboard.
func ReadImageData() ([]byte, error) { return nil, errUnsupported }

// ReadText returns text held by the clipboard.
func ReadText() (string, error) { return "", errUnsupported }
