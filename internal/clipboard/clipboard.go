// Package clipboard moves rendered annotations and source photos through
// the system clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"image"
	"image/png"
)

// ErrEmpty reports that the clipboard holds nothing in the requested format.
var ErrEmpty = errors.New("clipboard does not contain the requested data")

// WriteImage encodes img as PNG and publishes it to the clipboard.
func WriteImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return WriteImageData(buf.Bytes())
}
