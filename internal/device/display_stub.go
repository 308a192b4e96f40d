//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package device

import "fmt"

// DisplayWidth is not implemented on this platform.
func DisplayWidth() (int, error) {
	return 0, fmt.Errorf("display probing is not supported on this platform")
}
