//go:build !linux

package camera

import (
	"errors"
	"fmt"
)

var errUnsupported = errors.New("video capture probing is only supported on linux")

func queryCapture(path string) (bool, error) {
	return false, fmt.Errorf("%s: %w", path, errUnsupported)
}
