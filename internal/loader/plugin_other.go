//go:build !((linux || darwin || freebsd) && cgo)

package loader

import (
	"errors"
	"runtime"
)

// OpenPlugin always fails: Go plugins need cgo on linux, darwin or freebsd.
func OpenPlugin(path string) (Module, error) {
	return nil, errors.New("go plugins are not supported on " + runtime.GOOS + "/" + runtime.GOARCH)
}
