//go:build !linux && !darwin && !windows

package cpu

import "runtime"

// Pin locks the calling goroutine to its OS thread. Core binding is not
// supported on this platform.
func Pin(workerID int) (release func(), err error) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread, nil
}
