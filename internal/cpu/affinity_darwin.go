//go:build darwin

package cpu

import "runtime"

// Pin locks the calling goroutine to its OS thread. macOS offers no way to
// bind a thread to a core, so the worker ID is only used for bookkeeping.
func Pin(workerID int) (release func(), err error) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread, nil
}
