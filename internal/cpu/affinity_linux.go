//go:build linux

package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// bindThread restricts the calling OS thread to a single logical CPU.
// The caller must hold runtime.LockOSThread.
func bindThread(core int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(core)

	return unix.SchedSetaffinity(0, &set)
}

// Pin locks the calling goroutine to its OS thread and binds that thread to
// the core chosen for workerID (see Core). The returned release function
// unlocks the thread; it must run on the same goroutine.
//
// A failed bind is reported through err but the thread stays locked, so the
// caller still has to call release.
func Pin(workerID int) (release func(), err error) {
	runtime.LockOSThread()
	err = bindThread(Core(workerID))

	return runtime.UnlockOSThread, err
}
