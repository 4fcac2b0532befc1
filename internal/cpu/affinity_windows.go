//go:build windows

package cpu

import (
	"runtime"
	"syscall"
)

var (
	kernel32              = syscall.NewLazyDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
	getCurrentThread      = kernel32.NewProc("GetCurrentThread")
)

// bindThread restricts the calling OS thread to a single logical CPU.
// Bit N of the mask selects CPU N.
func bindThread(core int) error {
	handle, _, _ := getCurrentThread.Call()

	prev, _, err := setThreadAffinityMask.Call(handle, uintptr(1)<<core)
	if prev == 0 {
		return err
	}
	return nil
}

// Pin locks the calling goroutine to its OS thread and binds that thread to
// the core chosen for workerID (see Core). The returned release function
// unlocks the thread; it must run on the same goroutine.
func Pin(workerID int) (release func(), err error) {
	runtime.LockOSThread()
	err = bindThread(Core(workerID))

	return runtime.UnlockOSThread, err
}
