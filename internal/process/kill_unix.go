//go:build !windows

// Package process terminates the headless browser and the helpers it spawns.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid, taking the
// Chrome renderer and GPU helpers down with the browser. pid <= 0 is ignored:
// kill(0) would target our own group.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort; the renderer falls back to launcher.Kill if pid survives.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// Alive reports whether a process with this pid still exists.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || err == syscall.EPERM
}
