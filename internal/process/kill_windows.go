//go:build windows

// Package process terminates the headless browser and the helpers it spawns.
package process

import (
	"os/exec"
	"strconv"
	"strings"
)

// KillProcessGroup force-kills pid and its child tree with taskkill.
// pid <= 0 is ignored.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort; the renderer falls back to launcher.Kill if pid survives.
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}

// Alive reports whether a process with this pid still exists.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	out, err := exec.Command("tasklist", "/NH", "/FI", "PID eq "+strconv.Itoa(pid)).Output()
	if err != nil {
		return false
	}
	return strings.Contains(string(out), strconv.Itoa(pid))
}
