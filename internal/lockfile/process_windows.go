//go:build windows

package lockfile

import "golang.org/x/sys/windows"

// processAlive opens pid with the minimal query right and reports whether
// the handle can be obtained and the process's exit code is still
// STILL_ACTIVE, since Windows reassigns PIDs only after the process object
// is fully released.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(handle)

	var exitCode uint32
	if err := windows.GetExitCodeProcess(handle, &exitCode); err != nil {
		return false
	}
	const stillActive = 259
	return exitCode == stillActive
}
