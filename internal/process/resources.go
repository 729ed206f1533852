package process

import (
	"github.com/shirou/gopsutil/v3/process"
)

// RSS reports a running child process's resident set size in bytes.
// Returns 0 if pid is 0 or the process can no longer be inspected
// (already exited).
func RSS(pid int) uint64 {
	if pid <= 0 {
		return 0
	}
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return 0
	}
	info, err := proc.MemoryInfo()
	if err != nil || info == nil {
		return 0
	}
	return info.RSS
}
