package hostinfo

import "golang.org/x/sys/unix"

func (platformHostInfo) TotalMemoryBytes() uint64 {
	mem, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return 0
	}
	return mem
}
