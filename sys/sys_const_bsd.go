//go:build darwin || freebsd

package sys

// kqueue results are folded into these bits so callers stay platform neutral.
const (
	InEvents       uint32 = 1 << 0
	OutEvents      uint32 = 1 << 2
	ClosedFdEvents uint32 = 1 << 3
	// VnodeEvents marks an EVFILT_VNODE result, the low bits carry NOTE_* flags.
	VnodeEvents uint32 = 1 << 31
)
