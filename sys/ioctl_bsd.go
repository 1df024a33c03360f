//go:build darwin || freebsd

package sys

// FIONREAD, _IOR('f', 127, int) in <sys/filio.h>
const ioctlReadable = 0x4004667f
