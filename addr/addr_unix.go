//go:build linux || freebsd

package addr

const unixPathMax = 108
