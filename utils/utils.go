package utils

import (
	"bytes"
	"os"
	"unsafe"
)

func BytesToString(b []byte) string {
	/* #nosec G103 */
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// CString trims a NUL-terminated byte array as found in kernel structures.
func CString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func SysError(name string, err error) error {
	return os.NewSyscallError(name, err)
}

// SplitDataForWritev splits []byte into [][]byte.
func SplitDataForWritev(data []byte, chunkSize int) (result [][]byte) {
	length := len(data)
	if chunkSize <= 0 || length <= chunkSize {
		result = [][]byte{data}
		return
	}
	for idx := 0; idx < length; idx += chunkSize {
		end := idx + chunkSize
		if end > length {
			end = length
		}
		result = append(result, data[idx:end])
	}
	return
}
