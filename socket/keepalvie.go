package socket

import (
	"time"

	"github.com/pkg/errors"

	"github.com/moqsien/sxnet/sys"
)

// SetKeepAlive turns on TCP keepalive with probes every d, rounded up to a second.
func SetKeepAlive(fd int, d time.Duration) error {
	if d <= 0 {
		return errors.New("invalid keep-alive time!")
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return sys.SetKeepAlive(fd, secs)
}
