package conn

import (
	"io"

	"github.com/moqsien/sxnet/sys"
	"github.com/moqsien/sxnet/utils/byteslice"
)

func (that *Conn) Read(p []byte) (n int, err error) {
	if len(that.InBuffer) == 0 {
		if len(p) > 0 {
			err = io.EOF
		}
		return
	}
	n = copy(p, that.InBuffer)
	that.InBuffer = that.InBuffer[n:]
	return
}

// Next returns the next n buffered bytes, or everything when n <= 0.
func (that *Conn) Next(n int) []byte {
	if n <= 0 || n > len(that.InBuffer) {
		n = len(that.InBuffer)
	}
	b := that.InBuffer[:n]
	that.InBuffer = that.InBuffer[n:]
	return b
}

// InboundBuffered is the number of bytes read from the socket but not consumed yet.
func (that *Conn) InboundBuffered() int {
	return len(that.InBuffer)
}

func (that *Conn) readSize() int {
	size := that.ReadBuffer
	if avail, err := sys.AvailableBytes(that.Fd); err == nil && avail > size {
		size = avail
	}
	return size
}

func (that *Conn) ReadFromFd() error {
	buf := byteslice.Get(that.readSize())
	defer byteslice.Put(buf)

	n, err := sys.Read(that.Fd, buf)
	if err != nil || n == 0 {
		if err == sys.EAGAIN {
			return nil
		}
		// conn closed by client.
		if n == 0 {
			err = sys.ECONNRESET
		}
		return that.Shutdown(err)
	}
	that.InBuffer = append(that.InBuffer, buf[:n]...)
	if that.Ctx == nil {
		return nil
	}
	err = that.Handler.OnTrack(that.Ctx)
	if len(that.InBuffer) == 0 {
		that.InBuffer = nil
	}
	return err
}
