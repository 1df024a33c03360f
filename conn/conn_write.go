package conn

import (
	"net"

	"github.com/moqsien/sxnet/iface"
	"github.com/moqsien/sxnet/sys"
	"github.com/moqsien/sxnet/utils/errs"
)

func (that *Conn) writeUdp(data []byte) error {
	return sys.WriteUdp(that.Fd, data, 0, that.Sock)
}

// pending reports whether earlier output is still queued, new data must queue behind it.
func (that *Conn) pending() bool {
	return !that.OutBuffer.IsEmpty() || len(that.segments) > 0
}

func (that *Conn) write(data []byte) (n int, err error) {
	if !that.Opened {
		return 0, net.ErrClosed
	}
	n = len(data)
	if that.pending() {
		if len(that.segments) > 0 {
			return n, that.queueAfterFile(data)
		}
		return that.OutBuffer.Write(data)
	}
	var sent int
	if sent, err = sys.Write(that.Fd, data); err != nil {
		if err == sys.EAGAIN {
			_, _ = that.OutBuffer.Write(data)
			err = that.Poller.ModReadWrite(that)
			return
		}
		_ = that.Shutdown(err)
		return -1, err
	}
	if sent < n {
		_, _ = that.OutBuffer.Write(data[sent:])
		err = that.Poller.ModReadWrite(that)
	}
	return
}

func (that *Conn) asyncWrite(arg iface.PollTaskArg) (err error) {
	if !that.Opened {
		return
	}

	hook, ok := arg.(*iface.AsyncWriteHook)
	if ok {
		_, err = that.write(hook.Data)
		if hook.Go != nil {
			err = hook.Go(that)
		}
	}
	return
}

func (that *Conn) Write(p []byte) (int, error) {
	if that.IsUDP {
		if err := that.writeUdp(p); err != nil {
			return 0, err
		}
		return len(p), nil
	}
	return that.write(p)
}

// AsyncWrite hands data to the conn's loop, safe to call from any goroutine.
func (that *Conn) AsyncWrite(data []byte, cb ...iface.AsyncCallback) error {
	var callback iface.AsyncCallback
	if len(cb) > 0 {
		callback = cb[0]
	}

	if that.IsUDP {
		err := that.writeUdp(data)
		if callback != nil {
			_ = callback(that)
		}
		return err
	}

	return that.Poller.AddTask(that.asyncWrite, &iface.AsyncWriteHook{
		Go:   callback,
		Data: data,
	})
}

func (that *Conn) writev(data [][]byte) (n int, err error) {
	if !that.Opened {
		return 0, net.ErrClosed
	}
	for _, b := range data {
		n += len(b)
	}

	if that.pending() {
		for _, b := range data {
			if _, err = that.write(b); err != nil {
				return
			}
		}
		return
	}

	var sent int
	if sent, err = sys.Writev(that.Fd, data); err != nil {
		if err == sys.EAGAIN {
			_, _ = that.OutBuffer.Writev(data)
			err = that.Poller.ModReadWrite(that)
			return
		}
		_ = that.Shutdown(err)
		return -1, err
	}

	if sent < n {
		var pos int
		for i := range data {
			bn := len(data[i])
			if sent < bn {
				data[i] = data[i][sent:]
				pos = i
				break
			}
			sent -= bn
		}
		_, _ = that.OutBuffer.Writev(data[pos:])
		err = that.Poller.ModReadWrite(that)
	}
	return
}

func (that *Conn) asyncWritev(arg iface.PollTaskArg) (err error) {
	if !that.Opened {
		return nil
	}

	hook := arg.(*iface.AsyncWritevHook)
	_, err = that.writev(hook.Data)
	if hook.Go != nil {
		err = hook.Go(that)
	}
	return
}

func (that *Conn) Writev(bs [][]byte) (int, error) {
	if that.IsUDP {
		return 0, errs.ErrUnsupportedOp
	}
	return that.writev(bs)
}

func (that *Conn) AsyncWritev(bs [][]byte, cb ...iface.AsyncCallback) error {
	var callback iface.AsyncCallback
	if len(cb) > 0 {
		callback = cb[0]
	}
	if that.IsUDP {
		return errs.ErrUnsupportedOp
	}
	return that.Poller.AddTask(that.asyncWritev, &iface.AsyncWritevHook{Go: callback, Data: bs})
}

func (that *Conn) flushOutBuffer() error {
	iov := that.OutBuffer.Peek(-1)
	if len(iov) == 0 {
		return nil
	}
	var (
		n   int
		err error
	)
	if len(iov) > 1 {
		if len(iov) > iface.IovMax {
			iov = iov[:iface.IovMax]
		}
		n, err = sys.Writev(that.Fd, iov)
	} else {
		n, err = sys.Write(that.Fd, iov[0])
	}
	if n > 0 {
		_, _ = that.OutBuffer.Discard(n)
	}
	return err
}

// WriteToFd drains queued file segments first, then the out buffer.
func (that *Conn) WriteToFd() error {
	err := that.flushSegments()
	if err == nil && len(that.segments) == 0 {
		err = that.flushOutBuffer()
	}
	switch err {
	case nil:
	case sys.EAGAIN:
		return nil
	default:
		return that.Shutdown(err)
	}

	if !that.pending() {
		return that.Poller.ModRead(that)
	}
	return nil
}
