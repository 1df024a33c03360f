package conn

import (
	"net"
	"os"

	"github.com/moqsien/processes/logger"
	"github.com/panjf2000/gnet/v2/pkg/buffer/elastic"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/iface"
	"github.com/moqsien/sxnet/poll"
	"github.com/moqsien/sxnet/sys"
	"github.com/moqsien/sxnet/utils/errs"
)

// fileSegment is the part of a file still waiting to be sent with sendfile,
// or plain bytes written after it when file is nil.
type fileSegment struct {
	file   *os.File
	offset int64
	remain int
	data   []byte
}

type Conn struct {
	Fd         int
	Poller     *poll.Poller
	Loop       iface.IELoop
	Sock       unix.Sockaddr
	AddrLocal  net.Addr
	AddrRemote net.Addr
	OutBuffer  *elastic.Buffer
	InBuffer   []byte
	ReadBuffer int
	IsUDP      bool
	Ctx        *iface.Context
	Opened     bool
	closing    bool // OnClosing may still write, nothing may close again
	Handler    iface.IEventHandler
	segments   []*fileSegment
}

// NewTCPConn wraps an accepted stream fd, the conn is opened later on its own loop.
func NewTCPConn(fd int, poller *poll.Poller, sa unix.Sockaddr, localAddr, remoteAddr net.Addr, h iface.IEventHandler) (c *Conn) {
	c = &Conn{
		Fd:         fd,
		Sock:       sa,
		Poller:     poller,
		AddrLocal:  localAddr,
		AddrRemote: remoteAddr,
		Handler:    h,
		ReadBuffer: iface.DefaultReadBuffer,
	}
	c.OutBuffer, _ = elastic.New(iface.MaxStreamBufferCap)
	return
}

// NewUDPConn wraps one datagram, replies go back to sa through the listener fd.
func NewUDPConn(fd int, poller *poll.Poller, sa unix.Sockaddr, localAddr, remoteAddr net.Addr, h iface.IEventHandler) *Conn {
	return &Conn{
		Fd:         fd,
		Sock:       sa,
		Poller:     poller,
		AddrLocal:  localAddr,
		AddrRemote: remoteAddr,
		Handler:    h,
		IsUDP:      true,
	}
}

func (that *Conn) releaseUDP() {
	that.Ctx = nil
	that.AddrLocal = nil
	that.AddrRemote = nil
	that.InBuffer = nil
}

func (that *Conn) releaseTCP() {
	that.Ctx = nil
	that.Opened = false
	that.Sock = nil
	that.InBuffer = nil
	that.AddrLocal = nil
	that.AddrRemote = nil
	for _, seg := range that.segments {
		if seg.file != nil {
			seg.file.Close()
		}
	}
	that.segments = nil
	that.OutBuffer.Release()
}

func (that *Conn) GetFd() int {
	return that.Fd
}

// flush pushes what is left in the out buffer before the fd goes away.
func (that *Conn) flush() {
	for !that.OutBuffer.IsEmpty() {
		iov := that.OutBuffer.Peek(-1)
		if len(iov) > iface.IovMax {
			iov = iov[:iface.IovMax]
		}
		n, e := sys.Writev(that.Fd, iov)
		if e != nil {
			logger.Warningf("closeConn: error occurs when sending data back to peer, %v", e)
			return
		}
		_, _ = that.OutBuffer.Discard(n)
	}
}

func (that *Conn) closeWith(reason error) (rerr error) {
	if that.IsUDP {
		that.releaseUDP()
		return
	}
	if !that.Opened || that.closing {
		return
	}
	that.closing = true
	if h, ok := that.Handler.(iface.IClosingHandler); ok && that.Ctx != nil {
		h.OnClosing(that.Ctx, reason)
	}
	that.Opened = false
	that.flush()

	if err := that.Poller.RemoveFd(that); err != nil {
		rerr = errors.Wrapf(err, "failed to delete fd=%d from poller", that.Fd)
	}
	if err := sys.CloseFd(that.Fd); err != nil {
		err = errors.Wrapf(err, "failed to close fd=%d", that.Fd)
		if rerr != nil {
			rerr = errors.Errorf("%v & %v", rerr, err)
		} else {
			rerr = err
		}
	}
	if that.Loop != nil {
		that.Loop.RemoveConn(that.Fd)
	}
	if that.Handler != nil && that.Ctx != nil {
		if that.Handler.OnClose(that.Ctx, reason) != nil {
			rerr = errs.ErrEngineShutdown
		}
	}
	that.releaseTCP()
	return
}

// Close flushes pending output and releases the connection.
func (that *Conn) Close() error {
	return that.closeWith(nil)
}

// Shutdown closes the connection because of reason, reason is handed to OnClose.
func (that *Conn) Shutdown(reason error) error {
	return that.closeWith(reason)
}

// Open runs OnOpen and sends its greeting, it must run on the conn's own loop.
func (that *Conn) Open(adapter iface.ConnAdapter, callback ...iface.AsyncCallback) error {
	that.Opened = true
	that.InitContext(adapter, callback...)
	data, err := that.Handler.OnOpen(that.Ctx)
	if err != nil {
		return that.Shutdown(err)
	}
	if len(data) > 0 {
		if _, err = that.write(data); err != nil {
			return err
		}
	}
	return nil
}

func (that *Conn) LocalAddr() net.Addr {
	return that.AddrLocal
}

func (that *Conn) RemoteAddr() net.Addr {
	return that.AddrRemote
}

// Available reports how many bytes wait in the socket's receive queue.
func (that *Conn) Available() (int, error) {
	return sys.AvailableBytes(that.Fd)
}
