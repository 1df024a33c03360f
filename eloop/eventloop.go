package eloop

import (
	"errors"
	"net"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/moqsien/processes/logger"
	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/addr"
	"github.com/moqsien/sxnet/conn"
	"github.com/moqsien/sxnet/iface"
	"github.com/moqsien/sxnet/poll"
	"github.com/moqsien/sxnet/sys"
	"github.com/moqsien/sxnet/utils/errs"
)

type Eloop struct {
	Listener  iface.IListener     // net listener
	Index     int                 // index of worker loop
	Poller    *poll.Poller        // poller
	ConnCount int32               // number of connections
	ConnList  map[int]*conn.Conn  // list of connections
	Handler   iface.IEventHandler // Handler for events
	Balancer  iface.IBalancer     // load balancer
	Options   *iface.Options
	udpBuffer []byte
}

func New(index int, ln iface.IListener, p *poll.Poller, h iface.IEventHandler, lb iface.IBalancer, opts *iface.Options) *Eloop {
	return &Eloop{
		Listener: ln,
		Index:    index,
		Poller:   p,
		ConnList: make(map[int]*conn.Conn),
		Handler:  h,
		Balancer: lb,
		Options:  opts,
	}
}

func (that *Eloop) GetIndex() int {
	return that.Index
}

// RegisterConn runs on the sub loop that owns the conn.
func (that *Eloop) RegisterConn(arg iface.PollTaskArg) error {
	c := arg.(*conn.Conn)
	c.Loop = that
	if that.Options.ReadBuffer > 0 {
		c.ReadBuffer = that.Options.ReadBuffer
	}
	var err error
	if err = that.Poller.AddRead(c); err != nil {
		_ = sys.CloseFd(c.Fd)
		return err
	}
	that.ConnList[c.Fd] = c
	that.AddConnCount(1)
	return c.Open(that.Options.ConnAdapter, that.Options.ConnAsyncCallback)
}

func (that *Eloop) remoteAddr(sa unix.Sockaddr) net.Addr {
	a, err := addr.FromSockaddr(sa)
	if err != nil {
		return nil
	}
	return a.NetAddr(that.Listener.Addr().Network())
}

func (that *Eloop) packTcpConn(nfd int, sa unix.Sockaddr) error {
	remote := that.remoteAddr(sa)
	next := that.Balancer.Next(remote)
	if next == nil {
		_ = sys.CloseFd(nfd)
		return errs.ErrAcceptSocket
	}
	loop := next.(*Eloop)
	c := conn.NewTCPConn(nfd, loop.Poller, sa, that.Listener.Addr(), remote, that.Handler)
	if err := that.Handler.OnAccept(c); err != nil {
		logger.Warningf("connection from %v refused: %v", remote, err)
		return sys.CloseFd(nfd)
	}
	return loop.Poller.AddPriorTask(loop.RegisterConn, c)
}

func (that *Eloop) keepAliveSecs() int {
	d := that.Options.ConnKeepAlive
	if d <= 0 {
		return 0
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}

// Accept runs on the main loop for every readable event of the listener.
func (that *Eloop) Accept(_ int, _ uint32) error {
	if that.Listener.IsUDP() {
		return that.readUDP()
	}
	nfd, sa, err := sys.Accept(that.Listener.GetFd(), that.keepAliveSecs())
	if err != nil {
		switch {
		case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR), errors.Is(err, unix.ECONNABORTED):
			return nil
		}
		logger.Errorf("Accept() failed due to error: %v", err)
		return errs.ErrAcceptSocket
	}
	return that.packTcpConn(nfd, sa)
}

func (that *Eloop) readUDP() error {
	if that.udpBuffer == nil {
		size := that.Options.ReadBuffer
		if size <= 0 {
			size = iface.DefaultReadBuffer
		}
		that.udpBuffer = make([]byte, size)
	}
	fd := that.Listener.GetFd()
	n, sa, err := unix.Recvfrom(fd, that.udpBuffer, 0)
	if err != nil {
		if err == unix.EAGAIN {
			return nil
		}
		logger.Warningf("failed to read udp packet from fd=%d: %v", fd, err)
		return nil
	}
	c := conn.NewUDPConn(fd, that.Poller, sa, that.Listener.Addr(), that.remoteAddr(sa), that.Handler)
	c.InBuffer = that.udpBuffer[:n]
	c.InitContext(that.Options.ConnAdapter, that.Options.ConnAsyncCallback)
	err = that.Handler.OnTrack(c.Ctx)
	_ = c.Close()
	return err
}

func lockThread(l bool) func() {
	if !l {
		return func() {}
	}
	runtime.LockOSThread()
	return runtime.UnlockOSThread
}

// ActivateMainLoop blocks accepting connections until the loop is stopped.
func (that *Eloop) ActivateMainLoop(l bool) error {
	defer lockThread(l)()
	if err := that.Poller.AddRead(that.Listener); err != nil {
		return err
	}
	return that.Poller.Start(&EloopEventAccept{Eloop: that})
}

// ActivateSubLoop blocks serving registered connections until the loop is stopped.
func (that *Eloop) ActivateSubLoop(l bool) error {
	defer lockThread(l)()
	err := that.Poller.Start(&EloopEventHandleConn{Eloop: that})
	that.CloseAllConn()
	return err
}

func (that *Eloop) AddConnCount(i int32) int32 {
	return atomic.AddInt32(&that.ConnCount, i)
}

func (that *Eloop) GetConnCount() int32 {
	return atomic.LoadInt32(&that.ConnCount)
}

func (that *Eloop) RemoveConn(fd int) {
	if _, ok := that.ConnList[fd]; !ok {
		return
	}
	delete(that.ConnList, fd)
	that.AddConnCount(-1)
}

func (that *Eloop) CloseAllConn() {
	for _, c := range that.ConnList {
		if err := c.Close(); err != nil {
			logger.Warningf("failed to close conn fd=%d: %v", c.Fd, err)
		}
	}
}
