package iface

import (
	"net"
)

type IELoop interface {
	AddConnCount(i int32) int32
	GetConnCount() int32
	RemoveConn(fd int)
	GetIndex() int
}

type IFd interface {
	GetFd() int
}

type IEventHandler interface {
	OnAccept(conn RawConn) error
	OnOpen(*Context) (data []byte, err error)
	OnTrack(*Context) error
	OnClose(ctx *Context, reason error) error
}

// IClosingHandler is optionally implemented by an IEventHandler that wants to
// see a connection before its fd is closed.
type IClosingHandler interface {
	OnClosing(ctx *Context, reason error)
}

type IPollCallback interface {
	Callback(fd int, events uint32) error
}

type IBalancer interface {
	Register(IELoop)
	Next(addr ...net.Addr) IELoop
	Iterator(f BalancerIterFunc)
	Len() int
}

type IListener interface {
	net.Listener
	IFd
	IsUDP() bool
}
