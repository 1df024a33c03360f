package iface

import (
	"bufio"
	"net"
	"time"

	"github.com/moqsien/sxnet/sys"
)

type BalancerIterFunc func(key int, val IELoop) bool

type Balancer int

type ConnAdapter int

type RawConn interface {
	sys.EventHandler
	IFd
}

type AsyncCallback func(c net.Conn) error

type AsyncWriteHook struct {
	Go   AsyncCallback
	Data []byte
}

type AsyncWritevHook struct {
	Go   AsyncCallback
	Data [][]byte
}

type Options struct {
	NumOfLoops        int
	LoadBalancer      Balancer
	ReuseAddr         bool
	ReusePort         bool
	ReadBuffer        int
	WriteBuffer       int
	ConnKeepAlive     time.Duration
	LockOSThread      bool
	TaskPoolSize      int
	ConnAdapter       ConnAdapter
	ConnAsyncCallback AsyncCallback
}

type Context struct {
	Reader  *bufio.Reader
	RawConn RawConn
	Conn    net.Conn
	Value   interface{}
}

func (that *Context) Write(data []byte) (int, error) {
	return that.Conn.Write(data)
}

func (that *Context) Read(data []byte) (int, error) {
	return that.Conn.Read(data)
}

type PollTaskArg interface{}

type PollTaskFunc func(arg PollTaskArg) error
