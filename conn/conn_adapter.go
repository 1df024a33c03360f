package conn

import (
	"net"

	"github.com/moqsien/sxnet/iface"
	"github.com/moqsien/sxnet/utils"
)

type AsyncWriteConn struct {
	*Conn
	CallBack iface.AsyncCallback
}

func (that *AsyncWriteConn) Write(data []byte) (n int, err error) {
	n = len(data)
	err = that.Conn.AsyncWrite(data, that.CallBack)
	return
}

type WritevConn struct {
	*Conn
}

func (that *WritevConn) Write(data []byte) (n int, err error) {
	return that.Conn.Writev(utils.SplitDataForWritev(data, iface.DefaultReadBuffer))
}

type AsyncWritevConn struct {
	*Conn
	CallBack iface.AsyncCallback
}

func (that *AsyncWritevConn) Write(data []byte) (n int, err error) {
	n = len(data)
	err = that.Conn.AsyncWritev(utils.SplitDataForWritev(data, iface.DefaultReadBuffer), that.CallBack)
	return
}

// Adapt adapts asyncwrite or writev to net.Conn interface.
func (that *Conn) Adapt(adapter iface.ConnAdapter, callback ...iface.AsyncCallback) net.Conn {
	var cb iface.AsyncCallback = nil
	if len(callback) > 0 {
		cb = callback[0]
	}
	switch adapter {
	case iface.ConnNoneAdapter:
		return that
	case iface.ConnWritevAdapter:
		return &WritevConn{Conn: that}
	case iface.ConnAsyncWriteAdapter:
		return &AsyncWriteConn{Conn: that, CallBack: cb}
	case iface.ConnAsyncWritevAdapter:
		return &AsyncWritevConn{Conn: that, CallBack: cb}
	default:
		return that
	}
}
