package conn

import (
	"bufio"

	"github.com/moqsien/sxnet/iface"
)

func (that *Conn) InitContext(adapter iface.ConnAdapter, callback ...iface.AsyncCallback) {
	connection := that.Adapt(adapter, callback...)
	that.Ctx = &iface.Context{
		Reader:  bufio.NewReader(connection),
		RawConn: that,
		Conn:    connection,
	}
}
