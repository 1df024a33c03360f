// Package service turns a connection oriented Service into an event handler
// for the engine.
package service

import (
	"github.com/moqsien/sxnet/conn"
	"github.com/moqsien/sxnet/iface"
)

type Service interface {
	// Received handles data read from c, returning keep=false terminates c.
	Received(c *conn.Conn, data []byte) (keep bool, err error)
	// ExceptionRaised handles an error of Received, returning false terminates c.
	ExceptionRaised(c *conn.Conn, err error) (keep bool)
	ConnectionWillTerminate(c *conn.Conn)
	ConnectionDidTerminate(c *conn.Conn)
}

type handler struct {
	svc Service
}

// Adapt wraps svc for engine.Serve.
func Adapt(svc Service) iface.IEventHandler {
	return &handler{svc: svc}
}

func (that *handler) OnAccept(iface.RawConn) error {
	return nil
}

func (that *handler) OnOpen(ctx *iface.Context) ([]byte, error) {
	if g, ok := that.svc.(Greeter); ok {
		return g.Greeting(ctx.RawConn.(*conn.Conn)), nil
	}
	return nil, nil
}

func (that *handler) OnTrack(ctx *iface.Context) error {
	c := ctx.RawConn.(*conn.Conn)
	data := c.Next(-1)
	if len(data) == 0 {
		return nil
	}
	keep, err := that.svc.Received(c, data)
	if err != nil {
		keep = that.svc.ExceptionRaised(c, err)
	}
	if !keep {
		return c.Close()
	}
	return nil
}

func (that *handler) OnClosing(ctx *iface.Context, _ error) {
	that.svc.ConnectionWillTerminate(ctx.RawConn.(*conn.Conn))
}

func (that *handler) OnClose(ctx *iface.Context, _ error) error {
	that.svc.ConnectionDidTerminate(ctx.RawConn.(*conn.Conn))
	return nil
}

// Greeter is implemented by services that send data as soon as a connection opens.
type Greeter interface {
	Greeting(c *conn.Conn) []byte
}

// Base has no-op termination hooks and terminates on every error.
type Base struct{}

func (Base) ExceptionRaised(*conn.Conn, error) bool { return false }
func (Base) ConnectionWillTerminate(*conn.Conn)     {}
func (Base) ConnectionDidTerminate(*conn.Conn)      {}
