/*
EloopEvent defines the event type for Eloop. An acception or connection monitoring.
*/
package eloop

import (
	"github.com/moqsien/sxnet/sys"
)

type EloopEventAccept struct {
	Eloop *Eloop
}

func (that *EloopEventAccept) Callback(fd int, events uint32) error {
	return that.Eloop.Accept(fd, events)
}

type EloopEventHandleConn struct {
	Eloop *Eloop
}

func (that *EloopEventHandleConn) Callback(fd int, events uint32) error {
	if c, found := that.Eloop.ConnList[fd]; found {
		return sys.HandleEvents(events, c)
	}
	// fd was closed while its events were already queued
	return nil
}
