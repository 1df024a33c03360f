package conn

import (
	"time"

	"github.com/moqsien/sxnet/utils/errs"
)

// Deadlines make no sense for a conn driven by the event loop.

func (that *Conn) SetDeadline(_ time.Time) error {
	return errs.ErrUnsupportedOp
}

func (that *Conn) SetReadDeadline(_ time.Time) error {
	return errs.ErrUnsupportedOp
}

func (that *Conn) SetWriteDeadline(_ time.Time) error {
	return errs.ErrUnsupportedOp
}
