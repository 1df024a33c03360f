package conn

import (
	"io"
	"net"
	"os"

	"github.com/moqsien/processes/logger"

	"github.com/moqsien/sxnet/sys"
)

// SendFile writes count bytes of f starting at offset to the peer with
// sendfile. The conn takes ownership of f and closes it once sent. Data
// already queued is sent first, in that case the file content is copied
// into the out buffer so ordering is kept.
func (that *Conn) SendFile(f *os.File, offset int64, count int) error {
	if !that.IsUDP && !that.Opened {
		f.Close()
		return net.ErrClosed
	}
	if count <= 0 {
		return f.Close()
	}
	if that.IsUDP {
		defer f.Close()
		buf := make([]byte, count)
		n, err := f.ReadAt(buf, offset)
		if err != nil && err != io.EOF {
			return err
		}
		return that.writeUdp(buf[:n])
	}
	if !that.OutBuffer.IsEmpty() && len(that.segments) == 0 {
		defer f.Close()
		_, err := that.OutBuffer.ReadFrom(io.NewSectionReader(f, offset, int64(count)))
		return err
	}
	seg := &fileSegment{file: f, offset: offset, remain: count}
	that.segments = append(that.segments, seg)
	if len(that.segments) > 1 {
		return nil
	}
	switch err := that.flushSegments(); err {
	case nil:
		if that.pending() {
			return that.Poller.ModReadWrite(that)
		}
		return nil
	case sys.EAGAIN:
		return that.Poller.ModReadWrite(that)
	default:
		return that.Shutdown(err)
	}
}

func (that *Conn) flushSegments() error {
	for len(that.segments) > 0 {
		seg := that.segments[0]
		if seg.file == nil {
			n, err := sys.Write(that.Fd, seg.data)
			if n > 0 {
				seg.data = seg.data[n:]
			}
			if err != nil {
				return err
			}
			if len(seg.data) > 0 {
				return sys.EAGAIN
			}
			that.segments = that.segments[1:]
			continue
		}
		n, err := sys.SendFile(that.Fd, int(seg.file.Fd()), &seg.offset, seg.remain)
		seg.remain -= n
		if err != nil {
			return err
		}
		if n == 0 && seg.remain > 0 {
			// the file is shorter than announced
			logger.Warningf("sendfile: %s ended %d bytes early", seg.file.Name(), seg.remain)
			seg.remain = 0
		}
		if seg.remain > 0 {
			return sys.EAGAIN
		}
		seg.file.Close()
		that.segments = that.segments[1:]
	}
	return nil
}

// queueAfterFile keeps data behind pending file segments.
func (that *Conn) queueAfterFile(data []byte) error {
	that.segments = append(that.segments, &fileSegment{data: append([]byte(nil), data...)})
	return nil
}
