package service

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/moqsien/processes/logger"
	"github.com/pkg/errors"

	"github.com/moqsien/sxnet/conn"
	"github.com/moqsien/sxnet/iface"
)

// FileServer answers one file path per line with "OK <size>\n" followed by
// the content, or "ERR <reason>\n". Paths are resolved below Root. Replies
// leave in request order. A datagram carries its own requests and gets its
// replies as datagrams.
type FileServer struct {
	Base
	Root string
}

// fileSession is the per-connection state kept in Ctx.Value, it is only
// touched on the conn's loop.
type fileSession struct {
	partial bytes.Buffer
	queued  []string
	busy    bool
}

type opened struct {
	name string
	f    *os.File
	size int64
	err  error
}

func (that *FileServer) resolve(name string) string {
	return filepath.Join(that.Root, filepath.Clean("/"+name))
}

func (that *FileServer) Received(c *conn.Conn, data []byte) (bool, error) {
	if c.IsUDP {
		return true, that.serveDatagram(c, data)
	}
	s, _ := c.Ctx.Value.(*fileSession)
	if s == nil {
		s = new(fileSession)
		c.Ctx.Value = s
	}
	s.partial.Write(data)
	for {
		line, err := s.partial.ReadString('\n')
		if err != nil {
			// keep the partial line for the next read
			s.partial.Reset()
			s.partial.WriteString(line)
			break
		}
		if name := strings.TrimSpace(line); name != "" {
			s.queued = append(s.queued, name)
		}
	}
	if s.busy || len(s.queued) == 0 {
		return true, nil
	}
	return true, that.next(c, s)
}

func (that *FileServer) serveDatagram(c *conn.Conn, data []byte) error {
	for _, line := range strings.Split(string(data), "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		r := that.open(name)
		if err := that.reply(c, r); err != nil {
			return err
		}
	}
	return nil
}

// next opens the queued files in order off the loop and replies from the
// loop again. A batch queued meanwhile waits for the current one.
func (that *FileServer) next(c *conn.Conn, s *fileSession) error {
	names := s.queued
	s.queued = nil
	s.busy = true
	return c.Poller.Submit(func() {
		results := make([]*opened, 0, len(names))
		for _, name := range names {
			results = append(results, that.open(name))
		}
		if e := c.Poller.AddTask(func(iface.PollTaskArg) error {
			return that.replyAll(c, s, results)
		}, nil); e != nil {
			closeOpened(results)
		}
	})
}

func (that *FileServer) replyAll(c *conn.Conn, s *fileSession, results []*opened) error {
	s.busy = false
	for i, r := range results {
		if err := that.reply(c, r); err != nil {
			closeOpened(results[i+1:])
			return err
		}
	}
	if c.Opened && len(s.queued) > 0 {
		return that.next(c, s)
	}
	return nil
}

func closeOpened(results []*opened) {
	for _, r := range results {
		if r.f != nil {
			r.f.Close()
		}
	}
}

func (that *FileServer) open(name string) *opened {
	path := that.resolve(name)
	r := &opened{name: name}
	if r.f, r.err = os.Open(path); r.err != nil {
		logger.Warningf("file server: %v", r.err)
		return r
	}
	st, err := r.f.Stat()
	switch {
	case err != nil:
		r.err = err
	case st.IsDir():
		r.err = errors.Errorf("%s is a directory", path)
	default:
		r.size = st.Size()
		return r
	}
	r.f.Close()
	r.f = nil
	logger.Warningf("file server: %v", r.err)
	return r
}

func (that *FileServer) reply(c *conn.Conn, r *opened) error {
	if !c.IsUDP && !c.Opened {
		closeOpened([]*opened{r})
		return nil
	}
	if r.err != nil {
		msg := "ERR not found\n"
		if !os.IsNotExist(r.err) {
			msg = "ERR unreadable\n"
		}
		_, err := c.Write([]byte(msg))
		return err
	}
	if _, err := c.Write([]byte(fmt.Sprintf("OK %d\n", r.size))); err != nil {
		r.f.Close()
		return err
	}
	return c.SendFile(r.f, 0, int(r.size))
}
