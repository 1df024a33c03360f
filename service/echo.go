package service

import "github.com/moqsien/sxnet/conn"

// Echo writes every received byte back.
type Echo struct {
	Base
}

func (Echo) Received(c *conn.Conn, data []byte) (bool, error) {
	_, err := c.Write(data)
	return err == nil, err
}
