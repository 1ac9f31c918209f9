// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

import (
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// Conn adapts a net.Conn to the RawTransport contract: read deadlines map
// to ErrWouldBlock, closed streams to io.EOF, and per-direction shutdown
// uses CloseRead/CloseWrite when the connection provides them (TCP and
// Unix stream connections do).
type Conn struct {
	conn net.Conn

	timeout atomic.Int64 // nanoseconds; negative means wait forever

	recvClosed atomic.Bool
	sendClosed atomic.Bool

	closeOnce sync.Once
	closeErr  error
}

type closeReader interface{ CloseRead() error }
type closeWriter interface{ CloseWrite() error }

// NewConn wraps c in a Tube.
func NewConn(c net.Conn, opts ...Option) *Tube {
	return NewTube(WrapConn(c), opts...)
}

// WrapConn returns the RawTransport view of c without building a Tube.
func WrapConn(c net.Conn) *Conn {
	t := &Conn{conn: c}
	t.timeout.Store(-1)
	return t
}

// RecvRaw reads up to n bytes under the installed timeout.
func (c *Conn) RecvRaw(n int) ([]byte, error) {
	if c.recvClosed.Load() {
		return nil, io.EOF
	}

	if d := time.Duration(c.timeout.Load()); d < 0 {
		_ = c.conn.SetReadDeadline(time.Time{})
	} else {
		_ = c.conn.SetReadDeadline(time.Now().Add(d))
	}

	buf := make([]byte, n)
	rn, err := c.conn.Read(buf)
	if rn > 0 {
		// Partial data beats the error; the next call reports it again.
		return buf[:rn], nil
	}
	if err == nil {
		return nil, nil
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return nil, ErrWouldBlock
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, syscall.ECONNRESET) {
		return nil, io.EOF
	}
	return nil, err
}

// SendRaw writes all of p.
func (c *Conn) SendRaw(p []byte) error {
	if c.sendClosed.Load() {
		return io.EOF
	}
	for len(p) > 0 {
		n, err := c.conn.Write(p)
		p = p[n:]
		if err != nil {
			if errors.Is(err, net.ErrClosed) || errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
				return io.EOF
			}
			return err
		}
	}
	return nil
}

// SetTimeoutRaw installs the wait budget for the next RecvRaw.
func (c *Conn) SetTimeoutRaw(d time.Duration) {
	c.timeout.Store(int64(d))
}

// ShutdownRaw closes one side of the connection; repeated calls are no-ops.
func (c *Conn) ShutdownRaw(dir Direction) error {
	switch dir {
	case DirectionRecv:
		if c.recvClosed.CompareAndSwap(false, true) {
			if cr, ok := c.conn.(closeReader); ok {
				return cr.CloseRead()
			}
		}
		return nil
	case DirectionSend:
		if c.sendClosed.CompareAndSwap(false, true) {
			if cw, ok := c.conn.(closeWriter); ok {
				return cw.CloseWrite()
			}
		}
		return nil
	default:
		return ErrBadDirection
	}
}

// ConnectedRaw reports whether the given side is still open.
func (c *Conn) ConnectedRaw(dir Direction) bool {
	switch dir {
	case DirectionRecv:
		return !c.recvClosed.Load()
	case DirectionSend:
		return !c.sendClosed.Load()
	default:
		return !c.recvClosed.Load() || !c.sendClosed.Load()
	}
}

// Close closes the connection. It is idempotent.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.recvClosed.Store(true)
		c.sendClosed.Store(true)
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// Fileno returns the connection's file descriptor when the connection
// exposes one.
func (c *Conn) Fileno() (int, error) {
	sc, ok := c.conn.(syscall.Conn)
	if !ok {
		return -1, ErrNotImplemented
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return -1, err
	}
	fd := -1
	cerr := raw.Control(func(h uintptr) { fd = int(h) })
	if cerr != nil {
		return -1, cerr
	}
	return fd, nil
}
