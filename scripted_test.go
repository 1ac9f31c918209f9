// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube_test

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"code.hybscloud.com/tube"
)

func newNopLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// scriptStep is one RecvRaw completion of a scripted transport.
type scriptStep struct {
	b   []byte
	err error
}

// scriptTransport simulates an underlying transport: each RecvRaw call
// consumes one step; exhausted scripts report tail (io.EOF by default).
// Sends are captured in sent.
type scriptTransport struct {
	mu    sync.Mutex
	steps []scriptStep
	tail  error

	sent    bytes.Buffer
	sendErr error

	timeout time.Duration

	recvClosed bool
	sendClosed bool
	closed     bool

	shutdowns []tube.Direction
}

func newScriptTransport(steps ...scriptStep) *scriptTransport {
	return &scriptTransport{steps: steps, tail: io.EOF, timeout: -1}
}

// feeds returns a transport scripted with the given chunks followed by EOF.
func feeds(chunks ...[]byte) *scriptTransport {
	steps := make([]scriptStep, len(chunks))
	for i, c := range chunks {
		steps[i] = scriptStep{b: c}
	}
	return newScriptTransport(steps...)
}

func (s *scriptTransport) RecvRaw(n int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recvClosed || s.closed {
		return nil, io.EOF
	}
	if len(s.steps) == 0 {
		return nil, s.tail
	}
	st := s.steps[0]
	s.steps = s.steps[1:]
	if len(st.b) > n {
		// Split oversized steps so the chunk-size contract holds.
		s.steps = append([]scriptStep{{b: st.b[n:], err: st.err}}, s.steps...)
		return st.b[:n], nil
	}
	return st.b, st.err
}

func (s *scriptTransport) SendRaw(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	if s.sendClosed || s.closed {
		return io.EOF
	}
	s.sent.Write(p)
	return nil
}

func (s *scriptTransport) SetTimeoutRaw(d time.Duration) {
	s.mu.Lock()
	s.timeout = d
	s.mu.Unlock()
}

func (s *scriptTransport) ShutdownRaw(dir tube.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdowns = append(s.shutdowns, dir)
	switch dir {
	case tube.DirectionRecv:
		s.recvClosed = true
	case tube.DirectionSend:
		s.sendClosed = true
	}
	return nil
}

func (s *scriptTransport) ConnectedRaw(dir tube.Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	switch dir {
	case tube.DirectionRecv:
		return !s.recvClosed
	case tube.DirectionSend:
		return !s.sendClosed
	default:
		return !s.recvClosed || !s.sendClosed
	}
}

func (s *scriptTransport) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *scriptTransport) sentBytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.sent.Bytes()...)
}

// repeatTransport replies to every RecvRaw with the same chunk, forever.
type repeatTransport struct {
	scriptTransport
	chunk []byte
}

func repeats(chunk []byte) *repeatTransport {
	r := &repeatTransport{chunk: chunk}
	r.tail = io.EOF
	r.timeout = -1
	return r
}

func (r *repeatTransport) RecvRaw(n int) ([]byte, error) {
	if n > len(r.chunk) {
		n = len(r.chunk)
	}
	return append([]byte(nil), r.chunk[:n]...), nil
}

// slowTransport trickles one byte per call with a fixed delay, honoring
// the installed timeout: a delay longer than the budget reports
// ErrWouldBlock.
type slowTransport struct {
	scriptTransport
	delay time.Duration
	data  []byte
	off   int
}

func trickles(data []byte, delay time.Duration) *slowTransport {
	s := &slowTransport{delay: delay, data: data}
	s.tail = io.EOF
	s.timeout = -1
	return s
}

func (s *slowTransport) RecvRaw(n int) ([]byte, error) {
	s.mu.Lock()
	wait := s.timeout
	s.mu.Unlock()
	if wait >= 0 && wait < s.delay {
		time.Sleep(wait)
		return nil, tube.ErrWouldBlock
	}
	time.Sleep(s.delay)
	if s.off >= len(s.data) {
		return nil, io.EOF
	}
	b := s.data[s.off]
	s.off++
	return []byte{b}, nil
}

// quiet returns tube options that keep test logging silent and isolated.
func quiet(opts ...tube.Option) []tube.Option {
	ctx := tube.NewContext()
	ctx.Logger = newNopLogger()
	return append([]tube.Option{tube.WithContext(ctx)}, opts...)
}

func newTestTube(tr tube.RawTransport, opts ...tube.Option) *tube.Tube {
	return tube.NewTube(tr, quiet(opts...)...)
}
