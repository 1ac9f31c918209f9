// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tube provides a buffered, full-duplex byte channel over a
// pluggable raw transport.
//
// Semantics and design:
//   - Buffered receive: every receive strategy (Recv, RecvN, RecvUntil,
//     RecvPred, RecvLine and friends, RecvRegex, RecvRepeat, RecvAll) is
//     built on one internal Buffer with push-back. A strategy that gives up
//     on a deadline restores every byte it peeled off, so the stream state
//     is indistinguishable from before the call.
//   - Deadlines, not cancellation tokens: blocking operations take a
//     Deadline (Default, Forever, or After(d)). A timeout is an empty
//     result with a nil error; end-of-stream is io.EOF. Scoped countdowns
//     nest and restore on every exit path.
//   - Non-blocking first at the raw layer: transports report an elapsed
//     deadline with ErrWouldBlock (re-exported from iox) and may attach
//     ErrMore to usable partial completions, exactly as the surrounding
//     I/O stack does.
//   - Pumps and consoles: two tubes can be piped together with
//     ConnectInput/ConnectOutput/ConnectBoth; Interactive bridges a tube
//     to the local terminal with newline translation.
package tube

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Tube is a full-duplex byte channel with a buffered receive side.
//
// A tube is conceptually owned by one goroutine: receive calls must be
// serialized, and concurrent sends are not atomic with respect to each
// other. The pump and the interactive reader are the only concurrency the
// package itself introduces.
type Tube struct {
	tr RawTransport

	buf     Buffer
	ctx     *Context
	newline []byte // nil means inherit ctx.Newline
	timeout Deadline
	border  binary.ByteOrder
	ctd     countdown

	id  string
	log *logrus.Entry

	stdio     stdio
	readLiner ReadLiner

	warnedMu sync.Mutex
	warned   map[string]struct{}

	closeOnce sync.Once
	closeErr  error
}

// NewTube wraps a raw transport in a Tube. The tube is registered for
// best-effort closing via CloseAll.
func NewTube(tr RawTransport, opts ...Option) *Tube {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}

	ctx := o.Context.normalize()
	t := &Tube{
		tr:      tr,
		ctx:     ctx,
		newline: o.Newline,
		timeout: o.Timeout,
		border:  o.ByteOrder,
		stdio:   newStdio(o.Stdin, o.Stdout),
		warned:  make(map[string]struct{}),
	}
	if t.border == nil {
		t.border = ctx.ByteOrder
	}
	t.readLiner = o.ReadLiner
	t.id, t.log = newTubeLogger(ctx, o.LogLevel)
	registerTube(t)
	return t
}

// Newline returns the line terminator in effect for this tube.
func (t *Tube) Newline() []byte {
	if len(t.newline) > 0 {
		return t.newline
	}
	return t.ctx.Newline
}

// SetNewline overrides the tube's line terminator. Empty input clears the
// override so the Context newline applies again.
func (t *Tube) SetNewline(newline []byte) {
	t.newline = append([]byte(nil), newline...)
}

// SetNewlineString is SetNewline for string input.
func (t *Tube) SetNewlineString(newline string) { t.SetNewline([]byte(newline)) }

// SetTimeout replaces the tube's default deadline for blocking operations
// and notifies the transport.
func (t *Tube) SetTimeout(d Deadline) {
	t.timeout = d
	t.applyTransportTimeout()
}

// Shutdown closes the tube for further reading or writing depending on
// dir: "in", "read" or "recv" close the ingoing side; "out", "write" or
// "send" close the outgoing side. Unknown aliases report ErrBadDirection.
func (t *Tube) Shutdown(dir string) error {
	d, err := parseShutdownDirection(dir)
	if err != nil {
		return err
	}
	return t.tr.ShutdownRaw(d)
}

// Connected reports whether the tube is connected in the given direction;
// dir accepts the Shutdown aliases plus "any".
func (t *Tube) Connected(dir string) (bool, error) {
	d, err := parseConnectedDirection(dir)
	if err != nil {
		return false, err
	}
	return t.tr.ConnectedRaw(d), nil
}

// connected is the alias-free internal form.
func (t *Tube) connected(d Direction) bool { return t.tr.ConnectedRaw(d) }

// WaitForClose blocks until the tube is no longer connected in either
// direction, polling every 50ms under the deadline.
func (t *Tube) WaitForClose(d Deadline) {
	restore := t.pushCountdown(d)
	defer restore()
	for t.countdownActive() {
		if !t.connected(DirectionAny) {
			return
		}
		sleep := 50 * time.Millisecond
		if rem, forever := t.remaining(); !forever && rem < sleep {
			sleep = rem
		}
		time.Sleep(sleep)
	}
}

// Wait is an alias for WaitForClose.
func (t *Tube) Wait(d Deadline) { t.WaitForClose(d) }

// Close closes the underlying transport. It is idempotent.
func (t *Tube) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.tr.Close()
		unregisterTube(t)
	})
	return t.closeErr
}

// applyTransportTimeout pushes the remaining countdown budget down to the
// transport before a blocking call.
func (t *Tube) applyTransportTimeout() {
	if rem, forever := t.remaining(); forever {
		t.tr.SetTimeoutRaw(-1)
	} else {
		t.tr.SetTimeoutRaw(rem)
	}
}

// Package-level registry of open tubes. Go has no portable at-exit hook,
// so process teardown code calls CloseAll instead; Close unregisters.
var (
	openMu    sync.Mutex
	openTubes = make(map[*Tube]struct{})
)

func registerTube(t *Tube) {
	openMu.Lock()
	openTubes[t] = struct{}{}
	openMu.Unlock()
}

func unregisterTube(t *Tube) {
	openMu.Lock()
	delete(openTubes, t)
	openMu.Unlock()
}

// CloseAll closes every tube still open, best effort. Hook it to process
// shutdown (defer in main, signal handler) to mirror the per-tube close
// hook a runtime with at-exit registration would install.
func CloseAll() {
	openMu.Lock()
	tubes := make([]*Tube, 0, len(openTubes))
	for t := range openTubes {
		tubes = append(tubes, t)
	}
	openMu.Unlock()
	for _, t := range tubes {
		_ = t.Close()
	}
}
