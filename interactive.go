// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

import (
	"bytes"
	"io"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"time"
)

// stdio is the pair of local endpoints Interactive and Stream bridge to.
type stdio struct {
	in  io.Reader
	out io.Writer
}

func newStdio(in io.Reader, out io.Writer) stdio {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return stdio{in: in, out: out}
}

func osLineSeparator() []byte {
	if runtime.GOOS == "windows" {
		return []byte("\r\n")
	}
	return []byte("\n")
}

// lineSepTracker is the explicit byte-by-byte state machine that rewrites
// the OS line separator typed on a tty into the tube's newline. A partial
// separator match is withheld; on a mismatch the withheld prefix is
// flushed together with the new byte; on a full match the tube newline is
// emitted instead.
type lineSepTracker struct {
	sep     []byte
	newline []byte
	matched int
}

func newLineSepTracker(sep, newline []byte) *lineSepTracker {
	return &lineSepTracker{sep: sep, newline: newline}
}

// feed consumes one input byte and returns the bytes to transmit, which
// may be empty while a separator prefix is pending.
func (l *lineSepTracker) feed(b byte) []byte {
	if l.matched > 0 {
		if l.sep[l.matched] != b {
			out := make([]byte, 0, l.matched+1)
			out = append(out, l.sep[:l.matched]...)
			out = append(out, b)
			l.matched = 0
			return out
		}
		l.matched++
		if l.matched == len(l.sep) {
			l.matched = 0
			return l.newline
		}
		return nil
	}
	if l.sep[0] == b {
		if len(l.sep) == 1 {
			return l.newline
		}
		l.matched = 1
		return nil
	}
	return []byte{b}
}

// Interactive bridges the tube to the local terminal: a background reader
// prints everything the tube receives (with the tube newline rewritten to
// "\n"), while local input is sent to the tube with the OS line separator
// rewritten to the tube newline when stdin is a tty. With a ReadLiner
// installed (WithReadLiner), input is taken one line at a time instead of
// one byte at a time.
//
// The bridge stops on interrupt, on end-of-stream in either direction, or
// when local input is exhausted.
func (t *Tube) Interactive() error {
	t.log.Info("Switching to interactive mode")

	stop := make(chan struct{})
	var stopOnce sync.Once
	setStop := func() { stopOnce.Do(func() { close(stop) }) }
	stopped := func() bool {
		select {
		case <-stop:
			return true
		default:
			return false
		}
	}

	newline := t.Newline()

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for !stopped() {
			data, err := t.Recv(0, After(pumpPollInterval))
			if err != nil {
				t.log.Info("Got EOF while reading in interactive")
				setStop()
				return
			}
			if len(data) == 0 {
				continue
			}
			data = bytes.ReplaceAll(data, newline, []byte("\n"))
			_, _ = t.stdio.out.Write(data)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	// Local input is read on its own goroutine so interrupt and remote
	// EOF still break the bridge while the read blocks.
	inCh := make(chan []byte)
	go func() {
		defer close(inCh)
		if t.readLiner != nil {
			for {
				line, err := t.readLiner.ReadLine()
				if len(line) > 0 {
					select {
					case inCh <- line:
					case <-stop:
						return
					}
				}
				if err != nil {
					return
				}
			}
		}
		buf := make([]byte, 1)
		for {
			n, err := t.stdio.in.Read(buf)
			if n > 0 {
				select {
				case inCh <- []byte{buf[0]}:
				case <-stop:
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	// Separator rewriting applies on a tty whenever the tube newline
	// differs from the plain "\n" default, per-instance or context-wide.
	translate := t.readLiner == nil &&
		isTerminal(t.stdio.in) &&
		(len(t.newline) > 0 || !bytes.Equal(t.ctx.Newline, []byte("\n")))
	tracker := newLineSepTracker(osLineSeparator(), newline)

loop:
	for {
		select {
		case <-stop:
			break loop
		case <-sigCh:
			t.log.Info("Interrupted")
			setStop()
			break loop
		case data, ok := <-inCh:
			if !ok {
				setStop()
				break loop
			}
			if t.readLiner != nil {
				if bytes.HasSuffix(data, []byte("\n")) && !bytes.Equal(newline, []byte("\n")) {
					trimmed := data[:len(data)-1]
					data = make([]byte, 0, len(trimmed)+len(newline))
					data = append(data, trimmed...)
					data = append(data, newline...)
				}
			} else if translate {
				data = tracker.feed(data[0])
			}
			if len(data) == 0 {
				continue
			}
			if err := t.Send(data); err != nil {
				t.log.Info("Got EOF while sending in interactive")
				setStop()
				break loop
			}
		}
	}

	// Cooperative join: the reader polls the stop signal at its receive
	// deadline, so it winds down within one interval.
	for {
		select {
		case <-readerDone:
			return nil
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// Stream receives until the tube ends and prints the data as it arrives,
// line by line in lineMode, raw chunks otherwise. Everything printed is
// returned. End-of-stream is absorbed.
func (t *Tube) Stream(lineMode bool) []byte {
	var buf Buffer
	for {
		var data []byte
		var err error
		if lineMode {
			data, err = t.RecvLine(false, Default)
		} else {
			data, err = t.Recv(0, Default)
		}
		if len(data) > 0 {
			buf.Add(data)
			_, _ = t.stdio.out.Write(data)
		}
		if err != nil || len(data) == 0 {
			break
		}
	}
	return buf.Get(-1)
}
