// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

import (
	"bytes"
	"errors"
	"regexp"
	"time"
)

// Receive discipline, shared by every strategy in this file:
//
//   - Success consumes the returned bytes from the logical stream.
//   - Timeout returns an empty result with a nil error, and every byte the
//     strategy peeled off the buffer is pushed back in original order; the
//     buffer differs from the pre-call state only by data newly read from
//     the transport.
//   - End-of-stream is io.EOF. Strategies that cannot represent a partial
//     result push already-peeled bytes back before reporting it.

// Recv returns the next available chunk of up to n bytes (n <= 0 selects
// the canonical fill size). Buffered data is returned immediately without
// touching the transport; otherwise exactly one raw read runs under the
// deadline. Timeout returns an empty result.
func (t *Tube) Recv(n int, d Deadline) ([]byte, error) {
	restore := t.pushCountdown(d)
	defer restore()
	return t.recvChunk(n)
}

// Unrecv puts data back at the beginning of the receive buffer so the
// next receive sees it first.
func (t *Tube) Unrecv(data []byte) { t.buf.Unget(data) }

// UnrecvString is Unrecv for string input.
func (t *Tube) UnrecvString(data string) { t.Unrecv([]byte(data)) }

// RecvN blocks until exactly n bytes are available and returns them. On
// timeout nothing is consumed: partial data remains buffered for future
// calls and the result is empty. A negative n reports ErrInvalidArgument;
// n == 0 returns an empty result without I/O.
func (t *Tube) RecvN(n int, d Deadline) ([]byte, error) {
	if n < 0 {
		return nil, ErrInvalidArgument
	}
	if n == 0 {
		return nil, nil
	}

	restore := t.pushCountdown(d)
	defer restore()

	for t.countdownActive() && t.buf.Len() < n {
		data, err := t.fill()
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			break
		}
	}
	// A short buffer right at the deadline boundary stays buffered; the
	// partial is never best-effort returned.
	if t.buf.Len() < n {
		return nil, nil
	}
	return t.buf.Get(n), nil
}

// RecvUntil receives data until delim is encountered and returns
// everything up to and including it (excluding it when drop is true).
// Bytes after the match stay buffered. Timeout or end-of-stream push all
// accumulated unmatched bytes back; end-of-stream is then propagated.
func (t *Tube) RecvUntil(delim []byte, drop bool, d Deadline) ([]byte, error) {
	return t.RecvUntilAny([][]byte{delim}, drop, d)
}

// RecvUntilAny is RecvUntil over an ordered list of delimiters. The match
// is the earliest occurrence of any delimiter; ties at the same position
// go to the delimiter listed first. Zero-length delimiters and an empty
// list report ErrInvalidArgument.
func (t *Tube) RecvUntilAny(delims [][]byte, drop bool, d Deadline) ([]byte, error) {
	if len(delims) == 0 {
		return nil, ErrInvalidArgument
	}
	longest := 0
	for _, delim := range delims {
		if len(delim) == 0 {
			return nil, ErrInvalidArgument
		}
		if len(delim) > longest {
			longest = len(delim)
		}
	}

	restore := t.pushCountdown(d)
	defer restore()

	// Settled chunks can no longer contain a match start, except inside
	// the tail window of the last longest+1 bytes kept in top.
	var settled [][]byte
	var top []byte

	giveBack := func() {
		t.buf.Unget(top)
		for i := len(settled) - 1; i >= 0; i-- {
			t.buf.Unget(settled[i])
		}
	}

	for t.countdownActive() {
		res, err := t.recvChunk(0)
		if err != nil {
			giveBack()
			return nil, err
		}
		if len(res) == 0 {
			giveBack()
			return nil, nil
		}

		top = append(top, res...)
		start, end := len(top), 0
		for _, delim := range delims {
			if j := bytes.Index(top, delim); j > -1 && j < start {
				start = j
				end = j + len(delim)
			}
		}
		if start < len(top) {
			t.buf.Unget(top[end:])
			if drop {
				top = top[:start]
			} else {
				top = top[:end]
			}
			settled = append(settled, top)
			return bytes.Join(settled, nil), nil
		}
		if len(top) > longest {
			cut := len(top) - longest - 1
			settled = append(settled, top[:cut:cut])
			top = top[cut:]
		}
	}

	giveBack()
	return nil, nil
}

// RecvPred receives one byte at a time until pred over the accumulated
// bytes is true. Timeout and end-of-stream both push the accumulation back
// and return an empty result.
func (t *Tube) RecvPred(pred func([]byte) bool, d Deadline) ([]byte, error) {
	restore := t.pushCountdown(d)
	defer restore()

	var data []byte
	for !pred(data) {
		if !t.countdownActive() {
			t.Unrecv(data)
			return nil, nil
		}
		res, err := t.recvChunk(1)
		if err != nil || len(res) == 0 {
			t.Unrecv(data)
			return nil, nil
		}
		data = append(data, res...)
	}
	return data, nil
}

// RecvRegex receives data until re matches the accumulated bytes and
// returns them. With exact the match must start at the first byte
// (analogous to an anchored match); otherwise any position matches.
func (t *Tube) RecvRegex(re *regexp.Regexp, exact bool, d Deadline) ([]byte, error) {
	return t.RecvPred(regexPred(re, exact), d)
}

// RecvRegexCapture is RecvRegex returning the submatches of re over the
// received bytes: element 0 is the whole match, the rest are capture
// groups. An empty receive (timeout) returns a nil slice.
func (t *Tube) RecvRegexCapture(re *regexp.Regexp, exact bool, d Deadline) ([][]byte, error) {
	data, err := t.RecvPred(regexPred(re, exact), d)
	if err != nil || len(data) == 0 {
		return nil, err
	}
	return re.FindSubmatch(data), nil
}

func regexPred(re *regexp.Regexp, exact bool) func([]byte) bool {
	if !exact {
		return re.Match
	}
	return func(data []byte) bool {
		loc := re.FindIndex(data)
		return loc != nil && loc[0] == 0
	}
}

// RecvRepeat receives until a fill times out or the stream ends, then
// returns everything buffered. End-of-stream is absorbed.
func (t *Tube) RecvRepeat(d Deadline) []byte {
	restore := t.pushCountdown(d)
	defer restore()

	for {
		data, err := t.fill()
		if err != nil || len(data) == 0 {
			break
		}
	}
	return t.buf.Get(-1)
}

// RecvAll receives until end-of-stream, closes the tube, and returns
// everything received. Progress is reported through the tube's logger.
func (t *Tube) RecvAll(d Deadline) []byte {
	if d.IsDefault() {
		d = Forever
	}
	restore := t.pushCountdown(d)
	defer restore()

	t.log.Info("Receiving all data")
	for t.countdownActive() {
		data, err := t.fill()
		if err != nil || len(data) == 0 {
			break
		}
		if t.debugEnabled() {
			t.log.Debugf("Receiving all data: %d bytes so far", t.buf.Len())
		}
	}
	t.log.Infof("Receiving all data: done (%d bytes)", t.buf.Len())
	_ = t.Close()

	return t.buf.Get(-1)
}

// CanRecv reports whether data is available within d: true when the
// buffer is non-empty, otherwise the transport's readiness probe decides.
// Transports without the probe capability report ErrNotImplemented.
func (t *Tube) CanRecv(d Deadline) (bool, error) {
	if t.buf.Len() > 0 {
		return true, nil
	}
	probe, ok := t.tr.(CanRecvRawTransport)
	if !ok {
		return false, ErrNotImplemented
	}
	wait := time.Duration(0)
	if dur, finite := t.resolveDeadline(d).Duration(); finite {
		wait = dur
	} else {
		wait = -1
	}
	return probe.CanRecvRaw(wait), nil
}

// Clean drains buffered data from the tube. A zero deadline clears the
// internal buffer only, without touching the transport; anything else
// behaves as RecvRepeat under that deadline.
func (t *Tube) Clean(d Deadline) []byte {
	if dur, finite := d.Duration(); finite && dur == 0 {
		return t.buf.Get(-1)
	}
	return t.RecvRepeat(d)
}

// CleanAndLog is Clean that also hex-dumps the drained data at debug
// level, including data that was already cached before the call.
func (t *Tube) CleanAndLog(d Deadline) []byte {
	data := t.Clean(d)
	t.debugDump("Cleaned", data)
	return data
}

// fill performs one raw read under the active countdown. The received
// chunk is buffered and returned; a timeout returns an empty chunk with a
// nil error; end-of-stream returns io.EOF.
func (t *Tube) fill() ([]byte, error) {
	t.applyTransportTimeout()
	data, err := t.tr.RecvRaw(t.buf.FillSize(0))
	if len(data) > 0 {
		t.debugDump("Received", data)
		t.buf.Add(data)
		metricsRecv(t.id, len(data))
	}
	if err != nil {
		if errors.Is(err, ErrWouldBlock) || errors.Is(err, ErrMore) {
			return data, nil
		}
		return nil, err
	}
	return data, nil
}

// recvChunk returns one chunk of up to n bytes under the active
// countdown: buffered data first, else the result of a single fill.
func (t *Tube) recvChunk(n int) ([]byte, error) {
	n = t.buf.FillSize(n)
	if t.buf.Len() == 0 {
		data, err := t.fill()
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			return nil, nil
		}
	}
	return t.buf.Get(n), nil
}
