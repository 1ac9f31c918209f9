// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

import (
	"bytes"
	"errors"
	"io"
	"regexp"
)

// RecvLine receives a single line: everything up to and including the
// tube's newline (the terminator is removed when drop is true).
//
// End-of-stream policy: if the stream ends while unterminated bytes are
// buffered, Context.ThrowEOFOnIncompleteLine decides. Unset (nil) returns
// the remainder and warns once; false returns it silently; true propagates
// io.EOF. This is the only receive that may return a partial,
// unterminated result at end-of-stream.
func (t *Tube) RecvLine(drop bool, d Deadline) ([]byte, error) {
	data, err := t.RecvUntil(t.Newline(), drop, d)
	if errors.Is(err, io.EOF) {
		policy := t.ctx.ThrowEOFOnIncompleteLine
		if (policy == nil || !*policy) && t.buf.Len() > 0 {
			if policy == nil {
				t.warnOnce("EOF during RecvLine. Returning buffered data without trailing newline.")
			}
			return t.buf.Get(-1), nil
		}
	}
	return data, err
}

// RecvLines receives up to numlines lines under one shared deadline. With
// drop, one trailing newline is stripped from each element. Any
// intermediate end-of-stream terminates the loop and returns the lines
// collected so far; a timeout pushes the collected lines back (joined as
// raw bytes) and returns an empty list.
func (t *Tube) RecvLines(numlines int, drop bool, d Deadline) ([][]byte, error) {
	if numlines <= 0 {
		numlines = 1 << 20
	}
	restore := t.pushCountdown(d)
	defer restore()

	var lines [][]byte
	ended := false
	for i := 0; i < numlines && t.countdownActive(); i++ {
		// Endings are kept here so a timeout can restore the stream
		// unmodified.
		res, err := t.RecvLine(false, d)
		if err != nil {
			ended = true
			break
		}
		if len(res) == 0 {
			t.Unrecv(bytes.Join(lines, nil))
			return nil, nil
		}
		lines = append(lines, res)
	}
	// The countdown ran out before numlines lines arrived: also a timeout.
	if !ended && len(lines) < numlines {
		t.Unrecv(bytes.Join(lines, nil))
		return nil, nil
	}

	if drop {
		newline := t.Newline()
		for i, line := range lines {
			lines[i] = bytes.TrimSuffix(line, newline)
		}
	}
	return lines, nil
}

// RecvLinePred receives lines until pred over a whole raw line (ending
// included) is true and returns that line, optionally with the ending
// dropped. Non-matching lines accumulate in a scratch buffer and are
// pushed back in original order on timeout or end-of-stream, which both
// return an empty result.
func (t *Tube) RecvLinePred(pred func([]byte) bool, drop bool, d Deadline) ([]byte, error) {
	restore := t.pushCountdown(d)
	defer restore()

	var scratch Buffer
	for t.countdownActive() {
		line, err := t.RecvLine(false, d)
		if err != nil || len(line) == 0 {
			t.buf.UngetBuffer(&scratch)
			return nil, nil
		}
		if pred(line) {
			if drop {
				line = bytes.TrimSuffix(line, t.Newline())
			}
			return line, nil
		}
		scratch.Add(line)
	}

	t.buf.UngetBuffer(&scratch)
	return nil, nil
}

// RecvLineContains receives lines until one contains any of items.
func (t *Tube) RecvLineContains(items [][]byte, drop bool, d Deadline) ([]byte, error) {
	return t.RecvLinePred(func(line []byte) bool {
		for _, item := range items {
			if bytes.Contains(line, item) {
				return true
			}
		}
		return false
	}, drop, d)
}

// RecvLineStartsWith receives lines until one starts with any of
// prefixes. The raw line, terminator included, is tested.
func (t *Tube) RecvLineStartsWith(prefixes [][]byte, drop bool, d Deadline) ([]byte, error) {
	return t.RecvLinePred(func(line []byte) bool {
		for _, prefix := range prefixes {
			if bytes.HasPrefix(line, prefix) {
				return true
			}
		}
		return false
	}, drop, d)
}

// RecvLineEndsWith receives lines until one ends with any of suffixes
// immediately before the line terminator.
func (t *Tube) RecvLineEndsWith(suffixes [][]byte, drop bool, d Deadline) ([]byte, error) {
	newline := t.Newline()
	terminated := make([][]byte, len(suffixes))
	for i, suffix := range suffixes {
		terminated[i] = append(append([]byte(nil), suffix...), newline...)
	}
	return t.RecvLinePred(func(line []byte) bool {
		for _, suffix := range terminated {
			if bytes.HasSuffix(line, suffix) {
				return true
			}
		}
		return false
	}, drop, d)
}

// RecvLineRegex receives lines until re matches one. With exact the match
// must start at the first byte of the line.
func (t *Tube) RecvLineRegex(re *regexp.Regexp, exact bool, drop bool, d Deadline) ([]byte, error) {
	return t.RecvLinePred(regexPred(re, exact), drop, d)
}

// NormalizeKeependsDrop is the compatibility shim for callers migrating
// from keepends-style line APIs: keepends is deprecated and inverted into
// drop. Passing both reports ErrInvalidArgument; passing neither selects
// dropDefault. The deprecation is logged once per tube.
func (t *Tube) NormalizeKeependsDrop(keepends, drop *bool, dropDefault bool) (bool, error) {
	if keepends != nil {
		t.warnOnce("'keepends' argument is deprecated. Use 'drop' instead.")
	}
	switch {
	case drop == nil && keepends == nil:
		return dropDefault, nil
	case drop != nil && keepends != nil:
		return false, ErrInvalidArgument
	case drop != nil:
		return *drop, nil
	default:
		return !*keepends, nil
	}
}
