// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

// String-decoding wrappers over the byte-canonical receives. The byte
// forms are preferred; these exist for call sites that go on to compare
// or format text.

// RecvString is Recv returning a string.
func (t *Tube) RecvString(n int, d Deadline) (string, error) {
	b, err := t.Recv(n, d)
	return string(b), err
}

// RecvNString is RecvN returning a string.
func (t *Tube) RecvNString(n int, d Deadline) (string, error) {
	b, err := t.RecvN(n, d)
	return string(b), err
}

// RecvUntilString is RecvUntil returning a string.
func (t *Tube) RecvUntilString(delim string, drop bool, d Deadline) (string, error) {
	b, err := t.RecvUntil([]byte(delim), drop, d)
	return string(b), err
}

// RecvLineString is RecvLine returning a string.
func (t *Tube) RecvLineString(drop bool, d Deadline) (string, error) {
	b, err := t.RecvLine(drop, d)
	return string(b), err
}

// RecvLinesString is RecvLines returning strings.
func (t *Tube) RecvLinesString(numlines int, drop bool, d Deadline) ([]string, error) {
	lines, err := t.RecvLines(numlines, drop, d)
	if lines == nil {
		return nil, err
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = string(line)
	}
	return out, err
}

// RecvAllString is RecvAll returning a string.
func (t *Tube) RecvAllString(d Deadline) string {
	return string(t.RecvAll(d))
}

// RecvRepeatString is RecvRepeat returning a string.
func (t *Tube) RecvRepeatString(d Deadline) string {
	return string(t.RecvRepeat(d))
}

// CleanString is Clean returning a string.
func (t *Tube) CleanString(d Deadline) string {
	return string(t.Clean(d))
}
