// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

// Send forwards data to the raw transport. A closed outgoing side is
// reported as io.EOF. At debug level the payload is hex-dumped.
func (t *Tube) Send(data []byte) error {
	t.debugDump("Sent", data)
	if err := t.tr.SendRaw(data); err != nil {
		return err
	}
	metricsSend(t.id, len(data))
	return nil
}

// SendString is Send for string input.
func (t *Tube) SendString(data string) error { return t.Send([]byte(data)) }

// SendLine sends data followed by the tube's newline.
func (t *Tube) SendLine(data []byte) error {
	line := make([]byte, 0, len(data)+len(t.Newline()))
	line = append(line, data...)
	line = append(line, t.Newline()...)
	return t.Send(line)
}

// SendLineString is SendLine for string input.
func (t *Tube) SendLineString(data string) error { return t.SendLine([]byte(data)) }

// SendLines sends each element as a line, in order.
func (t *Tube) SendLines(lines [][]byte) error {
	for _, line := range lines {
		if err := t.SendLine(line); err != nil {
			return err
		}
	}
	return nil
}

// SendAfter receives until delim under the deadline, then sends data. The
// received prefix is returned; an empty prefix means the delimiter did not
// arrive before the deadline, and data is sent all the same. A receive
// error is returned without sending.
func (t *Tube) SendAfter(delim, data []byte, d Deadline) ([]byte, error) {
	res, err := t.RecvUntil(delim, false, d)
	if err != nil {
		return res, err
	}
	return res, t.Send(data)
}

// SendLineAfter is SendAfter with a trailing newline on data.
func (t *Tube) SendLineAfter(delim, data []byte, d Deadline) ([]byte, error) {
	res, err := t.RecvUntil(delim, false, d)
	if err != nil {
		return res, err
	}
	return res, t.SendLine(data)
}

// SendThen sends data, then receives until delim under the deadline.
func (t *Tube) SendThen(delim, data []byte, d Deadline) ([]byte, error) {
	if err := t.Send(data); err != nil {
		return nil, err
	}
	return t.RecvUntil(delim, false, d)
}

// SendLineThen is SendThen with a trailing newline on data.
func (t *Tube) SendLineThen(delim, data []byte, d Deadline) ([]byte, error) {
	if err := t.SendLine(data); err != nil {
		return nil, err
	}
	return t.RecvUntil(delim, false, d)
}
