// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

// Packing shims: fixed-width integers serialized with the tube's byte
// order (WithByteOrder / Context.ByteOrder, native by default) and sent,
// or received with RecvN and decoded. The unpack shims report
// ErrWouldBlock when the width could not be received before the deadline,
// since a zero value has no out-of-band representation.

// P8 sends v as one byte.
func (t *Tube) P8(v uint8) error { return t.Send([]byte{v}) }

// P16 sends v in the tube's byte order.
func (t *Tube) P16(v uint16) error {
	var b [2]byte
	t.border.PutUint16(b[:], v)
	return t.Send(b[:])
}

// P32 sends v in the tube's byte order.
func (t *Tube) P32(v uint32) error {
	var b [4]byte
	t.border.PutUint32(b[:], v)
	return t.Send(b[:])
}

// P64 sends v in the tube's byte order.
func (t *Tube) P64(v uint64) error {
	var b [8]byte
	t.border.PutUint64(b[:], v)
	return t.Send(b[:])
}

// Pack sends the low bits/8 bytes of v in the tube's byte order. bits
// must be 8, 16, 32 or 64.
func (t *Tube) Pack(v uint64, bits int) error {
	switch bits {
	case 8:
		return t.P8(uint8(v))
	case 16:
		return t.P16(uint16(v))
	case 32:
		return t.P32(uint32(v))
	case 64:
		return t.P64(v)
	default:
		return ErrInvalidArgument
	}
}

// U8 receives one byte.
func (t *Tube) U8(d Deadline) (uint8, error) {
	b, err := t.recvWidth(1, d)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 receives two bytes and decodes them in the tube's byte order.
func (t *Tube) U16(d Deadline) (uint16, error) {
	b, err := t.recvWidth(2, d)
	if err != nil {
		return 0, err
	}
	return t.border.Uint16(b), nil
}

// U32 receives four bytes and decodes them in the tube's byte order.
func (t *Tube) U32(d Deadline) (uint32, error) {
	b, err := t.recvWidth(4, d)
	if err != nil {
		return 0, err
	}
	return t.border.Uint32(b), nil
}

// U64 receives eight bytes and decodes them in the tube's byte order.
func (t *Tube) U64(d Deadline) (uint64, error) {
	b, err := t.recvWidth(8, d)
	if err != nil {
		return 0, err
	}
	return t.border.Uint64(b), nil
}

// Unpack receives bits/8 bytes and decodes them in the tube's byte order.
func (t *Tube) Unpack(bits int, d Deadline) (uint64, error) {
	switch bits {
	case 8:
		v, err := t.U8(d)
		return uint64(v), err
	case 16:
		v, err := t.U16(d)
		return uint64(v), err
	case 32:
		v, err := t.U32(d)
		return uint64(v), err
	case 64:
		return t.U64(d)
	default:
		return 0, ErrInvalidArgument
	}
}

func (t *Tube) recvWidth(n int, d Deadline) ([]byte, error) {
	b, err := t.RecvN(n, d)
	if err != nil {
		return nil, err
	}
	if len(b) < n {
		return nil, ErrWouldBlock
	}
	return b, nil
}

// Flat concatenates the pieces and sends them as one payload.
func (t *Tube) Flat(pieces ...[]byte) error {
	total := 0
	for _, p := range pieces {
		total += len(p)
	}
	data := make([]byte, 0, total)
	for _, p := range pieces {
		data = append(data, p...)
	}
	return t.Send(data)
}

// Fit builds a payload where each piece lands at its offset, padding gaps
// with filler, then sends it. Overlapping pieces report
// ErrInvalidArgument.
func (t *Tube) Fit(pieces map[int][]byte, filler byte) error {
	end := 0
	for off, p := range pieces {
		if off < 0 {
			return ErrInvalidArgument
		}
		if off+len(p) > end {
			end = off + len(p)
		}
	}
	data := make([]byte, end)
	for i := range data {
		data[i] = filler
	}
	used := make([]bool, end)
	for off, p := range pieces {
		for i, b := range p {
			if used[off+i] {
				return ErrInvalidArgument
			}
			used[off+i] = true
			data[off+i] = b
		}
	}
	return t.Send(data)
}
