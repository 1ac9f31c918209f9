// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

// defaultFillSize is the canonical chunk size for raw reads.
const defaultFillSize = 4096

// Buffer is an ordered sequence of byte blocks with O(1) append and
// push-back. It backs a single Tube's receive side and is not safe for
// concurrent use; receive calls on a tube must be serialized.
//
// Invariants:
//   - Len() equals the sum of the stored block lengths.
//   - No empty block is ever stored.
//   - Get is the only operation that may split a block.
//
// Blocks are not copied on Add or Unget; the buffer takes ownership of the
// slices it is handed.
type Buffer struct {
	blocks [][]byte
	size   int
}

// Add appends a block to the end of the buffer. No-op on empty input.
func (b *Buffer) Add(block []byte) {
	if len(block) == 0 {
		return
	}
	b.blocks = append(b.blocks, block)
	b.size += len(block)
}

// Unget prepends a block so the next Get sees it first.
func (b *Buffer) Unget(block []byte) {
	if len(block) == 0 {
		return
	}
	b.blocks = append([][]byte{block}, b.blocks...)
	b.size += len(block)
}

// UngetBuffer prepends the entire contents of o, preserving o's order.
// o is drained.
func (b *Buffer) UngetBuffer(o *Buffer) {
	if o.size == 0 {
		return
	}
	b.blocks = append(o.blocks, b.blocks...)
	b.size += o.size
	o.blocks = nil
	o.size = 0
}

// Get removes and returns up to n bytes from the front of the buffer.
// A negative n returns everything buffered. The head block is split when
// n falls inside it; tail blocks are never copied.
func (b *Buffer) Get(n int) []byte {
	if n < 0 || n >= b.size {
		n = b.size
	}
	if n == 0 {
		return nil
	}

	// Fast path: the request is satisfied by the head block alone.
	if head := b.blocks[0]; n <= len(head) {
		if n == len(head) {
			b.blocks = b.blocks[1:]
		} else {
			b.blocks[0] = head[n:]
		}
		b.size -= n
		return head[:n]
	}

	data := make([]byte, 0, n)
	for n > 0 {
		head := b.blocks[0]
		if n < len(head) {
			data = append(data, head[:n]...)
			b.blocks[0] = head[n:]
			b.size -= n
			return data
		}
		data = append(data, head...)
		b.blocks = b.blocks[1:]
		b.size -= len(head)
		n -= len(head)
	}
	return data
}

// Len returns the number of buffered bytes in O(1).
func (b *Buffer) Len() int { return b.size }

// FillSize returns the chunk size to request from the raw transport:
// defaultFillSize, capped by hint when hint is positive.
func (b *Buffer) FillSize(hint int) int {
	if hint > 0 && hint < defaultFillSize {
		return hint
	}
	return defaultFillSize
}
