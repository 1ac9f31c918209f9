// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

import "time"

// RawTransport is the lower layer that actually performs I/O. Concrete
// transports (sockets, processes, remote shells) implement it; the tube
// core consumes it and nothing else.
//
// Contract:
//   - RecvRaw returns up to n bytes. An elapsed deadline is reported as
//     (nil, ErrWouldBlock); a closed stream as (nil, io.EOF). A transport
//     may return a usable chunk together with ErrMore when further
//     completions of the same operation are pending. RecvRaw must respect
//     the most recent SetTimeoutRaw value.
//   - SendRaw sends all of p or reports io.EOF on a closed stream.
//   - SetTimeoutRaw installs the wait budget for the next blocking call:
//     negative means wait forever, zero means a single non-blocking probe.
//   - ShutdownRaw closes one side; it must be idempotent and safe to call
//     once from another goroutine concurrently with reads.
//   - ConnectedRaw reports whether the given side (or, for DirectionAny,
//     either side) is still open.
//   - Close must be idempotent.
type RawTransport interface {
	RecvRaw(n int) ([]byte, error)
	SendRaw(p []byte) error
	SetTimeoutRaw(d time.Duration)
	ShutdownRaw(dir Direction) error
	ConnectedRaw(dir Direction) bool
	Close() error
}

// CanRecvRawTransport is the optional readiness-probe capability.
// Transports that can poll for readable data without consuming it
// implement it; CanRecv reports ErrNotImplemented otherwise.
type CanRecvRawTransport interface {
	CanRecvRaw(d time.Duration) bool
}

// FileTransport is the optional file-descriptor capability, consumed by
// SpawnProcess. Transports without an OS-level descriptor omit it.
type FileTransport interface {
	Fileno() (int, error)
}
