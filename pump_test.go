// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube_test

import (
	"bytes"
	"testing"
	"time"

	"code.hybscloud.com/tube"
)

// blockThenFeed blocks (would-block) until data is primed, then feeds it
// followed by the configured tail.
type blockThenFeed struct {
	scriptTransport
}

func newBlockingSource() *blockThenFeed {
	b := &blockThenFeed{}
	b.tail = tube.ErrWouldBlock
	b.timeout = -1
	return b
}

func (b *blockThenFeed) prime(data []byte) {
	b.mu.Lock()
	b.steps = append(b.steps, scriptStep{b: data})
	b.mu.Unlock()
}

func TestConnectInput_MovesBytes(t *testing.T) {
	src := newBlockingSource()
	dst := feeds()

	a := newTestTube(src) // the tube being read
	b := newTestTube(dst) // the tube being written
	defer a.Close()
	defer b.Close()

	b.ConnectInput(a)
	src.prime([]byte("data"))

	waitFor(t, time.Second, func() bool {
		return bytes.Equal(dst.sentBytes(), []byte("data"))
	})
}

func TestConnectOutput_IsTheMirror(t *testing.T) {
	src := newBlockingSource()
	dst := feeds()

	a := newTestTube(src)
	b := newTestTube(dst)
	defer a.Close()
	defer b.Close()

	a.ConnectOutput(b)
	src.prime([]byte("mirrored"))

	waitFor(t, time.Second, func() bool {
		return bytes.Equal(dst.sentBytes(), []byte("mirrored"))
	})
}

func TestPump_EOFShutsDownBothSides(t *testing.T) {
	src := feeds([]byte("last words"))
	dst := feeds()

	a := newTestTube(src)
	b := newTestTube(dst)
	defer a.Close()
	defer b.Close()

	b.ConnectInput(a)

	waitFor(t, time.Second, func() bool {
		return bytes.Equal(dst.sentBytes(), []byte("last words"))
	})
	// After the EOF the pump must shut down b's send and a's recv.
	waitFor(t, time.Second, func() bool {
		src.mu.Lock()
		recvDown := src.recvClosed
		src.mu.Unlock()
		dst.mu.Lock()
		sendDown := dst.sendClosed
		dst.mu.Unlock()
		return recvDown && sendDown
	})
}

func TestPump_ShutdownTerminatesWithinPollInterval(t *testing.T) {
	src := newBlockingSource()
	dst := feeds()

	a := newTestTube(src)
	b := newTestTube(dst)
	defer a.Close()
	defer b.Close()

	b.ConnectInput(a)
	src.prime([]byte("data"))
	waitFor(t, time.Second, func() bool {
		return bytes.Equal(dst.sentBytes(), []byte("data"))
	})

	// Closing the source's recv side stops the pump within one polling
	// interval, which then propagates shutdown to the peer.
	if err := a.Shutdown("recv"); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	waitFor(t, 200*time.Millisecond, func() bool {
		dst.mu.Lock()
		defer dst.mu.Unlock()
		return dst.sendClosed
	})
}

func TestConnectBoth_FullDuplex(t *testing.T) {
	srcA := newBlockingSource()
	srcB := newBlockingSource()

	a := newTestTube(srcA)
	b := newTestTube(srcB)
	defer a.Close()
	defer b.Close()

	a.ConnectBoth(b)
	srcA.prime([]byte("a to b"))
	srcB.prime([]byte("b to a"))

	waitFor(t, time.Second, func() bool {
		return bytes.Equal(srcB.sentBytes(), []byte("a to b")) &&
			bytes.Equal(srcA.sentBytes(), []byte("b to a"))
	})
}

func waitFor(t *testing.T, limit time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(limit)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached within %v", limit)
}
