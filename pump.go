// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

import "time"

// pumpPollInterval is the receive deadline of one pump iteration; it
// bounds how long a shutdown takes to be observed.
const pumpPollInterval = 50 * time.Millisecond

// ConnectInput connects the input of this tube to the output of other: a
// background goroutine moves everything other receives into this tube's
// send side. The pump is fire-and-forget; it exits when either side
// disconnects, the stream ends, or this tube's countdown expires, and then
// shuts down this tube's send side and other's recv side.
//
// The pump takes over other's receive side; callers must not issue
// receives on other, nor sends on this tube, while the pump runs. Message
// boundaries are not preserved: any batching a reader observes is
// incidental.
func (t *Tube) ConnectInput(other *Tube) {
	go t.pump(other)
}

// ConnectOutput connects the output of this tube to the input of other.
func (t *Tube) ConnectOutput(other *Tube) {
	other.ConnectInput(t)
}

// ConnectBoth cross-connects both directions of the two tubes.
func (t *Tube) ConnectBoth(other *Tube) {
	t.ConnectInput(other)
	t.ConnectOutput(other)
}

func (t *Tube) pump(other *Tube) {
	defer func() {
		_ = t.Shutdown("send")
		_ = other.Shutdown("recv")
	}()

	for t.countdownActive() {
		if !(t.connected(DirectionSend) && other.connected(DirectionRecv)) {
			break
		}

		data, err := other.Recv(0, After(pumpPollInterval))
		if err != nil {
			break
		}
		if len(data) == 0 {
			continue
		}

		if err := t.Send(data); err != nil {
			break
		}
		metricsPump(t.id, len(data))
	}
}
