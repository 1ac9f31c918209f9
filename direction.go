// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

// Direction selects one side of a full-duplex tube.
type Direction uint8

const (
	// DirectionAny matches either side; legal for Connected only.
	DirectionAny Direction = iota

	// DirectionRecv is the ingoing side.
	DirectionRecv

	// DirectionSend is the outgoing side.
	DirectionSend
)

// String returns the canonical direction name.
func (d Direction) String() string {
	switch d {
	case DirectionRecv:
		return "recv"
	case DirectionSend:
		return "send"
	default:
		return "any"
	}
}

// shutdownDirections normalizes the legal direction aliases for Shutdown.
var shutdownDirections = map[string]Direction{
	"in":    DirectionRecv,
	"read":  DirectionRecv,
	"recv":  DirectionRecv,
	"out":   DirectionSend,
	"write": DirectionSend,
	"send":  DirectionSend,
}

// parseShutdownDirection maps a direction alias to its canonical Direction.
// "any" is not legal for shutdown.
func parseShutdownDirection(dir string) (Direction, error) {
	d, ok := shutdownDirections[dir]
	if !ok {
		return DirectionAny, ErrBadDirection
	}
	return d, nil
}

// parseConnectedDirection is parseShutdownDirection plus the "any" alias.
func parseConnectedDirection(dir string) (Direction, error) {
	if dir == "any" {
		return DirectionAny, nil
	}
	return parseShutdownDirection(dir)
}
