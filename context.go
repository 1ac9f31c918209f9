// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

import (
	"encoding/binary"

	"github.com/sirupsen/logrus"

	"code.hybscloud.com/tube/internal/bo"
)

// Context carries the process-wide defaults a tube falls back to when it
// has no per-instance override. It is plain data injected at construction
// (WithContext), never ambient mutable state, so tests can supply an
// isolated value.
type Context struct {
	// Newline is the line terminator used when the tube has none of its
	// own. Defaults to "\n".
	Newline []byte

	// Timeout is the deadline applied when both the call site and the
	// tube say Default. Defaults to Forever.
	Timeout Deadline

	// ByteOrder is the byte order for the pack/unpack shims. Defaults to
	// the native order of the host.
	ByteOrder binary.ByteOrder

	// ThrowEOFOnIncompleteLine selects the RecvLine end-of-stream policy.
	// It is deliberately tri-state:
	//   - nil: return the unterminated remainder and warn once
	//   - false: return the unterminated remainder silently
	//   - true: propagate io.EOF
	ThrowEOFOnIncompleteLine *bool

	// Logger is the base logger tubes derive their entries from.
	// Defaults to the logrus standard logger.
	Logger *logrus.Logger
}

// NewContext returns a Context populated with the package defaults.
func NewContext() *Context {
	return &Context{
		Newline:   []byte("\n"),
		Timeout:   Forever,
		ByteOrder: bo.Native(),
		Logger:    logrus.StandardLogger(),
	}
}

// normalize fills zero-valued fields with the package defaults so a
// partially populated Context behaves predictably.
func (c *Context) normalize() *Context {
	if c == nil {
		return NewContext()
	}
	out := *c
	if len(out.Newline) == 0 {
		out.Newline = []byte("\n")
	}
	if out.ByteOrder == nil {
		out.ByteOrder = bo.Native()
	}
	if out.Logger == nil {
		out.Logger = logrus.StandardLogger()
	}
	return &out
}
