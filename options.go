// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

import (
	"encoding/binary"
	"io"

	"github.com/sirupsen/logrus"

	"code.hybscloud.com/tube/internal/bo"
)

// ReadLiner is the external readline collaborator used by Interactive when
// a rich terminal mode is active: one call returns one complete line,
// including its trailing "\n".
type ReadLiner interface {
	ReadLine() ([]byte, error)
}

// Options configures a Tube at construction.
type Options struct {
	// Context supplies the process-wide defaults. Nil means the package
	// defaults.
	Context *Context

	// Newline overrides the Context newline for this tube. Empty means
	// inherit.
	Newline []byte

	// Timeout is the tube's default deadline for blocking operations.
	Timeout Deadline

	// ByteOrder overrides the Context byte order for the pack/unpack
	// shims.
	ByteOrder binary.ByteOrder

	// Stdin and Stdout are the local endpoints used by Interactive and
	// Stream. They default to the process standard streams.
	Stdin  io.Reader
	Stdout io.Writer

	// ReadLiner, when set, switches Interactive to line-at-a-time input.
	ReadLiner ReadLiner

	// LogLevel, when set, overrides the level of this tube's logger.
	LogLevel *logrus.Level
}

var defaultOptions = Options{}

// Option mutates Options.
type Option func(*Options)

// WithContext injects an isolated Context (process-wide defaults).
func WithContext(ctx *Context) Option {
	return func(o *Options) { o.Context = ctx }
}

// WithNewline sets the per-tube line terminator.
func WithNewline(newline []byte) Option {
	return func(o *Options) { o.Newline = append([]byte(nil), newline...) }
}

// WithNewlineString is WithNewline for string input.
func WithNewlineString(newline string) Option {
	return func(o *Options) { o.Newline = []byte(newline) }
}

// WithTimeout sets the tube's default deadline.
func WithTimeout(d Deadline) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithByteOrder sets the byte order used by the pack/unpack shims.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *Options) { o.ByteOrder = order }
}

// WithByteOrderName is WithByteOrder keyed by name: "little", "big" or
// "native". Unknown names are ignored and leave the default in place.
func WithByteOrderName(name string) Option {
	return func(o *Options) {
		if order, ok := bo.ByName(name); ok {
			o.ByteOrder = order
		}
	}
}

// WithStdio redirects the local endpoints used by Interactive and Stream.
func WithStdio(in io.Reader, out io.Writer) Option {
	return func(o *Options) {
		o.Stdin = in
		o.Stdout = out
	}
}

// WithReadLiner installs the rich-terminal readline collaborator.
func WithReadLiner(rl ReadLiner) Option {
	return func(o *Options) { o.ReadLiner = rl }
}

// WithLogLevel overrides the log level of this tube's logger.
func WithLogLevel(level logrus.Level) Option {
	return func(o *Options) { o.LogLevel = &level }
}
