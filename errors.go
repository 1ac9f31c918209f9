// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

import (
	"errors"

	"code.hybscloud.com/iox"
)

var (
	// ErrInvalidArgument reports an invalid configuration or argument:
	// a zero-length delimiter, a negative byte count, an unknown
	// compression mode, or mixing the deprecated keepends flag with drop.
	ErrInvalidArgument = errors.New("tube: invalid argument")

	// ErrBadDirection reports a direction string outside the legal alias set.
	ErrBadDirection = errors.New("tube: direction must be one of [in out read recv send write], or any for Connected")

	// ErrUploadFailed reports that UploadManually could not observe the
	// shell prompt or end marker within the tube's current deadline.
	ErrUploadFailed = errors.New("tube: upload failed")

	// ErrNotImplemented reports an optional transport capability that the
	// underlying RawTransport does not provide.
	ErrNotImplemented = errors.New("tube: not implemented")
)

// These are provided as package-level aliases so callers and transports can
// reference the semantic control-flow errors without importing iox directly.
var (
	// ErrWouldBlock means “no further progress without waiting”.
	//
	// Transports report an elapsed receive deadline by returning
	// ErrWouldBlock from RecvRaw. The receive engine never surfaces it
	// from a blocking receive: a timeout is an empty result with a nil
	// error. It does surface from the unpack shims (U8..U64, Unpack),
	// where an empty result has no in-band representation.
	ErrWouldBlock = iox.ErrWouldBlock

	// ErrMore means “this completion is usable and more completions will follow”.
	//
	// It is not io.EOF and not “try later”. A transport may attach it to a
	// successful RecvRaw chunk; the receive engine buffers the chunk and
	// keeps reading.
	ErrMore = iox.ErrMore
)
