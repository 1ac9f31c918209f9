//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

import "io"

// isTerminal always reports false on ports without termios support;
// separator rewriting is then skipped.
func isTerminal(io.Reader) bool { return false }
