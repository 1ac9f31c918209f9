//go:build ppc64 || mips64 || mips || s390x

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bo

import "encoding/binary"

// Native returns the native byte order for known big-endian Go ports.
func Native() binary.ByteOrder { return binary.BigEndian }
