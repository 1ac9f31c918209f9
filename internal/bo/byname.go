// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bo

import "encoding/binary"

// ByName maps an endianness name to a byte order. Recognized names are
// "little", "big", and "native"; anything else returns (nil, false).
func ByName(name string) (binary.ByteOrder, bool) {
	switch name {
	case "little":
		return binary.LittleEndian, true
	case "big":
		return binary.BigEndian, true
	case "native":
		return Native(), true
	default:
		return nil, false
	}
}
