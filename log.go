// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

import (
	"encoding/hex"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// newTubeLogger derives this tube's log entry: the Context logger plus a
// unique tube id field. A per-tube level override clones the logger so the
// shared one is untouched.
func newTubeLogger(ctx *Context, level *logrus.Level) (string, *logrus.Entry) {
	id := xid.New().String()
	base := ctx.Logger
	if level != nil {
		clone := logrus.New()
		clone.SetOutput(base.Out)
		clone.SetFormatter(base.Formatter)
		clone.SetLevel(*level)
		base = clone
	}
	return id, base.WithField("tube", id)
}

// debugEnabled gates the hex-dump paths: hex.Dump allocates, so callers
// must check before formatting.
func (t *Tube) debugEnabled() bool {
	return t.log.Logger.IsLevelEnabled(logrus.DebugLevel)
}

// debugDump logs a transfer at debug level with a hex dump of the payload.
func (t *Tube) debugDump(verb string, data []byte) {
	if !t.debugEnabled() || len(data) == 0 {
		return
	}
	t.log.Debugf("%s %#x bytes:\n%s", verb, len(data), hex.Dump(data))
}

// warnOnce emits msg at warn level at most once per tube.
func (t *Tube) warnOnce(msg string) {
	t.warnedMu.Lock()
	_, seen := t.warned[msg]
	if !seen {
		t.warned[msg] = struct{}{}
	}
	t.warnedMu.Unlock()
	if !seen {
		t.log.Warn(msg)
	}
}
