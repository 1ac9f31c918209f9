// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

import "time"

// Deadline bounds how long a blocking tube operation may wait.
//
// A Deadline is one of three kinds:
//   - Default: use the tube's configured timeout (which in turn falls back
//     to the Context-wide timeout).
//   - Forever: never give up.
//   - After(d): give up once d has elapsed.
//
// The zero value is Default.
type Deadline struct {
	kind deadlineKind
	d    time.Duration
}

type deadlineKind uint8

const (
	deadlineDefault deadlineKind = iota
	deadlineForever
	deadlineFinite
)

var (
	// Default defers to the tube's configured timeout.
	Default = Deadline{kind: deadlineDefault}

	// Forever never expires.
	Forever = Deadline{kind: deadlineForever}
)

// After returns a finite deadline of d. Negative durations clamp to zero,
// which makes every suspension point a single non-blocking probe.
func After(d time.Duration) Deadline {
	if d < 0 {
		d = 0
	}
	return Deadline{kind: deadlineFinite, d: d}
}

// IsDefault reports whether d defers to the configured timeout.
func (d Deadline) IsDefault() bool { return d.kind == deadlineDefault }

// IsForever reports whether d never expires.
func (d Deadline) IsForever() bool { return d.kind == deadlineForever }

// Duration returns the finite budget and true, or (0, false) for the
// Default and Forever kinds.
func (d Deadline) Duration() (time.Duration, bool) {
	if d.kind != deadlineFinite {
		return 0, false
	}
	return d.d, true
}

// countdown is the scoped deadline state of one tube. A zero stop time
// means unbounded.
type countdown struct {
	stop time.Time
}

// resolveDeadline maps Default through the tube and context timeouts to a
// concrete finite-or-forever deadline.
func (t *Tube) resolveDeadline(d Deadline) Deadline {
	if d.IsDefault() {
		d = t.timeout
	}
	if d.IsDefault() {
		d = t.ctx.Timeout
	}
	if d.IsDefault() {
		d = Forever
	}
	return d
}

// pushCountdown enters a scoped countdown of d, clamped by any countdown
// already active, and returns the restore function. Callers must invoke the
// restore on every exit path:
//
//	restore := t.pushCountdown(d)
//	defer restore()
func (t *Tube) pushCountdown(d Deadline) (restore func()) {
	prev := t.ctd
	next := prev
	if dur, finite := t.resolveDeadline(d).Duration(); finite {
		stop := time.Now().Add(dur)
		if next.stop.IsZero() || stop.Before(next.stop) {
			next.stop = stop
		}
	}
	t.ctd = next
	return func() { t.ctd = prev }
}

// countdownActive reports whether the active countdown still has budget.
// True when no countdown bound is set.
func (t *Tube) countdownActive() bool {
	return t.ctd.stop.IsZero() || time.Now().Before(t.ctd.stop)
}

// remaining returns the budget left in the active countdown. forever is
// true when no bound is set; an expired countdown returns (0, false).
func (t *Tube) remaining() (d time.Duration, forever bool) {
	if t.ctd.stop.IsZero() {
		return 0, true
	}
	d = time.Until(t.ctd.stop)
	if d < 0 {
		d = 0
	}
	return d, false
}
