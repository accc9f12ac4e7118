// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos

import (
	"v.io/x/rtos/kerrno"
	"v.io/x/rtos/port"
)

// SigWaitMode selects how a wait's mask is matched against a thread's
// pending signal flags: SigWaitAny is satisfied by any one set bit in
// mask, SigWaitAll requires every bit in mask to be set. A zero mask
// always means "any bit at all", in either mode.
type SigWaitMode int

const (
	SigWaitAny SigWaitMode = iota
	SigWaitAll
)

// SigGetMode selects whether SigGet also clears the bits it reads.
type SigGetMode int

const (
	SigGetPeek SigGetMode = iota
	SigGetClear
)

// SigRaise ORs mask into the thread's pending signal flags and wakes the
// thread; a thread suspended in SigWait re-checks its mask and suspends
// again if it still does not match. It is safe to call from interrupt
// context. mask must be non-zero.
func (t *Thread) SigRaise(mask uint64) (old uint64, err error) {
	if mask == 0 {
		return 0, kerrno.EINVAL
	}
	kernel.Enter()
	old = t.sigMask
	t.sigMask |= mask
	t.wakeupLocked(port.OK)
	kernel.Leave(0)
	return old, nil
}

// SigClear ANDs the complement of mask into the thread's pending signal
// flags. Unlike SigRaise it is not ISR-safe: clearing flags from a handler
// could race a thread's own SigWait re-check in a way a plain raise
// cannot. mask must be non-zero.
func (t *Thread) SigClear(mask uint64) (old uint64, err error) {
	if mask == 0 {
		return 0, kerrno.EINVAL
	}
	if sched.InHandlerMode() {
		return 0, kerrno.EPERM
	}
	kernel.Enter()
	old = t.sigMask
	t.sigMask &^= mask
	kernel.Leave(0)
	return old, nil
}

// SigGet reads the thread's pending signal flags, optionally clearing the
// bits it reports. A zero mask reads/clears the whole mailbox.
func (t *Thread) SigGet(mask uint64, mode SigGetMode) uint64 {
	kernel.Enter()
	defer kernel.Leave(0)
	var v uint64
	if mask == 0 {
		v = t.sigMask
	} else {
		v = t.sigMask & mask
	}
	if mode == SigGetClear {
		if mask == 0 {
			t.sigMask = 0
		} else {
			t.sigMask &^= mask
		}
	}
	return v
}

// sigMatchLocked reports whether the thread's current signal mask
// satisfies mask/mode and, if so, clears the matched bits and returns the
// pre-clear snapshot of the entire mailbox (not just the matched bits).
// Must be called under the kernel critical section.
func (t *Thread) sigMatchLocked(mask uint64, mode SigWaitMode) (snapshot uint64, ok bool) {
	var matched bool
	switch {
	case mask == 0:
		matched = t.sigMask != 0
	case mode == SigWaitAll:
		matched = t.sigMask&mask == mask
	default:
		matched = t.sigMask&mask != 0
	}
	if !matched {
		return 0, false
	}
	snapshot = t.sigMask
	if mask == 0 {
		t.sigMask = 0
	} else {
		t.sigMask &^= mask
	}
	return snapshot, true
}

// SigWait blocks the calling thread until its pending signal flags match
// mask/mode, then clears the matched bits and returns the pre-clear
// mailbox snapshot. It is not callable from interrupt context.
func (t *Thread) SigWait(mask uint64, mode SigWaitMode) (uint64, error) {
	if sched.InHandlerMode() {
		return 0, kerrno.EPERM
	}
	for {
		if t.consumeCancelRequest() {
			return 0, kerrno.EINTR
		}
		kernel.Enter()
		if snap, ok := t.sigMatchLocked(mask, mode); ok {
			kernel.Leave(0)
			return snap, nil
		}
		t.state = Suspended
		kernel.Leave(0)

		t.parkSelf()

		if t.Interrupted() {
			return 0, kerrno.EINTR
		}
	}
}

// TrySigWait is SigWait's non-blocking variant: it returns kerrno.EAGAIN
// immediately instead of suspending when the mask does not yet match.
func (t *Thread) TrySigWait(mask uint64, mode SigWaitMode) (uint64, error) {
	if sched.InHandlerMode() {
		return 0, kerrno.EPERM
	}
	kernel.Enter()
	defer kernel.Leave(0)
	if snap, ok := t.sigMatchLocked(mask, mode); ok {
		return snap, nil
	}
	return 0, kerrno.EAGAIN
}

// TimedSigWait is SigWait bounded by ticks (0 promoted to 1): it returns
// kerrno.ETIMEDOUT if the deadline elapses before the mask matches.
func (t *Thread) TimedSigWait(mask uint64, mode SigWaitMode, ticks uint64) (uint64, error) {
	if sched.InHandlerMode() {
		return 0, kerrno.EPERM
	}
	deadline := deadlineAfterTicks(ticks)
	for {
		if t.consumeCancelRequest() {
			return 0, kerrno.EINTR
		}
		kernel.Enter()
		if snap, ok := t.sigMatchLocked(mask, mode); ok {
			kernel.Leave(0)
			return snap, nil
		}
		t.state = Suspended
		kernel.Leave(0)

		remaining := deadline.Sub(nowTime())
		reason := t.parkSelfWithDeadline(remaining)

		kernel.Enter()
		if t.state == Suspended {
			t.state = Ready
		}
		kernel.Leave(0)

		switch reason {
		case port.Interrupted:
			return 0, kerrno.EINTR
		case port.TimedOut:
			return 0, kerrno.ETIMEDOUT
		}
	}
}
