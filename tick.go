// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos

import (
	"time"

	"v.io/x/rtos/port"
)

// TickDuration is the wall-clock width of one tick. It is a package
// variable rather than a constant so a native port can tighten or loosen
// it to match a real hardware tick source; the portable default of one
// millisecond keeps tick-based timeouts convenient to express in tests.
var TickDuration = time.Millisecond

// TickClock is the monotonic tick source: Now reports an ever-increasing
// tick count, and SleepFor/WaitFor block the calling thread for a tick
// duration, with ticks == 0 always promoted to 1. It is grounded on
// nsync's binarySemaphore.PWithDeadline, generalized from a single
// semaphore's deadline wait to the tick-duration wait every thread's
// suspend point can use.
type TickClock struct{}

var _ port.Clock = TickClock{}

var tickEpoch = time.Now()

// Now returns the number of ticks elapsed since the clock's epoch.
func (TickClock) Now() uint64 {
	return uint64(time.Since(tickEpoch) / TickDuration)
}

// Now is the package-level convenience wrapping the default TickClock.
func Now() uint64 { return TickClock{}.Now() }

func ticksToDuration(ticks uint64) time.Duration {
	if ticks == 0 {
		ticks = 1
	}
	return time.Duration(ticks) * TickDuration
}

// nowTime is time.Now, named so deadline bookkeeping reads as clock-
// relative rather than suggesting it reports ticks.
func nowTime() time.Time { return time.Now() }

// deadlineAfterTicks converts a tick-denominated timeout (0 promoted to
// 1) into a wall-clock deadline, used by the bounded wait variants
// (TimedSigWait, MessageQueue's TimedSend/TimedReceive).
func deadlineAfterTicks(ticks uint64) time.Time {
	return nowTime().Add(ticksToDuration(ticks))
}

// SleepFor blocks the calling thread for at least the given number of
// ticks and cannot be woken early: it is an unconditional sleep, distinct
// from WaitFor's interruptible wait.
func (TickClock) SleepFor(ticks uint64) port.Reason {
	time.Sleep(ticksToDuration(ticks))
	return port.OK
}

// SleepFor is the package-level convenience wrapping the default
// TickClock.
func SleepFor(ticks uint64) port.Reason { return TickClock{}.SleepFor(ticks) }

// WaitFor blocks the calling thread until the given number of ticks
// elapse or it is woken by Wakeup/WakeupInterrupted/Cancel, whichever
// comes first. It is only meaningful when called from a kernel thread;
// called from any other context it degrades to an uninterruptible sleep,
// since there is no Thread to park.
func (c TickClock) WaitFor(ticks uint64) port.Reason {
	self := sched.Current()
	if self == nil {
		return c.SleepFor(ticks)
	}
	if self.consumeCancelRequest() {
		return port.Interrupted
	}
	kernel.Enter()
	self.state = Suspended
	kernel.Leave(0)

	reason := self.parkSelfWithDeadline(ticksToDuration(ticks))

	kernel.Enter()
	if self.state == Suspended {
		self.state = Ready
	}
	kernel.Leave(0)
	return reason
}

// WaitFor is the package-level convenience wrapping the default
// TickClock.
func WaitFor(ticks uint64) port.Reason { return TickClock{}.WaitFor(ticks) }
