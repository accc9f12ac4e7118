// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rtos implements the kernel's concurrency and synchronization
// substrate: the critical section, the intrusive wait-list/guard pair, the
// thread object with its lifecycle and signal-flag mailbox, the priority
// scheduler, and the priority-ordered message queue built on top of them.
// The low-level context-switch/interrupt-entry port layer, the hardware
// tick source, and tracing/CLI/build configuration are external
// collaborators, named via package port.
//
// Every mutation of shared kernel state -- the ready queue, wait lists, a
// thread's signal mask or lifecycle state, a message queue's ring or free
// list -- happens while the package's single critical section is held, and
// no kernel call blocks while holding it. This mirrors the spinlock-protected
// waiter queues in nsync-style lock implementations, generalized from a
// single Mu/CV's private spinlock to one kernel-wide section, the way a
// uniprocessor RTOS has exactly one interrupt mask rather than one per
// object.
package rtos

import (
	"runtime"
	"sync/atomic"

	"v.io/x/rtos/port"
)

// CriticalSection is the kernel's interrupt-mask-equivalent lock. On real
// hardware, Enter/Leave disable and restore interrupts; here, where
// multiple goroutines may genuinely run in parallel, Enter/Leave serialize
// access to kernel state with a CAS spinlock, spinning with backoff in the
// same shape as nsync's spinTestAndSet/spinDelay. Enter/Leave pairs must
// not nest within a single call chain: every kernel operation that needs to
// block releases the section first, so nesting never arises in this
// package's own code.
type CriticalSection struct {
	held uint32
}

// kernel is the one critical section guarding all kernel state.
var kernel CriticalSection

var _ port.Interrupts = (*CriticalSection)(nil)

// Enter acquires the section, returning an opaque previous-state token for
// symmetry with the port.Interrupts contract; the portable implementation
// has no separate interrupt mask to save, so the token is always zero.
func (c *CriticalSection) Enter() (prev uint32) {
	var attempts uint
	for !atomic.CompareAndSwapUint32(&c.held, 0, 1) {
		attempts = spinDelay(attempts)
	}
	return 0
}

// Leave releases the section. It panics if the section was not held: that
// is always a kernel bug, never a legal caller outcome.
func (c *CriticalSection) Leave(prev uint32) {
	if !atomic.CompareAndSwapUint32(&c.held, 1, 0) {
		panic("rtos: critical section released while not held")
	}
}

// spinDelay backs a short CAS retry loop off to runtime.Gosched once it has
// spun a few times, exactly as nsync/common.go's spinDelay does.
func spinDelay(attempts uint) uint {
	if attempts < 7 {
		for i := 0; i != 1<<attempts; i++ {
		}
		attempts++
	} else {
		runtime.Gosched()
	}
	return attempts
}
