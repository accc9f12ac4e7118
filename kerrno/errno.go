// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kerrno defines the POSIX errno values surfaced by the kernel's
// synchronization primitives, plus the synthetic Error priority sentinel
// returned by priority getters that fail.
package kerrno

import (
	"golang.org/x/sys/unix"
)

// Errno is a POSIX errno value returned by a kernel API. It implements
// error so callers can use it directly, or compare it with ==/errors.Is
// against the package-level sentinels below.
type Errno unix.Errno

func (e Errno) Error() string {
	return unix.Errno(e).Error()
}

// Is reports whether e matches target, so callers may use errors.Is(err,
// kerrno.EAGAIN) as well as direct comparison.
func (e Errno) Is(target error) bool {
	o, ok := target.(Errno)
	return ok && o == e
}

// Precondition errors: returned synchronously, no state mutation occurred.
const (
	EPERM    = Errno(unix.EPERM)    // called from handler mode, or by a non-owner
	EINVAL   = Errno(unix.EINVAL)   // bad argument (nil entry, priority none, zero mask, ...)
	EMSGSIZE = Errno(unix.EMSGSIZE) // message queue buffer length is not exactly M bytes
	EDEADLK  = Errno(unix.EDEADLK)  // thread joined itself
)

// Transient error: returned by non-blocking variants when unavailable now.
const EAGAIN = Errno(unix.EAGAIN)

// Interruption error: a blocking call was cancelled before completion.
const EINTR = Errno(unix.EINTR)

// Timeout error: a timed blocking call elapsed before completion.
const ETIMEDOUT = Errno(unix.ETIMEDOUT)

// ESRCH is returned when an operation targets a thread that no longer exists.
const ESRCH = Errno(unix.ESRCH)

// ENOTRECOVERABLE marks an unreachable-loop escape: a bug, not a normal
// outcome of any legal call sequence.
const ENOTRECOVERABLE = Errno(unix.ENOTRECOVERABLE)

// Priority is the scheduling-priority type shared by thread and scheduler;
// it lives here so both can return the synthetic error sentinel below
// without importing one another.
type Priority int32

// Error is the synthetic sentinel returned by priority getters that fail.
// It is never a priority borne by a live thread.
const Error Priority = -1

// None is the reserved "no priority" sentinel; never valid for construction.
const None Priority = 0
