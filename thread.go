// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"v.io/x/rtos/kerrno"
	"v.io/x/rtos/klog"
	"v.io/x/rtos/port"
)

// State is a Thread's position in its lifecycle state machine.
type State int

const (
	Inactive State = iota
	Ready
	Running
	Suspended
	Terminated
	Destroyed
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Suspended:
		return "suspended"
	case Terminated:
		return "terminated"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Priority is a thread's scheduling priority. PriorityNone is reserved and
// never borne by a live thread; PriorityIdle is one level below the lowest
// normal priority and is reserved for the scheduler's reaper thread.
type Priority = kerrno.Priority

const (
	PriorityNone    Priority = kerrno.None
	PriorityIdle    Priority = 1
	PriorityLowest  Priority = 2
	PriorityHighest Priority = 255
)

// EntryFunc is a thread's entry point: it receives the opaque argument
// supplied at construction and returns the opaque exit value a joiner will
// observe.
type EntryFunc func(arg interface{}) interface{}

// StackSpec describes the stack a Thread runs on: either caller-provided
// (AddressHint/SizeBytes both set) or, when AddressHint is nil, allocated
// at construction. A zero SizeBytes is replaced by a 4096-byte default.
type StackSpec struct {
	AddressHint []byte
	SizeBytes   int
}

// Thread is the kernel's schedulable unit: identity, priority, lifecycle
// state, a signal-flag mailbox, and the join/detach/exit/suspend/wakeup
// primitives every higher-level blocking call is built from.
// A Thread's stack is modeled by a goroutine: Thread does not multiplex
// user code onto a shared call stack the way the source's port layer does,
// since Go provides growable goroutine stacks natively; StackSpec is
// recorded on the Thread (with its defaults filled in) but sizes neither
// the goroutine's stack nor the stack high-water mark instrumentation.
type Thread struct {
	name      string
	priority  Priority
	entry     EntryFunc
	arg       interface{}
	exitValue interface{}
	stack     StackSpec

	state              State
	sigMask            uint64
	wakeupReason       port.Reason
	interruptRequested bool
	detached           bool

	joiners waitList

	// wakeSem is the low-level binary semaphore Suspend/Wakeup use,
	// grounded on nsync's binarySemaphore: a size-1 buffered channel,
	// receive is P(), non-blocking send is V().
	wakeSem chan struct{}

	stackHigh int32 // atomic; supplemented high-water-mark instrumentation.

	done chan struct{} // closed once the thread's goroutine has returned.
}

// New constructs a Thread and registers it with the scheduler in state
// Ready. entry must be non-nil and priority must not be PriorityNone;
// violating either is a fatal construction-time contract violation, not a
// value-return error, matching an assertion-based constructor.
func New(name string, priority Priority, entry EntryFunc, arg interface{}, stack StackSpec) *Thread {
	if entry == nil {
		klog.Kernel.Fatalf("rtos: New(%q): nil entry function", name)
	}
	if priority == PriorityNone {
		klog.Kernel.Fatalf("rtos: New(%q): priority must not be PriorityNone", name)
	}
	if sched.InHandlerMode() {
		klog.Kernel.Fatalf("rtos: New(%q): called from handler mode", name)
	}
	if stack.SizeBytes == 0 {
		stack.SizeBytes = 4096
	}
	if stack.AddressHint == nil {
		stack.AddressHint = make([]byte, 0, stack.SizeBytes)
	}

	t := &Thread{
		name:     name,
		priority: priority,
		entry:    entry,
		arg:      arg,
		stack:    stack,
		state:    Ready,
		wakeSem:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	kernel.Enter()
	sched.registerLocked(t)
	kernel.Leave(0)

	go t.runEntry()
	return t
}

// runEntry is the unexported proxy the source calls invoke_with_exit: a
// normal return from entry is indistinguishable from an explicit call to
// Exit, because both paths funnel through this one function.
func (t *Thread) runEntry() {
	sched.bindCurrent(t)
	defer sched.unbindCurrent()

	kernel.Enter()
	t.state = Running
	kernel.Leave(0)
	t.recordStackSample()

	result := func() (r interface{}) {
		defer func() {
			if p := recover(); p != nil {
				r = fmt.Errorf("rtos: thread %q panicked: %v", t.name, p)
			}
		}()
		return t.entry(t.arg)
	}()

	t.Exit(result)
}

// Name returns the thread's name.
func (t *Thread) Name() string { return t.name }

// SetName renames the thread, a debugging-oriented rename-after-
// construction facility.
func (t *Thread) SetName(name string) {
	kernel.Enter()
	t.name = name
	kernel.Leave(0)
}

// State returns the thread's current lifecycle state.
func (t *Thread) State() State {
	kernel.Enter()
	s := t.state
	kernel.Leave(0)
	return s
}

// Priority reads the thread's scheduling priority. It fails with
// kerrno.EPERM when called from handler mode, returning kerrno.Error.
func (t *Thread) Priority() (Priority, error) {
	if sched.InHandlerMode() {
		return kerrno.Error, kerrno.EPERM
	}
	kernel.Enter()
	p := t.priority
	kernel.Leave(0)
	return p, nil
}

// SetPriority changes the thread's scheduling priority. It fails with
// kerrno.EPERM from handler mode and kerrno.EINVAL if p is PriorityNone. A
// priority change is observed by the scheduler at its next scheduling
// decision; this portable implementation applies it immediately since
// priority only affects ready-queue ordering metadata, not an in-flight
// execution decision.
func (t *Thread) SetPriority(p Priority) error {
	if sched.InHandlerMode() {
		return kerrno.EPERM
	}
	if p == PriorityNone {
		return kerrno.EINVAL
	}
	kernel.Enter()
	t.priority = p
	kernel.Leave(0)
	return nil
}

// StackHighWaterMark returns the best-effort peak stack usage observed for
// this thread. Go does not expose a raw stack pointer, so this is measured
// via the scheduler's instrumentation hook rather than true memory
// excursion; it is a diagnostic approximation, not a guarantee.
func (t *Thread) StackHighWaterMark() int {
	return int(atomic.LoadInt32(&t.stackHigh))
}

// recordStackSample is the scheduler's stack-instrumentation hook: it takes
// runtime.Stack's captured trace length as a best-effort proxy for stack
// depth at a suspension boundary and folds it into the running high-water
// mark with a lock-free max. Called at thread start and on either side of
// every parking point, since those are the only moments this portable
// rewrite has any stack-shaped signal to sample at all.
func (t *Thread) recordStackSample() {
	var buf [4096]byte
	n := runtime.Stack(buf[:], false)
	for {
		old := atomic.LoadInt32(&t.stackHigh)
		if int32(n) <= old {
			return
		}
		if atomic.CompareAndSwapInt32(&t.stackHigh, old, int32(n)) {
			return
		}
	}
}

// Join blocks the caller until the target transitions to Terminated,
// storing the target's exit value into *out if out is non-nil, and
// returns nil. Joining a thread from itself is kerrno.EDEADLK. Multiple
// simultaneous joiners on the same target are undefined.
func (t *Thread) Join(out *interface{}) error {
	if sched.Current() == t {
		return kerrno.EDEADLK
	}
	for {
		kernel.Enter()
		if t.state == Terminated || t.state == Destroyed {
			if out != nil {
				*out = t.exitValue
			}
			kernel.Leave(0)
			return nil
		}
		self := sched.Current()
		if self == nil {
			// Called from a non-thread context (e.g. main or a
			// test goroutine): poll-wait rather than enrolling a
			// nil waiter.
			kernel.Leave(0)
			runtime.Gosched()
			continue
		}
		g := enroll(&t.joiners, self)
		self.state = Suspended
		kernel.Leave(0)

		self.parkSelf()

		kernel.Enter()
		g.release()
		kernel.Leave(0)
	}
}

// Detach marks the thread as non-joinable; its resources are reclaimable
// immediately upon termination.
func (t *Thread) Detach() {
	kernel.Enter()
	t.detached = true
	kernel.Leave(0)
}

// Exit is callable only from the thread itself. It is idempotent: calling
// it again after the thread has already terminated returns silently.
// Records the exit value, transitions to Terminated, appends the thread to
// the scheduler's terminated list, and wakes any joiners (who observe the
// exit value once they re-check state). Called by the thread itself, it
// does not return: the thread's goroutine ends there.
func (t *Thread) Exit(value interface{}) {
	kernel.Enter()
	if t.state == Terminated || t.state == Destroyed {
		kernel.Leave(0)
		return
	}
	t.exitValue = value
	t.state = Terminated
	t.joiners.wakeupAll()
	sched.enqueueTerminatedLocked(t)
	kernel.Leave(0)
	close(t.done)
	if sched.Current() == t {
		runtime.Goexit()
	}
}

// Kill forcibly transitions the thread to Inactive from any state other
// than Destroyed. No user resources are cleaned up.
func (t *Thread) Kill() {
	kernel.Enter()
	defer kernel.Leave(0)
	if t.state == Destroyed {
		return
	}
	t.state = Inactive
}

// Suspend blocks the calling thread until Wakeup is called. It is not
// callable from interrupt context.
func (t *Thread) Suspend() error {
	if sched.InHandlerMode() {
		return kerrno.EPERM
	}
	kernel.Enter()
	t.state = Suspended
	kernel.Leave(0)
	t.parkSelf()
	return nil
}

// parkSelf blocks on the thread's binary semaphore until Wakeup (or
// WakeupInterrupted) signals it; it must be called with the kernel
// critical section NOT held -- a thread never suspends while holding one.
func (t *Thread) parkSelf() {
	t.recordStackSample()
	<-t.wakeSem
	t.recordStackSample()
}

// parkSelfWithDeadline blocks until woken or d elapses, grounded on
// nsync/binary_semaphore.go's PWithDeadline: a P against the binary
// semaphore raced against a timer. If both fire together the real wakeup
// wins, since losing a genuine signal to a coincidental timeout would
// otherwise be observable as a spurious timed-out condition variable wait.
func (t *Thread) parkSelfWithDeadline(d time.Duration) port.Reason {
	t.recordStackSample()
	defer t.recordStackSample()
	if d <= 0 {
		select {
		case <-t.wakeSem:
			return t.takeWakeupReason()
		default:
			return port.TimedOut
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-t.wakeSem:
		return t.takeWakeupReason()
	case <-timer.C:
		select {
		case <-t.wakeSem:
			return t.takeWakeupReason()
		default:
			return port.TimedOut
		}
	}
}

// takeWakeupReason reads and resets the thread's recorded wakeup reason.
func (t *Thread) takeWakeupReason() port.Reason {
	kernel.Enter()
	r := t.wakeupReason
	t.wakeupReason = port.OK
	kernel.Leave(0)
	return r
}

// Wakeup makes a suspended thread ready again with reason OK. It is the
// only way a suspended thread becomes ready, and is safe to call from
// interrupt context.
func (t *Thread) Wakeup() {
	kernel.Enter()
	t.wakeupLocked(port.OK)
	kernel.Leave(0)
}

// WakeupInterrupted is Wakeup's interrupted variant: it records wakeup
// reason port.Interrupted (surfaced by blocking calls as kerrno.EINTR)
// instead of port.OK.
func (t *Thread) WakeupInterrupted() {
	kernel.Enter()
	t.wakeupLocked(port.Interrupted)
	kernel.Leave(0)
}

// wakeupLocked must be called under the kernel critical section.
func (t *Thread) wakeupLocked(reason port.Reason) {
	if t.state == Destroyed || t.state == Terminated {
		return
	}
	t.wakeupReason = reason
	if t.state == Suspended {
		t.state = Ready
	}
	select {
	case t.wakeSem <- struct{}{}:
	default:
	}
}

// Interrupted reports whether the last wakeup was due to interruption or
// cancellation, consumed by the caller on the next iteration of a wait
// loop. A true result also consumes the Cancel() request that produced
// it, so a later blocking call's consumeCancelRequest does not observe
// a request this call already delivered.
func (t *Thread) Interrupted() bool {
	kernel.Enter()
	defer kernel.Leave(0)
	r := t.wakeupReason == port.Interrupted
	t.wakeupReason = port.OK
	if r {
		t.interruptRequested = false
	}
	return r
}

// Cancel requests that the thread's next blocking-loop check observe
// Interrupted(). Its contract is unspecified beyond this: it is not a full
// POSIX cancellation point, and performs no cleanup-handler unwinding.
func (t *Thread) Cancel() error {
	kernel.Enter()
	t.interruptRequested = true
	wasSuspended := t.state == Suspended
	kernel.Leave(0)
	if wasSuspended {
		t.WakeupInterrupted()
	}
	return nil
}

// consumeCancelRequest reports and clears a pending Cancel() request; used
// internally by blocking-loop implementations (sig_wait, mqueue send/
// receive) to fold cancellation into the same Interrupted() signal a
// WakeupInterrupted produces.
func (t *Thread) consumeCancelRequest() bool {
	kernel.Enter()
	defer kernel.Leave(0)
	r := t.interruptRequested
	t.interruptRequested = false
	return r
}
