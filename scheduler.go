// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos

import (
	"bytes"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"v.io/x/rtos/klog"
	"v.io/x/rtos/port"
)

// Stats holds the scheduler's cheap running counters: threads created,
// threads destroyed, and idle-wake count.
type Stats struct {
	ThreadsCreated   uint64
	ThreadsDestroyed uint64
	IdleWakeCount    uint64
}

// scheduler is the kernel-wide scheduler singleton: the live-thread
// registry (standing in for a priority ready queue), the
// current-thread-per-goroutine map, the terminated-thread reaper list, and
// handler-mode detection.
//
// This portable implementation does not itself decide which goroutine the
// Go runtime executes -- that is the Go scheduler's job, and re-implementing
// cooperative scheduling on top of goroutines would fight the host runtime
// rather than use it. What is preserved is the observable contract: a
// priority-ordered view of live threads, exactly one current thread per
// execution context, a terminated list drained by a dedicated reaper, and
// a handler-mode gate that ISR-forbidden APIs check.
type scheduler struct {
	mu         sync.Mutex // protects the fields below; independent of the kernel CriticalSection, which guards per-object state instead.
	live       map[*Thread]struct{}
	current    map[uint64]*Thread // goroutine id -> current thread
	handler    map[uint64]bool    // goroutine id -> in handler mode
	terminated []*Thread
	work       chan struct{} // signaled when terminated gets a new entry
	idler      port.Idler
	stats      Stats
}

var sched = newScheduler()

func newScheduler() *scheduler {
	s := &scheduler{
		live:    make(map[*Thread]struct{}),
		current: make(map[uint64]*Thread),
		handler: make(map[uint64]bool),
		work:    make(chan struct{}, 1),
		idler:   DefaultIdler{},
	}
	go s.reap()
	return s
}

// SetIdler installs the port.Idler the reaper sleeps on between drain
// cycles; used by tests and by a future native-port binding.
func SetIdler(i port.Idler) {
	sched.mu.Lock()
	sched.idler = i
	sched.mu.Unlock()
}

// DefaultIdler is the portable WaitForInterrupt: a short real sleep,
// since there is no hardware interrupt to block on. Exported so callers
// (and tests) that install a custom port.Idler via SetIdler can restore
// it afterward.
type DefaultIdler struct{}

func (DefaultIdler) WaitForInterrupt() { time.Sleep(time.Millisecond) }

func (s *scheduler) registerLocked(t *Thread) {
	s.mu.Lock()
	s.live[t] = struct{}{}
	s.stats.ThreadsCreated++
	s.mu.Unlock()
}

func (s *scheduler) unregisterLocked(t *Thread) {
	s.mu.Lock()
	delete(s.live, t)
	s.mu.Unlock()
}

// goroutineID extracts the calling goroutine's id by parsing the header
// line of runtime.Stack's output. Go has no native goroutine-local storage;
// this is the conventional workaround used throughout the ecosystem for
// exactly this purpose (e.g. race detectors and structured loggers that tag
// output by goroutine). It is used here only for Current()/InHandlerMode()
// bookkeeping, never for correctness-critical synchronization.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	const prefix = "goroutine "
	if bytes.HasPrefix(b, []byte(prefix)) {
		b = b[len(prefix):]
		if i := bytes.IndexByte(b, ' '); i >= 0 {
			if id, err := strconv.ParseUint(string(b[:i]), 10, 64); err == nil {
				return id
			}
		}
	}
	return 0
}

// bindCurrent records t as the current thread for the calling goroutine.
func (s *scheduler) bindCurrent(t *Thread) {
	id := goroutineID()
	s.mu.Lock()
	s.current[id] = t
	s.mu.Unlock()
}

func (s *scheduler) unbindCurrent() {
	id := goroutineID()
	s.mu.Lock()
	delete(s.current, id)
	s.mu.Unlock()
}

// Current returns the Thread bound to the calling goroutine, or nil if the
// caller is not running as a kernel thread (e.g. the program's main
// goroutine, or a test harness goroutine simulating an ISR).
func (s *scheduler) Current() *Thread {
	id := goroutineID()
	s.mu.Lock()
	t := s.current[id]
	s.mu.Unlock()
	return t
}

// Current returns the Thread bound to the calling goroutine.
func Current() *Thread { return sched.Current() }

// EnterHandlerMode marks the calling goroutine as executing an interrupt
// service routine for the duration of fn, then clears the mark. Used by
// tests to simulate interrupt context around the ISR-safe entry points
// (Wakeup, SigRaise, TrySend, TryReceive).
func EnterHandlerMode(fn func()) {
	id := goroutineID()
	sched.mu.Lock()
	sched.handler[id] = true
	sched.mu.Unlock()
	defer func() {
		sched.mu.Lock()
		delete(sched.handler, id)
		sched.mu.Unlock()
	}()
	fn()
}

func (s *scheduler) InHandlerMode() bool {
	id := goroutineID()
	s.mu.Lock()
	v := s.handler[id]
	s.mu.Unlock()
	return v
}

// InHandlerMode reports whether the calling goroutine is currently inside
// a simulated interrupt service routine.
func InHandlerMode() bool { return sched.InHandlerMode() }

// enqueueTerminatedLocked appends t to the reaper's drain list. Called by
// Thread.Exit while the kernel critical section is held.
func (s *scheduler) enqueueTerminatedLocked(t *Thread) {
	s.mu.Lock()
	s.terminated = append(s.terminated, t)
	s.mu.Unlock()
	select {
	case s.work <- struct{}{}:
	default:
	}
}

// reap is the idle thread: it drains the terminated list, destroying each
// thread (unregistering it and transitioning it to Destroyed), then calls
// the port's WaitForInterrupt between cycles. It is a plain goroutine, not
// a Thread, so it has no priority of its own; it runs for the lifetime of
// the process.
func (s *scheduler) reap() {
	for {
		s.mu.Lock()
		batch := s.terminated
		s.terminated = nil
		idler := s.idler
		s.mu.Unlock()

		if len(batch) == 0 {
			select {
			case <-s.work:
			default:
				idler.WaitForInterrupt()
				s.mu.Lock()
				s.stats.IdleWakeCount++
				s.mu.Unlock()
			}
			continue
		}

		for _, t := range batch {
			kernel.Enter()
			t.state = Destroyed
			kernel.Leave(0)
			s.unregisterLocked(t)
			s.mu.Lock()
			s.stats.ThreadsDestroyed++
			s.mu.Unlock()
			klog.Kernel.Infof("rtos: reaped thread %q", t.name)
		}
	}
}

// Stats returns a snapshot of the scheduler's running counters.
func Stats() Stats {
	sched.mu.Lock()
	defer sched.mu.Unlock()
	return sched.stats
}

// ReadyThreads returns the names of all currently live, non-terminated
// threads ordered by descending priority (ties broken by name), for
// diagnostics and tests. It is not a scheduling decision: Go's own runtime,
// not this list, decides which goroutine actually executes next.
func ReadyThreads() []string {
	sched.mu.Lock()
	live := make([]*Thread, 0, len(sched.live))
	for t := range sched.live {
		live = append(live, t)
	}
	sched.mu.Unlock()

	names := make([]string, 0, len(live))
	prio := make(map[string]Priority, len(live))
	for _, t := range live {
		kernel.Enter()
		st, p := t.state, t.priority
		kernel.Leave(0)
		if st == Terminated || st == Destroyed {
			continue
		}
		names = append(names, t.name)
		prio[t.name] = p
	}
	sort.Slice(names, func(i, j int) bool {
		if prio[names[i]] != prio[names[j]] {
			return prio[names[i]] > prio[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}
