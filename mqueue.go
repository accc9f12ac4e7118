// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos

import (
	"runtime"

	"v.io/x/rtos/kerrno"
	"v.io/x/rtos/klog"
	"v.io/x/rtos/port"
)

// qNone is the null-slot sentinel used throughout MessageQueue's parallel
// index arrays, playing the role nsync's nil waiter pointer plays in a
// pointer-linked list.
const qNone int32 = -1

// MessageQueue is a bounded, priority-ordered mailbox: N slots of M bytes
// each, held in one contiguous byte buffer and linked into an occupied
// list and a free list using parallel prev/next/prio index arrays rather
// than pointers, matching a fixed-size, allocation-free message queue's
// layout. Send blocks while the queue is full, Receive blocks while it
// is empty; both use the same enroll/waitGuard machinery as Thread.Join.
type MessageQueue struct {
	n, m        int
	storage     []byte
	ownsStorage bool

	prev, next, prio []int32
	head, tail       int32
	firstFree        int32
	count            int
	closed           bool

	senders, receivers waitList
}

// NewMessageQueue constructs an N-slot, M-byte-message queue. storage, if
// non-nil, must be at least n*m bytes and is used as the message backing
// store instead of an allocated one, supporting static/no-heap
// construction. n and m must both be positive; violating this is a
// fatal construction-time contract violation, matching Thread's
// treatment of precondition violations.
func NewMessageQueue(n, m int, storage []byte) *MessageQueue {
	if n <= 0 || m <= 0 {
		klog.Kernel.Fatalf("rtos: NewMessageQueue(%d, %d): n and m must be positive", n, m)
	}
	ownsStorage := storage == nil
	if ownsStorage {
		storage = make([]byte, n*m)
	} else if len(storage) < n*m {
		klog.Kernel.Fatalf("rtos: NewMessageQueue(%d, %d): storage shorter than n*m", n, m)
	}
	q := &MessageQueue{
		n:           n,
		m:           m,
		storage:     storage,
		ownsStorage: ownsStorage,
		prev:        make([]int32, n),
		next:        make([]int32, n),
		prio:        make([]int32, n),
		head:        qNone,
		tail:        qNone,
		firstFree:   0,
	}
	for i := 0; i < n-1; i++ {
		q.next[i] = int32(i) + 1
	}
	q.next[n-1] = qNone
	return q
}

func (q *MessageQueue) allocSlotLocked() int32 {
	i := q.firstFree
	q.firstFree = q.next[i]
	return i
}

func (q *MessageQueue) freeSlotLocked(i int32) {
	q.next[i] = q.firstFree
	q.firstFree = i
}

// insertLocked links slot idx, carrying priority p, into the occupied
// list. It walks from the tail towards the head, stopping at the first
// node whose priority is not lower than p, so messages of equal
// priority remain FIFO among themselves and the head is always the
// oldest message of the highest pending priority.
func (q *MessageQueue) insertLocked(idx, p int32) {
	cur := q.tail
	for cur != qNone && q.prio[cur] < p {
		cur = q.prev[cur]
	}
	if cur == qNone {
		q.next[idx] = q.head
		q.prev[idx] = qNone
		if q.head != qNone {
			q.prev[q.head] = idx
		} else {
			q.tail = idx
		}
		q.head = idx
		return
	}
	nxt := q.next[cur]
	q.next[cur] = idx
	q.prev[idx] = cur
	q.next[idx] = nxt
	if nxt != qNone {
		q.prev[nxt] = idx
	} else {
		q.tail = idx
	}
}

// removeHeadLocked detaches and returns the occupied list's head slot
// in O(1), keeping Receive's cost independent of queue depth.
func (q *MessageQueue) removeHeadLocked() int32 {
	idx := q.head
	q.head = q.next[idx]
	if q.head != qNone {
		q.prev[q.head] = qNone
	} else {
		q.tail = qNone
	}
	return idx
}

func (q *MessageQueue) slot(idx int32) []byte {
	off := int(idx) * q.m
	return q.storage[off : off+q.m]
}

// trySendLocked enqueues payload at priority without blocking. Must be
// called under the kernel critical section.
func (q *MessageQueue) trySendLocked(payload []byte, priority kerrno.Priority) error {
	if q.closed {
		return kerrno.EINVAL
	}
	if len(payload) != q.m {
		return kerrno.EMSGSIZE
	}
	if q.count == q.n {
		return kerrno.EAGAIN
	}
	idx := q.allocSlotLocked()
	copy(q.slot(idx), payload)
	q.prio[idx] = int32(priority)
	q.insertLocked(idx, int32(priority))
	q.count++
	return nil
}

// tryReceiveLocked dequeues the highest-priority, oldest pending message
// without blocking. Must be called under the kernel critical section.
func (q *MessageQueue) tryReceiveLocked(out []byte) (kerrno.Priority, error) {
	if q.closed {
		return kerrno.Error, kerrno.EINVAL
	}
	if len(out) != q.m {
		return kerrno.Error, kerrno.EMSGSIZE
	}
	if q.count == 0 {
		return kerrno.Error, kerrno.EAGAIN
	}
	idx := q.removeHeadLocked()
	copy(out, q.slot(idx))
	p := kerrno.Priority(q.prio[idx])
	q.freeSlotLocked(idx)
	q.count--
	return p, nil
}

// TrySend enqueues payload at priority without blocking, failing with
// kerrno.EAGAIN if the queue is full and kerrno.EMSGSIZE if
// len(payload) != M. Safe to call from interrupt context.
func (q *MessageQueue) TrySend(payload []byte, priority kerrno.Priority) error {
	kernel.Enter()
	err := q.trySendLocked(payload, priority)
	if err == nil {
		q.receivers.wakeupOne()
	}
	kernel.Leave(0)
	return err
}

// TryReceive dequeues the highest-priority, oldest pending message into
// out without blocking, failing with kerrno.EAGAIN if the queue is empty
// and kerrno.EMSGSIZE if len(out) != M. Safe to call from interrupt
// context.
func (q *MessageQueue) TryReceive(out []byte) (kerrno.Priority, error) {
	kernel.Enter()
	p, err := q.tryReceiveLocked(out)
	if err == nil {
		q.senders.wakeupOne()
	}
	kernel.Leave(0)
	return p, err
}

// Send enqueues payload at priority, blocking the calling thread while
// the queue is full. It fails with kerrno.EMSGSIZE if len(payload) != M.
// Not callable from interrupt context.
func (q *MessageQueue) Send(payload []byte, priority kerrno.Priority) error {
	if sched.InHandlerMode() {
		return kerrno.EPERM
	}
	self := sched.Current()
	for {
		kernel.Enter()
		err := q.trySendLocked(payload, priority)
		if err == nil {
			q.receivers.wakeupOne()
			kernel.Leave(0)
			return nil
		}
		if err != kerrno.EAGAIN {
			kernel.Leave(0)
			return err
		}
		if self == nil {
			kernel.Leave(0)
			runtime.Gosched()
			continue
		}
		if self.consumeCancelRequest() {
			kernel.Leave(0)
			return kerrno.EINTR
		}
		g := enroll(&q.senders, self)
		self.state = Suspended
		kernel.Leave(0)

		self.parkSelf()

		kernel.Enter()
		g.release()
		kernel.Leave(0)

		if self.Interrupted() {
			return kerrno.EINTR
		}
	}
}

// Receive dequeues the highest-priority, oldest pending message into
// out, blocking the calling thread while the queue is empty. Not
// callable from interrupt context.
func (q *MessageQueue) Receive(out []byte) (kerrno.Priority, error) {
	if sched.InHandlerMode() {
		return kerrno.Error, kerrno.EPERM
	}
	self := sched.Current()
	for {
		kernel.Enter()
		p, err := q.tryReceiveLocked(out)
		if err == nil {
			q.senders.wakeupOne()
			kernel.Leave(0)
			return p, nil
		}
		if err != kerrno.EAGAIN {
			kernel.Leave(0)
			return kerrno.Error, err
		}
		if self == nil {
			kernel.Leave(0)
			runtime.Gosched()
			continue
		}
		if self.consumeCancelRequest() {
			kernel.Leave(0)
			return kerrno.Error, kerrno.EINTR
		}
		g := enroll(&q.receivers, self)
		self.state = Suspended
		kernel.Leave(0)

		self.parkSelf()

		kernel.Enter()
		g.release()
		kernel.Leave(0)

		if self.Interrupted() {
			return kerrno.Error, kerrno.EINTR
		}
	}
}

// TimedSend is Send bounded by ticks (0 promoted to 1), failing with
// kerrno.ETIMEDOUT if the deadline elapses before room is available and
// with kerrno.EMSGSIZE if len(payload) != M.
func (q *MessageQueue) TimedSend(payload []byte, priority kerrno.Priority, ticks uint64) error {
	if sched.InHandlerMode() {
		return kerrno.EPERM
	}
	self := sched.Current()
	deadline := deadlineAfterTicks(ticks)
	for {
		kernel.Enter()
		err := q.trySendLocked(payload, priority)
		if err == nil {
			q.receivers.wakeupOne()
			kernel.Leave(0)
			return nil
		}
		if err != kerrno.EAGAIN {
			kernel.Leave(0)
			return err
		}
		if self == nil {
			kernel.Leave(0)
			if !nowTime().Before(deadline) {
				return kerrno.ETIMEDOUT
			}
			runtime.Gosched()
			continue
		}
		if self.consumeCancelRequest() {
			kernel.Leave(0)
			return kerrno.EINTR
		}
		g := enroll(&q.senders, self)
		self.state = Suspended
		kernel.Leave(0)

		reason := self.parkSelfWithDeadline(deadline.Sub(nowTime()))

		kernel.Enter()
		g.release()
		if self.state == Suspended {
			self.state = Ready
		}
		kernel.Leave(0)

		switch reason {
		case port.Interrupted:
			return kerrno.EINTR
		case port.TimedOut:
			return kerrno.ETIMEDOUT
		}
	}
}

// TimedReceive is Receive bounded by ticks (0 promoted to 1), failing
// with kerrno.ETIMEDOUT if the deadline elapses before a message arrives.
func (q *MessageQueue) TimedReceive(out []byte, ticks uint64) (kerrno.Priority, error) {
	if sched.InHandlerMode() {
		return kerrno.Error, kerrno.EPERM
	}
	self := sched.Current()
	deadline := deadlineAfterTicks(ticks)
	for {
		kernel.Enter()
		p, err := q.tryReceiveLocked(out)
		if err == nil {
			q.senders.wakeupOne()
			kernel.Leave(0)
			return p, nil
		}
		if err != kerrno.EAGAIN {
			kernel.Leave(0)
			return kerrno.Error, err
		}
		if self == nil {
			kernel.Leave(0)
			if !nowTime().Before(deadline) {
				return kerrno.Error, kerrno.ETIMEDOUT
			}
			runtime.Gosched()
			continue
		}
		if self.consumeCancelRequest() {
			kernel.Leave(0)
			return kerrno.Error, kerrno.EINTR
		}
		g := enroll(&q.receivers, self)
		self.state = Suspended
		kernel.Leave(0)

		reason := self.parkSelfWithDeadline(deadline.Sub(nowTime()))

		kernel.Enter()
		g.release()
		if self.state == Suspended {
			self.state = Ready
		}
		kernel.Leave(0)

		switch reason {
		case port.Interrupted:
			return kerrno.Error, kerrno.EINTR
		case port.TimedOut:
			return kerrno.Error, kerrno.ETIMEDOUT
		}
	}
}

// Reset empties the queue, discarding any pending messages, and wakes
// every blocked sender and receiver so each re-evaluates its condition
// against the now-empty queue rather than remaining parked against a
// queue state that no longer exists.
func (q *MessageQueue) Reset() {
	kernel.Enter()
	for i := 0; i < q.n-1; i++ {
		q.next[i] = int32(i) + 1
	}
	q.next[q.n-1] = qNone
	q.firstFree = 0
	q.head, q.tail = qNone, qNone
	q.count = 0
	q.senders.wakeupAll()
	q.receivers.wakeupAll()
	kernel.Leave(0)
	klog.Kernel.Infof("rtos: message queue reset")
}

// Close marks the queue closed: further Send/TrySend/TimedSend and
// Receive/TryReceive/TimedReceive calls fail with kerrno.EINVAL, and any
// currently blocked callers are woken to observe that failure. If the
// queue owns its storage (constructed with a nil storage argument), the
// backing buffer is released for the garbage collector, the hosted
// equivalent of the source's destructor deallocating the storage only
// when it allocated that storage itself.
func (q *MessageQueue) Close() {
	kernel.Enter()
	defer kernel.Leave(0)
	if q.closed {
		return
	}
	q.closed = true
	q.senders.wakeupAll()
	q.receivers.wakeupAll()
	if q.ownsStorage {
		q.storage = nil
	}
}

// Len returns the number of messages currently queued.
func (q *MessageQueue) Len() int {
	kernel.Enter()
	defer kernel.Leave(0)
	return q.count
}

// Cap returns the queue's fixed slot capacity N.
func (q *MessageQueue) Cap() int { return q.n }
