// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos

import "v.io/x/rtos/port"

// waiterNode links one blocked Thread into a waitList. Conceptually it
// lives on the blocking call's stack frame; in this hosted rewrite it is
// fetched from a small free list (newWaiterNode/freeWaiterNode below) so
// repeated blocking calls do not allocate on the steady-state path, the
// same rationale as nsync's newWaiter/freeWaiter. Every waiterNode is
// owned by exactly one waitGuard for its enrolled lifetime.
type waiterNode struct {
	next, prev *waiterNode
	thread     *Thread
	inList     bool
}

// waitList is a FIFO doubly-linked list of waiterNodes, headed by a
// sentinel node (list.head) so enqueue/remove never special-case the
// empty list -- the same shape as nsync/waiter.go's dll.
type waitList struct {
	head waiterNode
}

func (l *waitList) lazyInit() {
	if l.head.next == nil {
		l.head.next = &l.head
		l.head.prev = &l.head
	}
}

// empty reports whether the list has no enrolled waiters. Must be called
// under the kernel critical section.
func (l *waitList) empty() bool {
	l.lazyInit()
	return l.head.next == &l.head
}

// enqueue appends w to the tail of the list. Must be called under the
// kernel critical section.
func (l *waitList) enqueue(w *waiterNode) {
	l.lazyInit()
	tail := l.head.prev
	w.next = &l.head
	w.prev = tail
	tail.next = w
	l.head.prev = w
	w.inList = true
}

// remove detaches w from whatever list it is currently in. Must be called
// under the kernel critical section. A no-op if w is not enrolled, so
// callers (notably waitGuard.release) may call it unconditionally after a
// wakeup has already popped the node.
func (l *waitList) remove(w *waiterNode) {
	if !w.inList {
		return
	}
	w.prev.next = w.next
	w.next.prev = w.prev
	w.next, w.prev = nil, nil
	w.inList = false
}

// wakeupOne detaches the head (oldest) waiter, if any, and marks its
// thread ready with reason OK. Must be called under the kernel critical
// section. Returns the woken thread, or nil if the list was empty.
func (l *waitList) wakeupOne() *Thread {
	l.lazyInit()
	if l.empty() {
		return nil
	}
	w := l.head.next
	l.remove(w)
	t := w.thread
	t.wakeupLocked(port.OK)
	return t
}

// wakeupAll drains the list, waking every enrolled thread with reason OK.
// Must be called under the kernel critical section.
func (l *waitList) wakeupAll() {
	for l.wakeupOne() != nil {
	}
}

// clear empties the list without waking anyone. Must be called under the
// kernel critical section.
func (l *waitList) clear() {
	l.lazyInit()
	l.head.next = &l.head
	l.head.prev = &l.head
}

// --- free list of waiterNode structs, mirroring nsync's newWaiter/freeWaiter ---

var freeNodes *waiterNode
var freeNodesLock CriticalSection

func newWaiterNode(t *Thread) *waiterNode {
	freeNodesLock.Enter()
	w := freeNodes
	if w != nil {
		freeNodes = w.next
	}
	freeNodesLock.Leave(0)
	if w == nil {
		w = &waiterNode{}
	}
	w.thread = t
	w.next, w.prev, w.inList = nil, nil, false
	return w
}

func freeWaiterNode(w *waiterNode) {
	w.thread = nil
	freeNodesLock.Enter()
	w.next = freeNodes
	freeNodes = w
	freeNodesLock.Leave(0)
}

// waitGuard is a scoped enrollment guard: constructing it (via enroll)
// enqueues a waiter node under the kernel critical section;
// releasing it detaches the node if it is still enrolled. A thread woken by
// timeout, interruption, or an ordinary wakeup may unwind while still
// linked -- release() makes the list correct on every exit path, including
// a panic unwind, when called from a deferred statement.
type waitGuard struct {
	list *waitList
	node *waiterNode
}

// enroll enqueues t on list and returns a guard that will detach it. Must
// be called under the kernel critical section; the section may be (and
// normally is) released before the guard itself is released, since the
// calling thread blocks between enroll and release.
func enroll(list *waitList, t *Thread) waitGuard {
	w := newWaiterNode(t)
	list.enqueue(w)
	return waitGuard{list: list, node: w}
}

// release detaches the guard's node if still enrolled, and returns the
// node to the free list. Must be called under the kernel critical section.
// Releasing an already-released guard is a no-op.
func (g waitGuard) release() {
	if g.node.thread == nil {
		return
	}
	g.list.remove(g.node)
	freeWaiterNode(g.node)
}
