// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos

import "testing"

// newTestThread builds a Thread that never runs its entry function, for
// exercising waitList/waitGuard bookkeeping directly without spinning up
// a goroutine that would race the test.
func newTestThread(name string) *Thread {
	return &Thread{name: name, wakeSem: make(chan struct{}, 1), done: make(chan struct{})}
}

func TestWaitListFIFOOrder(t *testing.T) {
	var l waitList
	a, b, c := newTestThread("a"), newTestThread("b"), newTestThread("c")

	kernel.Enter()
	ga := enroll(&l, a)
	gb := enroll(&l, b)
	gc := enroll(&l, c)
	kernel.Leave(0)

	if l.empty() {
		t.Fatal("list unexpectedly empty after three enrollments")
	}

	kernel.Enter()
	w1 := l.wakeupOne()
	w2 := l.wakeupOne()
	w3 := l.wakeupOne()
	w4 := l.wakeupOne()
	kernel.Leave(0)

	if w1 != a || w2 != b || w3 != c {
		t.Fatalf("wakeup order = %v, %v, %v; want a, b, c", w1.name, w2.name, w3.name)
	}
	if w4 != nil {
		t.Fatalf("wakeupOne on empty list returned %v, want nil", w4)
	}

	kernel.Enter()
	ga.release()
	gb.release()
	gc.release()
	kernel.Leave(0)
}

func TestWaitListRemoveIsIdempotent(t *testing.T) {
	var l waitList
	a := newTestThread("a")

	kernel.Enter()
	g := enroll(&l, a)
	g.release()
	kernel.Leave(0)

	if !l.empty() {
		t.Fatal("list not empty after release")
	}

	// Releasing an already-released guard must not corrupt the list.
	kernel.Enter()
	g.release()
	kernel.Leave(0)

	if !l.empty() {
		t.Fatal("list not empty after double release")
	}
}

func TestWaitListWakeupAllDrainsEveryWaiter(t *testing.T) {
	var l waitList
	threads := []*Thread{newTestThread("a"), newTestThread("b"), newTestThread("c")}

	kernel.Enter()
	for _, th := range threads {
		enroll(&l, th)
	}
	l.wakeupAll()
	empty := l.empty()
	kernel.Leave(0)

	if !empty {
		t.Fatal("list not empty after wakeupAll")
	}
	for _, th := range threads {
		select {
		case <-th.wakeSem:
		default:
			t.Fatalf("thread %q was not signaled by wakeupAll", th.name)
		}
	}
}
