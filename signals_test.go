// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos_test

import (
	"testing"
	"time"

	"v.io/x/rtos"
	"v.io/x/rtos/kerrno"
)

// TestSigWaitAllVsAny exercises the scenario of a thread blocked on
// SigWaitAll for mask 0b0101 while its own flags are 0b0011: a raise of
// 0b0100 completes the match, the wait returns the pre-clear snapshot
// 0b0111, and the unmatched bit 0b0010 remains pending afterward.
func TestSigWaitAllVsAny(t *testing.T) {
	type result struct {
		snapshot uint64
		err      error
		remains  uint64
	}
	results := make(chan result, 1)

	th := rtos.New("flagwaiter", rtos.PriorityLowest, func(arg interface{}) interface{} {
		self := rtos.Current()
		self.SigRaise(0b0011)
		snap, err := self.SigWait(0b0101, rtos.SigWaitAll)
		remains := self.SigGet(0, rtos.SigGetPeek)
		results <- result{snap, err, remains}
		return nil
	}, nil, rtos.StackSpec{})

	time.Sleep(20 * time.Millisecond)
	th.SigRaise(0b0100)

	select {
	case r := <-results:
		if r.err != nil {
			t.Fatalf("SigWait error = %v", r.err)
		}
		if r.snapshot != 0b0111 {
			t.Fatalf("snapshot = %#b, want 0b0111", r.snapshot)
		}
		if r.remains != 0b0010 {
			t.Fatalf("remaining mask = %#b, want 0b0010", r.remains)
		}
	case <-time.After(time.Second):
		t.Fatal("SigWait never returned")
	}
	th.Join(nil)
}

func TestSigRaiseZeroMaskIsInvalid(t *testing.T) {
	th := rtos.New("zeromask", rtos.PriorityLowest, func(arg interface{}) interface{} {
		_, err := rtos.Current().SigRaise(0)
		return err
	}, nil, rtos.StackSpec{})
	var out interface{}
	th.Join(&out)
	if out.(error) != kerrno.EINVAL {
		t.Fatalf("SigRaise(0) error = %v, want EINVAL", out)
	}
}

func TestTrySigWaitReturnsEAGAINWhenUnmatched(t *testing.T) {
	th := rtos.New("try", rtos.PriorityLowest, func(arg interface{}) interface{} {
		_, err := rtos.Current().TrySigWait(1, rtos.SigWaitAny)
		return err
	}, nil, rtos.StackSpec{})
	var out interface{}
	th.Join(&out)
	if out.(error) != kerrno.EAGAIN {
		t.Fatalf("TrySigWait error = %v, want EAGAIN", out)
	}
}

func TestTimedSigWaitTimesOut(t *testing.T) {
	start := make(chan time.Time, 1)
	end := make(chan time.Time, 1)
	th := rtos.New("timed", rtos.PriorityLowest, func(arg interface{}) interface{} {
		start <- time.Now()
		_, err := rtos.Current().TimedSigWait(1, rtos.SigWaitAny, 5)
		end <- time.Now()
		return err
	}, nil, rtos.StackSpec{})

	rtos.TickDuration = time.Millisecond
	var out interface{}
	th.Join(&out)
	if out.(error) != kerrno.ETIMEDOUT {
		t.Fatalf("TimedSigWait error = %v, want ETIMEDOUT", out)
	}

	elapsed := (<-end).Sub(<-start)
	if elapsed < 4*time.Millisecond {
		t.Fatalf("elapsed = %v, want at least ~5 ticks", elapsed)
	}
}
