// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtos_test

import (
	"sync"
	"testing"

	"v.io/x/rtos"
)

// TestCriticalSectionMutualExclusion exercises CriticalSection the way
// nsync's mu_test.go exercises Mu: many goroutines racing to increment a
// shared counter under the lock, checked against the expected total.
func TestCriticalSectionMutualExclusion(t *testing.T) {
	var cs rtos.CriticalSection
	var counter int
	const goroutines = 20
	const perGoroutine = 500

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				prev := cs.Enter()
				counter++
				cs.Leave(prev)
			}
		}()
	}
	wg.Wait()

	if got, want := counter, goroutines*perGoroutine; got != want {
		t.Fatalf("counter = %d, want %d", got, want)
	}
}

func TestCriticalSectionLeaveWithoutEnterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Leave without Enter did not panic")
		}
	}()
	var cs rtos.CriticalSection
	cs.Leave(0)
}
