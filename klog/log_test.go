// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package klog_test

import (
	"testing"

	"v.io/x/rtos/klog"
)

func TestVerbosityGatesLogging(t *testing.T) {
	l := klog.New("test")
	l.SetV(1)
	if !l.V(1) {
		t.Fatal("V(1) = false after SetV(1)")
	}
	if l.V(2) {
		t.Fatal("V(2) = true after SetV(1)")
	}
}

func TestFatalPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Fatalf did not panic")
		}
	}()
	klog.New("test").Fatalf("boom: %d", 42)
}
