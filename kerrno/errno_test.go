// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kerrno_test

import (
	"errors"
	"testing"

	"v.io/x/rtos/kerrno"
)

func TestErrnoIsMatchesSentinel(t *testing.T) {
	var err error = kerrno.EAGAIN
	if !errors.Is(err, kerrno.EAGAIN) {
		t.Fatal("errors.Is(EAGAIN, EAGAIN) = false")
	}
	if errors.Is(err, kerrno.ETIMEDOUT) {
		t.Fatal("errors.Is(EAGAIN, ETIMEDOUT) = true")
	}
}

func TestErrnoErrorIsNonEmpty(t *testing.T) {
	if kerrno.EINVAL.Error() == "" {
		t.Fatal("EINVAL.Error() returned empty string")
	}
}
