// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kconfig_test

import (
	"testing"

	"github.com/spf13/pflag"

	"v.io/x/rtos/kconfig"
)

func TestRegisterFlagsOverridesDefaults(t *testing.T) {
	opts := kconfig.Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	kconfig.RegisterFlags(fs, "rtos", &opts)

	if err := fs.Parse([]string{
		"--rtos-idle-stack-size-bytes=2048",
		"--rtos-port-has-scheduler",
	}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if opts.IdleStackSizeBytes != 2048 {
		t.Fatalf("IdleStackSizeBytes = %d, want 2048", opts.IdleStackSizeBytes)
	}
	if !opts.PortHasScheduler {
		t.Fatal("PortHasScheduler = false, want true")
	}
	if opts.PortHasThread {
		t.Fatal("PortHasThread = true, want false (untouched default)")
	}
}

func TestRegisterFlagsNoPrefix(t *testing.T) {
	opts := kconfig.Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	kconfig.RegisterFlags(fs, "", &opts)

	if fs.Lookup("idle-stack-size-bytes") == nil {
		t.Fatal("expected unprefixed flag idle-stack-size-bytes to be registered")
	}
}
