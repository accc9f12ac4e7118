// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kconfig holds the kernel's compile-time configuration options and
// binds them to a pflag.FlagSet the way cmd/pflagvar binds a tagged struct
// to flags -- here with a small, fixed option set, so the fields are
// registered directly rather than through flagvar's generic
// reflection-based tag machinery.
package kconfig

import (
	"github.com/spf13/pflag"
)

// Options holds the recognized compile-time configuration options.
type Options struct {
	// IdleStackSizeBytes is the stack size given to the idle (reaper)
	// thread.
	IdleStackSizeBytes uint

	// ThreadIdlePriorityBelowIdle runs the idle thread one level below
	// the idle level instead of at the idle level itself.
	ThreadIdlePriorityBelowIdle bool

	// PortHasThread, PortHasMessageQueue and PortHasScheduler select a
	// native RTOS port binding for the corresponding component instead
	// of this module's portable implementation. No native port binding
	// ships in this module, and no code in it reads these fields: setting
	// one of them has no effect on the portable implementation.
	PortHasThread       bool
	PortHasMessageQueue bool
	PortHasScheduler    bool
}

// Default returns the option set the portable implementation uses when no
// flags are parsed: an 1KiB idle stack, idle thread running at the idle
// level, and no native port bindings.
func Default() Options {
	return Options{IdleStackSizeBytes: 1024}
}

// RegisterFlags registers o's fields onto fs, using the supplied prefix
// (e.g. "rtos") to namespace the flag names.
func RegisterFlags(fs *pflag.FlagSet, prefix string, o *Options) {
	name := func(suffix string) string {
		if prefix == "" {
			return suffix
		}
		return prefix + "-" + suffix
	}
	fs.UintVar(&o.IdleStackSizeBytes, name("idle-stack-size-bytes"), o.IdleStackSizeBytes,
		"stack size in bytes for the idle (reaper) thread")
	fs.BoolVar(&o.ThreadIdlePriorityBelowIdle, name("thread-idle-priority-below-idle"), o.ThreadIdlePriorityBelowIdle,
		"run the idle thread one level below the idle priority level")
	fs.BoolVar(&o.PortHasThread, name("port-has-thread"), o.PortHasThread,
		"delegate thread operations to a native RTOS port binding")
	fs.BoolVar(&o.PortHasMessageQueue, name("port-has-message-queue"), o.PortHasMessageQueue,
		"delegate message queue operations to a native RTOS port binding")
	fs.BoolVar(&o.PortHasScheduler, name("port-has-scheduler"), o.PortHasScheduler,
		"delegate scheduling operations to a native RTOS port binding")
}
