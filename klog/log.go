// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package klog provides the kernel's leveled logging, used to trace
// scheduler transitions, queue resets and fatal invariant violations.
// Tracing/diagnostic output proper belongs to the host application; klog
// is the ambient logging facility the kernel itself uses to report on its
// own internal bookkeeping, adapted from the vlog/llog pairing.
package klog

import (
	"fmt"
	"sync"

	"github.com/cosmosnicolaou/llog"
)

const stackSkip = 1

// Level is a verbosity level, checked with V before an expensive log call.
type Level int32

// Logger is the leveled logging interface klog hands out, mirroring the
// vlog/llog pairing's own exported Logger shape.
type Logger interface {
	SetV(v Level)
	V(v Level) bool
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
}

type logger struct {
	log *llog.Log
	mu  sync.Mutex
	v   Level
}

// Kernel is the package-wide kernel logger. Scheduler, thread and mqueue
// log through it rather than each constructing their own.
var Kernel Logger = &logger{log: llog.NewLogger("rtos", stackSkip)}

// New creates an independent named logger, e.g. for a test harness that
// wants isolated output.
func New(name string) Logger {
	return &logger{log: llog.NewLogger(name, stackSkip)}
}

// SetV sets the verbosity threshold; calls to V(v) with v <= the threshold
// produce output.
func (l *logger) SetV(v Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.v = v
	l.log.SetV(llog.Level(v))
}

// V reports whether logging at the given verbosity level is enabled.
func (l *logger) V(v Level) bool {
	return l.log.V(llog.Level(v))
}

// Info logs to the INFO log.
func (l *logger) Info(args ...interface{}) {
	l.log.Print(llog.InfoLog, args...)
}

// Infof logs to the INFO log with a format string.
func (l *logger) Infof(format string, args ...interface{}) {
	l.log.Printf(llog.InfoLog, format, args...)
}

// Error logs to the ERROR and INFO logs.
func (l *logger) Error(args ...interface{}) {
	l.log.Print(llog.ErrorLog, args...)
}

// Errorf logs to the ERROR and INFO logs with a format string.
func (l *logger) Errorf(format string, args ...interface{}) {
	l.log.Printf(llog.ErrorLog, format, args...)
}

// Fatal reports a violated kernel invariant to the FATAL, ERROR and INFO
// logs, then panics: a fatal invariant is a bug, not a recoverable runtime
// condition, so the kernel does not try to continue past it.
func (l *logger) Fatal(args ...interface{}) {
	l.log.Print(llog.FatalLog, args...)
	panic(fmt.Sprint(args...))
}

// Fatalf is Fatal with a format string.
func (l *logger) Fatalf(format string, args ...interface{}) {
	l.log.Printf(llog.FatalLog, format, args...)
	panic(fmt.Sprintf(format, args...))
}
