// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package portmock provides gomock doubles for the port package's
// interfaces, in the shape mockgen would generate them. The scheduler
// tests install MockIdler through rtos.SetIdler; the kernel has no hook
// for installing the clock, interrupt-mask or handler-mode doubles.
package portmock

import (
	reflect "reflect"

	gomock "github.com/golang/mock/gomock"

	port "v.io/x/rtos/port"
)

// MockInterrupts is a mock of the port.Interrupts interface.
type MockInterrupts struct {
	ctrl     *gomock.Controller
	recorder *MockInterruptsMockRecorder
}

// MockInterruptsMockRecorder is the mock recorder for MockInterrupts.
type MockInterruptsMockRecorder struct {
	mock *MockInterrupts
}

// NewMockInterrupts creates a new mock instance.
func NewMockInterrupts(ctrl *gomock.Controller) *MockInterrupts {
	mock := &MockInterrupts{ctrl: ctrl}
	mock.recorder = &MockInterruptsMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockInterrupts) EXPECT() *MockInterruptsMockRecorder {
	return m.recorder
}

// Enter mocks base method.
func (m *MockInterrupts) Enter() uint32 {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Enter")
	ret0, _ := ret[0].(uint32)
	return ret0
}

// Enter indicates an expected call of Enter.
func (mr *MockInterruptsMockRecorder) Enter() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Enter", reflect.TypeOf((*MockInterrupts)(nil).Enter))
}

// Leave mocks base method.
func (m *MockInterrupts) Leave(prev uint32) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Leave", prev)
}

// Leave indicates an expected call of Leave.
func (mr *MockInterruptsMockRecorder) Leave(prev interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Leave", reflect.TypeOf((*MockInterrupts)(nil).Leave), prev)
}

var _ port.Interrupts = (*MockInterrupts)(nil)

// MockClock is a mock of the port.Clock interface.
type MockClock struct {
	ctrl     *gomock.Controller
	recorder *MockClockMockRecorder
}

// MockClockMockRecorder is the mock recorder for MockClock.
type MockClockMockRecorder struct {
	mock *MockClock
}

// NewMockClock creates a new mock instance.
func NewMockClock(ctrl *gomock.Controller) *MockClock {
	mock := &MockClock{ctrl: ctrl}
	mock.recorder = &MockClockMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockClock) EXPECT() *MockClockMockRecorder {
	return m.recorder
}

// Now mocks base method.
func (m *MockClock) Now() uint64 {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Now")
	ret0, _ := ret[0].(uint64)
	return ret0
}

// Now indicates an expected call of Now.
func (mr *MockClockMockRecorder) Now() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Now", reflect.TypeOf((*MockClock)(nil).Now))
}

// SleepFor mocks base method.
func (m *MockClock) SleepFor(ticks uint64) port.Reason {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SleepFor", ticks)
	ret0, _ := ret[0].(port.Reason)
	return ret0
}

// SleepFor indicates an expected call of SleepFor.
func (mr *MockClockMockRecorder) SleepFor(ticks interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SleepFor", reflect.TypeOf((*MockClock)(nil).SleepFor), ticks)
}

// WaitFor mocks base method.
func (m *MockClock) WaitFor(ticks uint64) port.Reason {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WaitFor", ticks)
	ret0, _ := ret[0].(port.Reason)
	return ret0
}

// WaitFor indicates an expected call of WaitFor.
func (mr *MockClockMockRecorder) WaitFor(ticks interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WaitFor", reflect.TypeOf((*MockClock)(nil).WaitFor), ticks)
}

var _ port.Clock = (*MockClock)(nil)

// MockHandlerMode is a mock of the port.HandlerMode interface.
type MockHandlerMode struct {
	ctrl     *gomock.Controller
	recorder *MockHandlerModeMockRecorder
}

// MockHandlerModeMockRecorder is the mock recorder for MockHandlerMode.
type MockHandlerModeMockRecorder struct {
	mock *MockHandlerMode
}

// NewMockHandlerMode creates a new mock instance.
func NewMockHandlerMode(ctrl *gomock.Controller) *MockHandlerMode {
	mock := &MockHandlerMode{ctrl: ctrl}
	mock.recorder = &MockHandlerModeMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockHandlerMode) EXPECT() *MockHandlerModeMockRecorder {
	return m.recorder
}

// InHandlerMode mocks base method.
func (m *MockHandlerMode) InHandlerMode() bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "InHandlerMode")
	ret0, _ := ret[0].(bool)
	return ret0
}

// InHandlerMode indicates an expected call of InHandlerMode.
func (mr *MockHandlerModeMockRecorder) InHandlerMode() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "InHandlerMode", reflect.TypeOf((*MockHandlerMode)(nil).InHandlerMode))
}

var _ port.HandlerMode = (*MockHandlerMode)(nil)

// MockIdler is a mock of the port.Idler interface.
type MockIdler struct {
	ctrl     *gomock.Controller
	recorder *MockIdlerMockRecorder
}

// MockIdlerMockRecorder is the mock recorder for MockIdler.
type MockIdlerMockRecorder struct {
	mock *MockIdler
}

// NewMockIdler creates a new mock instance.
func NewMockIdler(ctrl *gomock.Controller) *MockIdler {
	mock := &MockIdler{ctrl: ctrl}
	mock.recorder = &MockIdlerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockIdler) EXPECT() *MockIdlerMockRecorder {
	return m.recorder
}

// WaitForInterrupt mocks base method.
func (m *MockIdler) WaitForInterrupt() {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "WaitForInterrupt")
}

// WaitForInterrupt indicates an expected call of WaitForInterrupt.
func (mr *MockIdlerMockRecorder) WaitForInterrupt() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WaitForInterrupt", reflect.TypeOf((*MockIdler)(nil).WaitForInterrupt))
}

var _ port.Idler = (*MockIdler)(nil)
