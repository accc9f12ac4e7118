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

func TestMessageQueuePriorityOrder(t *testing.T) {
	q := rtos.NewMessageQueue(4, 4, nil)
	defer q.Close()

	send := func(payload string, prio kerrno.Priority) {
		if err := q.TrySend([]byte(payload), prio); err != nil {
			t.Fatalf("TrySend(%q, %d): %v", payload, prio, err)
		}
	}
	send("low1", 1)
	send("high", 9)
	send("low2", 1)
	send("mid", 5)

	var got []string
	buf := make([]byte, 4)
	for i := 0; i < 4; i++ {
		if _, err := q.TryReceive(buf); err != nil {
			t.Fatalf("TryReceive: %v", err)
		}
		got = append(got, string(buf))
	}

	want := []string{"high", "mid", "low1", "low2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("receive order = %v, want %v", got, want)
		}
	}
}

func TestMessageQueueWrongSizeIsEMSGSIZE(t *testing.T) {
	q := rtos.NewMessageQueue(2, 4, nil)
	defer q.Close()

	if err := q.TrySend([]byte("toolong!"), 1); err != kerrno.EMSGSIZE {
		t.Fatalf("TrySend with wrong size: %v, want EMSGSIZE", err)
	}
	if _, err := q.TryReceive(make([]byte, 2)); err != kerrno.EMSGSIZE {
		t.Fatalf("TryReceive with wrong size buffer: %v, want EMSGSIZE", err)
	}
}

func TestMessageQueueFullAndEmptyAreEAGAIN(t *testing.T) {
	q := rtos.NewMessageQueue(1, 2, nil)
	defer q.Close()

	if err := q.TrySend([]byte("ok"), 1); err != nil {
		t.Fatalf("first TrySend: %v", err)
	}
	if err := q.TrySend([]byte("no"), 1); err != kerrno.EAGAIN {
		t.Fatalf("TrySend on full queue: %v, want EAGAIN", err)
	}

	buf := make([]byte, 2)
	if _, err := q.TryReceive(buf); err != nil {
		t.Fatalf("TryReceive: %v", err)
	}
	if _, err := q.TryReceive(buf); err != kerrno.EAGAIN {
		t.Fatalf("TryReceive on empty queue: %v, want EAGAIN", err)
	}
}

// TestMessageQueueBlockingReceiveWakesOnSend mirrors the single-producer,
// single-consumer scenario where a blocked receiver is woken by the very
// next send.
func TestMessageQueueBlockingReceiveWakesOnSend(t *testing.T) {
	q := rtos.NewMessageQueue(1, 5, nil)
	defer q.Close()

	received := make(chan string, 1)
	th := rtos.New("receiver", rtos.PriorityLowest, func(arg interface{}) interface{} {
		buf := make([]byte, 5)
		if _, err := q.Receive(buf); err != nil {
			t.Errorf("Receive: %v", err)
			return nil
		}
		received <- string(buf)
		return nil
	}, nil, rtos.StackSpec{})

	time.Sleep(20 * time.Millisecond)
	if err := q.Send([]byte("hello"), 1); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case v := <-received:
		if v != "hello" {
			t.Fatalf("received %q, want %q", v, "hello")
		}
	case <-time.After(time.Second):
		t.Fatal("blocked receiver never woke")
	}
	th.Join(nil)
}

func TestMessageQueueTimedReceiveTimesOut(t *testing.T) {
	q := rtos.NewMessageQueue(1, 1, nil)
	defer q.Close()

	start := time.Now()
	_, err := q.TimedReceive(make([]byte, 1), 5)
	elapsed := time.Since(start)

	if err != kerrno.ETIMEDOUT {
		t.Fatalf("TimedReceive on empty queue: %v, want ETIMEDOUT", err)
	}
	if elapsed < 4*time.Millisecond {
		t.Fatalf("elapsed = %v, too short for 5 ticks", elapsed)
	}
}

// TestMessageQueueResetWakesBlockedReceivers exercises the three-messages
// two-blocked-receivers reset scenario: Reset discards pending messages
// and wakes blocked receivers, which then find the queue empty and block
// again rather than observing a stale message.
func TestMessageQueueResetWakesBlockedReceivers(t *testing.T) {
	q := rtos.NewMessageQueue(3, 4, nil)
	defer q.Close()

	woken := make(chan struct{}, 2)
	mkReceiver := func() *rtos.Thread {
		return rtos.New("receiver", rtos.PriorityLowest, func(arg interface{}) interface{} {
			buf := make([]byte, 4)
			_, err := q.TimedReceive(buf, 50)
			if err == kerrno.ETIMEDOUT {
				woken <- struct{}{}
			}
			return err
		}, nil, rtos.StackSpec{})
	}
	r1, r2 := mkReceiver(), mkReceiver()

	time.Sleep(20 * time.Millisecond)
	for i := 0; i < 3; i++ {
		q.TrySend([]byte("msg!"), 1)
	}
	q.Reset()

	if l := q.Len(); l != 0 {
		t.Fatalf("Len() after Reset = %d, want 0", l)
	}

	select {
	case <-woken:
	case <-time.After(time.Second):
		t.Fatal("first receiver never observed the reset")
	}
	select {
	case <-woken:
	case <-time.After(time.Second):
		t.Fatal("second receiver never observed the reset")
	}
	r1.Join(nil)
	r2.Join(nil)
}

func TestMessageQueueCapAndLen(t *testing.T) {
	q := rtos.NewMessageQueue(5, 2, nil)
	defer q.Close()

	if q.Cap() != 5 {
		t.Fatalf("Cap() = %d, want 5", q.Cap())
	}
	q.TrySend([]byte("hi"), 1)
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", q.Len())
	}
}
