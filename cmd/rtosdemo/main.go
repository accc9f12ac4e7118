// Copyright 2016 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command rtosdemo exercises the kernel end to end: a producer thread
// sends priority-ordered messages on a bounded queue, a consumer thread
// drains them, and a watchdog thread demonstrates the signal-flag
// mailbox and a timed wait. It is a debugging aid, not a test: the
// --messages flag sets how many messages the producer sends; the queue
// depth (3) and the three threads are fixed.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"v.io/x/rtos"
	"v.io/x/rtos/kconfig"
	"v.io/x/rtos/kerrno"
	"v.io/x/rtos/klog"
)

var opts = kconfig.Default()

func main() {
	kconfig.RegisterFlags(pflag.CommandLine, "rtosdemo", &opts)
	messages := pflag.IntP("messages", "n", 5, "number of messages the producer sends")
	pflag.Parse()

	klog.Kernel.SetV(1)

	queue := rtos.NewMessageQueue(3, 8, nil)
	defer queue.Close()

	done := make(chan struct{})

	consumer := rtos.New("consumer", rtos.PriorityLowest+1, func(arg interface{}) interface{} {
		q := arg.(*rtos.MessageQueue)
		buf := make([]byte, 8)
		count := 0
		for {
			prio, err := q.TimedReceive(buf, 50)
			if err == kerrno.ETIMEDOUT {
				break
			}
			if err != nil {
				klog.Kernel.Errorf("rtosdemo: receive failed: %v", err)
				break
			}
			fmt.Printf("consumer: received %q at priority %d\n", buf, prio)
			count++
		}
		close(done)
		return count
	}, queue, rtos.StackSpec{})

	watchdog := rtos.New("watchdog", rtos.PriorityLowest, func(arg interface{}) interface{} {
		self := rtos.Current()
		const wakeSignal = 1 << 0
		if _, err := self.TimedSigWait(wakeSignal, rtos.SigWaitAny, 200); err == nil {
			fmt.Println("watchdog: producer signaled completion")
		} else {
			fmt.Println("watchdog: timed out waiting for producer")
		}
		return nil
	}, nil, rtos.StackSpec{})

	producer := rtos.New("producer", rtos.PriorityLowest+2, func(arg interface{}) interface{} {
		q := arg.(*rtos.MessageQueue)
		for i := 0; i < *messages; i++ {
			priority := kerrno.Priority(1 + i%3)
			payload := []byte(fmt.Sprintf("msg-%04d", i))
			if err := q.Send(payload, priority); err != nil {
				klog.Kernel.Errorf("rtosdemo: send failed: %v", err)
				os.Exit(1)
			}
		}
		watchdog.SigRaise(1 << 0)
		return nil
	}, queue, rtos.StackSpec{})

	producer.Detach()

	var exitValue interface{}
	if err := consumer.Join(&exitValue); err != nil {
		klog.Kernel.Fatalf("rtosdemo: consumer.Join: %v", err)
	}
	if err := watchdog.Join(nil); err != nil {
		klog.Kernel.Fatalf("rtosdemo: watchdog.Join: %v", err)
	}
	<-done

	stats := rtos.Stats()
	fmt.Printf("consumer processed %v messages; scheduler created %d threads, destroyed %d\n",
		exitValue, stats.ThreadsCreated, stats.ThreadsDestroyed)
}
