// Package queue is a lock-free FIFO (Michael and Scott) used to pass tasks to an event loop.
package queue

import (
	"sync/atomic"
)

type TaskQueue interface {
	Enqueue(interface{})
	Dequeue() interface{}
	IsEmpty() bool
	Len() int
}

type Queue struct {
	head   atomic.Pointer[node]
	tail   atomic.Pointer[node]
	length atomic.Int32
}

type node struct {
	value interface{}
	next  atomic.Pointer[node]
}

func NewQueue() TaskQueue {
	q := &Queue{}
	n := &node{} // the first node is blank.
	q.head.Store(n)
	q.tail.Store(n)
	return q
}

func (that *Queue) Enqueue(task interface{}) {
	n := &node{value: task}
	for {
		tail := that.tail.Load()
		next := tail.next.Load()
		if tail != that.tail.Load() {
			continue
		}
		if next != nil {
			that.tail.CompareAndSwap(tail, next)
			continue
		}
		if tail.next.CompareAndSwap(nil, n) {
			that.tail.CompareAndSwap(tail, n)
			that.length.Add(1)
			return
		}
	}
}

func (that *Queue) Dequeue() interface{} {
	for {
		head := that.head.Load()
		tail := that.tail.Load()
		next := head.next.Load()
		if head != that.head.Load() {
			continue
		}
		if head == tail {
			if next == nil {
				return nil
			}
			that.tail.CompareAndSwap(tail, next)
			continue
		}
		task := next.value
		if that.head.CompareAndSwap(head, next) {
			that.length.Add(-1)
			return task
		}
	}
}

func (that *Queue) IsEmpty() bool {
	return that.length.Load() == 0
}

func (that *Queue) Len() int {
	return int(that.length.Load())
}
