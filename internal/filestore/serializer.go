package filestore

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrSerializerClosed is returned when a job is submitted after Close
var ErrSerializerClosed = errors.New("write serializer closed")

type job struct {
	fn     func() error
	result chan error
}

// Serializer runs submitted jobs one at a time, in submission order.
// A failing or panicking job does not stop the jobs queued behind it.
type Serializer struct {
	mu     sync.RWMutex
	closed bool
	jobs   chan job
	done   chan struct{}
}

// NewSerializer starts the worker goroutine
func NewSerializer() *Serializer {
	s := &Serializer{
		jobs: make(chan job, 64),
		done: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Serializer) run() {
	defer close(s.done)
	for j := range s.jobs {
		j.result <- call(j.fn)
	}
}

func call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("write job panicked: %v", r)
		}
	}()
	return fn()
}

// Enqueue appends fn to the queue and waits until it has run.
// Cancelling ctx stops the wait; a job that was already queued still runs.
func (s *Serializer) Enqueue(ctx context.Context, fn func() error) error {
	j := job{fn: fn, result: make(chan error, 1)}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrSerializerClosed
	}
	select {
	case s.jobs <- j:
		s.mu.RUnlock()
	case <-ctx.Done():
		s.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs and waits for the queue to drain
func (s *Serializer) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.jobs)
	}
	s.mu.Unlock()
	<-s.done
}
