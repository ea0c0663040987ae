// Package worker runs CPU bound work, such as ticking many locomotion components, on a fixed set of
// goroutines.
package worker

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/locomotion/internal"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// Pool is a fixed number of goroutines executing submitted functions. A panicking function is recovered,
// reported to sentry and logged; the worker that ran it keeps running.
type Pool struct {
	queue chan func()
	wg    sync.WaitGroup

	closeOnce sync.Once
	closed    atomic.Bool
	panics    atomic.Uint64

	log *logrus.Logger
}

// New starts a pool of n workers. If n is not positive, runtime.NumCPU() workers are started.
func New(n int, log *logrus.Logger) *Pool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	p := &Pool{
		queue: make(chan func(), n),
		log:   internal.Logger(log),
	}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for f := range p.queue {
		p.run(f)
	}
}

func (p *Pool) run(f func()) {
	defer func() {
		if r := recover(); r != nil {
			p.panics.Inc()
			if hub := sentry.CurrentHub(); hub.Client() != nil {
				hub.Recover(r)
			}
			p.log.Errorf("worker: recovered from panic: %v", r)
		}
	}()
	f()
}

// Submit queues f, blocking while every worker is busy and the queue is full. To be used by a function
// that may be CPU intensive. Submit returns an error once the pool is closed.
func (p *Pool) Submit(f func()) (err error) {
	if p.closed.Load() {
		return fmt.Errorf("worker: pool closed")
	}
	// Close may race with a pending send.
	defer func() {
		if recover() != nil {
			err = fmt.Errorf("worker: pool closed")
		}
	}()
	p.queue <- f
	return nil
}

// Run submits every function and waits until all of them returned.
func (p *Pool) Run(fs ...func()) error {
	var wg sync.WaitGroup
	for _, f := range fs {
		wg.Add(1)
		if err := p.Submit(func() {
			defer wg.Done()
			f()
		}); err != nil {
			wg.Done()
			wg.Wait()
			return err
		}
	}
	wg.Wait()
	return nil
}

// Panics returns the number of panics recovered so far.
func (p *Pool) Panics() uint64 {
	return p.panics.Load()
}

// Close stops accepting work and waits for the queued functions to finish.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.queue)
	})
	p.wg.Wait()
}
