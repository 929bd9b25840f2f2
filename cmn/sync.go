package cmn

import (
	"sync"

	"go.uber.org/atomic"
)

type (
	// StopCh is a specialized channel for broadcasting a single stop signal,
	// safe to Close from multiple goroutines.
	StopCh struct {
		once sync.Once
		ch   chan struct{}
	}

	// DynSemaphore is a counting semaphore built on a sync.Cond; its size is
	// fixed when it is created.
	DynSemaphore struct {
		size int
		cur  int
		c    *sync.Cond
		mu   sync.Mutex
	}

	// LimitedWaitGroup combines a sync.WaitGroup with a DynSemaphore: Go
	// starts a function in its own goroutine, never running more than n
	// concurrently, and Wait blocks until all of them have returned. The
	// traversal engine's worker pool runs on it.
	LimitedWaitGroup struct {
		wg   sync.WaitGroup
		sema *DynSemaphore
	}

	// PendingCounter tracks outstanding TaskContexts with atomic
	// increment-on-enqueue / decrement-on-completion, per spec §5: the run
	// terminates when the queue is empty AND this counter reaches zero.
	PendingCounter struct {
		n atomic.Int64
	}
)

func NewStopCh() *StopCh {
	return &StopCh{ch: make(chan struct{})}
}

func (sc *StopCh) Listen() <-chan struct{} { return sc.ch }

func (sc *StopCh) Close() {
	sc.once.Do(func() { close(sc.ch) })
}

func NewDynSemaphore(n int) *DynSemaphore {
	Assert(n >= 1)
	sema := &DynSemaphore{size: n}
	sema.c = sync.NewCond(&sema.mu)
	return sema
}

func (s *DynSemaphore) Acquire() {
	s.mu.Lock()
	for s.cur >= s.size {
		s.c.Wait()
	}
	s.cur++
	s.mu.Unlock()
}

func (s *DynSemaphore) Release() {
	s.mu.Lock()
	Assert(s.cur > 0)
	s.cur--
	s.c.Signal()
	s.mu.Unlock()
}

func NewLimitedWaitGroup(n int) *LimitedWaitGroup {
	return &LimitedWaitGroup{sema: NewDynSemaphore(n)}
}

// Go runs fn in a new goroutine once a slot is free, blocking the caller
// until one opens up.
func (wg *LimitedWaitGroup) Go(fn func()) {
	wg.sema.Acquire()
	wg.wg.Add(1)
	go func() {
		defer wg.wg.Done()
		defer wg.sema.Release()
		fn()
	}()
}

func (wg *LimitedWaitGroup) Wait() { wg.wg.Wait() }

func NewPendingCounter() *PendingCounter { return &PendingCounter{} }

func (p *PendingCounter) Inc() int64 { return p.n.Add(1) }

func (p *PendingCounter) Dec() int64 {
	v := p.n.Add(-1)
	Assertf(v >= 0, "pending counter went negative: %d", v)
	return v
}

func (p *PendingCounter) Load() int64 { return p.n.Load() }
