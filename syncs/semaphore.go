package syncs

import "context"

type Semaphore chan bool

func NewSemaphore(n int) Semaphore {
	return make(chan bool, n)
}

func (s Semaphore) Acquire() {
	s <- true
}

// AcquireContext blocks until a slot is free or ctx is done.
func (s Semaphore) AcquireContext(ctx context.Context) error {
	select {
	case s <- true:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s Semaphore) Release() {
	<-s
}

// Do runs fn holding one slot.
func (s Semaphore) Do(ctx context.Context, fn func() error) error {
	if err := s.AcquireContext(ctx); err != nil {
		return err
	}
	defer s.Release()
	return fn()
}
