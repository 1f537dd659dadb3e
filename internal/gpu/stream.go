package gpu

import "sync"

// stream is an in-order asynchronous work queue. Submitted operations run one
// after another on background goroutines; wait blocks for the tail.
type stream struct {
	mu   sync.Mutex
	tail chan struct{}
	err  error
}

func (s *stream) submit(op func() error) {
	s.mu.Lock()
	prev := s.tail
	done := make(chan struct{})
	s.tail = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		if err := op(); err != nil {
			s.mu.Lock()
			if s.err == nil {
				s.err = err
			}
			s.mu.Unlock()
		}
	}()
}

// idle blocks until every submitted operation has finished. Errors stay
// queued for the next wait.
func (s *stream) idle() {
	s.mu.Lock()
	tail := s.tail
	s.mu.Unlock()
	if tail != nil {
		<-tail
	}
}

// wait blocks until every submitted operation has finished and returns the
// first error raised since the previous wait.
func (s *stream) wait() error {
	s.idle()

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.err
	s.err = nil
	return err
}
