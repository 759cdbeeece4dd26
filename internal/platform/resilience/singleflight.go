package resilience

import "sync"

type flightCall struct {
	wg  sync.WaitGroup
	val any
	err error
}

// SingleFlight collapses concurrent calls with the same key into one
// execution; followers wait and receive the leader's result. The third
// return value reports whether the result was shared. The zero value is
// ready to use.
type SingleFlight struct {
	mu    sync.Mutex
	calls map[string]*flightCall
}

func (s *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	s.mu.Lock()
	if s.calls == nil {
		s.calls = make(map[string]*flightCall)
	}
	if c, ok := s.calls[key]; ok {
		s.mu.Unlock()
		c.wg.Wait()
		return c.val, c.err, true
	}

	c := &flightCall{}
	c.wg.Add(1)
	s.calls[key] = c
	s.mu.Unlock()

	c.val, c.err = fn()

	s.mu.Lock()
	delete(s.calls, key)
	s.mu.Unlock()
	c.wg.Done()

	return c.val, c.err, false
}
