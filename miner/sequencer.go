package miner

import (
	"sync"
	"time"
)

// BuildSequencer orders dataset builds across workers.
type BuildSequencer interface {
	// Wait blocks until worker index may build the dataset for epoch. It
	// returns false when quit closes first.
	Wait(quit <-chan struct{}, epoch uint64, index int) bool
	// Done records that index finished (or abandoned) its build for epoch.
	Done(epoch uint64, index int)
}

// unorderedBuilds lets every worker build at once.
type unorderedBuilds struct{}

func (unorderedBuilds) Wait(<-chan struct{}, uint64, int) bool { return true }
func (unorderedBuilds) Done(uint64, int)                       {}

// sequentialBuilds admits workers one at a time in index order for each
// epoch transition. Workers that are not alive are skipped.
type sequentialBuilds struct {
	poll  time.Duration
	alive func(index int) bool

	mu      sync.Mutex
	epoch   uint64
	started bool
	next    int
}

func newSequentialBuilds(poll time.Duration, alive func(int) bool) *sequentialBuilds {
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}
	if alive == nil {
		alive = func(int) bool { return true }
	}
	return &sequentialBuilds{poll: poll, alive: alive}
}

func (s *sequentialBuilds) admit(epoch uint64, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case !s.started || epoch > s.epoch:
		s.started = true
		s.epoch = epoch
		s.next = 0
	case epoch < s.epoch:
		return true
	}
	for s.next < index && !s.alive(s.next) {
		s.next++
	}
	return s.next >= index
}

func (s *sequentialBuilds) Wait(quit <-chan struct{}, epoch uint64, index int) bool {
	for !s.admit(epoch, index) {
		select {
		case <-quit:
			return false
		case <-time.After(s.poll):
		}
	}
	return true
}

func (s *sequentialBuilds) Done(epoch uint64, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started && epoch == s.epoch && index+1 > s.next {
		s.next = index + 1
	}
}
