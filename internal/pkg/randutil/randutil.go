// Package randutil provides a rand.Rand that is safe to share between
// request handlers. math/rand sources are not goroutine-safe on their
// own.
package randutil

import (
	"math/rand"
	"sync"
	"time"
)

type lockedSource struct {
	mu  sync.Mutex
	src rand.Source64
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.src.Int63()
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.src.Uint64()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.src.Seed(seed)
}

// NewLocked returns a time-seeded rand.Rand guarded by a mutex.
func NewLocked() *rand.Rand {
	return rand.New(&lockedSource{
		src: rand.NewSource(time.Now().UnixNano()).(rand.Source64),
	})
}
