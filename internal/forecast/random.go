package forecast

import (
	"math/rand/v2"
	"sync"
	"time"
)

// RandomSource yields uniform values in [0, 1)
type RandomSource interface {
	NextFloat() float64
}

// pcgSource is a seeded PCG generator. It is not safe for concurrent use.
type pcgSource struct {
	r *rand.Rand
}

// NewRandomSource returns a deterministic source for seed
func NewRandomSource(seed uint64) RandomSource {
	return &pcgSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *pcgSource) NextFloat() float64 {
	return s.r.Float64()
}

// FixedSource always returns the same value
type FixedSource float64

func (f FixedSource) NextFloat() float64 {
	return float64(f)
}

// SequenceSource replays values in order, cycling when exhausted
type SequenceSource struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewSequenceSource creates a source replaying values
func NewSequenceSource(values ...float64) *SequenceSource {
	return &SequenceSource{values: values}
}

func (s *SequenceSource) NextFloat() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// RandomFactory hands out an independent source per pipeline invocation
type RandomFactory func() RandomSource

// SeededFactory returns a factory producing identical sources for a non-zero
// seed, and time-seeded sources when seed is 0.
func SeededFactory(seed uint64) RandomFactory {
	if seed == 0 {
		return func() RandomSource {
			return NewRandomSource(uint64(time.Now().UnixNano()))
		}
	}
	return func() RandomSource {
		return NewRandomSource(seed)
	}
}
