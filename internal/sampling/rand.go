package sampling

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Rand is the uniform randomness source consumed by the Thompson draw and the
// stable-proposal tiebreaker. Float64 must return values in [0, 1).
// Production uses a locked time-seeded source; tests inject a seeded one.
type Rand interface {
	Float64() float64
}

type lockedRand struct {
	mu  sync.Mutex
	src *rand.Rand
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Float64()
}

// NewRand returns a concurrency-safe time-seeded source.
func NewRand() Rand {
	return &lockedRand{src: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededRand returns a concurrency-safe source with a fixed seed, for
// deterministic tests.
func NewSeededRand(seed int64) Rand {
	return &lockedRand{src: rand.New(rand.NewSource(seed))}
}

// normFloat64 draws z ~ N(0,1) via the Box-Muller transform. u1 is resampled
// away from zero so the log stays finite.
func normFloat64(r Rand) float64 {
	u1 := r.Float64()
	for u1 == 0 {
		u1 = r.Float64()
	}
	u2 := r.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
