package filegen

import (
	"math/rand/v2"
	"sync"
	"time"
)

// maxID bounds identifiers so they read like the short numbers in class and
// function names (MyClass12345)
const maxID = 1 << 31

// IDGenerator hands out pseudo-random identifiers that never repeat within
// one generator. Safe for concurrent use.
type IDGenerator struct {
	mu   sync.Mutex
	rng  *rand.Rand
	used map[int]struct{}
}

// NewIDGenerator seeds the generator. A zero seed uses the current time.
func NewIDGenerator(seed int64) *IDGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &IDGenerator{
		rng:  rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
		used: make(map[int]struct{}),
	}
}

// Next returns a fresh identifier
func (g *IDGenerator) Next() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	for {
		id := 1 + g.rng.IntN(maxID-1)
		if _, taken := g.used[id]; !taken {
			g.used[id] = struct{}{}
			return id
		}
	}
}

// Count returns how many identifiers were handed out
func (g *IDGenerator) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.used)
}
