package token

import (
	"math/rand/v2"
	"strconv"
	"sync"
)

// upper bound (exclusive) of the random prefix of generated ids
const DefaultIDBound int64 = 1_000_000_000_000

// mints visitor ids as a random prefix followed by the epoch-millisecond timestamp.
// ids are digits only so they never contain the delimiter.
// safe for concurrent use
type Generator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	bound int64
}

// creates a generator drawing from src. a nil source uses the
// runtime's global generator, which is already safe for concurrent use
func NewGenerator(src rand.Source) *Generator {
	g := &Generator{bound: DefaultIDBound}

	if src != nil {
		g.rng = rand.New(src)
	}

	return g
}

// overrides the random prefix bound, mostly useful in tests
func (g *Generator) WithBound(bound int64) *Generator {
	if bound > 0 {
		g.bound = bound
	}

	return g
}

// returns a fresh visitor id for the given epoch-millisecond time
func (g *Generator) NewID(now int64) string {
	return strconv.FormatInt(g.draw(), 10) + strconv.FormatInt(now, 10)
}

func (g *Generator) draw() int64 {
	if g.rng == nil {
		return rand.Int64N(g.bound) //nolint:gosec // ids correlate visits, they are not secrets
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	return g.rng.Int64N(g.bound)
}
