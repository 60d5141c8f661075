// Package id produces collision-resistant identifiers for stored quizzes.
package id

import (
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	// SchemeSequential selects the monotonic-counter generator.
	SchemeSequential = "sequential"
	// SchemeRandom selects the random-suffix generator.
	SchemeRandom = "random"

	// DefaultPrefix is prepended to every generated identifier.
	DefaultPrefix = "quiz"

	randomSuffixLen = 8
)

// Generator produces quiz identifiers. Next must return an id for which
// exists reports false; exists may be nil when no store is attached.
type Generator interface {
	Next(exists func(string) bool) string
}

// Sequential issues prefix+counter identifiers. The counter is seeded from
// the store size at start, which keeps ids deterministic within one process
// lifetime. Safe for concurrent use.
type Sequential struct {
	mu      sync.Mutex
	prefix  string
	counter int64
}

// NewSequential returns a Sequential generator seeded so the next id is
// prefix+(seed+1).
func NewSequential(prefix string, seed int64) *Sequential {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Sequential{prefix: prefix, counter: seed}
}

// Next returns the next free sequential identifier.
func (g *Sequential) Next(exists func(string) bool) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	for {
		g.counter++
		id := g.prefix + strconv.FormatInt(g.counter, 10)
		if exists == nil || !exists(id) {
			return id
		}
	}
}

// Random issues prefix plus a fixed-length alphanumeric suffix derived from
// a UUID. Meant for deployments that want opaque, non-guessable ids.
type Random struct {
	prefix string
}

// NewRandom returns a Random generator with the given prefix.
func NewRandom(prefix string) *Random {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Random{prefix: prefix}
}

// Next returns a fresh random identifier, retrying on the negligible chance
// of a collision.
func (g *Random) Next(exists func(string) bool) string {
	for {
		suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:randomSuffixLen]
		id := g.prefix + "-" + suffix
		if exists == nil || !exists(id) {
			return id
		}
	}
}
