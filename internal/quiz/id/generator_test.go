package id

import (
	"strings"
	"sync"
	"testing"
)

func TestSequentialNext(t *testing.T) {
	g := NewSequential("quiz", 0)
	if got := g.Next(nil); got != "quiz1" {
		t.Fatalf("first id = %q, want quiz1", got)
	}
	if got := g.Next(nil); got != "quiz2" {
		t.Fatalf("second id = %q, want quiz2", got)
	}
}

func TestSequentialSeed(t *testing.T) {
	g := NewSequential("quiz", 41)
	if got := g.Next(nil); got != "quiz42" {
		t.Fatalf("seeded id = %q, want quiz42", got)
	}
}

func TestSequentialSkipsTaken(t *testing.T) {
	taken := map[string]bool{"quiz1": true, "quiz2": true}
	g := NewSequential("quiz", 0)
	got := g.Next(func(id string) bool { return taken[id] })
	if got != "quiz3" {
		t.Fatalf("id = %q, want quiz3", got)
	}
}

func TestSequentialConcurrent(t *testing.T) {
	g := NewSequential("quiz", 0)

	const n = 200
	var (
		mu  sync.Mutex
		ids = make(map[string]bool, n)
		wg  sync.WaitGroup
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			id := g.Next(nil)
			mu.Lock()
			ids[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(ids) != n {
		t.Fatalf("got %d distinct ids, want %d", len(ids), n)
	}
}

func TestRandomNext(t *testing.T) {
	g := NewRandom("quiz")
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.Next(nil)
		if !strings.HasPrefix(id, "quiz-") {
			t.Fatalf("unexpected prefix: %q", id)
		}
		if len(id) != len("quiz-")+randomSuffixLen {
			t.Fatalf("unexpected length: %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id: %q", id)
		}
		seen[id] = true
	}
}

func TestRandomRetriesOnCollision(t *testing.T) {
	g := NewRandom("quiz")
	first := g.Next(nil)
	rejections := 0
	got := g.Next(func(id string) bool {
		if rejections == 0 {
			rejections++
			return true
		}
		return false
	})
	if got == first {
		t.Fatalf("expected a fresh id")
	}
	if rejections != 1 {
		t.Fatalf("exists callback consulted %d times", rejections)
	}
}

func TestEmptyPrefixDefaults(t *testing.T) {
	if got := NewSequential("", 0).Next(nil); got != DefaultPrefix+"1" {
		t.Fatalf("id = %q", got)
	}
	if got := NewRandom("").Next(nil); !strings.HasPrefix(got, DefaultPrefix+"-") {
		t.Fatalf("id = %q", got)
	}
}
