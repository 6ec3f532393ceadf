package utils

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextFormat(t *testing.T) {
	t.Parallel()
	g := NewReferenceGenerator()

	ref := g.Next(PrefixFine)
	parts := strings.SplitN(ref, "-", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, "FINE", parts[0])
	assert.Len(t, parts[1], 26, "ULID is 26 characters")

	assert.NotContains(t, g.Next(""), "-")
	assert.True(t, strings.HasPrefix(g.Next("dep"), "DEP-"), "prefix is upcased")
}

func TestNextOrderedWithinGenerator(t *testing.T) {
	t.Parallel()
	g := NewReferenceGenerator()

	prev := g.Next(PrefixJournal)
	for i := 0; i < 100; i++ {
		next := g.Next(PrefixJournal)
		assert.Less(t, prev, next, "references issued later must sort later")
		prev = next
	}
}

func TestNextUniqueUnderConcurrency(t *testing.T) {
	t.Parallel()
	g := NewReferenceGenerator()

	const n = 50
	refs := make(chan string, n*4)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < n; j++ {
				refs <- g.Next(PrefixDeposit)
			}
		}()
	}
	wg.Wait()
	close(refs)

	seen := make(map[string]bool, n*4)
	for ref := range refs {
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
	assert.Len(t, seen, n*4)
}
