package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ReferenceGenerator produces unique, sortable transaction references.
// ULIDs are timestamp-prefixed, so references generated later sort later,
// which keeps journal listings stable across restarts.
type ReferenceGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Reference prefixes by posting kind
const (
	PrefixJournal    = "JE"
	PrefixFine       = "FINE"
	PrefixDeposit    = "DEP"
	PrefixWithdrawal = "WDR"
	PrefixTransfer   = "TRF"
	PrefixCategory   = "CAT"
	PrefixVoid       = "VOID"
)

// NewReferenceGenerator creates a generator with monotonic entropy so two
// references issued in the same millisecond still differ and stay ordered
func NewReferenceGenerator() *ReferenceGenerator {
	return &ReferenceGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Next returns a prefixed reference, e.g. FINE-01ARZ3NDEKTSV4RRFFQ69G5FAV
func (g *ReferenceGenerator) Next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
	if prefix == "" {
		return id.String()
	}
	return fmt.Sprintf("%s-%s", strings.ToUpper(prefix), id.String())
}
