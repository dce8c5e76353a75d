package record

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// IDGenerator produces ids for records created without one.
// Implemented by UUIDv7Generator (production) and SequenceGenerator (tests, harness).
type IDGenerator interface {
	NewID(family Family) string
}

// UUIDv7Generator generates time-sortable UUIDv7 record ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewID returns a new hyphenated UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) NewID(Family) string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequenceGenerator returns deterministic ids of the form "<family>-0001".
// Each family has its own counter.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu   sync.Mutex
	next map[Family]int
}

// NewSequenceGenerator creates a generator whose first id per family ends in 0001.
// The zero value is ready to use as well.
func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{}
}

// NewID returns the next id for family.
func (g *SequenceGenerator) NewID(family Family) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.next == nil {
		g.next = make(map[Family]int)
	}
	g.next[family]++
	return fmt.Sprintf("%s-%04d", family, g.next[family])
}

// Reset restarts every family counter.
func (g *SequenceGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next = nil
}

// NormalizeID trims surrounding whitespace and applies Unicode NFC so that ids
// typed by different clients compare equal byte-for-byte.
func NormalizeID(id string) string {
	return norm.NFC.String(strings.TrimSpace(id))
}

// NormalizeIDs applies NormalizeID to every id and removes duplicates.
func NormalizeIDs(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = NormalizeID(id)
	}
	return Dedupe(out)
}
