package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator hands out ULIDs stamped with a caller-supplied time, so ids
// minted during a simulation sort by simulated time rather than wall clock.
// Entropy is monotonic: ids sharing a millisecond still sort in issue order.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	last    uint64
}

// NewGenerator seeds the entropy source. A zero seed draws one from
// crypto/rand; any other seed gives a reproducible sequence.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
	}
	return &Generator{entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)}
}

// Next returns a ULID string for t. Times earlier than the previous call are
// clamped forward so the sequence stays sortable.
func (g *Generator) Next(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := ulid.Timestamp(t.UTC())
	if ms < g.last {
		ms = g.last
	}
	g.last = ms

	id, err := ulid.New(ms, g.entropy)
	if err != nil {
		// only on entropy exhaustion within one millisecond
		panic(err)
	}
	return id.String()
}

var std = NewGenerator(0)

// New returns a ULID for the current wall-clock time.
func New() string {
	return std.Next(time.Now())
}
