package order

import (
	"strconv"
	"sync"
	"time"
)

// BatchIDGenerator issues shipment batch ids. An id is the current Unix time in
// milliseconds; ids handed out by one generator are strictly increasing.
type BatchIDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewBatchIDGenerator creates a generator reading the wall clock
func NewBatchIDGenerator() *BatchIDGenerator {
	return &BatchIDGenerator{now: time.Now}
}

// NewBatchIDGeneratorWithClock creates a generator with a custom clock
func NewBatchIDGeneratorWithClock(now func() time.Time) *BatchIDGenerator {
	return &BatchIDGenerator{now: now}
}

// Next returns a fresh batch id
func (g *BatchIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}
