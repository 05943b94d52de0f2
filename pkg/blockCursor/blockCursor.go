package blockCursor

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrNotInitialized = errors.New("cursor not initialized")
	ErrRangeMismatch  = errors.New("advancement range does not extend the cursor")
)

// Cursor tracks the last block height whose request events have been fully
// dispatched and durably submitted. It starts at the chain height observed
// when the process comes up, so backlog from before the first run is
// intentionally never replayed, and it only ever moves forward in
// contiguous batch-sized steps.
type Cursor struct {
	mu                 sync.Mutex
	initialized        bool
	lastProcessedBlock uint64
}

func NewCursor() *Cursor {
	return &Cursor{}
}

// Initialize seeds the cursor with the current chain height. Subsequent
// calls are ignored so a restartless re-init cannot move the cursor.
func (c *Cursor) Initialize(height uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return
	}
	c.initialized = true
	c.lastProcessedBlock = height
}

func (c *Cursor) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

func (c *Cursor) LastProcessedBlock() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastProcessedBlock
}

// NextRange returns the next unseen inclusive block range up to the given
// chain height. ok is false when there is nothing new to process.
func (c *Cursor) NextRange(latest uint64) (fromBlock uint64, toBlock uint64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized || latest <= c.lastProcessedBlock {
		return 0, 0, false
	}
	return c.lastProcessedBlock + 1, latest, true
}

// Advance moves the cursor past a fully handled batch. The range must start
// exactly where the cursor stands, so blocks can neither be skipped nor
// re-processed once advanced past.
func (c *Cursor) Advance(fromExclusive, toInclusive uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return ErrNotInitialized
	}
	if fromExclusive != c.lastProcessedBlock || toInclusive <= fromExclusive {
		return errors.Wrapf(ErrRangeMismatch,
			"cursor at %d, advance requested (%d, %d]", c.lastProcessedBlock, fromExclusive, toInclusive)
	}
	c.lastProcessedBlock = toInclusive
	return nil
}
