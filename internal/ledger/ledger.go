package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Ledger holds an ordered chain of blocks and guards appends against a stale tail.
type Ledger struct {
	logger  *zap.Logger
	metrics Metrics

	mu     sync.RWMutex
	blocks []Block
}

// New constructs an empty Ledger.
func New(logger *zap.Logger, metrics Metrics) (*Ledger, error) {
	if logger == nil {
		return nil, errors.New("ledger logger is required")
	}
	if metrics == nil {
		return nil, errors.New("ledger metrics is required")
	}
	return &Ledger{
		logger:  logger,
		metrics: metrics,
		blocks:  make([]Block, 0),
	}, nil
}

// Append links payload to the current tail and admits it.
// It returns false when a concurrent append moved the tail first; the ledger never retries.
func (l *Ledger) Append(payload string) bool {
	return l.Admit(NewBlock(payload, l.TailHash()))
}

// Admit appends block only if its previous hash equals the current tail hash.
func (l *Ledger) Admit(block Block) bool {
	l.mu.Lock()
	tail := l.tailHash()
	admitted := block.PreviousHash() == tail
	if admitted {
		l.blocks = append(l.blocks, block)
	}
	length := len(l.blocks)
	// observed under the lock so the length gauge follows admission order
	l.metrics.ObserveAppend(admitted, length)
	l.mu.Unlock()

	if !admitted {
		l.logger.Warn("block rejected: stale previous hash",
			zap.String("previous_hash", block.PreviousHash()),
			zap.String("tail_hash", tail),
		)
		return false
	}
	l.logger.Debug("block admitted", zap.String("hash", block.Hash()), zap.Int("length", length))
	return true
}

// TailHash returns the hash of the last admitted block or GenesisHash.
func (l *Ledger) TailHash() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tailHash()
}

func (l *Ledger) tailHash() string {
	if len(l.blocks) == 0 {
		return GenesisHash
	}
	return l.blocks[len(l.blocks)-1].Hash()
}

// Len returns the number of admitted blocks.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.blocks)
}

// Snapshot returns a copy of the chain ordered newest first.
func (l *Ledger) Snapshot() []Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Block, len(l.blocks))
	for i, b := range l.blocks {
		out[len(l.blocks)-1-i] = b
	}
	return out
}

// IsValid reports whether every block matches its hash and links to its predecessor.
func (l *Ledger) IsValid() bool {
	return l.Verify() == nil
}

// Verify re-scans the whole chain oldest to newest and returns an *IntegrityError
// for the first block whose stored hash or linkage does not hold.
func (l *Ledger) Verify() error {
	_, err := l.VerifyLen()
	return err
}

// VerifyLen is Verify that also reports how many blocks the scan covered.
func (l *Ledger) VerifyLen() (length int, err error) {
	started := time.Now()

	l.mu.RLock()
	blocks := make([]Block, len(l.blocks))
	copy(blocks, l.blocks)
	l.mu.RUnlock()

	length = len(blocks)
	defer func() {
		l.metrics.ObserveValidate(err == nil, length, started)
		if err != nil {
			l.logger.Error("chain verification failed", zap.Error(err), zap.Int("length", length))
		}
	}()

	for i := 1; i < len(blocks); i++ {
		current := blocks[i]
		previous := blocks[i-1]

		if calculated := current.CalculateHash(); current.Hash() != calculated {
			return length, &IntegrityError{
				Index:  i,
				Reason: fmt.Sprintf("invalid hash: stored %s, calculated %s", current.Hash(), calculated),
			}
		}
		if previous.Hash() != current.PreviousHash() {
			return length, &IntegrityError{
				Index:  i,
				Reason: fmt.Sprintf("invalid previous hash: expected %s, got %s", previous.Hash(), current.PreviousHash()),
			}
		}
	}
	return length, nil
}
