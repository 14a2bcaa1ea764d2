// =============================
// File: internal/launch/book.go
// =============================
package launch

import (
	"errors"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

var (
	ErrTokenAlreadyExists = errors.New("token already exists")
	ErrTokenNotFound      = errors.New("token not found")
)

// Book maps token identities to their ledger entries. Each entry carries its
// own lock, so trades on different tokens proceed fully in parallel while two
// trades on the same token are serialized.
type Book struct {
	mu      sync.RWMutex
	entries map[solana.PublicKey]*bookEntry
	logger  *zap.Logger
}

type bookEntry struct {
	mu   sync.Mutex
	info TokenInfo
}

// NewBook constructs an empty token book.
func NewBook(logger *zap.Logger) *Book {
	return &Book{
		entries: make(map[solana.PublicKey]*bookEntry),
		logger:  logger.Named("token_book"),
	}
}

// Create registers a new ledger entry. Names collide through their derived
// identity, so a second launch of the same name fails here.
func (b *Book) Create(info TokenInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.entries[info.Token]; ok {
		return ErrTokenAlreadyExists
	}
	b.entries[info.Token] = &bookEntry{info: info}

	b.logger.Info("Token registered",
		zap.String("token", info.Token.String()),
		zap.String("name", info.Name),
		zap.Uint64("total_supply", info.TotalSupply),
		zap.Uint64("virtual_sol", info.VirtualSol))

	return nil
}

// Get returns a snapshot of the entry for the given identity.
func (b *Book) Get(token solana.PublicKey) (TokenInfo, error) {
	b.mu.RLock()
	e, ok := b.entries[token]
	b.mu.RUnlock()
	if !ok {
		return TokenInfo{}, ErrTokenNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.info, nil
}

// Update runs fn with exclusive access to the entry. The entry is mutated
// only if fn returns nil, so a failed operation leaves no partial state.
func (b *Book) Update(token solana.PublicKey, fn func(*TokenInfo) error) error {
	b.mu.RLock()
	e, ok := b.entries[token]
	b.mu.RUnlock()
	if !ok {
		return ErrTokenNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	scratch := e.info
	if err := fn(&scratch); err != nil {
		return err
	}
	e.info = scratch
	return nil
}

// Len returns the number of registered tokens.
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// List returns a snapshot of every registered entry.
func (b *Book) List() []TokenInfo {
	b.mu.RLock()
	entries := make([]*bookEntry, 0, len(b.entries))
	for _, e := range b.entries {
		entries = append(entries, e)
	}
	b.mu.RUnlock()

	infos := make([]TokenInfo, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		infos = append(infos, e.info)
		e.mu.Unlock()
	}
	return infos
}
