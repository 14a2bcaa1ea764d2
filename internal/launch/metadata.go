// =============================
// File: internal/launch/metadata.go
// =============================
package launch

import (
	"crypto/sha256"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Metadata is the descriptive payload attached to a token at creation. The
// engine treats it as opaque, it never feeds into reserve accounting.
type Metadata struct {
	Name   string
	Symbol string
	URI    string
}

// Address returns the content address of the metadata payload.
func (m Metadata) Address() string {
	h := sha256.New()
	h.Write([]byte(m.Name))
	h.Write([]byte{0})
	h.Write([]byte(m.Symbol))
	h.Write([]byte{0})
	h.Write([]byte(m.URI))
	return base58.Encode(h.Sum(nil))
}

// MetadataRegistrar records token metadata as a side effect of creation.
type MetadataRegistrar interface {
	Register(token solana.PublicKey, md Metadata) (address string, err error)
	Lookup(token solana.PublicKey) (Metadata, bool)
}

// MemoryRegistrar is the in-process MetadataRegistrar.
type MemoryRegistrar struct {
	mu      sync.RWMutex
	byToken map[solana.PublicKey]Metadata
}

func NewMemoryRegistrar() *MemoryRegistrar {
	return &MemoryRegistrar{byToken: make(map[solana.PublicKey]Metadata)}
}

func (r *MemoryRegistrar) Register(token solana.PublicKey, md Metadata) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byToken[token] = md
	return md.Address(), nil
}

func (r *MemoryRegistrar) Lookup(token solana.PublicKey) (Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	md, ok := r.byToken[token]
	return md, ok
}
