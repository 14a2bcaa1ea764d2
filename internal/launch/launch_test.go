package launch

import (
	"errors"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDeriveTokenID(t *testing.T) {
	a, err := DeriveTokenID("Token")
	require.NoError(t, err)
	b, err := DeriveTokenID("Token")
	require.NoError(t, err)
	assert.Equal(t, a, b, "same name must derive the same identity")

	c, err := DeriveTokenID("Other")
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "distinct names must not collide")

	_, err = DeriveTokenID("")
	assert.Error(t, err)
}

func newEntry(t *testing.T, name string) TokenInfo {
	t.Helper()
	id, err := DeriveTokenID(name)
	require.NoError(t, err)
	return TokenInfo{
		Token:             id,
		Name:              name,
		Creator:           solana.NewWallet().PublicKey(),
		TotalSupply:       100_000_000_000,
		VirtualSol:        100_000_000_000,
		SolReserve:        100_000_000_000,
		TokenReserve:      100_000_000_000,
		TargetPoolBalance: 150_000_000_000,
	}
}

func TestBookCreate(t *testing.T) {
	book := NewBook(zap.NewNop())
	info := newEntry(t, "Token")

	require.NoError(t, book.Create(info))
	assert.Equal(t, 1, book.Len())

	// Re-registering the same name must fail and leave reserves unchanged.
	dup := info
	dup.SolReserve = 1
	assert.ErrorIs(t, book.Create(dup), ErrTokenAlreadyExists)

	got, err := book.Get(info.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000_000_000), got.SolReserve)
}

func TestBookUpdate(t *testing.T) {
	book := NewBook(zap.NewNop())
	info := newEntry(t, "Token")
	require.NoError(t, book.Create(info))

	_, err := book.Get(solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.ErrorIs(t, book.Update(solana.NewWallet().PublicKey(), func(*TokenInfo) error { return nil }), ErrTokenNotFound)

	// A failing update must not leak partial mutations.
	boom := errors.New("boom")
	err = book.Update(info.Token, func(ti *TokenInfo) error {
		ti.SolReserve = 0
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := book.Get(info.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000_000_000), got.SolReserve)

	require.NoError(t, book.Update(info.Token, func(ti *TokenInfo) error {
		ti.SolReserve += 7
		return nil
	}))
	got, _ = book.Get(info.Token)
	assert.Equal(t, uint64(100_000_000_007), got.SolReserve)
}

func TestBookUpdateSerialized(t *testing.T) {
	book := NewBook(zap.NewNop())
	info := newEntry(t, "Token")
	require.NoError(t, book.Create(info))

	const workers = 16
	const perWorker = 250

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_ = book.Update(info.Token, func(ti *TokenInfo) error {
					ti.SolReserve++
					return nil
				})
			}
		}()
	}
	wg.Wait()

	got, err := book.Get(info.Token)
	require.NoError(t, err)
	assert.Equal(t, info.SolReserve+workers*perWorker, got.SolReserve,
		"concurrent updates on one token must be serialized")
}

func TestReachedTarget(t *testing.T) {
	info := newEntry(t, "Token")
	assert.False(t, info.ReachedTarget())

	info.SolReserve = info.VirtualSol + info.TargetPoolBalance
	assert.True(t, info.ReachedTarget())
}

func TestMetadataRegistrar(t *testing.T) {
	reg := NewMemoryRegistrar()
	token := solana.NewWallet().PublicKey()
	md := Metadata{Name: "Token", Symbol: "T", URI: "www.example.com"}

	addr, err := reg.Register(token, md)
	require.NoError(t, err)
	assert.NotEmpty(t, addr)
	assert.Equal(t, md.Address(), addr, "address is content-derived")

	got, ok := reg.Lookup(token)
	require.True(t, ok)
	assert.Equal(t, md, got)

	other := Metadata{Name: "Token", Symbol: "T", URI: "www.example.org"}
	assert.NotEqual(t, md.Address(), other.Address())

	_, ok = reg.Lookup(solana.NewWallet().PublicKey())
	assert.False(t, ok)
}
