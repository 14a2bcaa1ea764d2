package platform

import (
	"errors"
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-launchpad/internal/curve"
)

func testParams(owner solana.PublicKey) Params {
	return Params{
		Owner:             owner,
		FeeBps:            100,
		TotalSupply:       100_000_000_000,
		VirtualSol:        100_000_000_000,
		TargetPoolBalance: 150_000_000_000,
	}
}

func TestInitialize(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	r := NewRegistry(zap.NewNop())

	require.NoError(t, r.Initialize(testParams(owner)))
	assert.True(t, r.Authorized(owner))

	fee, err := r.FeeBps()
	require.NoError(t, err)
	assert.Equal(t, uint64(100), fee)

	defaults, err := r.Defaults()
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000_000_000), defaults.TotalSupply)
	assert.Equal(t, uint64(150_000_000_000), defaults.TargetPoolBalance)

	assert.ErrorIs(t, r.Initialize(testParams(owner)), ErrAlreadyInitialized)
}

func TestInitializeValidation(t *testing.T) {
	owner := solana.NewWallet().PublicKey()

	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero owner", func(p *Params) { p.Owner = solana.PublicKey{} }},
		{"fee above 100%", func(p *Params) { p.FeeBps = curve.BPS + 1 }},
		{"zero supply", func(p *Params) { p.TotalSupply = 0 }},
		{"zero virtual sol", func(p *Params) { p.VirtualSol = 0 }},
		{"zero target", func(p *Params) { p.TargetPoolBalance = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := testParams(owner)
			tc.mutate(&p)
			r := NewRegistry(zap.NewNop())
			assert.ErrorIs(t, r.Initialize(p), ErrInvalidParameter)
		})
	}
}

func TestAdminAuthorization(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	stranger := solana.NewWallet().PublicKey()

	r := NewRegistry(zap.NewNop())
	require.NoError(t, r.Initialize(testParams(owner)))

	assert.ErrorIs(t, r.ChangeFees(stranger, 200), ErrUnauthorized)
	fee, _ := r.FeeBps()
	assert.Equal(t, uint64(100), fee, "rejected change must not leak through")

	require.NoError(t, r.ChangeFees(owner, 200))
	fee, _ = r.FeeBps()
	assert.Equal(t, uint64(200), fee)

	assert.ErrorIs(t, r.ChangeFees(owner, curve.BPS+1), ErrInvalidParameter)
	assert.ErrorIs(t, r.ChangeTotalSupply(stranger, 1), ErrUnauthorized)
	assert.ErrorIs(t, r.ChangeTotalSupply(owner, 0), ErrInvalidParameter)
	assert.ErrorIs(t, r.ChangeVirtualSol(owner, 0), ErrInvalidParameter)
	assert.ErrorIs(t, r.ChangeTargetPoolBalance(owner, 0), ErrInvalidParameter)
}

func TestChangeOwner(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	next := solana.NewWallet().PublicKey()

	r := NewRegistry(zap.NewNop())
	require.NoError(t, r.Initialize(testParams(owner)))

	assert.ErrorIs(t, r.ChangeOwner(owner, solana.PublicKey{}), ErrInvalidParameter)
	require.NoError(t, r.ChangeOwner(owner, next))

	assert.False(t, r.Authorized(owner), "previous owner loses admin rights")
	assert.True(t, r.Authorized(next))
	require.NoError(t, r.ChangeFees(next, 50))
}

func TestUninitializedRegistry(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	caller := solana.NewWallet().PublicKey()

	_, err := r.FeeBps()
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = r.Defaults()
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, r.ChangeFees(caller, 10), ErrNotInitialized)
	assert.ErrorIs(t, r.AddFees(1), ErrNotInitialized)
	assert.False(t, r.Authorized(caller))
}

func TestAccumulatedFees(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	r := NewRegistry(zap.NewNop())
	require.NoError(t, r.Initialize(testParams(owner)))

	require.NoError(t, r.AddFees(10))
	require.NoError(t, r.AddFees(0))
	require.NoError(t, r.AddFees(5))
	assert.Equal(t, uint64(15), r.AccumulatedFees())

	assert.ErrorIs(t, r.AddFees(math.MaxUint64), curve.ErrOverflow)
	assert.Equal(t, uint64(15), r.AccumulatedFees(), "overflow must not mutate the accumulator")
}

func TestWithdrawFees(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	stranger := solana.NewWallet().PublicKey()

	r := NewRegistry(zap.NewNop())
	require.NoError(t, r.Initialize(testParams(owner)))
	require.NoError(t, r.AddFees(1_000))

	_, err := r.WithdrawFees(stranger, func(uint64) error { return nil })
	assert.ErrorIs(t, err, ErrUnauthorized)

	// A failed payout must leave the accumulator untouched.
	payErr := errors.New("transfer failed")
	_, err = r.WithdrawFees(owner, func(uint64) error { return payErr })
	assert.ErrorIs(t, err, payErr)
	assert.Equal(t, uint64(1_000), r.AccumulatedFees())

	var paid uint64
	amount, err := r.WithdrawFees(owner, func(a uint64) error { paid = a; return nil })
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), amount)
	assert.Equal(t, uint64(1_000), paid)
	assert.Zero(t, r.AccumulatedFees())
}
