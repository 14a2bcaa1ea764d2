// =============================
// File: internal/launch/token.go
// =============================
package launch

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-launchpad/internal/curve"
)

// PlatformProgramID anchors all derived token identities. Two launches of the
// same name collide deterministically under it, which is exactly the
// de-duplication key the book relies on.
var PlatformProgramID = solana.MustPublicKeyFromBase58("3bXwCVfB2e89reAa2dPFuKKXadEeFeTAg4PCBjcy5gJN")

// Seeds for the derived platform accounts.
var (
	mintSeed     = []byte("mint")
	vaultSeed    = []byte("token")
	escrowSeed   = []byte("token_account")
	platformSeed = []byte("platform")
)

// DeriveTokenID returns the stable identity for a token name. The derivation
// is deterministic and collision-free per distinct name.
func DeriveTokenID(name string) (solana.PublicKey, error) {
	if name == "" {
		return solana.PublicKey{}, fmt.Errorf("token name is empty")
	}
	id, _, err := solana.FindProgramAddress([][]byte{mintSeed, []byte(name)}, PlatformProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive token identity for %q: %w", name, err)
	}
	return id, nil
}

// DeriveVaultAccount returns the account holding a token's pooled lamports.
func DeriveVaultAccount(name string) (solana.PublicKey, error) {
	id, _, err := solana.FindProgramAddress([][]byte{vaultSeed, []byte(name)}, PlatformProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive vault account for %q: %w", name, err)
	}
	return id, nil
}

// DeriveEscrowAccount returns the account holding a token's unsold supply.
func DeriveEscrowAccount(token solana.PublicKey) (solana.PublicKey, error) {
	id, _, err := solana.FindProgramAddress([][]byte{escrowSeed, token.Bytes()}, PlatformProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive escrow account for %s: %w", token, err)
	}
	return id, nil
}

// PlatformAccount returns the account that accumulates platform fees.
func PlatformAccount() (solana.PublicKey, error) {
	id, _, err := solana.FindProgramAddress([][]byte{platformSeed}, PlatformProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive platform account: %w", err)
	}
	return id, nil
}

// TokenInfo is the per-token bonding-curve ledger entry. TotalSupply,
// VirtualSol and TargetPoolBalance are frozen at creation; SolReserve,
// TokenReserve and Graduated change only through serialized trades.
type TokenInfo struct {
	Token   solana.PublicKey
	Name    string
	Creator solana.PublicKey

	TotalSupply       uint64
	VirtualSol        uint64
	SolReserve        uint64
	TokenReserve      uint64
	TargetPoolBalance uint64

	// Graduated flips once real liquidity reaches the target pool balance.
	// It is an observation: whether trading keeps going is policy.
	Graduated bool
}

// CurveState returns the reserve snapshot the pricing engine works on.
func (t *TokenInfo) CurveState() curve.State {
	return curve.State{
		SolReserve:   t.SolReserve,
		TokenReserve: t.TokenReserve,
		TotalSupply:  t.TotalSupply,
		VirtualSol:   t.VirtualSol,
	}
}

// RealLiquidity returns the withdrawable lamports backing the curve.
func (t *TokenInfo) RealLiquidity() uint64 {
	return t.SolReserve - t.VirtualSol
}

// ReachedTarget reports whether the entry is eligible for graduation.
func (t *TokenInfo) ReachedTarget() bool {
	return t.RealLiquidity() >= t.TargetPoolBalance
}
