// =============================
// File: internal/curve/curve.go
// =============================
package curve

import (
	"errors"
	"math/bits"

	"github.com/holiman/uint256"
)

// BPS is the basis-point denominator used for fee math.
const BPS = 10_000

var (
	// ErrAmountTooSmall is returned when the traded amount rounds down to nothing.
	ErrAmountTooSmall = errors.New("amount too small")
	// ErrInsufficientLiquidity is returned when a trade would drain the pool
	// past the virtual liquidity floor or past the tradable token reserve.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	// ErrOverflow is returned when an intermediate sum exceeds uint64 range.
	ErrOverflow = errors.New("arithmetic overflow")
)

// State is a snapshot of a token's bonding-curve reserves. The engine never
// mutates a State in place: quotes are computed against a snapshot and applied
// by the caller once all collaborators have succeeded.
type State struct {
	SolReserve   uint64 // real + virtual lamports backing the curve
	TokenReserve uint64 // tokens still held by the curve
	TotalSupply  uint64
	VirtualSol   uint64 // liquidity baseline, never withdrawable
}

// RealLiquidity returns the withdrawable part of the sol reserve.
func (s State) RealLiquidity() uint64 {
	return s.SolReserve - s.VirtualSol
}

// Circulating returns the amount of tokens bought out of the curve so far.
func (s State) Circulating() uint64 {
	return s.TotalSupply - s.TokenReserve
}

// BuyQuote is the outcome of pricing a buy against a reserve snapshot.
type BuyQuote struct {
	Fee       uint64 // skimmed off the input before it touches the curve
	NetSolIn  uint64
	TokensOut uint64
}

// Apply returns the post-trade state for the snapshot the quote was priced on.
func (q BuyQuote) Apply(s State) State {
	s.SolReserve += q.NetSolIn
	s.TokenReserve -= q.TokensOut
	return s
}

// SellQuote is the outcome of pricing a sell against a reserve snapshot.
type SellQuote struct {
	GrossSolOut uint64
	Fee         uint64 // skimmed off the gross proceeds
	SolOut      uint64
}

// Apply returns the post-trade state for the snapshot the quote was priced on.
func (q SellQuote) Apply(s State, tokensIn uint64) State {
	s.SolReserve -= q.GrossSolOut
	s.TokenReserve += tokensIn
	return s
}

// Buy prices a purchase of tokens for solIn lamports against the snapshot.
//
// The fee is taken out of the input leg, so the constant product
// solReserve*tokenReserve never decreases on a buy beyond flooring:
//
//	fee       = floor(solIn * feeBps / 10000)
//	tokensOut = tokenReserve - floor(solReserve*tokenReserve / (solReserve + netSolIn))
//
// Flooring always favors the pool.
func Buy(s State, solIn, feeBps uint64) (BuyQuote, error) {
	if solIn == 0 {
		return BuyQuote{}, ErrAmountTooSmall
	}

	fee := feeAmount(solIn, feeBps)
	if fee >= solIn {
		return BuyQuote{}, ErrAmountTooSmall
	}
	netSolIn := solIn - fee

	newSolReserve, carry := bits.Add64(s.SolReserve, netSolIn, 0)
	if carry != 0 {
		return BuyQuote{}, ErrOverflow
	}

	keep, err := mulDiv(s.SolReserve, s.TokenReserve, newSolReserve)
	if err != nil {
		return BuyQuote{}, err
	}
	tokensOut := s.TokenReserve - keep

	if tokensOut == 0 {
		return BuyQuote{}, ErrAmountTooSmall
	}
	// The formula cannot produce tokensOut >= tokenReserve, checked anyway.
	if tokensOut >= s.TokenReserve {
		return BuyQuote{}, ErrInsufficientLiquidity
	}

	return BuyQuote{Fee: fee, NetSolIn: netSolIn, TokensOut: tokensOut}, nil
}

// Sell prices a sale of tokensIn tokens back into the curve.
//
// Proceeds come from the inverse constant-product formula; the fee is taken
// out of the output leg:
//
//	gross  = solReserve - floor(solReserve*tokenReserve / (tokenReserve + tokensIn))
//	solOut = gross - floor(gross * feeBps / 10000)
//
// The sol reserve may never fall below the virtual liquidity baseline.
func Sell(s State, tokensIn, feeBps uint64) (SellQuote, error) {
	if tokensIn == 0 {
		return SellQuote{}, ErrAmountTooSmall
	}
	// Cannot sell back more than was ever bought out of the curve.
	if tokensIn > s.Circulating() {
		return SellQuote{}, ErrInsufficientLiquidity
	}

	newTokenReserve, carry := bits.Add64(s.TokenReserve, tokensIn, 0)
	if carry != 0 {
		return SellQuote{}, ErrOverflow
	}

	keep, err := mulDiv(s.SolReserve, s.TokenReserve, newTokenReserve)
	if err != nil {
		return SellQuote{}, err
	}
	gross := s.SolReserve - keep

	if gross >= s.SolReserve || keep < s.VirtualSol {
		return SellQuote{}, ErrInsufficientLiquidity
	}

	fee := feeAmount(gross, feeBps)
	if fee >= gross {
		return SellQuote{}, ErrAmountTooSmall
	}
	solOut := gross - fee

	return SellQuote{GrossSolOut: gross, Fee: fee, SolOut: solOut}, nil
}

// SpotPrice returns the current marginal price in sol per token. Informational
// only, trades are always priced through Buy/Sell.
func SpotPrice(s State) float64 {
	if s.TokenReserve == 0 {
		return 0
	}
	return float64(s.SolReserve) / float64(s.TokenReserve)
}

// feeAmount computes floor(amount * feeBps / BPS) without intermediate overflow.
func feeAmount(amount, feeBps uint64) uint64 {
	if feeBps == 0 {
		return 0
	}
	product := new(uint256.Int).Mul(
		uint256.NewInt(amount),
		uint256.NewInt(feeBps),
	)
	product.Div(product, uint256.NewInt(BPS))
	return product.Uint64()
}

// mulDiv computes floor(a*b/denom) widening through 256 bits. The result must
// fit back into uint64.
func mulDiv(a, b, denom uint64) (uint64, error) {
	if denom == 0 {
		return 0, ErrOverflow
	}
	product := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	product.Div(product, uint256.NewInt(denom))
	if !product.IsUint64() {
		return 0, ErrOverflow
	}
	return product.Uint64(), nil
}
