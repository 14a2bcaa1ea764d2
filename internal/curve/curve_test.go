package curve

import (
	"math"
	"math/rand"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func launchState() State {
	return State{
		SolReserve:   100_000_000_000,
		TokenReserve: 100_000_000_000,
		TotalSupply:  100_000_000_000,
		VirtualSol:   100_000_000_000,
	}
}

func TestBuy(t *testing.T) {
	s := launchState()

	q, err := Buy(s, 1_010_000_000, 100)
	require.NoError(t, err)

	assert.Equal(t, uint64(10_100_000), q.Fee, "1%% fee off the input leg")
	assert.Equal(t, uint64(999_900_000), q.NetSolIn)
	assert.Equal(t, uint64(990_000_981), q.TokensOut)
	assert.Greater(t, q.TokensOut, uint64(9e8), "slippage bound for the launch scenario")

	after := q.Apply(s)
	assert.Equal(t, uint64(100_999_900_000), after.SolReserve)
	assert.Equal(t, uint64(99_009_999_019), after.TokenReserve)

	t.Logf("Tokens out: %d (%.4f%% of supply)", q.TokensOut, float64(q.TokensOut)/float64(s.TotalSupply)*100)
}

func TestSellAfterBuy(t *testing.T) {
	s := launchState()
	bq, err := Buy(s, 1_010_000_000, 100)
	require.NoError(t, err)
	s = bq.Apply(s)

	sq, err := Sell(s, 500_000_000, 100)
	require.NoError(t, err)

	assert.Equal(t, uint64(507_486_188), sq.GrossSolOut)
	assert.Equal(t, uint64(5_074_861), sq.Fee)
	assert.Equal(t, uint64(502_411_327), sq.SolOut)

	after := sq.Apply(s, 500_000_000)
	assert.GreaterOrEqual(t, after.SolReserve, after.VirtualSol, "virtual liquidity is never withdrawn")
}

func TestBuyValidation(t *testing.T) {
	s := launchState()

	_, err := Buy(s, 0, 100)
	assert.ErrorIs(t, err, ErrAmountTooSmall)

	// A full-confiscation fee leaves nothing to trade.
	_, err = Buy(s, 1_000_000, BPS)
	assert.ErrorIs(t, err, ErrAmountTooSmall)
}

func TestBuyOverflow(t *testing.T) {
	s := State{
		SolReserve:   math.MaxUint64 - 10,
		TokenReserve: 1_000_000,
		TotalSupply:  1_000_000_000,
		VirtualSol:   1,
	}
	_, err := Buy(s, 1_000_000, 0)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestSellValidation(t *testing.T) {
	s := launchState()

	_, err := Sell(s, 0, 100)
	assert.ErrorIs(t, err, ErrAmountTooSmall)

	// Nothing has been bought yet, so nothing can be sold back.
	_, err = Sell(s, 1_000, 100)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)

	bq, err := Buy(s, 1_010_000_000, 100)
	require.NoError(t, err)
	s = bq.Apply(s)

	// One token more than circulating supply must be rejected.
	_, err = Sell(s, s.Circulating()+1, 100)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)
}

func TestFeeAmount(t *testing.T) {
	assert.Equal(t, uint64(0), feeAmount(99, 100), "sub-bps amounts floor to zero fee")
	assert.Equal(t, uint64(1), feeAmount(100, 100))
	assert.Equal(t, uint64(10_100_000), feeAmount(1_010_000_000, 100))
	assert.Equal(t, uint64(0), feeAmount(1_000_000, 0))

	// No intermediate overflow even at the top of the range.
	assert.Equal(t, uint64(math.MaxUint64/2), feeAmount(math.MaxUint64, BPS/2))
}

// TestInvariantsUnderRandomTrades drives a long random buy/sell sequence and
// checks the reserve invariants after every committed trade: the constant
// product never increases beyond the fee skim, the token reserve never exceeds
// total supply, and the sol reserve never dips below the virtual baseline.
func TestInvariantsUnderRandomTrades(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := launchState()
	const feeBps = 100

	product := func(s State) *uint256.Int {
		return new(uint256.Int).Mul(uint256.NewInt(s.SolReserve), uint256.NewInt(s.TokenReserve))
	}

	for i := 0; i < 5_000; i++ {
		before := product(s)

		if rng.Intn(2) == 0 || s.Circulating() == 0 {
			amount := uint64(rng.Int63n(5_000_000_000)) + 1
			q, err := Buy(s, amount, feeBps)
			if err != nil {
				continue
			}
			s = q.Apply(s)
		} else {
			amount := uint64(rng.Int63n(int64(s.Circulating()))) + 1
			q, err := Sell(s, amount, feeBps)
			if err != nil {
				continue
			}
			s = q.Apply(s, amount)
		}

		require.LessOrEqual(t, s.TokenReserve, s.TotalSupply, "iteration %d", i)
		require.GreaterOrEqual(t, s.SolReserve, s.VirtualSol, "iteration %d", i)
		require.True(t, product(s).Cmp(before) <= 0,
			"constant product grew at iteration %d: %s -> %s", i, before, product(s))
	}
}

// TestRoundTripIsLossy checks that buying and selling back most of the
// position returns strictly less sol than was paid in whenever the fee rate
// is non-zero.
func TestRoundTripIsLossy(t *testing.T) {
	for _, feeBps := range []uint64{1, 50, 100, 500} {
		s := launchState()
		const solIn = 2_000_000_000

		bq, err := Buy(s, solIn, feeBps)
		require.NoError(t, err)
		s = bq.Apply(s)

		sq, err := Sell(s, bq.TokensOut*9/10, feeBps)
		require.NoError(t, err)

		assert.Less(t, sq.SolOut, uint64(solIn), "feeBps=%d", feeBps)
	}
}

// TestSellFullPositionHitsVirtualFloor pins down the rounding direction: the
// buy floors the kept token reserve, so unwinding the whole position would
// land one lamport under the virtual baseline and must be rejected rather
// than let that lamport leak out of the pool.
func TestSellFullPositionHitsVirtualFloor(t *testing.T) {
	s := launchState()
	bq, err := Buy(s, 2_000_000_000, 0)
	require.NoError(t, err)
	s = bq.Apply(s)

	_, err = Sell(s, bq.TokensOut, 0)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)

	// One token less clears the floor.
	_, err = Sell(s, bq.TokensOut-1, 0)
	assert.NoError(t, err)
}

func TestSpotPrice(t *testing.T) {
	s := launchState()
	assert.InDelta(t, 1.0, SpotPrice(s), 1e-12)

	s.TokenReserve = 0
	assert.Zero(t, SpotPrice(s))
}
