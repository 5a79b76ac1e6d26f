package cashdrawer

import (
	"testing"

	"github.com/erp/cashdrawer/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func change(t *testing.T, amount float64, counts map[valueobject.DenominationCode]int64) ChangeResult {
	t.Helper()
	available := valueobject.MustNewDenominationVector(counts)
	result, err := CalculateOptimalChange(valueobject.NewMoneyMXNFromFloat(amount), available)
	require.NoError(t, err)
	return result
}

func TestCalculateOptimalChange(t *testing.T) {
	t.Run("300 from 3x100", func(t *testing.T) {
		result := change(t, 300, map[valueobject.DenominationCode]int64{
			valueobject.Bill100: 3,
		})
		require.True(t, result.Feasible)
		assert.Equal(t, int64(3), result.Used.Count(valueobject.Bill100))
		assert.True(t, result.Used.Total().Amount().Equal(decimal.NewFromInt(300)))
	})

	t.Run("150 from 100s and 50s", func(t *testing.T) {
		result := change(t, 150, map[valueobject.DenominationCode]int64{
			valueobject.Bill100: 2,
			valueobject.Bill50:  2,
		})
		require.True(t, result.Feasible)
		assert.Equal(t, int64(1), result.Used.Count(valueobject.Bill100))
		assert.Equal(t, int64(1), result.Used.Count(valueobject.Bill50))
	})

	t.Run("used breakdown always totals the requested amount", func(t *testing.T) {
		result := change(t, 250, map[valueobject.DenominationCode]int64{
			valueobject.Bill200: 1,
			valueobject.Bill20:  2,
			valueobject.Bill10:  1,
			valueobject.Coin10:  2,
		})
		require.True(t, result.Feasible)
		assert.True(t, result.Used.Total().Amount().Equal(decimal.NewFromInt(250)))
	})

	t.Run("infeasible when amount exceeds total available", func(t *testing.T) {
		result := change(t, 500, map[valueobject.DenominationCode]int64{
			valueobject.Bill100: 2,
		})
		assert.False(t, result.Feasible)
		assert.True(t, result.Used.IsZero())
	})

	t.Run("300 from 2x100 and 1x50 fails without smaller denominations", func(t *testing.T) {
		result := change(t, 300, map[valueobject.DenominationCode]int64{
			valueobject.Bill100: 2,
			valueobject.Bill50:  1,
		})
		assert.False(t, result.Feasible)
	})

	t.Run("300 from 2x100 and 1x50 succeeds with enough coins", func(t *testing.T) {
		result := change(t, 300, map[valueobject.DenominationCode]int64{
			valueobject.Bill100: 2,
			valueobject.Bill50:  1,
			valueobject.Coin10:  5,
		})
		require.True(t, result.Feasible)
		assert.True(t, result.Used.Total().Amount().Equal(decimal.NewFromInt(300)))
	})

	t.Run("exact solver recovers where greedy dead-ends", func(t *testing.T) {
		// greedy takes the 50 first and strands the remaining 10; 3x20 works
		result := change(t, 60, map[valueobject.DenominationCode]int64{
			valueobject.Bill50: 1,
			valueobject.Bill20: 3,
		})
		require.True(t, result.Feasible)
		assert.Equal(t, int64(3), result.Used.Count(valueobject.Bill20))
		assert.Equal(t, int64(0), result.Used.Count(valueobject.Bill50))
	})

	t.Run("coin fractions participate", func(t *testing.T) {
		result := change(t, 0.50, map[valueobject.DenominationCode]int64{
			valueobject.Coin020: 2,
			valueobject.Coin010: 1,
		})
		require.True(t, result.Feasible)
		assert.True(t, result.Used.Total().Amount().Equal(decimal.NewFromFloat(0.50)))
	})

	t.Run("amounts off the ten-centavo grid are infeasible", func(t *testing.T) {
		result := change(t, 10.05, map[valueobject.DenominationCode]int64{
			valueobject.Bill10: 2,
		})
		assert.False(t, result.Feasible)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		available := valueobject.EmptyDenominationVector()
		_, err := CalculateOptimalChange(valueobject.ZeroMXN(), available)
		assert.Error(t, err)
	})
}

func TestRunChangeBattery(t *testing.T) {
	t.Run("reports per-amount feasibility", func(t *testing.T) {
		available := valueobject.MustNewDenominationVector(map[valueobject.DenominationCode]int64{
			valueobject.Bill100: 2,
			valueobject.Bill50:  1,
		})
		results, err := RunChangeBattery(available)
		require.NoError(t, err)
		require.Len(t, results, len(CommonPayoutAmounts))

		byAmount := make(map[int64]ChangeResult, len(results))
		for _, r := range results {
			byAmount[r.Amount.Amount().IntPart()] = r
		}
		assert.True(t, byAmount[50].Feasible)
		assert.True(t, byAmount[100].Feasible)
		assert.True(t, byAmount[150].Feasible)
		assert.True(t, byAmount[250].Feasible)
		assert.False(t, byAmount[300].Feasible)
		assert.False(t, byAmount[500].Feasible)
	})

	t.Run("empty drawer fails everything", func(t *testing.T) {
		results, err := RunChangeBattery(valueobject.EmptyDenominationVector())
		require.NoError(t, err)
		for _, r := range results {
			assert.False(t, r.Feasible)
		}
	})
}
