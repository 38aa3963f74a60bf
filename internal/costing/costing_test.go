package costing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-liquor-inventory/internal/apperr"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestReceive_BlendsIntoExistingStock(t *testing.T) {
	pos := NewPosition(10, d("100"))

	next, err := pos.Receive(5, d("130"))
	require.NoError(t, err)

	assert.Equal(t, 15, next.Quantity)
	assert.True(t, next.AverageCost.Equal(d("110")), next.AverageCost.String())
	assert.True(t, next.TotalValue.Equal(d("1650")), next.TotalValue.String())
}

func TestReceive_EmptyStockTakesIncomingPrice(t *testing.T) {
	next, err := Position{}.Receive(20, d("50"))
	require.NoError(t, err)

	assert.Equal(t, 20, next.Quantity)
	assert.True(t, next.AverageCost.Equal(d("50")))
	assert.True(t, next.TotalValue.Equal(d("1000")))
}

func TestWeightedAverage_MatchesFormula(t *testing.T) {
	cases := []struct {
		name        string
		existingQty int
		existingAvg string
		q           int
		p           string
		want        string
	}{
		{"even blend", 1, "10", 1, "20", "15"},
		{"free goods dilute cost", 4, "12", 4, "0", "6"},
		{"cents survive", 3, "19.99", 2, "24.49", "21.79"},
		{"repeating fraction", 2, "1", 1, "2", "1.3333333333"},
		{"no existing stock", 0, "999", 7, "8.25", "8.25"},
		{"large volume", 120000, "4.1250", 30000, "4.5", "4.2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := WeightedAverage(tc.existingQty, d(tc.existingAvg), tc.q, d(tc.p))
			require.NoError(t, err)
			assert.True(t, got.Equal(d(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestReceive_KeepsTotalValueInvariant(t *testing.T) {
	pos := Position{}
	receipts := []struct {
		q int
		p string
	}{{6, "17.35"}, {1, "22"}, {13, "16.9"}, {3, "0"}, {250, "18.125"}}

	for _, r := range receipts {
		var err error
		pos, err = pos.Receive(r.q, d(r.p))
		require.NoError(t, err)
		assert.True(t, pos.Consistent(), "total %s != %d * %s", pos.TotalValue, pos.Quantity, pos.AverageCost)
	}
	assert.Equal(t, 273, pos.Quantity)
}

func TestReceive_RejectsInvalidInput(t *testing.T) {
	pos := NewPosition(3, d("10"))

	_, err := pos.Receive(0, d("10"))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = pos.Receive(-2, d("10"))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = pos.Receive(2, d("-0.01"))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAdjust(t *testing.T) {
	pos := NewPosition(10, d("40"))

	down, err := pos.Adjust(-4, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, down.Quantity)
	assert.True(t, down.AverageCost.Equal(d("40")))
	assert.True(t, down.TotalValue.Equal(d("240")))

	found, err := pos.Adjust(5, nil)
	require.NoError(t, err)
	assert.Equal(t, 15, found.Quantity)
	assert.True(t, found.AverageCost.Equal(d("40")))

	cost := d("55")
	costed, err := pos.Adjust(5, &cost)
	require.NoError(t, err)
	assert.True(t, costed.AverageCost.Equal(d("45")))

	_, err = pos.Adjust(-11, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = pos.Adjust(0, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = pos.Adjust(-1, &cost)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestLineTotal(t *testing.T) {
	assert.True(t, LineTotal(12, d("18.75")).Equal(d("225")))
	assert.True(t, LineTotal(3, decimal.Zero).IsZero())
}
