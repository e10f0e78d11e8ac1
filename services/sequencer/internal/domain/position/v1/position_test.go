package positionv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosition_Unrealized(t *testing.T) {
	testCases := []struct {
		name     string
		position Position
		bestBid  int64
		bestAsk  int64
		expected int64
	}{
		{name: "flat", position: Position{}, bestBid: 50, bestAsk: 60, expected: 0},
		{name: "long marks at bid", position: Position{Type: TypeYes, Quantity: 10, CostBasis: 400}, bestBid: 45, bestAsk: 60, expected: 50},
		{name: "long without bids", position: Position{Type: TypeYes, Quantity: 10, CostBasis: 400}, bestAsk: 60, expected: 0},
		{name: "short marks at ask", position: Position{Type: TypeNo, Quantity: 4, CostBasis: 240}, bestBid: 40, bestAsk: 55, expected: 20},
		{name: "short without asks", position: Position{Type: TypeNo, Quantity: 4, CostBasis: 240}, bestBid: 40, expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.position.Unrealized(tc.bestBid, tc.bestAsk))
		})
	}
}

func TestPosition_AppliedThrough(t *testing.T) {
	p := &Position{LastSequence: 10, LastTradeIndex: 2}

	assert.True(t, p.AppliedThrough(9, 5))
	assert.True(t, p.AppliedThrough(10, 2))
	assert.False(t, p.AppliedThrough(10, 3))
	assert.False(t, p.AppliedThrough(11, 0))
}

func TestPosition_Signed(t *testing.T) {
	assert.Equal(t, int64(5), (&Position{Type: TypeYes, Quantity: 5}).Signed())
	assert.Equal(t, int64(-5), (&Position{Type: TypeNo, Quantity: 5}).Signed())
	assert.Equal(t, 40.0, (&Position{Quantity: 5, CostBasis: 200}).AvgEntryPrice())
}
