package validator

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/muhammadchandra19/exchange/pkg/errors"
	orderv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/order/v1"
	orderv1_mock "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/order/v1/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func validOrder() *orderv1.Order {
	return &orderv1.Order{
		ID:          "o1",
		MarketID:    "m1",
		Maker:       "alice",
		Side:        orderv1.SideBuy,
		PriceTicks:  40,
		Qty:         10,
		TimeInForce: orderv1.GTC,
		Nonce:       1,
		Signature:   "sig",
		Status:      orderv1.StatusPublished,
	}
}

func TestValidator_Check(t *testing.T) {
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	testCases := []struct {
		name     string
		mutate   func(o *orderv1.Order)
		verified bool
		code     errors.ErrorCode
	}{
		{name: "valid", mutate: func(o *orderv1.Order) {}, verified: true},
		{name: "future expiry", mutate: func(o *orderv1.Order) { o.Expiry = &future }, verified: true},
		{name: "missing id", mutate: func(o *orderv1.Order) { o.ID = "" }, code: errors.RejectMissingField},
		{name: "missing maker", mutate: func(o *orderv1.Order) { o.Maker = "" }, code: errors.RejectMissingField},
		{name: "missing signature", mutate: func(o *orderv1.Order) { o.Signature = "" }, code: errors.RejectMissingField},
		{name: "other market", mutate: func(o *orderv1.Order) { o.MarketID = "m2" }, code: errors.RejectUnknownMarket},
		{name: "bad side", mutate: func(o *orderv1.Order) { o.Side = "HOLD" }, code: errors.RejectInvalidSide},
		{name: "bad tif", mutate: func(o *orderv1.Order) { o.TimeInForce = "DAY" }, code: errors.RejectInvalidTimeInForce},
		{name: "zero price", mutate: func(o *orderv1.Order) { o.PriceTicks = 0 }, code: errors.RejectInvalidPrice},
		{name: "negative qty", mutate: func(o *orderv1.Order) { o.Qty = -1 }, code: errors.RejectInvalidQuantity},
		{name: "expired", mutate: func(o *orderv1.Order) { o.Expiry = &past }, code: errors.RejectOrderExpired},
		{name: "expires now", mutate: func(o *orderv1.Order) { o.Expiry = &now }, code: errors.RejectOrderExpired},
		{name: "zero nonce", mutate: func(o *orderv1.Order) { o.Nonce = 0 }, code: errors.RejectStaleNonce},
		{name: "above max price", mutate: func(o *orderv1.Order) { o.PriceTicks = 101 }, code: errors.RejectPriceOutOfRange},
		{name: "buy collateral", mutate: func(o *orderv1.Order) { o.MaxCollateral = 399 }, code: errors.RejectCollateralExceeded},
		{name: "buy collateral exact", mutate: func(o *orderv1.Order) { o.MaxCollateral = 400 }, verified: true},
		{
			name: "sell collateral",
			mutate: func(o *orderv1.Order) {
				o.Side = orderv1.SideSell
				o.MaxCollateral = 599
			},
			code: errors.RejectCollateralExceeded,
		},
		{name: "bad signature", mutate: func(o *orderv1.Order) {}, verified: false, code: errors.RejectInvalidSignature},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			verifier := orderv1_mock.NewMockSignatureVerifier(ctrl)
			verifier.EXPECT().Verify(gomock.Any()).Return(tc.verified).AnyTimes()

			v := NewValidator(Rules{MarketID: "m1", MaxPriceTicks: 100}, verifier)
			o := validOrder()
			tc.mutate(o)

			err := v.Check(o, now)
			if tc.code == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsReject(err))
			assert.Equal(t, string(tc.code), errors.AsDetails(err).Code)
		})
	}
}

func TestValidator_Validate_Nonce(t *testing.T) {
	v := NewValidator(Rules{MarketID: "m1"}, nil)

	o := validOrder()
	o.Nonce = 5
	require.NoError(t, v.Validate(o, now))

	replay := validOrder()
	replay.ID = "o2"
	replay.Nonce = 5
	err := v.Validate(replay, now)
	assert.True(t, errors.ErrorCodeEquals(err, string(errors.RejectStaleNonce)))

	older := validOrder()
	older.ID = "o3"
	older.Nonce = 4
	err = v.Validate(older, now)
	assert.True(t, errors.ErrorCodeEquals(err, string(errors.RejectStaleNonce)))

	other := validOrder()
	other.Maker = "bob"
	other.Nonce = 1
	require.NoError(t, v.Validate(other, now))

	assert.Equal(t, map[string]int64{"alice": 5, "bob": 1}, v.Drain())
	assert.Nil(t, v.Drain())
}

func TestValidator_Validate_RejectDoesNotConsumeNonce(t *testing.T) {
	v := NewValidator(Rules{MarketID: "m1"}, nil)

	bad := validOrder()
	bad.Nonce = 3
	bad.Qty = 0
	require.Error(t, v.Validate(bad, now))
	assert.Equal(t, int64(0), v.Nonce("alice"))

	good := validOrder()
	good.Nonce = 3
	require.NoError(t, v.Validate(good, now))
}

func TestValidator_Restore(t *testing.T) {
	v := NewValidator(Rules{MarketID: "m1"}, nil)
	v.Restore(map[string]int64{"alice": 9})

	o := validOrder()
	o.Nonce = 9
	assert.Error(t, v.Validate(o, now))

	o.Nonce = 10
	assert.NoError(t, v.Validate(o, now))
}

func TestHMACVerifier(t *testing.T) {
	h := NewHMACVerifier("secret")
	o := validOrder()
	o.Signature = h.Sign(o)

	assert.True(t, h.Verify(o))

	o.Qty++
	assert.False(t, h.Verify(o))

	o.Signature = "not-hex"
	assert.False(t, h.Verify(o))

	assert.True(t, NewVerifier("").Verify(validOrder()))
}

func TestValidator_CheckCancel(t *testing.T) {
	signer := NewHMACVerifier("secret")
	signed := func() *orderv1.Cancel {
		c := &orderv1.Cancel{OrderID: "o1", MarketID: "m1", Maker: "alice"}
		c.Signature = signer.SignCancel(c)
		return c
	}

	testCases := []struct {
		name   string
		mutate func(c *orderv1.Cancel)
		code   errors.ErrorCode
	}{
		{name: "signed by the maker", mutate: func(*orderv1.Cancel) {}},
		{name: "missing signature", mutate: func(c *orderv1.Cancel) { c.Signature = "" }, code: errors.RejectMissingField},
		{name: "unsigned", mutate: func(c *orderv1.Cancel) { c.Signature = "unsigned" }, code: errors.RejectInvalidSignature},
		{name: "maker swapped after signing", mutate: func(c *orderv1.Cancel) { c.Maker = "mallory" }, code: errors.RejectInvalidSignature},
		{name: "order signature reused", mutate: func(c *orderv1.Cancel) { c.Signature = signer.Sign(validOrder()) }, code: errors.RejectInvalidSignature},
		{name: "other market", mutate: func(c *orderv1.Cancel) { c.MarketID = "m2" }, code: errors.RejectUnknownMarket},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := NewValidator(Rules{MarketID: "m1"}, signer)
			c := signed()
			tc.mutate(c)

			err := v.CheckCancel(c)
			if tc.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.ErrorCodeEquals(err, string(tc.code)), err.Error())
		})
	}
}

func TestNewVerifier_AcceptsAnyWithoutSecret(t *testing.T) {
	v := NewVerifier("")
	assert.True(t, v.Verify(validOrder()))
	assert.True(t, v.VerifyCancel(&orderv1.Cancel{OrderID: "o1", MarketID: "m1", Maker: "alice"}))
}
