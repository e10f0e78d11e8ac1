package validator

import (
	"math"
	"time"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	orderv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/order/v1"
)

// Rules are the market parameters an order is checked against.
type Rules struct {
	MarketID string
	// MaxPriceTicks bounds prices and prices the worst case of a sell. Zero disables both.
	MaxPriceTicks int64
}

// Validator checks orders for one market and tracks the highest accepted
// nonce per maker. It is owned by the market loop.
type Validator struct {
	rules    Rules
	verifier orderv1.SignatureVerifier
	nonces   map[string]int64
	dirty    map[string]int64
}

// NewValidator creates a validator with no nonce history.
func NewValidator(rules Rules, verifier orderv1.SignatureVerifier) *Validator {
	return &Validator{
		rules:    rules,
		verifier: verifier,
		nonces:   make(map[string]int64),
		dirty:    make(map[string]int64),
	}
}

// Check runs the stateless checks. Intake calls it with wall-clock time.
func (v *Validator) Check(o *orderv1.Order, now time.Time) error {
	switch {
	case o.ID == "":
		return errors.NewRejectReason(errors.RejectMissingField, "orderId", "orderId is required")
	case o.MarketID == "":
		return errors.NewRejectReason(errors.RejectMissingField, "marketId", "marketId is required")
	case o.Maker == "":
		return errors.NewRejectReason(errors.RejectMissingField, "maker", "maker is required")
	case o.Signature == "":
		return errors.NewRejectReason(errors.RejectMissingField, "signature", "signature is required")
	}

	if v.rules.MarketID != "" && o.MarketID != v.rules.MarketID {
		return errors.NewRejectReason(errors.RejectUnknownMarket, "marketId", "market %s is not served here", o.MarketID)
	}
	if !o.Side.Valid() {
		return errors.NewRejectReason(errors.RejectInvalidSide, "side", "side %q must be BUY or SELL", o.Side)
	}
	if !o.TimeInForce.Valid() {
		return errors.NewRejectReason(errors.RejectInvalidTimeInForce, "timeInForce", "time in force %q must be GTC, IOC or FOK", o.TimeInForce)
	}
	if o.PriceTicks <= 0 {
		return errors.NewRejectReason(errors.RejectInvalidPrice, "priceTicks", "price %d must be positive", o.PriceTicks)
	}
	if o.Qty <= 0 {
		return errors.NewRejectReason(errors.RejectInvalidQuantity, "qty", "quantity %d must be positive", o.Qty)
	}
	if o.ExpiredAt(now) {
		return errors.NewRejectReason(errors.RejectOrderExpired, "expiry", "order expired at %s", o.Expiry.UTC().Format(time.RFC3339Nano))
	}
	if o.Nonce <= 0 {
		return errors.NewRejectReason(errors.RejectStaleNonce, "nonce", "nonce must be positive")
	}
	if v.rules.MaxPriceTicks > 0 && o.PriceTicks > v.rules.MaxPriceTicks {
		return errors.NewRejectReason(errors.RejectPriceOutOfRange, "priceTicks", "price %d exceeds maximum %d", o.PriceTicks, v.rules.MaxPriceTicks)
	}
	if err := v.checkCollateral(o); err != nil {
		return err
	}
	if v.verifier != nil && !v.verifier.Verify(o) {
		return errors.NewRejectReason(errors.RejectInvalidSignature, "signature", "signature does not match order %s", o.ID)
	}
	return nil
}

// CheckCancel rejects a cancel that is incomplete or not signed by its maker.
// Whether the maker owns the order is decided against the book.
func (v *Validator) CheckCancel(c *orderv1.Cancel) error {
	switch {
	case c.OrderID == "":
		return errors.NewRejectReason(errors.RejectMissingField, "orderId", "orderId is required")
	case c.MarketID == "":
		return errors.NewRejectReason(errors.RejectMissingField, "marketId", "marketId is required")
	case c.Maker == "":
		return errors.NewRejectReason(errors.RejectMissingField, "maker", "maker is required")
	case c.Signature == "":
		return errors.NewRejectReason(errors.RejectMissingField, "signature", "signature is required")
	}

	if v.rules.MarketID != "" && c.MarketID != v.rules.MarketID {
		return errors.NewRejectReason(errors.RejectUnknownMarket, "marketId", "market %s is not served here", c.MarketID)
	}
	if v.verifier != nil && !v.verifier.VerifyCancel(c) {
		return errors.NewRejectReason(errors.RejectInvalidSignature, "signature", "signature does not match cancel of %s", c.OrderID)
	}
	return nil
}

// checkCollateral rejects orders whose worst-case cost exceeds maxCollateral.
// A buy risks its notional, a sell risks the distance to the maximum price.
func (v *Validator) checkCollateral(o *orderv1.Order) error {
	if o.MaxCollateral <= 0 {
		return nil
	}

	perUnit := o.PriceTicks
	if o.Side == orderv1.SideSell {
		if v.rules.MaxPriceTicks <= 0 {
			return nil
		}
		perUnit = v.rules.MaxPriceTicks - o.PriceTicks
	}
	if perUnit <= 0 {
		return nil
	}

	if o.Qty > math.MaxInt64/perUnit || perUnit*o.Qty > o.MaxCollateral {
		return errors.NewRejectReason(errors.RejectCollateralExceeded, "maxCollateral", "order %s needs more than %d collateral", o.ID, o.MaxCollateral)
	}
	return nil
}

// Validate runs every check at consensus time and, on success, records the
// maker's nonce. Nonces must strictly increase per maker within the market.
func (v *Validator) Validate(o *orderv1.Order, consensusTime time.Time) error {
	if err := v.Check(o, consensusTime); err != nil {
		return err
	}

	if last := v.nonces[o.Maker]; o.Nonce <= last {
		return errors.NewRejectReason(errors.RejectStaleNonce, "nonce", "nonce %d is not above %d for %s", o.Nonce, last, o.Maker)
	}

	v.nonces[o.Maker] = o.Nonce
	v.dirty[o.Maker] = o.Nonce
	return nil
}

// Nonce returns the highest accepted nonce for maker.
func (v *Validator) Nonce(maker string) int64 {
	return v.nonces[maker]
}

// Restore replaces the nonce history, typically from the last committed state.
func (v *Validator) Restore(nonces map[string]int64) {
	v.nonces = make(map[string]int64, len(nonces))
	for maker, nonce := range nonces {
		v.nonces[maker] = nonce
	}
	v.dirty = make(map[string]int64)
}

// Drain returns the nonces accepted since the previous call.
func (v *Validator) Drain() map[string]int64 {
	if len(v.dirty) == 0 {
		return nil
	}
	drained := v.dirty
	v.dirty = make(map[string]int64)
	return drained
}
