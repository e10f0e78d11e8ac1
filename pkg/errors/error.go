package errors

import (
	"bytes"
	"reflect"
	"strings"
)

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralBadRequestError represents a generic bad request error.
	GeneralBadRequestError ErrorCode = "general_bad_request_error"
	// GeneralNotFoundError represents a generic not found error.
	GeneralNotFoundError ErrorCode = "general_not_found_error"
	// GeneralRepositoryError represents a generic repository error.
	GeneralRepositoryError ErrorCode = "general_repository_error"

	// RejectMissingField is returned when a required order field is empty.
	RejectMissingField ErrorCode = "missing_field"
	// RejectInvalidPrice is returned when the price is not a positive tick count.
	RejectInvalidPrice ErrorCode = "invalid_price"
	// RejectInvalidQuantity is returned when the quantity is not positive.
	RejectInvalidQuantity ErrorCode = "invalid_quantity"
	// RejectOrderExpired is returned when the expiry is not after consensus time.
	RejectOrderExpired ErrorCode = "order_expired"
	// RejectStaleNonce is returned for duplicate or out-of-order nonces.
	RejectStaleNonce ErrorCode = "stale_nonce"
	// RejectInvalidSignature is returned when the signature predicate fails.
	RejectInvalidSignature ErrorCode = "invalid_signature"
	// RejectPriceOutOfRange is returned when the price exceeds the market maximum.
	RejectPriceOutOfRange ErrorCode = "price_out_of_range"
	// RejectCollateralExceeded is returned when the worst-case cost exceeds maxCollateral.
	RejectCollateralExceeded ErrorCode = "collateral_exceeded"
	// RejectUnknownMarket is returned when the order targets a market that is not served.
	RejectUnknownMarket ErrorCode = "unknown_market"
	// RejectInvalidTimeInForce is returned for a time in force other than GTC, IOC or FOK.
	RejectInvalidTimeInForce ErrorCode = "invalid_time_in_force"
	// RejectInvalidSide is returned for a side other than BUY or SELL.
	RejectInvalidSide ErrorCode = "invalid_side"
	// RejectDuplicateOrder is returned when the order id is already resting in the book.
	RejectDuplicateOrder ErrorCode = "duplicate_order"
	// RejectUnauthorizedCancel is returned when a cancel is not signed by the order's maker.
	RejectUnauthorizedCancel ErrorCode = "unauthorized_cancel"

	// SequenceGap is raised when the consensus log skips a sequence number.
	SequenceGap ErrorCode = "sequence_gap"
	// InvariantViolation is raised when book or order state is inconsistent.
	InvariantViolation ErrorCode = "invariant_violation"
	// MarketHalted is returned when work is requested from a halted market.
	MarketHalted ErrorCode = "market_halted"
	// SettlementFailure is raised when a batch cannot be submitted or is rejected.
	SettlementFailure ErrorCode = "settlement_failure"
	// TransientReadFailure is raised when the consensus log or store is temporarily unavailable.
	TransientReadFailure ErrorCode = "transient_read_failure"
	// LeaseNotHeld is returned when another instance owns the market.
	LeaseNotHeld ErrorCode = "lease_not_held"
	// MalformedMessage is raised for log records that cannot be decoded.
	MalformedMessage ErrorCode = "malformed_message"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisDisconnectionError represents an error when disconnecting from Redis.
	RedisDisconnectionError ErrorCode = "redis_disconnection_error"
	// RedisPingError represents an error when pinging Redis.
	RedisPingError ErrorCode = "redis_pinging_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisSetNXError represents an error when setting a value in Redis with SetNX.
	RedisSetNXError ErrorCode = "redis_setnx_error"
	// RedisHGetError represents an error when getting a field from a hash in Redis.
	RedisHGetError ErrorCode = "redis_hget_error"
	// RedisEvalError represents an error when running a script in Redis.
	RedisEvalError ErrorCode = "redis_eval_error"
)

// Severity represents the severity level of an error.
type Severity string

const (
	// SeverityCritical indicates a critical error that requires immediate attention.
	SeverityCritical Severity = "critical"
	// SeverityHigh indicates a high severity error that should be addressed promptly.
	SeverityHigh Severity = "high"
	// SeverityLow indicates a low severity error that can be addressed at a later time.
	SeverityLow Severity = "low"
)

// SeverityOf maps an error code onto the severity used by alerting.
func SeverityOf(code ErrorCode) Severity {
	switch code {
	case SequenceGap, InvariantViolation:
		return SeverityCritical
	case SettlementFailure, LeaseNotHeld, MarketHalted:
		return SeverityHigh
	default:
		return SeverityLow
	}
}

// IsFatal reports whether err must stop forward progress of a market.
func IsFatal(err error) bool {
	details := AsDetails(err)
	if details == nil {
		return false
	}
	code := ErrorCode(details.Code)
	return code == SequenceGap || code == InvariantViolation
}

// IsReject reports whether err is an order rejection.
func IsReject(err error) bool {
	details := AsDetails(err)
	if details == nil {
		return false
	}
	return isRejectCode(ErrorCode(details.Code))
}

func isRejectCode(code ErrorCode) bool {
	switch code {
	case RejectMissingField, RejectInvalidPrice, RejectInvalidQuantity, RejectOrderExpired,
		RejectStaleNonce, RejectInvalidSignature, RejectPriceOutOfRange, RejectCollateralExceeded,
		RejectUnknownMarket, RejectInvalidTimeInForce, RejectInvalidSide, RejectDuplicateOrder,
		RejectUnauthorizedCancel:
		return true
	}
	return false
}

// BaseError is an `error` type containing an array of ErrorDetails.
type BaseError struct {
	details []*ErrorDetails
}

// NewBaseError create BaseError with ErrorDetails
func NewBaseError(details ...*ErrorDetails) *BaseError {
	return &BaseError{details: details}
}

// AddErrorDetails add more ErrorDetails to BaseError
func (b *BaseError) AddErrorDetails(errors ...*ErrorDetails) {
	b.details = append(b.details, errors...)
}

// GetDetails get array ErrorDetails on BaseError
func (b *BaseError) GetDetails() []*ErrorDetails {
	return b.details
}

// Error implement error interface
func (b *BaseError) Error() string {
	buff := bytes.NewBufferString("")

	buff.WriteString("Error on\n")
	for _, err := range b.details {
		buff.WriteString("code: ")
		buff.WriteString(err.Code)
		buff.WriteString("; error: ")
		buff.WriteString(err.Error())
		buff.WriteString("; field: ")
		buff.WriteString(err.Field)
		buff.WriteString("; object: ")
		if err.Object != nil {
			buff.WriteString(reflect.TypeOf(err.Object).String())
		}
		buff.WriteString("\n")
	}

	return strings.TrimSpace(buff.String())
}

// IsAnyCodeEqual check if any ErrorDetails code is equal with given code
func (b *BaseError) IsAnyCodeEqual(code string) bool {
	for _, d := range b.GetDetails() {
		if d.Code == code {
			return true
		}
	}
	return false
}
