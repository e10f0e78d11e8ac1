package orderv1

import "time"

// SignatureVerifier checks the signatures carried on orders and cancels.
// The verification algorithm is supplied by the caller.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=orderv1_mock
type SignatureVerifier interface {
	Verify(o *Order) bool
	VerifyCancel(c *Cancel) bool
}

// Validator decides whether an order may enter the book.
type Validator interface {
	// Check runs the stateless structural checks against wall-clock time now.
	Check(o *Order, now time.Time) error
	// CheckCancel verifies a cancel request is complete and signed by its maker.
	CheckCancel(c *Cancel) error
	// Validate runs every check at consensus time and advances the maker's nonce on success.
	Validate(o *Order, consensusTime time.Time) error
}
