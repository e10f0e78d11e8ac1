package consensusv1

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNoMessage is returned by Reader.Next when nothing arrived within the poll timeout.
var ErrNoMessage = errors.New("no message within poll timeout")

// Reader delivers one market's logical messages in strict consensus order.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=consensusv1_mock
type Reader interface {
	// Seek positions the reader so the next raw record read has sequence fromSequence.
	Seek(ctx context.Context, fromSequence int64) error
	// Next blocks until a complete logical message is available.
	Next(ctx context.Context) (*Message, error)
	// PendingFrom returns the lowest raw sequence of an incomplete chunk set, or 0.
	PendingFrom() int64
	Close() error
}

// Publisher submits payloads to the log and returns the sequence assigned to
// the record that completes the message.
type Publisher interface {
	Publish(ctx context.Context, payload *Payload) (int64, error)
	Close() error
}
