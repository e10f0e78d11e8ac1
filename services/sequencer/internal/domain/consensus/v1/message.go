package consensusv1

import (
	"encoding/json"
	"time"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	orderv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/order/v1"
)

// PayloadType discriminates the payload carried by a logical message.
type PayloadType string

const (
	PayloadOrder         PayloadType = "order"
	PayloadCancel        PayloadType = "cancel"
	PayloadBatchBoundary PayloadType = "batch_boundary"
)

// Boundary marks the end of a settlement batch for a market.
type Boundary struct {
	Reason string `json:"reason,omitempty"`
}

// Payload is the reassembled body of a logical consensus message.
type Payload struct {
	Type     PayloadType     `json:"type"`
	MarketID string          `json:"marketId"`
	Order    *orderv1.Intent `json:"order,omitempty"`
	Cancel   *orderv1.Cancel `json:"cancel,omitempty"`
	Boundary *Boundary       `json:"boundary,omitempty"`
}

// DecodePayload parses and checks that the body matching the type is present.
func DecodePayload(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.NewErrorDetails(err.Error(), string(errors.MalformedMessage), "payload")
	}

	switch {
	case p.MarketID == "":
		return nil, errors.NewErrorDetails("payload has no marketId", string(errors.MalformedMessage), "marketId")
	case p.Type == PayloadOrder && p.Order == nil:
		return nil, errors.NewErrorDetails("order payload has no order", string(errors.MalformedMessage), "order")
	case p.Type == PayloadCancel && p.Cancel == nil:
		return nil, errors.NewErrorDetails("cancel payload has no cancel", string(errors.MalformedMessage), "cancel")
	case p.Type != PayloadOrder && p.Type != PayloadCancel && p.Type != PayloadBatchBoundary:
		return nil, errors.NewErrorDetails("unknown payload type "+string(p.Type), string(errors.MalformedMessage), "type")
	}

	return &p, nil
}

// Message is one logical message delivered in consensus order.
type Message struct {
	TopicID            string
	MessageID          string
	Sequence           int64
	ConsensusTimestamp time.Time
	Payload            *Payload

	// Discarded is set when the records forming this message could not be
	// decoded. The message carries no payload but still advances the watermark.
	Discarded string
}

// Envelope is the record value on the log. Messages larger than one record
// are split into totalChunks envelopes sharing a messageId.
type Envelope struct {
	MessageID   string `json:"messageId"`
	ChunkIndex  int    `json:"chunkIndex"`
	TotalChunks int    `json:"totalChunks"`
	Chunk       []byte `json:"chunk"`
}

// Split cuts payload into envelopes of at most chunkSize bytes each.
func Split(messageID string, payload []byte, chunkSize int) []Envelope {
	if chunkSize <= 0 || len(payload) <= chunkSize {
		return []Envelope{{MessageID: messageID, ChunkIndex: 0, TotalChunks: 1, Chunk: payload}}
	}

	total := (len(payload) + chunkSize - 1) / chunkSize
	envelopes := make([]Envelope, 0, total)
	for i := 0; i < total; i++ {
		end := (i + 1) * chunkSize
		if end > len(payload) {
			end = len(payload)
		}
		envelopes = append(envelopes, Envelope{
			MessageID:   messageID,
			ChunkIndex:  i,
			TotalChunks: total,
			Chunk:       payload[i*chunkSize : end],
		})
	}
	return envelopes
}

// Topic returns the log topic carrying a market's messages.
func Topic(prefix, marketID string) string {
	return prefix + marketID
}
