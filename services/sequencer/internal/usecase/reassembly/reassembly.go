package reassembly

import (
	"bytes"
	"fmt"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	consensusv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/consensus/v1"
)

type partial struct {
	total    int
	firstSeq int64
	chunks   map[int][]byte
}

// maxDropped bounds the memory of dropped message ids.
const maxDropped = 4096

// Reassembler joins chunked envelopes back into logical payloads.
// It is owned by one reader and is not safe for concurrent use.
type Reassembler struct {
	pending map[string]*partial
	// dropped remembers rejected chunk sets so their late chunks do not
	// start a new set that can never complete.
	dropped map[string]struct{}
}

// NewReassembler creates an empty reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{
		pending: make(map[string]*partial),
		dropped: make(map[string]struct{}),
	}
}

// Add feeds the envelope read at raw sequence seq. It returns the payload once
// every chunk of the message has arrived. An inconsistent chunk set is dropped
// and reported as a MalformedMessage error.
func (r *Reassembler) Add(seq int64, env consensusv1.Envelope) ([]byte, bool, error) {
	if env.MessageID == "" {
		return nil, false, malformed("", "envelope has no messageId")
	}
	if _, ok := r.dropped[env.MessageID]; ok {
		return nil, false, nil
	}
	if env.TotalChunks < 1 {
		return nil, false, r.drop(env.MessageID, "totalChunks %d is below 1", env.TotalChunks)
	}
	if env.ChunkIndex < 0 || env.ChunkIndex >= env.TotalChunks {
		return nil, false, r.drop(env.MessageID, "chunk index %d outside [0,%d)", env.ChunkIndex, env.TotalChunks)
	}

	if env.TotalChunks == 1 {
		if _, ok := r.pending[env.MessageID]; ok {
			return nil, false, r.drop(env.MessageID, "single chunk for a message already in progress")
		}
		return env.Chunk, true, nil
	}

	p, ok := r.pending[env.MessageID]
	if !ok {
		p = &partial{total: env.TotalChunks, firstSeq: seq, chunks: make(map[int][]byte, env.TotalChunks)}
		r.pending[env.MessageID] = p
	}

	if p.total != env.TotalChunks {
		return nil, false, r.drop(env.MessageID, "chunks disagree on totalChunks: %d and %d", p.total, env.TotalChunks)
	}

	if existing, dup := p.chunks[env.ChunkIndex]; dup {
		if !bytes.Equal(existing, env.Chunk) {
			return nil, false, r.drop(env.MessageID, "chunk %d delivered twice with different bytes", env.ChunkIndex)
		}
		return nil, false, nil
	}
	p.chunks[env.ChunkIndex] = env.Chunk

	if len(p.chunks) < p.total {
		return nil, false, nil
	}

	delete(r.pending, env.MessageID)
	var payload bytes.Buffer
	for i := 0; i < p.total; i++ {
		payload.Write(p.chunks[i])
	}
	return payload.Bytes(), true, nil
}

// PendingFrom returns the lowest raw sequence of an incomplete message, or 0.
func (r *Reassembler) PendingFrom() int64 {
	var lowest int64
	for _, p := range r.pending {
		if lowest == 0 || p.firstSeq < lowest {
			lowest = p.firstSeq
		}
	}
	return lowest
}

// Pending returns the number of incomplete messages.
func (r *Reassembler) Pending() int {
	return len(r.pending)
}

// Reset drops every incomplete message.
func (r *Reassembler) Reset() {
	r.pending = make(map[string]*partial)
	r.dropped = make(map[string]struct{})
}

func (r *Reassembler) drop(messageID, format string, args ...any) error {
	delete(r.pending, messageID)
	if len(r.dropped) >= maxDropped {
		r.dropped = make(map[string]struct{})
	}
	r.dropped[messageID] = struct{}{}
	return malformed(messageID, format, args...)
}

func malformed(messageID, format string, args ...any) error {
	return errors.NewErrorDetails(fmt.Sprintf(format, args...), string(errors.MalformedMessage), messageID)
}
