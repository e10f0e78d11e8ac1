package reassembly

import (
	"testing"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	consensusv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/consensus/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(id string, idx, total int, chunk string) consensusv1.Envelope {
	return consensusv1.Envelope{MessageID: id, ChunkIndex: idx, TotalChunks: total, Chunk: []byte(chunk)}
}

func TestReassembler_SingleChunk(t *testing.T) {
	r := NewReassembler()

	payload, complete, err := r.Add(1, env("a", 0, 1, "hello"))
	require.NoError(t, err)
	assert.True(t, complete)
	assert.Equal(t, "hello", string(payload))
	assert.Equal(t, int64(0), r.PendingFrom())
}

func TestReassembler_OutOfOrderChunks(t *testing.T) {
	r := NewReassembler()

	_, complete, err := r.Add(4, env("a", 2, 3, "c"))
	require.NoError(t, err)
	assert.False(t, complete)

	_, complete, err = r.Add(5, env("a", 0, 3, "a"))
	require.NoError(t, err)
	assert.False(t, complete)
	assert.Equal(t, int64(4), r.PendingFrom())

	payload, complete, err := r.Add(6, env("a", 1, 3, "b"))
	require.NoError(t, err)
	assert.True(t, complete)
	assert.Equal(t, "abc", string(payload))
	assert.Equal(t, 0, r.Pending())
}

func TestReassembler_Interleaved(t *testing.T) {
	r := NewReassembler()

	_, _, _ = r.Add(10, env("a", 0, 2, "a0"))
	_, _, _ = r.Add(11, env("b", 0, 2, "b0"))
	assert.Equal(t, int64(10), r.PendingFrom())

	payload, complete, err := r.Add(12, env("b", 1, 2, "b1"))
	require.NoError(t, err)
	assert.True(t, complete)
	assert.Equal(t, "b0b1", string(payload))
	assert.Equal(t, int64(10), r.PendingFrom())

	payload, complete, _ = r.Add(13, env("a", 1, 2, "a1"))
	assert.True(t, complete)
	assert.Equal(t, "a0a1", string(payload))
	assert.Equal(t, int64(0), r.PendingFrom())
}

func TestReassembler_DuplicateChunk(t *testing.T) {
	r := NewReassembler()

	_, _, _ = r.Add(1, env("a", 0, 2, "x"))
	_, complete, err := r.Add(2, env("a", 0, 2, "x"))
	require.NoError(t, err)
	assert.False(t, complete)
	assert.Equal(t, 1, r.Pending())
}

func TestReassembler_Malformed(t *testing.T) {
	testCases := []struct {
		name  string
		setup []consensusv1.Envelope
		input consensusv1.Envelope
	}{
		{name: "no message id", input: env("", 0, 1, "x")},
		{name: "zero total", input: env("a", 0, 0, "x")},
		{name: "index out of range", input: env("a", 2, 2, "x")},
		{name: "negative index", input: env("a", -1, 2, "x")},
		{name: "total mismatch", setup: []consensusv1.Envelope{env("a", 0, 2, "x")}, input: env("a", 1, 3, "y")},
		{name: "conflicting duplicate", setup: []consensusv1.Envelope{env("a", 0, 2, "x")}, input: env("a", 0, 2, "y")},
		{name: "single after partial", setup: []consensusv1.Envelope{env("a", 0, 2, "x")}, input: env("a", 0, 1, "y")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReassembler()
			for i, e := range tc.setup {
				_, _, err := r.Add(int64(i+1), e)
				require.NoError(t, err)
			}

			_, complete, err := r.Add(100, tc.input)
			assert.False(t, complete)
			assert.True(t, errors.ErrorCodeEquals(err, string(errors.MalformedMessage)))
			assert.Equal(t, 0, r.Pending())
		})
	}
}

func TestReassembler_RoundTripSplit(t *testing.T) {
	r := NewReassembler()
	payload := []byte(`{"type":"order","marketId":"m1","order":{"orderId":"o1"}}`)

	var got []byte
	for i, e := range consensusv1.Split("msg", payload, 7) {
		out, complete, err := r.Add(int64(i+1), e)
		require.NoError(t, err)
		if complete {
			got = out
		}
	}
	assert.Equal(t, payload, got)
}

func TestReassembler_LateChunkOfDroppedSet(t *testing.T) {
	r := NewReassembler()

	_, _, _ = r.Add(1, env("a", 0, 3, "x"))
	_, _, err := r.Add(2, env("a", 1, 2, "y"))
	require.Error(t, err)

	_, complete, err := r.Add(3, env("a", 2, 3, "z"))
	require.NoError(t, err)
	assert.False(t, complete)
	assert.Equal(t, int64(0), r.PendingFrom())
}
