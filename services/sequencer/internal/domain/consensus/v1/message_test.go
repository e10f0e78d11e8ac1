package consensusv1

import (
	"bytes"
	"testing"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	payload := []byte("abcdefghij")

	testCases := []struct {
		name      string
		chunkSize int
		expected  int
	}{
		{name: "no limit", chunkSize: 0, expected: 1},
		{name: "fits", chunkSize: 10, expected: 1},
		{name: "exact multiple", chunkSize: 5, expected: 2},
		{name: "remainder", chunkSize: 4, expected: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			envelopes := Split("m1", payload, tc.chunkSize)
			require.Len(t, envelopes, tc.expected)

			var joined bytes.Buffer
			for i, env := range envelopes {
				assert.Equal(t, i, env.ChunkIndex)
				assert.Equal(t, tc.expected, env.TotalChunks)
				assert.Equal(t, "m1", env.MessageID)
				joined.Write(env.Chunk)
			}
			assert.Equal(t, payload, joined.Bytes())
		})
	}
}

func TestDecodePayload(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		field string
	}{
		{name: "order", input: `{"type":"order","marketId":"m1","order":{"orderId":"o1","side":"BUY"}}`},
		{name: "boundary", input: `{"type":"batch_boundary","marketId":"m1"}`},
		{name: "not json", input: `{`, field: "payload"},
		{name: "no market", input: `{"type":"batch_boundary"}`, field: "marketId"},
		{name: "order missing body", input: `{"type":"order","marketId":"m1"}`, field: "order"},
		{name: "cancel missing body", input: `{"type":"cancel","marketId":"m1"}`, field: "cancel"},
		{name: "unknown type", input: `{"type":"swap","marketId":"m1"}`, field: "type"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := DecodePayload([]byte(tc.input))
			if tc.field == "" {
				require.NoError(t, err)
				assert.Equal(t, "m1", p.MarketID)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.ErrorCodeEquals(err, string(errors.MalformedMessage)))
			assert.Equal(t, tc.field, errors.AsDetails(err).Field)
		})
	}
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "clob.market.m1", Topic("clob.market.", "m1"))
}
