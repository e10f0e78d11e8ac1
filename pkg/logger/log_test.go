package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected Level
	}{
		{input: "debug", expected: DebugLevel},
		{input: " WARN ", expected: WarnLevel},
		{input: "error", expected: ErrorLevel},
		{input: "", expected: InfoLevel},
		{input: "verbose", expected: InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseLevel(tc.input))
		})
	}
}

func TestLogger_WritesContextFields(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.json")
	log, err := NewLogger(WithOutputPaths([]string{out}), WithLoggingLevel(DebugLevel), WithService("sequencer"))
	require.NoError(t, err)

	ctx := util.WithRequestID(context.Background(), "req-9")
	ctx = util.WithMarketID(ctx, "m1")
	ctx = util.WithSequence(ctx, 7)

	log.InfoContext(ctx, "applied", NewField("trades", 2))
	log.ErrorContext(ctx, errors.NewTracer("apply_failed").Wrap(errors.NewSequenceGap("m1", 7, 9)))
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(raw)

	assert.Contains(t, content, `"message":"applied"`)
	assert.Contains(t, content, `"market_id":"m1"`)
	assert.Contains(t, content, `"sequence":7`)
	assert.Contains(t, content, `"request_id":"req-9"`)
	assert.Contains(t, content, `"message":"apply_failed"`)
	assert.Contains(t, content, `"service":"sequencer"`)
}

func TestLogger_WithFields(t *testing.T) {
	log := NewNopLogger()
	child := log.WithFields(NewField("market_id", "m1"))

	assert.NotNil(t, child)
	assert.NotNil(t, child.GetZap())
}
