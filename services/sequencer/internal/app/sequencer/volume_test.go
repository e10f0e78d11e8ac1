package sequencer

import (
	"testing"
	"time"

	matchingv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/matching/v1"
	sequencerv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/sequencer/v1"
	"github.com/stretchr/testify/assert"
)

func TestVolumeWindow(t *testing.T) {
	w := NewVolumeWindow(24 * time.Hour)
	w.Restore([]sequencerv1.VolumeSample{
		{Timestamp: epoch, Qty: 5},
		{Timestamp: epoch.Add(time.Hour), Qty: 7},
	})
	assert.Equal(t, int64(12), w.Total(epoch.Add(2*time.Hour)))

	w.Add(epoch.Add(23*time.Hour), []matchingv1.Trade{{Qty: 1}, {Qty: 2}})
	assert.Equal(t, int64(15), w.Total(epoch.Add(23*time.Hour)))

	// a sample exactly one window old has left it
	assert.Equal(t, int64(10), w.Total(epoch.Add(24*time.Hour)))
	assert.Equal(t, 3, w.Len())

	assert.Equal(t, int64(0), w.Total(epoch.Add(48*time.Hour)))
	assert.Equal(t, 0, w.Len())
}
