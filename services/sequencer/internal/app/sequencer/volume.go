package sequencer

import (
	"time"

	matchingv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/matching/v1"
	sequencerv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/sequencer/v1"
)

// VolumeWindow sums traded quantity over a trailing window of consensus time.
// Samples arrive in consensus order, so expiry only ever pops from the front.
type VolumeWindow struct {
	span    time.Duration
	samples []sequencerv1.VolumeSample
	total   int64
}

// NewVolumeWindow creates an empty window covering span.
func NewVolumeWindow(span time.Duration) *VolumeWindow {
	return &VolumeWindow{span: span}
}

// Restore replaces the window contents with committed samples.
func (w *VolumeWindow) Restore(samples []sequencerv1.VolumeSample) {
	w.samples = append(w.samples[:0], samples...)
	w.total = 0
	for _, s := range w.samples {
		w.total += s.Qty
	}
}

// Add records trades executed at consensus time t.
func (w *VolumeWindow) Add(t time.Time, trades []matchingv1.Trade) {
	for _, tr := range trades {
		w.samples = append(w.samples, sequencerv1.VolumeSample{Timestamp: t, Qty: tr.Qty})
		w.total += tr.Qty
	}
}

// Total evicts samples older than the window at now and returns the sum.
func (w *VolumeWindow) Total(now time.Time) int64 {
	cutoff := now.Add(-w.span)
	drop := 0
	for drop < len(w.samples) && !w.samples[drop].Timestamp.After(cutoff) {
		w.total -= w.samples[drop].Qty
		drop++
	}
	if drop > 0 {
		w.samples = append(w.samples[:0], w.samples[drop:]...)
	}
	return w.total
}

// Len returns the number of samples in the window.
func (w *VolumeWindow) Len() int {
	return len(w.samples)
}
