package sequencerv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_ResumeFrom(t *testing.T) {
	assert.Equal(t, int64(1), (&State{}).ResumeFrom())
	assert.Equal(t, int64(11), (&State{LastAppliedSequence: 10}).ResumeFrom())
	assert.Equal(t, int64(7), (&State{LastAppliedSequence: 10, ReplayFrom: 7}).ResumeFrom())
}
