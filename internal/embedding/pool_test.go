package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanPool(t *testing.T) {
	// three tokens of dimension 2, last one masked out
	hidden := []float32{1, 0, 3, 0, 100, 100}
	got := meanPool(hidden, []int64{1, 1, 0}, 2)
	assert.InDelta(t, 1.0, got[0], 1e-6)
	assert.InDelta(t, 0.0, got[1], 1e-6)

	zero := meanPool(make([]float32, 4), []int64{0, 0}, 2)
	assert.Equal(t, []float32{0, 0}, zero)
}
