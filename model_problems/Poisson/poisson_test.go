package Poisson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoisson(t *testing.T) {
	c := NewPoisson(16, 2, 4, 4, 50, 1.e-8)
	maxResidual, err := c.Run(3)
	require.NoError(t, err)
	assert.Less(t, maxResidual, 1.e-4)
	// the solution is nontrivial and mean-free up to discretization
	assert.Greater(t, c.U.Max(), 0.)
	assert.Less(t, c.U.Min(), 0.)
	assert.InDelta(t, 0, c.U.Avg(), 1.e-3)
}
