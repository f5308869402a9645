package CoupledFields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoupledFields(t *testing.T) {
	c := NewCoupledFields(16, 2, 4, 4, 30, 1.e-8)
	maxResidual, err := c.Run(5)
	require.NoError(t, err)
	assert.Less(t, maxResidual, 1.e-3)
	// both fields picked up structure from their right-hand sides
	assert.Greater(t, c.U0.Max()-c.U0.Min(), 0.)
	assert.Greater(t, c.U1.Max()-c.U1.Min(), 0.)
}
