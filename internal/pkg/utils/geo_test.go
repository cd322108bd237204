package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRadius(t *testing.T) {
	assert.True(t, ValidateRadius(5000))
	assert.True(t, ValidateRadius(MinRadiusMeters))
	assert.True(t, ValidateRadius(MaxRadiusMeters))
	assert.False(t, ValidateRadius(50))
	assert.False(t, ValidateRadius(0))
	assert.False(t, ValidateRadius(60000))
}
