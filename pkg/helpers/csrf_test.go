package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCSRFToken(t *testing.T) {
	a, err := NewCSRFToken()
	require.NoError(t, err)
	require.NotEmpty(t, a)
	// url-safe: must survive a cookie value without quoting
	assert.NotContains(t, a, "+")
	assert.NotContains(t, a, "/")
	assert.NotContains(t, a, "=")

	b, err := NewCSRFToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
