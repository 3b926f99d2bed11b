package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceKey(t *testing.T) {
	assert.Equal(t, "optimization_run_42_trace", TraceKey(42))
}

func TestParseTrace(t *testing.T) {
	trace, err := parseTrace([]string{"30", "35.5", "1e+06"})
	require.NoError(t, err)
	assert.Equal(t, []float64{30, 35.5, 1e6}, trace)

	trace, err = parseTrace(nil)
	require.NoError(t, err)
	assert.Empty(t, trace)

	_, err = parseTrace([]string{"30", "abc"})
	require.Error(t, err)
}
