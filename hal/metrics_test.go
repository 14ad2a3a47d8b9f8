package hal

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halware/halcommon/logging"
)

func TestNewMetrics(t *testing.T) {
	var (
		assert   = assert.New(t)
		require  = require.New(t)
		registry = prometheus.NewPedanticRegistry()
		m        = NewMetrics(registry)
	)

	require.NotNil(m)
	require.NotNil(m.Unresolvable)

	r := New(Options{
		Server:       testServer,
		Logger:       logging.NewTestLogger(nil, t),
		Unresolvable: m.Unresolvable,
	})

	r.Link("nosuchrelation", Override{})

	families, err := registry.Gather()
	require.NoError(err)
	require.Len(families, 1)
	assert.Equal(UnresolvableRelationCounter, families[0].GetName())
	assert.Equal(float64(1), families[0].GetMetric()[0].GetCounter().GetValue())
}
