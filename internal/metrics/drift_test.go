package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/san-kum/dampsim/internal/dynamo"
)

func TestSummarize(t *testing.T) {
	e := &dynamo.EnergySeries{
		Total: []float64{1.0, 0.8, 0.9, 0.5},
		Loss:  []float64{0.0, 0.25, 0.1, 0.5},
	}

	b := Summarize(e)
	assert.Equal(t, 1.0, b.Initial)
	assert.Equal(t, 0.5, b.Final)
	assert.Equal(t, 0.5, b.Dissipated)
	assert.InDelta(t, 0.5, b.Spread, 1e-12)
	assert.InDelta(t, 0.05, b.MaxResidual, 1e-12)
	assert.InDelta(t, 0.05, b.RelResidual, 1e-12)
}

func TestSummarize_Empty(t *testing.T) {
	e := &dynamo.EnergySeries{}

	assert.Equal(t, Budget{}, Summarize(e))
	assert.Zero(t, Spread(e))
	assert.Zero(t, MaxResidual(e))
}
