package hashing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed_Deterministic(t *testing.T) {
	e := NewEmbedder(128)
	a, err := e.Embed("theft of your covered auto")
	require.NoError(t, err)
	b, err := e.Embed("theft of your covered auto")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 128)
}

func TestEmbed_Normalized(t *testing.T) {
	e := NewEmbedder(64)
	vec, err := e.Embed("we will pay for direct and accidental loss")
	require.NoError(t, err)

	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestEmbed_CaseInsensitive(t *testing.T) {
	e := NewEmbedder(64)
	lower, _ := e.Embed("vehicle theft")
	upper, _ := e.Embed("VEHICLE THEFT")
	assert.Equal(t, lower, upper)
}

func TestEmbed_EmptyTextIsZeroVector(t *testing.T) {
	e := NewEmbedder(32)
	vec, err := e.Embed("")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestEmbedBatch_PreservesOrder(t *testing.T) {
	e := NewEmbedder(64)
	batch, err := e.EmbedBatch([]string{"first text", "second text"})
	require.NoError(t, err)
	require.Len(t, batch, 2)

	first, _ := e.Embed("first text")
	second, _ := e.Embed("second text")
	assert.Equal(t, first, batch[0])
	assert.Equal(t, second, batch[1])
}

func TestNewEmbedder_DefaultDimension(t *testing.T) {
	assert.Equal(t, 384, NewEmbedder(0).Dimension())
	assert.Equal(t, 384, NewEmbedder(-5).Dimension())
	assert.Equal(t, 16, NewEmbedder(16).Dimension())
}
