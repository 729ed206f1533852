package iridium

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyntheticBurstShape(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	b := syntheticBurst(1626.2708, rng)
	assert.True(t, b.Demo)
	assert.Equal(t, "burst", b.Type)
	assert.Equal(t, "1626.271", b.Frequency)
	assert.Len(t, b.Data, 16)
	assert.NotEmpty(t, b.Time)
}

func TestBurstProbabilityIsLow(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	fires := 0
	const trials = 100000
	for i := 0; i < trials; i++ {
		if rng.Float64() < BurstProbability {
			fires++
		}
	}
	rate := float64(fires) / trials
	assert.InDelta(t, BurstProbability, rate, 0.01)
}
