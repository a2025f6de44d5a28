package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBandsCoverTheWholeScale(t *testing.T) {
	require.Len(t, Bands, 8)
	assert.Equal(t, 0.0, Bands[0].Min)
	assert.Equal(t, 100.0, Bands[7].Max)
	for i := 1; i < len(Bands); i++ {
		assert.Equal(t, i+1, Bands[i].Level)
		assert.Greater(t, Bands[i].Min, Bands[i-1].Max, "bands must not overlap")
	}
}

func TestLevelForRating(t *testing.T) {
	t.Run("boundaries", func(t *testing.T) {
		level, xp := LevelForRating(0)
		assert.Equal(t, 1, level)
		assert.Equal(t, 0.0, xp)

		level, xp = LevelForRating(100)
		assert.Equal(t, 8, level)
		assert.Equal(t, 100.0, xp)

		// 50.0 is the inclusive lower bound of level 5's band.
		level, xp = LevelForRating(50)
		assert.Equal(t, 5, level)
		assert.Equal(t, 0.0, xp)
	})

	t.Run("xp resets at each band's lower edge", func(t *testing.T) {
		level, xp := LevelForRating(62.4)
		assert.Equal(t, 5, level)
		assert.Equal(t, 100.0, xp)

		level, xp = LevelForRating(62.5)
		assert.Equal(t, 6, level)
		assert.Equal(t, 0.0, xp)
	})

	t.Run("level is monotonic non-decreasing in rating", func(t *testing.T) {
		prev := 0
		for r := 0.0; r <= 100; r += 0.1 {
			level, _ := LevelForRating(r)
			assert.GreaterOrEqual(t, level, prev, "rating %v", r)
			prev = level
		}
	})

	t.Run("out of range ratings are clamped", func(t *testing.T) {
		level, xp := LevelForRating(-5)
		assert.Equal(t, 1, level)
		assert.Equal(t, 0.0, xp)

		level, xp = LevelForRating(140)
		assert.Equal(t, 8, level)
		assert.Equal(t, 100.0, xp)
	})
}

func TestInitialRatingRoundTrip(t *testing.T) {
	for declared := 1; declared <= 8; declared++ {
		r := InitialRating(declared)
		level, xp := LevelForRating(r)
		assert.Equal(t, declared, level, "declared level %d", declared)
		assert.InDelta(t, 50.0, xp, 0.01, "declared level %d", declared)
	}
}

func TestInitialRatingClampsDeclaredLevel(t *testing.T) {
	assert.Equal(t, InitialRating(1), InitialRating(0))
	assert.Equal(t, InitialRating(8), InitialRating(12))
}
