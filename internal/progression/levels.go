// Package progression maps a 0-100 rating onto the club's 8 discrete levels
// and an in-level XP value used to render progress bars, and seeds a starting
// rating for players who self-declare a level on sign-up.
package progression

import "github.com/sebbultel59/padel-sync-engine/internal/rating"

// LevelBand is one interval of the fixed rating partition. Bands are
// inclusive on both ends; the top band's max is exactly 100.
type LevelBand struct {
	Level int
	Min   float64
	Max   float64
}

// Bands partitions [0,100] into the 8 club levels. Fixed at build time;
// never mutated at runtime.
var Bands = [8]LevelBand{
	{Level: 1, Min: 0, Max: 12.4},
	{Level: 2, Min: 12.5, Max: 24.9},
	{Level: 3, Min: 25, Max: 37.4},
	{Level: 4, Min: 37.5, Max: 49.9},
	{Level: 5, Min: 50, Max: 62.4},
	{Level: 6, Min: 62.5, Max: 74.9},
	{Level: 7, Min: 75, Max: 87.4},
	{Level: 8, Min: 87.5, Max: 100},
}

// LevelForRating maps a rating to its level and the XP progress within that
// level's band. The rating is clamped to [0,100] first; the returned XP is in
// [0,100], rounded to 2 decimals half away from zero.
func LevelForRating(r float64) (level int, xp float64) {
	r = rating.ClampRating(r)
	band := Bands[len(Bands)-1]
	for _, b := range Bands {
		if r <= b.Max {
			band = b
			break
		}
	}

	width := band.Max - band.Min
	if width <= 0 {
		// Misconfigured zero-width band; report no progress rather than crash.
		return band.Level, 0
	}
	xp = (r - band.Min) / width * 100
	xp = rating.Round2(xp)
	if xp < 0 {
		xp = 0
	} else if xp > 100 {
		xp = 100
	}
	return band.Level, xp
}

// InitialRating seeds a new player's rating from a self-declared level by
// returning the midpoint of that level's band. Feeding the result back
// through LevelForRating yields the same level with XP of 50.
func InitialRating(declaredLevel int) float64 {
	if declaredLevel < 1 {
		declaredLevel = 1
	} else if declaredLevel > 8 {
		declaredLevel = 8
	}
	band := Bands[declaredLevel-1]
	return (band.Min + band.Max) / 2
}
