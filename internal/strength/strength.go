// Package strength maps a player rating onto engine settings so the
// engine plays at a comparable level.
package strength

// Profile holds the engine settings for one rating band.
type Profile struct {
	// SkillLevel is the engine's skill option value, 1 to 20.
	SkillLevel int

	// Depth is the search depth in plies, 1 to 20.
	Depth int
}

const (
	firstBand = 1250
	bandWidth = 100

	minStep = 1
	maxStep = 20
)

// FromRating maps a rating onto a strength profile. Ratings below 1250
// get the weakest profile, every 100-point band above that raises skill
// and depth by one step, and 3050 or above gets the strongest.
//
//	     <1250 -> 1
//	1250-1349 -> 2
//	1350-1449 -> 3
//	   ...
//	2950-3049 -> 19
//	    >=3050 -> 20
func FromRating(rating int) Profile {
	var step int
	switch {
	case rating < firstBand:
		step = minStep
	case rating >= firstBand+(maxStep-2)*bandWidth:
		step = maxStep
	default:
		step = (rating-firstBand)/bandWidth + 2
	}
	return Profile{SkillLevel: step, Depth: step}
}
