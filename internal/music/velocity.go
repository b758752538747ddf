package music

import "github.com/fogleman/ease"

// minStrikeVelocity keeps even hesitant triggers audible.
const minStrikeVelocity = 0.35

// StrikeVelocity maps extension confidence to a strike velocity in
// [minStrikeVelocity, 1]. The curve is eased so the top of the confidence
// range compresses: a finger at 0.7 confidence already strikes near full
// strength, which feels more responsive than a linear map.
func StrikeVelocity(confidence float64) float64 {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return minStrikeVelocity + (1-minStrikeVelocity)*ease.OutCubic(confidence)
}
