package graph

// Normalize linearly rescales score from [minScore, maxScore] into [0, 1].
// When minScore == maxScore it returns 0.5.
func Normalize(score, minScore, maxScore float64) float64 {
	if minScore == maxScore {
		return 0.5
	}
	return clamp01((score - minScore) / (maxScore - minScore))
}

// TargetEdgeLength maps a score inversely onto [base/2, base*2]:
// the most relevant connection gets the shortest spring.
func TargetEdgeLength(score, minScore, maxScore, base float64) float64 {
	n := Normalize(score, minScore, maxScore)
	return base*2 - n*(base*2-base/2)
}

// LinkStrokeWeight maps a score onto [minWidth, maxWidth].
func LinkStrokeWeight(score, minScore, maxScore, minWidth, maxWidth float64) float64 {
	return minWidth + Normalize(score, minScore, maxScore)*(maxWidth-minWidth)
}
