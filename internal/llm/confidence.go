package llm

import "math"

// CapScore rounds a heuristic score to 2 decimals and caps it at 1.0.
func CapScore(score float64) float64 {
	return math.Min(math.Round(score*100)/100, 1.0)
}
