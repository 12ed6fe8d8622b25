// Package scoring computes a song's score summary from its counted reviews.
//
// Every function is pure: it reads the score slice and returns a value.
// Nothing here is cached or persisted, so a summary always reflects the
// reviews handed in at call time.
package scoring

import (
	"math"
	"strconv"
)

// multiplierThreshold is the review count above which controversy is weighted up.
const multiplierThreshold = 8

// multiplierStep is the weight added for each review beyond the threshold.
const multiplierStep = 0.02

// AverageScore returns the arithmetic mean of scores rounded to two decimal
// places, half away from zero. An empty slice averages to 0.
func AverageScore(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	return round2(mean(scores))
}

// Multiplier returns the controversy weight for a review count:
// 1 up to eight reviews, then 1 + 0.02 for every review past eight.
func Multiplier(reviewCount int) float64 {
	if reviewCount <= multiplierThreshold {
		return 1
	}
	return 1 + multiplierStep*float64(reviewCount-multiplierThreshold)
}

// ControversyIndex returns the mean absolute deviation of scores from their
// unrounded mean, scaled by Multiplier. An empty slice scores 0.
func ControversyIndex(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	m := mean(scores)
	var deviation float64
	for _, s := range scores {
		deviation += math.Abs(float64(s) - m)
	}
	return Multiplier(len(scores)) * (deviation / float64(len(scores)))
}

// ControversyDebugString renders "[index][multiplier][count]" for operators,
// e.g. "[1.2][1][5]" for the scores 0 through 4.
func ControversyDebugString(scores []int) string {
	return "[" + formatNumber(ControversyIndex(scores)) +
		"][" + formatNumber(Multiplier(len(scores))) +
		"][" + strconv.Itoa(len(scores)) + "]"
}

// Summary is the derived score information shown alongside a song.
type Summary struct {
	BlurbCount       int     `json:"blurb_count"`
	AverageScore     float64 `json:"average_score"`
	ControversyIndex float64 `json:"controversy_index"`
	Multiplier       float64 `json:"multiplier"`
	Debug            string  `json:"controversy_debug"`
}

// Summarize computes every derived value for one set of counted scores.
func Summarize(scores []int) Summary {
	return Summary{
		BlurbCount:       len(scores),
		AverageScore:     AverageScore(scores),
		ControversyIndex: ControversyIndex(scores),
		Multiplier:       Multiplier(len(scores)),
		Debug:            ControversyDebugString(scores),
	}
}

func mean(scores []int) float64 {
	var sum int
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// formatNumber prints v in its shortest form after trimming float noise,
// so 1.0200000000000000177 prints as "1.02" and 1 prints as "1".
func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}
