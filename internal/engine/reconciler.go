package engine

import (
	"math"

	"github.com/openboard/backend/internal/models"
)

// RatingStats is the presentation-layer summary of a post's ratings.
type RatingStats struct {
	// Average on the 0-10 display scale, rounded to one decimal place.
	Average float64 `json:"average"`
	// Total ratings reported in the headline.
	Total int `json:"total"`
	// Distribution holds percentages for 5,4,3,2,1 stars, in that order.
	Distribution [5]float64 `json:"distribution"`
}

// ComputeStats reconciles the fetched comment set against the post's stored
// aggregate. The stored ratingCount can exceed the number of rating-bearing
// comments (the author may have rated through a path that left no comment):
//
//   - a gap of exactly one infers the missing value from
//     postRating*postCount - sum(observed), rounded to nearest integer, and
//     folds it into the histogram;
//   - a larger gap keeps the stored count as the headline total but computes
//     histogram percentages from the observed subset only. Percentages are
//     deliberately not forced to account for the stated total.
func ComputeStats(post models.Post, comments []models.Comment) RatingStats {
	var counts [5]int
	var sum float64
	observed := 0

	for _, c := range comments {
		if c.Rating < 1 || c.Rating > 5 {
			continue
		}
		counts[5-c.Rating]++
		sum += float64(c.Rating)
		observed++
	}

	total := observed
	gap := post.RatingCount - observed

	if gap == 1 {
		inferred := int(math.Round(post.Rating*float64(post.RatingCount) - sum))
		if inferred < 1 {
			inferred = 1
		}
		if inferred > 5 {
			inferred = 5
		}
		counts[5-inferred]++
		sum += float64(inferred)
		observed++
		total = post.RatingCount
	} else if gap > 1 {
		total = post.RatingCount
	}

	stats := RatingStats{Total: total}
	if observed == 0 {
		return stats
	}

	mean := sum / float64(observed)
	stats.Average = round1(mean * 2) // 0-5 mean onto the 0-10 display scale

	for i, n := range counts {
		stats.Distribution[i] = float64(n) / float64(observed) * 100
	}
	return stats
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
