// Package matching finds and ranks candidate opponents for a team.
package matching

import "math"

// Config holds the scoring policy constants. The defaults mirror current
// product policy; they are exposed as configuration so they can be tuned
// without a code change, not as an invitation to tweak them casually.
type Config struct {
	// Weights of the three component scores in the overall score.
	RatingWeight   float64
	DistanceWeight float64
	ScheduleWeight float64
	// RatingSlope is the closeness penalty per point of rating gap.
	RatingSlope float64
	// ScheduleBaseline is the fixed schedule-compatibility score, a
	// placeholder until calendar-overlap logic exists.
	ScheduleBaseline float64
	// RecentOpponentPenalty scales the overall score of an already-played
	// candidate when the caller excludes recent opponents.
	RecentOpponentPenalty float64
	// RatingBand is the half-width of the candidate rating window around
	// the user's rating.
	RatingBand float64
	// MaxResults caps how many matches one run returns.
	MaxResults int
	// ManagerBatchSize bounds concurrent manager discovery calls.
	ManagerBatchSize int
}

func DefaultConfig() Config {
	return Config{
		RatingWeight:          0.4,
		DistanceWeight:        0.35,
		ScheduleWeight:        0.25,
		RatingSlope:           15,
		ScheduleBaseline:      80,
		RecentOpponentPenalty: 0.7,
		RatingBand:            3,
		MaxResults:            10,
		ManagerBatchSize:      3,
	}
}

// Scores are the component and overall match scores, rounded for display.
// Overall is the sole sort key.
type Scores struct {
	RatingCloseness       int `json:"rating_closeness"`
	Distance              int `json:"distance"`
	ScheduleCompatibility int `json:"schedule_compatibility"`
	Overall               int `json:"overall"`
}

// Score computes the match scores for one candidate. alreadyPlayed teams
// are penalized, not excluded, when excludeRecent is set.
func (c Config) Score(userRating, candidateRating, distanceMiles, maxDistance float64, alreadyPlayed, excludeRecent bool) Scores {
	ratingCloseness := math.Max(0, 100-math.Abs(userRating-candidateRating)*c.RatingSlope)

	distance := 0.0
	if maxDistance > 0 {
		distance = math.Max(0, 100-(distanceMiles/maxDistance)*100)
	}

	overall := ratingCloseness*c.RatingWeight +
		distance*c.DistanceWeight +
		c.ScheduleBaseline*c.ScheduleWeight
	if alreadyPlayed && excludeRecent {
		overall *= c.RecentOpponentPenalty
	}

	return Scores{
		RatingCloseness:       int(math.Round(ratingCloseness)),
		Distance:              int(math.Round(distance)),
		ScheduleCompatibility: int(math.Round(c.ScheduleBaseline)),
		Overall:               int(math.Round(overall)),
	}
}
