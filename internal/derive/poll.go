package derive

import (
	"math"
)

// TotalVotes sums all ballots
func TotalVotes(votes map[string]int) int {
	total := 0
	for _, n := range votes {
		total += n
	}
	return total
}

// PollPercentage is the rounded share of option in votes, 0 when nobody voted
func PollPercentage(votes map[string]int, option string) int {
	total := TotalVotes(votes)
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(votes[option]) / float64(total) * 100))
}

// PollPercentages computes the share of every option
func PollPercentages(votes map[string]int) map[string]int {
	out := make(map[string]int, len(votes))
	for option := range votes {
		out[option] = PollPercentage(votes, option)
	}
	return out
}
