package progress

import "github.com/trezcool/studylog/core"

// Rank returns 1 + the number of totals strictly greater than total; ties share a rank.
func Rank(total float64, totals []float64) int {
	c := core.Centi(total)
	rank := 1
	for _, t := range totals {
		if core.Centi(t) > c {
			rank++
		}
	}
	return rank
}

// Ranks ranks every student of totals (keyed by student ID) against the others.
func Ranks(totals map[string]float64) map[string]int {
	all := make([]float64, 0, len(totals))
	for _, t := range totals {
		all = append(all, t)
	}
	ranks := make(map[string]int, len(totals))
	for id, t := range totals {
		ranks[id] = Rank(t, all)
	}
	return ranks
}
