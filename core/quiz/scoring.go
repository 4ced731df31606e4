package quiz

const DefaultPassMark = 75.0

// Score returns the percentage of correct answers among the submitted ones.
// Answers to questions missing from the key are wrong; no answers scores 0.
func Score(answers Answers, key AnswerKey) float64 {
	if len(answers) == 0 {
		return 0
	}
	var correct int
	for qID, oID := range answers {
		if opts, ok := key[qID]; ok {
			if _, ok = opts[oID]; ok {
				correct++
			}
		}
	}
	return float64(correct) / float64(len(answers)) * 100
}

func Passed(score float64) bool {
	return score >= DefaultPassMark
}
