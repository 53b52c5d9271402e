package app

import "genquiz-service/internal/domain"

// Scorer computes the score stored with a participant response.
type Scorer interface {
	Score(session domain.Session, answers map[string]int) int
}

// CorrectAnswerScorer awards one point per answer matching the correct option.
// Polls always score zero.
type CorrectAnswerScorer struct{}

func (CorrectAnswerScorer) Score(session domain.Session, answers map[string]int) int {
	if session.Type != domain.SessionTypeQuiz {
		return 0
	}
	score := 0
	for _, q := range session.Questions {
		selected, ok := answers[q.ID]
		if !ok {
			continue
		}
		if correct, ok := q.Correct(); ok && correct == selected {
			score++
		}
	}
	return score
}
