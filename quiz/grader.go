package quiz

import (
	"math"
	"strings"

	"github.com/fabfab/study-agent/models"
)

// Grade compares answers to q position by position. Missing answers count as
// empty strings and answers beyond the last question are ignored.
func Grade(q models.Quiz, answers []string) models.QuizAttempt {
	graded := make([]models.GradedAnswer, len(q.Questions))
	score := 0
	for i, question := range q.Questions {
		var answer string
		if i < len(answers) {
			answer = answers[i]
		}
		correct := normalize(answer) == normalize(question.CorrectAnswer)
		if correct {
			score++
		}
		graded[i] = models.GradedAnswer{
			QuestionIndex: i,
			AnswerText:    answer,
			IsCorrect:     correct,
		}
	}
	return models.QuizAttempt{
		QuizID:         q.ID,
		Answers:        graded,
		Score:          score,
		TotalQuestions: len(q.Questions),
	}
}

// Percentage is score/total as a rounded whole percent, or 0 for an empty quiz.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
